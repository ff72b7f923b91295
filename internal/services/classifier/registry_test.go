package classifier

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"Coinsight/internal/domain/models"
)

func writeCheckpoint(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRegistryLoadBothVariants(t *testing.T) {
	dir := t.TempDir()
	writeCheckpoint(t, dir, "BTC_best.json", `{
		"config": {"hidden_sizes": [256, 128], "dropout": 0.3},
		"metadata": {"trained_at": "2024-06-01", "test_accuracy": 0.82, "model_version": "v2.1.0"}
	}`)
	writeCheckpoint(t, dir, "BTC_v1.json", `{
		"config": {"hidden_sizes": [128, 64, 32], "dropout": 0.2},
		"metadata": {"test_accuracy": 0.74, "model_version": "v1.0.0"}
	}`)

	r := NewRegistry(dir, nil)
	handles, err := r.Load("BTC")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(handles) != 2 {
		t.Fatalf("handles = %d, want 2", len(handles))
	}
	if handles[0].Variant != VariantCurrent || handles[1].Variant != VariantLegacy {
		t.Fatalf("variant order = %s, %s", handles[0].Variant, handles[1].Variant)
	}
	if handles[0].Meta.ModelVersion != "v2.1.0" || handles[0].Accuracy() != 0.82 {
		t.Fatalf("current handle meta = %+v", handles[0].Meta)
	}
	if r.Loaded() != 1 {
		t.Fatalf("loaded symbols = %d", r.Loaded())
	}
}

func TestRegistryDefaults(t *testing.T) {
	dir := t.TempDir()
	writeCheckpoint(t, dir, "ETH_best.json", `{}`)

	r := NewRegistry(dir, nil)
	handles, err := r.Load("ETH")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	h := handles[0]
	if len(h.Config.HiddenSizes) != 3 || h.Config.HiddenSizes[0] != 128 {
		t.Fatalf("default hidden sizes = %v", h.Config.HiddenSizes)
	}
	if h.Config.Dropout != 0.2 {
		t.Fatalf("default dropout = %v", h.Config.Dropout)
	}
	if h.Meta.ModelVersion != "v1.0.0" {
		t.Fatalf("default version = %q", h.Meta.ModelVersion)
	}
	// accuracy falls back when the checkpoint carries none
	if h.Accuracy() != 0.5 {
		t.Fatalf("fallback accuracy = %v", h.Accuracy())
	}
}

func TestRegistryMissingModel(t *testing.T) {
	r := NewRegistry(t.TempDir(), nil)
	_, err := r.Load("XRP")
	var mue *models.ModelUnavailableError
	if !errors.As(err, &mue) {
		t.Fatalf("expected ModelUnavailableError, got %v", err)
	}
}

func TestRegistryInvalidate(t *testing.T) {
	dir := t.TempDir()
	writeCheckpoint(t, dir, "SOL_v1.json", `{"metadata": {"model_version": "v1.0.0"}}`)

	r := NewRegistry(dir, nil)
	if _, err := r.Load("SOL"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	r.Invalidate("SOL")
	if r.Loaded() != 0 {
		t.Fatal("invalidate must drop cached handles")
	}

	// handle cache is repopulated from disk on next load
	handles, err := r.Load("SOL")
	if err != nil || len(handles) != 1 {
		t.Fatalf("reload after invalidate: %v, %d handles", err, len(handles))
	}
	if handles[0].Variant != VariantLegacy {
		t.Fatalf("variant = %s, want legacy", handles[0].Variant)
	}
}

func TestRegistryInfo(t *testing.T) {
	dir := t.TempDir()
	writeCheckpoint(t, dir, "ADA_best.json", `{
		"metadata": {"trained_at": "2024-05-15", "test_accuracy": 0.77, "model_version": "v1.2.0"}
	}`)

	r := NewRegistry(dir, nil)
	info := r.Info("ADA")
	if info.Status != "trained" || info.ModelVersion != "v1.2.0" || info.Accuracy7d != 0.77 {
		t.Fatalf("info = %+v", info)
	}

	missing := r.Info("DOT")
	if missing.Status != "not_trained" || missing.ModelVersion != "N/A" {
		t.Fatalf("missing info = %+v", missing)
	}
}

func TestValidateProbs(t *testing.T) {
	if err := ValidateProbs([3]float64{0.2, 0.3, 0.5}); err != nil {
		t.Fatalf("valid triple rejected: %v", err)
	}
	if err := ValidateProbs([3]float64{0.5, 0.5, 0.5}); err == nil {
		t.Fatal("sum > 1 accepted")
	}
	if err := ValidateProbs([3]float64{-0.1, 0.6, 0.5}); err == nil {
		t.Fatal("negative component accepted")
	}
}
