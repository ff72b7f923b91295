package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"Coinsight/internal/domain/models"
	applogger "Coinsight/pkg/logger"
)

// Variant names for the checkpoint files of one symbol.
const (
	VariantCurrent = "current" // <SYMBOL>_best
	VariantLegacy  = "legacy"  // <SYMBOL>_v1
)

// ArchConfig is the architecture block of a checkpoint bundle. Read-only;
// weight blobs are never parsed here.
type ArchConfig struct {
	HiddenSizes []int   `json:"hidden_sizes"`
	Dropout     float64 `json:"dropout"`
}

// CheckpointMeta is the training metadata block of a checkpoint bundle.
type CheckpointMeta struct {
	TrainedAt    string  `json:"trained_at"`
	TestAccuracy float64 `json:"test_accuracy"`
	ValAccuracy  float64 `json:"val_accuracy"`
	ModelVersion string  `json:"model_version"`
}

// Handle is a loaded model descriptor kept in the in-memory handle cache.
type Handle struct {
	Symbol  string
	Variant string
	Path    string
	Config  ArchConfig
	Meta    CheckpointMeta
}

// Accuracy returns the historical-accuracy weight for ensemble combination.
func (h Handle) Accuracy() float64 {
	if h.Meta.TestAccuracy > 0 {
		return h.Meta.TestAccuracy
	}
	return 0.5
}

// Name identifies the model in ensemble metadata.
func (h Handle) Name() string {
	return fmt.Sprintf("%s_%v", h.Symbol, h.Config.HiddenSizes)
}

type checkpointFile struct {
	Config   ArchConfig     `json:"config"`
	Metadata CheckpointMeta `json:"metadata"`
}

// Registry reads checkpoint bundles' config and metadata documents and
// caches handles in memory until invalidated.
type Registry struct {
	dir string
	l   *applogger.Logger

	mu      sync.RWMutex
	handles map[string][]Handle
}

func NewRegistry(dir string, l *applogger.Logger) *Registry {
	return &Registry{dir: dir, l: l, handles: make(map[string][]Handle)}
}

// Load returns every available variant handle for a symbol, ordered
// current-first. ModelUnavailableError when no checkpoint exists.
func (r *Registry) Load(symbol string) ([]Handle, error) {
	r.mu.RLock()
	if hs, ok := r.handles[symbol]; ok {
		r.mu.RUnlock()
		return hs, nil
	}
	r.mu.RUnlock()

	variants := []struct {
		name string
		file string
	}{
		{VariantCurrent, symbol + "_best.json"},
		{VariantLegacy, symbol + "_v1.json"},
	}

	var handles []Handle
	for _, v := range variants {
		path := filepath.Join(r.dir, v.file)
		h, err := r.readCheckpoint(symbol, v.name, path)
		if err != nil {
			if !os.IsNotExist(err) && r.l != nil {
				r.l.Warn("checkpoint read failed",
					applogger.String("symbol", symbol),
					applogger.String("variant", v.name),
					applogger.Error(err),
				)
			}
			continue
		}
		handles = append(handles, h)
	}

	if len(handles) == 0 {
		return nil, &models.ModelUnavailableError{Symbol: symbol}
	}

	r.mu.Lock()
	r.handles[symbol] = handles
	r.mu.Unlock()

	if r.l != nil {
		r.l.Info("model handles cached",
			applogger.String("symbol", symbol),
			applogger.Int("variants", len(handles)),
		)
	}
	return handles, nil
}

// Info reports checkpoint metadata without requiring variants to be cached.
func (r *Registry) Info(symbol string) models.ModelInfo {
	handles, err := r.Load(symbol)
	if err != nil {
		return models.ModelInfo{Symbol: symbol, Status: "not_trained", ModelVersion: "N/A"}
	}
	current := handles[0]
	variants := make([]string, len(handles))
	for i, h := range handles {
		variants[i] = h.Variant
	}
	return models.ModelInfo{
		Symbol:       symbol,
		Status:       "trained",
		ModelVersion: current.Meta.ModelVersion,
		LastTrained:  current.Meta.TrainedAt,
		Accuracy7d:   current.Meta.TestAccuracy,
		Variants:     variants,
	}
}

// Invalidate drops the in-memory handles for a symbol.
func (r *Registry) Invalidate(symbol string) {
	r.mu.Lock()
	delete(r.handles, symbol)
	r.mu.Unlock()
}

// Loaded returns the number of symbols with cached handles.
func (r *Registry) Loaded() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

func (r *Registry) readCheckpoint(symbol, variant, path string) (Handle, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Handle{}, err
	}
	var cf checkpointFile
	if err := json.Unmarshal(b, &cf); err != nil {
		return Handle{}, fmt.Errorf("parse checkpoint %s: %w", path, err)
	}
	if len(cf.Config.HiddenSizes) == 0 {
		cf.Config.HiddenSizes = []int{128, 64, 32}
	}
	if cf.Config.Dropout == 0 {
		cf.Config.Dropout = 0.2
	}
	if cf.Metadata.ModelVersion == "" {
		cf.Metadata.ModelVersion = "v1.0.0"
	}
	return Handle{Symbol: symbol, Variant: variant, Path: path, Config: cf.Config, Meta: cf.Metadata}, nil
}
