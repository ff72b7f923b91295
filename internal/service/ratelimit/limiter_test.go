package ratelimit

import (
	"testing"
	"time"
)

func TestAllowConsumesTokens(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		if !l.Allow("1.2.3.4", 5, 0) {
			t.Fatalf("request %d rejected under capacity", i)
		}
	}
	if l.Allow("1.2.3.4", 5, 0) {
		t.Fatal("request above capacity allowed")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0) {
		t.Fatal("first request rejected")
	}
	if l.Allow("a", 1, 0) {
		t.Fatal("exhausted bucket allowed")
	}
	if !l.Allow("b", 1, 0) {
		t.Fatal("fresh key rejected")
	}
}

func TestAllowRefills(t *testing.T) {
	l := New()
	// drain, then refill at an absurd rate so the next call has a token
	if !l.Allow("k", 1, 1000) {
		t.Fatal("first request rejected")
	}
	time.Sleep(5 * time.Millisecond)
	if !l.Allow("k", 1, 1000) {
		t.Fatal("bucket did not refill")
	}
}
