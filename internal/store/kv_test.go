package store

import (
	"context"
	"testing"
	"time"

	"github.com/capitalize-ai/assistant-intelligence/internal/model"
	"github.com/capitalize-ai/assistant-intelligence/pkg/logger"
)

func TestMemoryKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	if _, found, err := kv.Get(ctx, "missing"); err != nil || found {
		t.Errorf("missing key: found=%v err=%v", found, err)
	}

	if err := kv.Put(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, found, err := kv.Get(ctx, "k")
	if err != nil || !found || string(got) != "v1" {
		t.Errorf("get: %q found=%v err=%v", got, found, err)
	}

	// Returned slices are copies; mutating one must not corrupt the store.
	got[0] = 'X'
	again, _, _ := kv.Get(ctx, "k")
	if string(again) != "v1" {
		t.Errorf("stored value mutated through a read: %q", again)
	}

	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := kv.Get(ctx, "k"); found {
		t.Error("deleted key still present")
	}
}

func TestNoopKVSemantics(t *testing.T) {
	ctx := context.Background()
	kv := NoopKV{}

	if err := kv.Put(ctx, "k", []byte("v")); err != nil {
		t.Errorf("put: %v", err)
	}
	if _, found, err := kv.Get(ctx, "k"); err != nil || found {
		t.Errorf("noop writes must vanish: found=%v err=%v", found, err)
	}
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Errorf("delete: %v", err)
	}
}

func TestPatternStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewPatternStore(NewMemoryKV(), logger.NewNop())

	if got := s.Load(ctx, "s1"); got != nil {
		t.Errorf("load of absent snapshot = %v, want nil", got)
	}

	patterns := []model.ConversationPattern{{
		ID: "p1", Type: model.PatternPreference, Pattern: "frequent image requests",
		Confidence: 0.7, Occurrences: 2, LastSeen: time.Now().UTC(),
	}}
	s.Save(ctx, "s1", patterns)

	got := s.Load(ctx, "s1")
	if len(got) != 1 || got[0].Pattern != "frequent image requests" {
		t.Errorf("round trip lost data: %v", got)
	}

	s.Delete(ctx, "s1")
	if got := s.Load(ctx, "s1"); got != nil {
		t.Error("snapshot survived deletion")
	}
}

func TestPatternStoreCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	kv.Put(ctx, "s1", []byte("not json"))

	s := NewPatternStore(kv, logger.NewNop())
	if got := s.Load(ctx, "s1"); got != nil {
		t.Errorf("corrupt snapshot must read as empty, got %v", got)
	}
}

func TestPreferenceStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewPreferenceStore(NewMemoryKV(), logger.NewNop())

	if got := s.Load(ctx, "s1"); got != nil {
		t.Errorf("load of absent profile = %v, want nil", got)
	}

	profile := &model.PreferenceProfile{
		SessionID: "s1",
		Preferences: []model.UserPreference{{
			Category: model.CategoryResponseStyle, Label: "concise", Strength: 0.8,
		}},
		UpdatedAt: time.Now().UTC(),
	}
	s.Save(ctx, profile)

	got := s.Load(ctx, "s1")
	if got == nil || len(got.Preferences) != 1 || got.Preferences[0].Label != "concise" {
		t.Errorf("round trip lost data: %+v", got)
	}
}
