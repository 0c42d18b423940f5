package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

type record struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func testBackends(t *testing.T) map[string]RecordStore {
	t.Helper()
	fileStore, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	return map[string]RecordStore{
		"memory": NewMemoryStore(),
		"file":   fileStore,
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range testBackends(t) {
		t.Run(name, func(t *testing.T) {
			want := record{Name: "alpha", Score: 0.75}
			if err := s.Save(ctx, KeyParameters, want); err != nil {
				t.Fatalf("save: %v", err)
			}
			var got record
			if err := s.Load(ctx, KeyParameters, &got); err != nil {
				t.Fatalf("load: %v", err)
			}
			if got != want {
				t.Errorf("loaded %+v, want %+v", got, want)
			}
		})
	}
}

func TestLoadMissingReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	for name, s := range testBackends(t) {
		t.Run(name, func(t *testing.T) {
			var out record
			if err := s.Load(ctx, "missing:key", &out); !errors.Is(err, ErrNotFound) {
				t.Fatalf("load error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestSaveReplacesWholeRecord(t *testing.T) {
	ctx := context.Background()
	for name, s := range testBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Save(ctx, KeyBanditRoster, record{Name: "old", Score: 1}); err != nil {
				t.Fatalf("first save: %v", err)
			}
			if err := s.Save(ctx, KeyBanditRoster, record{Name: "new"}); err != nil {
				t.Fatalf("second save: %v", err)
			}
			var got record
			if err := s.Load(ctx, KeyBanditRoster, &got); err != nil {
				t.Fatalf("load: %v", err)
			}
			if got.Name != "new" || got.Score != 0 {
				t.Errorf("loaded %+v, want fully replaced record", got)
			}
		})
	}
}

func TestDeleteThenLoad(t *testing.T) {
	ctx := context.Background()
	for name, s := range testBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Save(ctx, KeyCalibrationState, record{Name: "x"}); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := s.Delete(ctx, KeyCalibrationState); err != nil {
				t.Fatalf("delete: %v", err)
			}
			var out record
			if err := s.Load(ctx, KeyCalibrationState, &out); !errors.Is(err, ErrNotFound) {
				t.Fatalf("load after delete = %v, want ErrNotFound", err)
			}
			// Deleting again must stay a no-op.
			if err := s.Delete(ctx, KeyCalibrationState); err != nil {
				t.Fatalf("second delete: %v", err)
			}
		})
	}
}

func TestFileStoreKeyMapping(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	want := filepath.Join(dir, "calibration_state.json")
	if got := s.path(KeyCalibrationState); got != want {
		t.Errorf("path(%q) = %q, want %q", KeyCalibrationState, got, want)
	}
}
