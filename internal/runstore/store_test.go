package runstore

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndListRoundTrip(t *testing.T) {
	s := openTestStore(t)

	err := s.Insert(Run{
		ID:        "run-1",
		CreatedAt: "2026-08-01T10:00:00Z",
		Country:   "Chile",
		Subject:   "Matemática",
		Theme:     "Bem-estar docente",
		BestModel: "random_forest",
		Criterion: "cv",
		Target:    "indice_bem_estar_norm",
		NRows:     1963,
	})
	if err != nil {
		t.Fatal(err)
	}
	err = s.Insert(Run{
		ID:        "run-2",
		CreatedAt: "2026-08-02T10:00:00Z",
		Country:   "Chile",
		BestModel: "ols",
		Target:    "indice_bem_estar_norm",
	})
	if err != nil {
		t.Fatal(err)
	}

	runs, err := s.List(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs", len(runs))
	}
	// Newest first.
	if runs[0].ID != "run-2" || runs[1].ID != "run-1" {
		t.Fatalf("order = %s, %s", runs[0].ID, runs[1].ID)
	}
	if runs[1].BestModel != "random_forest" || runs[1].NRows != 1963 {
		t.Fatalf("round trip lost fields: %+v", runs[1])
	}
}

func TestInsertFillsTimestamp(t *testing.T) {
	s := openTestStore(t)
	if err := s.Insert(Run{ID: "run-3"}); err != nil {
		t.Fatal(err)
	}
	runs, err := s.List(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].CreatedAt == "" {
		t.Fatalf("timestamp not filled: %+v", runs)
	}
}

func TestListLimit(t *testing.T) {
	s := openTestStore(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := s.Insert(Run{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := s.List(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("limit ignored: %d runs", len(runs))
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "runs.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()
}
