package localstore

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "state.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetMissingKey(t *testing.T) {
	s := openTestStore(t)

	v, ok, err := s.Get("token")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok || v != "" {
		t.Errorf("Get missing: got (%q, %v), want (\"\", false)", v, ok)
	}
}

func TestSetGetOverwriteDelete(t *testing.T) {
	s := openTestStore(t)

	if err := s.Set("token", "first"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set("token", "second"); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}

	v, ok, err := s.Get("token")
	if err != nil || !ok {
		t.Fatalf("Get: got ok=%v err=%v", ok, err)
	}
	if v != "second" {
		t.Errorf("Get: got %q, want %q", v, "second")
	}

	if err := s.Delete("token"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete("token"); err != nil {
		t.Fatalf("Delete absent key failed: %v", err)
	}
	if _, ok, _ := s.Get("token"); ok {
		t.Error("Get after Delete: key still present")
	}
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Set("token", "persisted"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	_ = s.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get("token")
	if err != nil || !ok || v != "persisted" {
		t.Errorf("Get after reopen: got (%q, %v, %v)", v, ok, err)
	}
}
