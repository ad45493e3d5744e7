package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRegistryBuiltins(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	p, err := r.Lookup("Ascend910B")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.AvailableUnits() != 48 || p.BufferCapacityBytes() != UBSize {
		t.Fatalf("unexpected profile: %s", p)
	}
	host, err := r.Lookup("host")
	if err != nil {
		t.Fatalf("lookup host: %v", err)
	}
	if host.Units < 1 {
		t.Fatalf("host units: got %d", host.Units)
	}
	if _, err := r.Lookup("tpu"); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}
}

func TestRegistryLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "platforms.yaml")
	body := []byte("platforms:\n  - name: Lab\n    units: 16\n    buffer_bytes: 131072\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewRegistry()
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	p, err := r.Lookup("lab")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.Units != 16 || p.BufferBytes != 131072 {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestRegistryRejectsInvalidProfiles(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.Load([]byte("platforms:\n  - name: broken\n    units: 0\n    buffer_bytes: 10\n")); err == nil {
		t.Fatalf("expected error for zero units")
	}
	if err := r.Load([]byte("platforms: [")); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestOverride(t *testing.T) {
	t.Parallel()

	base := Info{Name: "x", Units: 8, BufferBytes: 1024}
	got := base.Override(0, 4096)
	if got.Units != 8 || got.BufferBytes != 4096 {
		t.Fatalf("override: got %+v", got)
	}
	got = base.Override(2, 0)
	if got.Units != 2 || got.BufferBytes != 1024 {
		t.Fatalf("override: got %+v", got)
	}
}
