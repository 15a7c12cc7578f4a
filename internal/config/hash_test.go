package config

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestWriteChecksumThenLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", "service:\n  name: lab-07\n")

	hash, err := WriteChecksum(path)
	if err != nil {
		t.Fatalf("WriteChecksum() failed: %v", err)
	}
	if len(hash) != 64 {
		t.Fatalf("hash length = %d, want 64", len(hash))
	}

	data, err := os.ReadFile(ChecksumPath(path))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), hash+"  config.yaml") {
		t.Fatalf("sidecar = %q", data)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() of locked config failed: %v", err)
	}
	if cfg.Service.Name != "lab-07" {
		t.Fatalf("name = %q", cfg.Service.Name)
	}
}

func TestLoadRejectsTamperedConfig(t *testing.T) {
	path := writeConfig(t, "config.yaml", "service:\n  name: lab-07\n")
	if _, err := WriteChecksum(path); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("service:\n  name: lab-08\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("Load() error = %v, want ErrChecksumMismatch", err)
	}
	if !strings.Contains(err.Error(), "ghostctl config lock") {
		t.Fatalf("error should hint at relocking: %v", err)
	}
}

func TestVerifyChecksumWithoutSidecar(t *testing.T) {
	path := writeConfig(t, "config.yaml", "service: {}\n")
	if err := VerifyChecksum(path); err != nil {
		t.Fatalf("VerifyChecksum() = %v, want nil for unlocked config", err)
	}
}

func TestVerifyChecksumEmptySidecar(t *testing.T) {
	path := writeConfig(t, "config.yaml", "service: {}\n")
	if err := os.WriteFile(ChecksumPath(path), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := VerifyChecksum(path); err == nil {
		t.Fatal("VerifyChecksum() should reject an empty sidecar")
	}
}

func TestComputeBlake3HashMissingFile(t *testing.T) {
	if _, err := ComputeBlake3Hash("does-not-exist.yaml"); err == nil {
		t.Fatal("expected error")
	}
}
