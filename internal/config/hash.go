package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

// ChecksumExt is appended to a config path to form its integrity sidecar.
const ChecksumExt = ".b3"

// ErrChecksumMismatch is returned when a config no longer matches its sidecar.
var ErrChecksumMismatch = errors.New("config checksum mismatch")

// ComputeBlake3Hash computes the BLAKE3 hash of a file.
func ComputeBlake3Hash(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// ChecksumPath returns the sidecar path for configPath.
func ChecksumPath(configPath string) string {
	return configPath + ChecksumExt
}

// WriteChecksum hashes configPath and writes the sidecar in b3sum format.
func WriteChecksum(configPath string) (string, error) {
	hash, err := ComputeBlake3Hash(configPath)
	if err != nil {
		return "", err
	}
	line := fmt.Sprintf("%s  %s\n", hash, filepath.Base(configPath))
	// Restrictive permissions: the sidecar is the trust anchor.
	if err := os.WriteFile(ChecksumPath(configPath), []byte(line), 0o600); err != nil {
		return "", fmt.Errorf("failed to write checksum: %w", err)
	}
	return hash, nil
}

// VerifyChecksum checks configPath against its sidecar. A missing sidecar
// means the config is not locked and passes.
func VerifyChecksum(configPath string) error {
	data, err := os.ReadFile(ChecksumPath(configPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read checksum: %w", err)
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return fmt.Errorf("checksum file %s is empty", ChecksumPath(configPath))
	}
	expected := fields[0]

	actual, err := ComputeBlake3Hash(configPath)
	if err != nil {
		return fmt.Errorf("failed to compute hash: %w", err)
	}
	if actual != expected {
		return fmt.Errorf("%w for %s: expected %s, got %s\n"+
			"If you edited this file intentionally, run: ghostctl config lock",
			ErrChecksumMismatch, filepath.Base(configPath), expected, actual)
	}
	return nil
}
