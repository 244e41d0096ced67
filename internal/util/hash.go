package util

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// HashFile computes the BLAKE3 digest of the file at path, streaming it
// so memory use stays constant for large binaries.
func HashFile(path string) ([32]byte, error) {
	var digest [32]byte

	f, err := os.Open(path)
	if err != nil {
		return digest, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return digest, fmt.Errorf("hashing %s: %w", path, err)
	}
	copy(digest[:], h.Sum(nil))
	return digest, nil
}

// ShortDigest returns the first 12 hex characters of a digest, enough to
// tell two builds apart in log output.
func ShortDigest(digest [32]byte) string {
	return hex.EncodeToString(digest[:6])
}
