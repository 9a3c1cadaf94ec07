// Package hashutil provides content fingerprinting for crawled output,
// useful for downstream dedup or change-detection on top of a site's
// own per-path frontier dedup.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

type Algo string

const (
	AlgoSHA256 Algo = "sha256"
	AlgoBLAKE3 Algo = "blake3"
)

// Fingerprint returns data's hash as a hex string under the given
// algorithm.
func Fingerprint(data []byte, algo Algo) (string, error) {
	switch algo {
	case AlgoSHA256:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	case AlgoBLAKE3:
		sum := blake3.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", fmt.Errorf("hashutil: unsupported algorithm %q", algo)
	}
}
