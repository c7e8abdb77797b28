// Package digest fingerprints evidence content. Output is lower-case hex
// SHA-256 so any independent sha256sum reproduces it.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

func Bytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Reader hashes everything read from r and returns the digest together
// with the number of bytes consumed.
func Reader(r io.Reader) (string, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
