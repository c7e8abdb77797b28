package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"evidencechain/internal/digest"
)

func TestHashAndRewind(t *testing.T) {
	content := []byte("photograph of the scene")
	local := filepath.Join(t.TempDir(), "scene.jpg")
	if err := os.WriteFile(local, content, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	file, err := os.Open(local)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	sum, err := hashAndRewind(file)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if sum != digest.Bytes(content) {
		t.Fatalf("expected %s, got %s", digest.Bytes(content), sum)
	}

	uploaded, err := io.ReadAll(file)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(uploaded) != string(content) {
		t.Fatalf("expected the whole file after hashing, got %q", uploaded)
	}
}
