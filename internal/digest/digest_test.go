package digest

import (
	"bytes"
	"strings"
	"testing"
)

func TestBytes_KnownVectors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{name: "empty", in: []byte{}, want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{name: "nil", in: nil, want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{name: "hello", in: []byte("hello"), want: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
		{name: "abc", in: []byte("abc"), want: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bytes(tt.in); got != tt.want {
				t.Fatalf("Bytes(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestBytes_Deterministic(t *testing.T) {
	in := bytes.Repeat([]byte("evidence"), 1024)
	if Bytes(in) != Bytes(in) {
		t.Fatal("expected identical digests for identical input")
	}
}

func TestBytes_SingleBitFlip(t *testing.T) {
	in := []byte("chain of custody")
	base := Bytes(in)

	for i := range in {
		for bit := 0; bit < 8; bit++ {
			flipped := append([]byte(nil), in...)
			flipped[i] ^= 1 << bit
			if Bytes(flipped) == base {
				t.Fatalf("flipping bit %d of byte %d did not change digest", bit, i)
			}
		}
	}
}

func TestReader_MatchesBytes(t *testing.T) {
	in := strings.Repeat("0123456789", 10000)
	sum, n, err := Reader(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	if n != int64(len(in)) {
		t.Fatalf("expected %d bytes, got %d", len(in), n)
	}
	if sum != Bytes([]byte(in)) {
		t.Fatalf("Reader digest %s differs from Bytes digest", sum)
	}
}
