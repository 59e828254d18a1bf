package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestKeygenFromSeed(t *testing.T) {
	const seed = "000102030405060708090a0b0c0d0e0f"
	dir := t.TempDir()

	first := runCmd(t, "keygen", nil, "-key", filepath.Join(dir, "a.key"), "-seed", seed)
	second := runCmd(t, "keygen", nil, "-key", filepath.Join(dir, "b.key"), "-seed", seed)
	if !bytes.Equal(first, second) {
		t.Fatalf("derived keys differ: %q != %q", first, second)
	}
	other := runCmd(t, "keygen", nil, "-key", filepath.Join(dir, "c.key"), "-seed", seed, "-path", "m/44'/501'/1'/0'")
	if bytes.Equal(first, other) {
		t.Fatal("different paths derived the same key")
	}

	addr := runCmd(t, "keyaddr", nil, "-key", filepath.Join(dir, "a.key"))
	if !bytes.Equal(first, addr) {
		t.Fatalf("want %q, got %q", first, addr)
	}
}

func TestKeygenDoesNotOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.key")
	runCmd(t, "keygen", nil, "-key", path)

	var output bytes.Buffer
	err := cmdKeygen(nil, &output, []string{"-key", path})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("want already exists error, got %v", err)
	}
}
