package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestChownToInvokerWithoutSudo(t *testing.T) {
	t.Setenv("SUDO_USER", "")
	path := filepath.Join(t.TempDir(), "hunt.log")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := chownToInvoker(path, filepath.Join(t.TempDir(), "missing")); err != nil {
		t.Errorf("chownToInvoker: %v", err)
	}
}

func TestGetOriginalUserNeedsSudo(t *testing.T) {
	t.Setenv("SUDO_USER", "")
	if _, err := getOriginalUser(); err == nil {
		t.Error("expected an error without SUDO_USER")
	}
}

func TestLogOutputSwitches(t *testing.T) {
	var first, second bytesWriter
	out := &logOutput{w: &first}
	out.Write([]byte("a"))
	out.Set(&second)
	out.Write([]byte("b"))
	if string(first) != "a" || string(second) != "b" {
		t.Errorf("first = %q, second = %q", first, second)
	}
}

type bytesWriter []byte

func (b *bytesWriter) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}
