package shell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/corvus-sh/shell/internal/execx"
)

func TestCompleter_CompletesBuiltinAndPathNames(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "customtool")
	os.WriteFile(tool, []byte("#!/bin/sh\n"), 0755)

	oldPath := os.Getenv("PATH")
	os.Setenv("PATH", dir)
	defer os.Setenv("PATH", oldPath)

	c := &Completer{cache: execx.NewCache()}
	matches, length := c.Do([]rune("cu"), 2)
	if length != 2 {
		t.Fatalf("length = %d, want 2", length)
	}
	found := false
	for _, m := range matches {
		if string(m) == "stomtool " {
			found = true
		}
	}
	if !found {
		t.Errorf("matches = %v, want a suffix completing customtool", matches)
	}
}

func TestCompleter_NoCompletionAfterFirstWord(t *testing.T) {
	c := &Completer{cache: execx.NewCache()}
	matches, _ := c.Do([]rune("echo hel"), 8)
	if matches != nil {
		t.Errorf("matches = %v, want nil once the line has a space", matches)
	}
}
