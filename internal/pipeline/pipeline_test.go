package pipeline_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvus-sh/shell/internal/builtin"
	"github.com/corvus-sh/shell/internal/execx"
	"github.com/corvus-sh/shell/internal/parser"
	"github.com/corvus-sh/shell/internal/pipeline"
)

type noopHistory struct{}

func (noopHistory) Entries() []string          { return nil }
func (noopHistory) Clear() error               { return nil }
func (noopHistory) ReadFile(path string) error { return nil }
func (noopHistory) WriteFile(path string) error { return nil }
func (noopHistory) AppendFile(path string) error { return nil }

func newBctx() *builtin.Context {
	return &builtin.Context{History: noopHistory{}, RequestExit: func() {}}
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRun_SingleExternalStage(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "greet", "#!/bin/sh\necho hello\n")

	p, err := parser.Parse("greet")
	assert.NoError(t, err)

	var out bytes.Buffer
	result, err := pipeline.Run(context.Background(), p, newBctx(), execx.IO{Stdin: strings.NewReader(""), Stdout: &out, Stderr: &out}, dir)
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Status)
	assert.Equal(t, "hello\n", out.String())
}

func TestRun_TwoStagePipelineWiresPipeBetweenStages(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "upper", "#!/bin/sh\ntr a-z A-Z\n")

	p, err := parser.Parse("echo hello | upper")
	assert.NoError(t, err)

	var out bytes.Buffer
	result, err := pipeline.Run(context.Background(), p, newBctx(), execx.IO{Stdin: strings.NewReader(""), Stdout: &out, Stderr: &out}, dir)
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Status)
	assert.Equal(t, "HELLO\n", out.String())
}

func TestRun_LastStageStatusWins(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "fail", "#!/bin/sh\nexit 7\n")

	p, err := parser.Parse("echo hi | fail")
	assert.NoError(t, err)

	var out bytes.Buffer
	result, err := pipeline.Run(context.Background(), p, newBctx(), execx.IO{Stdin: strings.NewReader(""), Stdout: &out, Stderr: &out}, dir)
	assert.NoError(t, err)
	assert.Equal(t, 7, result.Status)
}

func TestRun_UnknownCommandReports127(t *testing.T) {
	dir := t.TempDir()

	p, err := parser.Parse("definitely-not-a-real-command")
	assert.NoError(t, err)

	var out, errOut bytes.Buffer
	result, err := pipeline.Run(context.Background(), p, newBctx(), execx.IO{Stdin: strings.NewReader(""), Stdout: &out, Stderr: &errOut}, dir)
	assert.NoError(t, err)
	assert.Equal(t, 127, result.Status)
	assert.Contains(t, errOut.String(), "not found")
}

func TestRun_ExitInsidePipelineDoesNotPanic(t *testing.T) {
	dir := t.TempDir()

	p, err := parser.Parse("exit | echo after")
	assert.NoError(t, err)

	var out bytes.Buffer
	result, err := pipeline.Run(context.Background(), p, newBctx(), execx.IO{Stdin: strings.NewReader(""), Stdout: &out, Stderr: &out}, dir)
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Status)
	assert.Equal(t, "after\n", out.String())
}
