// Package redirect opens the files named by a stage's redirections and
// hands back the resulting standard-stream file handles. It never
// touches file descriptors 0/1/2 of the current process — that real
// fd-table manipulation belongs to internal/fdguard, used only by the
// REPL's single-stage fast path.
package redirect

import (
	"fmt"
	"os"

	"github.com/corvus-sh/shell/internal/parser"
)

// Files holds the opened redirection targets for one stage. A nil field
// means "no redirection for that stream — use the pipeline-supplied
// default". Close must be called exactly once, however execution ends.
type Files struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	opened []*os.File
}

// Close closes every file this Files opened, in the order they were
// opened. Safe to call on a zero-value Files.
func (f *Files) Close() {
	for _, file := range f.opened {
		file.Close()
	}
}

// Open opens the targets of redirs in listed order, so that a later
// redirection on the same target_fd overrides an earlier one. On the
// first open failure, every file opened so far is closed and the error
// is returned.
func Open(redirs []parser.Redirection) (*Files, error) {
	files := &Files{}
	for _, r := range redirs {
		f, err := openOne(r)
		if err != nil {
			files.Close()
			return nil, fmt.Errorf("%s: %w", r.Filename, err)
		}
		files.opened = append(files.opened, f)

		switch r.TargetFD {
		case 0:
			files.Stdin = f
		case 1:
			files.Stdout = f
		case 2:
			files.Stderr = f
		}
	}
	return files, nil
}

func openOne(r parser.Redirection) (*os.File, error) {
	switch r.Mode {
	case parser.Read:
		return os.Open(r.Filename)
	case parser.Trunc:
		return os.OpenFile(r.Filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	case parser.Append:
		return os.OpenFile(r.Filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	default:
		return nil, fmt.Errorf("unknown redirection mode %v", r.Mode)
	}
}
