// Package fdguard performs the real OS-level dup/dup2/close calls behind
// a saved-fd snapshot: the REPL's single-stage fast path runs a lone
// builtin in the parent process, so it is the one place the shell's
// actual file descriptors 0/1/2 are temporarily repointed at redirection
// targets and then restored. Pipeline stages never use this package —
// they run as goroutines over real os.Pipe() ends and plain *os.File
// substitution, since dup2 onto the shared descriptors 0/1/2 would race
// across concurrently running stages.
package fdguard

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/corvus-sh/shell/internal/redirect"
)

// Snapshot holds duplicates of fds 0, 1, and 2 captured before a
// redirection is applied in-process. Restore must be called exactly once
// to release it — callers should acquire a Snapshot and defer Restore in
// the same scope so a panic or early return still restores it.
type Snapshot struct {
	in, out, err int
}

// Save duplicates the current fds 0/1/2.
func Save() (*Snapshot, error) {
	in, err := unix.Dup(0)
	if err != nil {
		return nil, fmt.Errorf("dup stdin: %w", err)
	}
	out, err := unix.Dup(1)
	if err != nil {
		unix.Close(in)
		return nil, fmt.Errorf("dup stdout: %w", err)
	}
	errFD, err := unix.Dup(2)
	if err != nil {
		unix.Close(in)
		unix.Close(out)
		return nil, fmt.Errorf("dup stderr: %w", err)
	}
	return &Snapshot{in: in, out: out, err: errFD}, nil
}

// Restore dup2s the saved descriptors back onto 0/1/2 and closes the
// duplicates. It is safe to call at most once per Snapshot.
func (s *Snapshot) Restore() error {
	var firstErr error
	if err := unix.Dup2(s.in, 0); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("restore stdin: %w", err)
	}
	if err := unix.Dup2(s.out, 1); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("restore stdout: %w", err)
	}
	if err := unix.Dup2(s.err, 2); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("restore stderr: %w", err)
	}
	unix.Close(s.in)
	unix.Close(s.out)
	unix.Close(s.err)
	return firstErr
}

// Apply dup2s each opened redirection target onto its fd (0, 1, or 2)
// and then closes the original handle. Call Save before Apply so the
// prior fds can be restored afterward.
func Apply(files *redirect.Files) error {
	if files.Stdin != nil {
		if err := dup2AndClose(files.Stdin, 0); err != nil {
			return err
		}
	}
	if files.Stdout != nil {
		if err := dup2AndClose(files.Stdout, 1); err != nil {
			return err
		}
	}
	if files.Stderr != nil {
		if err := dup2AndClose(files.Stderr, 2); err != nil {
			return err
		}
	}
	return nil
}

func dup2AndClose(f *os.File, targetFD int) error {
	if err := unix.Dup2(int(f.Fd()), targetFD); err != nil {
		return fmt.Errorf("dup2 onto fd %d: %w", targetFD, err)
	}
	f.Close()
	return nil
}
