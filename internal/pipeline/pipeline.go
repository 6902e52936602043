// Package pipeline is the pipeline driver: it wires stages together
// with pipes, dispatches each stage to either a builtin or an external
// program, and reports the last stage's status.
//
// Forking the Go runtime mid-process is unsafe, so each stage instead
// runs in its own goroutine connected by real os.Pipe() pairs, and an
// external-program stage execs via os/exec with the pipe end wired
// straight into Cmd.Stdin/Stdout, so the kernel still does the
// buffering and no stage sees application-level copying.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/corvus-sh/shell/internal/builtin"
	"github.com/corvus-sh/shell/internal/execx"
	"github.com/corvus-sh/shell/internal/parser"
	"github.com/corvus-sh/shell/internal/redirect"
)

// Result is the outcome of running a Pipeline.
type Result struct {
	// Status is the last stage's exit status: the code it exited with,
	// or 1 if it was terminated by a signal.
	Status int
}

// Run drives p to completion. bctx is shared across every stage's
// builtin Context; the REPL passes one whose RequestExit is a no-op,
// since "exit" inside a pipeline stage must not tear down the whole
// shell, and cd's
// os.Chdir only affects the goroutine's view of the process-wide cwd
// transiently before the next stage runs.
func Run(ctx context.Context, p *parser.Pipeline, bctx *builtin.Context, base execx.IO, pathEnv string) (Result, error) {
	n := len(p.Stages)
	if n == 0 {
		return Result{}, fmt.Errorf("empty pipeline")
	}

	stageIn := make([]io.Reader, n)
	stageOut := make([]io.Writer, n)
	// readEnd[i]/writeEnd[i] are the pipe *os.File this stage itself owns
	// and must close when it finishes — writeEnd[i] so the next stage's
	// read sees EOF as soon as this stage stops producing, not only once
	// every stage in the pipeline has exited. A slow/blocking reader
	// downstream must not wait for stages that have nothing left to tell
	// it, or the whole pipeline deadlocks.
	readEnd := make([]*os.File, n)
	writeEnd := make([]*os.File, n)

	stageIn[0] = base.Stdin
	stageOut[n-1] = base.Stdout

	for i := 0; i < n-1; i++ {
		pr, pw, err := os.Pipe()
		if err != nil {
			for j := 0; j < i; j++ {
				writeEnd[j].Close()
				readEnd[j+1].Close()
			}
			return Result{}, fmt.Errorf("failed to create pipe: %w", err)
		}
		writeEnd[i] = pw
		readEnd[i+1] = pr
		stageOut[i] = pw
		stageIn[i+1] = pr
	}

	statuses := make([]int, n)
	eg, egCtx := errgroup.WithContext(ctx)

	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			err := runStage(egCtx, p.Stages[i], bctx, stageIn[i], stageOut[i], base.Stderr, pathEnv, &statuses[i])
			if writeEnd[i] != nil {
				writeEnd[i].Close()
			}
			if readEnd[i] != nil {
				readEnd[i].Close()
			}
			return err
		})
	}

	if err := eg.Wait(); err != nil {
		return Result{}, err
	}
	return Result{Status: statuses[n-1]}, nil
}

// runStage applies one stage's redirections on top of its pipe-supplied
// streams and dispatches it to a builtin or an external program.
func runStage(ctx context.Context, stage parser.Stage, bctx *builtin.Context, stdin io.Reader, stdout, stderr io.Writer, pathEnv string, status *int) error {
	files, err := redirect.Open(stage.Redirs)
	if err != nil {
		fmt.Fprintln(stderr, err)
		*status = 1
		return nil
	}
	defer files.Close()

	if files.Stdin != nil {
		stdin = files.Stdin
	}
	if files.Stdout != nil {
		stdout = files.Stdout
	}
	if files.Stderr != nil {
		stderr = files.Stderr
	}

	name := stage.Argv[0]

	if cmd, ok := builtin.Get(name); ok {
		env := &builtin.ExecutionEnv{Stdin: stdin, Stdout: stdout, Stderr: stderr}
		*status = cmd.Run(bctx, env, stage.Argv[1:])
		return nil
	}

	path, ok := execx.Lookup(pathEnv, name)
	if !ok {
		fmt.Fprintf(stderr, "%s: not found\n", name)
		*status = 127
		return nil
	}
	*status = execx.Run(ctx, path, stage.Argv, execx.IO{Stdin: stdin, Stdout: stdout, Stderr: stderr})
	return nil
}
