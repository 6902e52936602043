// Package shell is the REPL loop: it reads a line, expands history
// events, lexes/parses it into a Pipeline, and dispatches that Pipeline
// either to the single-stage in-process fast path or to the pipeline
// driver, formatting any error to stderr.
package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/corvus-sh/shell/internal/builtin"
	"github.com/corvus-sh/shell/internal/config"
	"github.com/corvus-sh/shell/internal/execx"
	"github.com/corvus-sh/shell/internal/fdguard"
	"github.com/corvus-sh/shell/internal/history"
	"github.com/corvus-sh/shell/internal/parser"
	"github.com/corvus-sh/shell/internal/pipeline"
	"github.com/corvus-sh/shell/internal/redirect"
)

// Shell is the top-level REPL: it owns the history buffer, the
// PATH-executable cache, and the readline instance, and wires them
// together with the lexer/parser/redirect/fdguard/builtin/pipeline
// packages on every line.
type Shell struct {
	cfg           *config.Config
	rl            *readline.Instance
	hist          *history.Buffer
	cache         *execx.Cache
	bctx          *builtin.Context
	exitRequested bool
}

// New builds a Shell from cfg, loading history from cfg.HistoryFile if it
// exists.
func New(cfg *config.Config) (*Shell, error) {
	hist := history.New(cfg.HistoryCapacity, cfg.HistoryFile)
	if err := hist.Load(); err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	cache := execx.NewCache()

	sh := &Shell{cfg: cfg, hist: hist, cache: cache}
	sh.bctx = &builtin.Context{History: hist, RequestExit: sh.requestExit}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cfg.Prompt,
		HistoryFile:       "", // history is owned by internal/history, not readline
		HistorySearchFold: true,
		AutoComplete:      NewCompleter(cache),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
	})
	if err != nil {
		return nil, err
	}
	sh.rl = rl

	// Seed readline's own in-memory history mirror so the up-arrow line
	// editor can recall entries loaded from a prior session, not just
	// ones typed in this one.
	for _, entry := range hist.Entries() {
		sh.rl.SaveHistory(entry)
	}

	return sh, nil
}

func (sh *Shell) requestExit() { sh.exitRequested = true }

// Run drives the REPL until EOF, a clean "exit", or a fatal readline
// error, then persists history on the way out.
func (sh *Shell) Run(ctx context.Context) {
	defer sh.rl.Close()

	for {
		line, err := sh.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			break // io.EOF (Ctrl-D) or another terminal condition
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Recording happens pre-expansion — the raw line is what gets
		// stored in history, even when it is itself a "!"-event
		// reference. expandHistory only changes what gets executed.
		raw := line
		execLine, err := sh.expandHistory(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		if !isHistoryClear(execLine) {
			sh.hist.Push(raw)
		}

		status := sh.execute(ctx, execLine)
		_ = status // exit status is not surfaced anywhere in an interactive loop

		if sh.exitRequested {
			break
		}
	}

	if err := sh.hist.PersistOnExit(); err != nil {
		fmt.Fprintf(os.Stderr, "corvus: failed to persist history: %v\n", err)
	}
}

// expandHistory applies !-event expansion when line is entirely a single
// event reference ("!!", "!N", or "!-N"); a normal command line passes
// through unchanged.
func (sh *Shell) expandHistory(line string) (string, error) {
	if !strings.HasPrefix(line, "!") || strings.ContainsAny(line, " \t") {
		return line, nil
	}
	expanded, err := history.ExpandEvent(sh.hist.Entries(), line)
	if err != nil {
		return "", err
	}
	fmt.Println(expanded)
	return expanded, nil
}

// isHistoryClear reports whether line invokes "history -c"/"--clear" — the
// one command that must not be recorded even though it is a normal,
// non-blank accepted line.
func isHistoryClear(line string) bool {
	p, err := parser.Parse(line)
	if err != nil || p == nil || len(p.Stages) != 1 {
		return false
	}
	stage := p.Stages[0]
	if stage.Argv[0] != "history" {
		return false
	}
	for _, arg := range stage.Argv[1:] {
		if arg == "-c" || arg == "--clear" {
			return true
		}
	}
	return false
}

// execute parses line and dispatches it, returning the exit status.
func (sh *Shell) execute(ctx context.Context, line string) int {
	p, err := parser.Parse(line)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if p == nil {
		return 0
	}

	if len(p.Stages) == 1 && builtin.IsBuiltin(p.Stages[0].Argv[0]) {
		status := sh.runSingleBuiltin(p.Stages[0])
		return status
	}

	// A builtin running as one stage of a multi-stage pipeline gets a
	// Context whose RequestExit is a no-op: "exit" inside a pipeline must
	// not tear down the REPL that launched it, matching what a real forked
	// child's _exit would do to its own process only.
	pipelineCtx := &builtin.Context{History: sh.bctx.History, RequestExit: func() {}}

	pathEnv := os.Getenv("PATH")
	io2 := execx.IO{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
	result, err := pipeline.Run(ctx, p, pipelineCtx, io2, pathEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "corvus: %v\n", err)
		return 1
	}
	return result.Status
}

// runSingleBuiltin is the REPL's single-stage fast path: a lone builtin
// runs in this process, with its redirections applied to the real fds
// 0/1/2 via internal/fdguard and restored afterward.
func (sh *Shell) runSingleBuiltin(stage parser.Stage) int {
	cmd, _ := builtin.Get(stage.Argv[0])

	files, err := redirect.Open(stage.Redirs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	snap, err := fdguard.Save()
	if err != nil {
		files.Close()
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := fdguard.Apply(files); err != nil {
		files.Close()
		snap.Restore()
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	// fdguard.Apply already closed whichever of files.{Stdin,Stdout,Stderr}
	// it dup2'd onto 0/1/2; closing those *os.File values again only
	// returns an error and leaves the fd numbers alone, so Close here
	// releases just the handles a later redirection overrode.
	files.Close()

	env := &builtin.ExecutionEnv{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
	status := cmd.Run(sh.bctx, env, stage.Argv[1:])

	if err := snap.Restore(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return status
}
