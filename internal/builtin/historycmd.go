package builtin

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"
)

func init() {
	Register(&Command{Name: "history", Run: history})
}

// history implements the five history modes (list, -c, -r, -w, -a),
// parsing its options with pflag the same way a conventional "ls"
// builtin parses its own flags.
func history(ctx *Context, env *ExecutionEnv, args []string) int {
	fs := pflag.NewFlagSet("history", pflag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	clear := fs.BoolP("clear", "c", false, "clear the history buffer and persistence file")
	readFile := fs.StringP("read", "r", "", "read FILE and append its lines in-memory")
	writeFile := fs.StringP("write", "w", "", "overwrite FILE with the entire buffer")
	appendFile := fs.StringP("append", "a", "", "append entries since the session checkpoint to FILE")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	switch {
	case *clear:
		if err := ctx.History.Clear(); err != nil {
			fmt.Fprintf(env.Stderr, "history: %v\n", err)
			return 1
		}
		return 0

	case *readFile != "":
		if err := ctx.History.ReadFile(*readFile); err != nil {
			fmt.Fprintf(env.Stderr, "history: failed to append/write file: %v\n", err)
			return 1
		}
		return 0

	case *writeFile != "":
		if err := ctx.History.WriteFile(*writeFile); err != nil {
			fmt.Fprintf(env.Stderr, "history: failed to append/write file: %v\n", err)
			return 1
		}
		return 0

	case *appendFile != "":
		if err := ctx.History.AppendFile(*appendFile); err != nil {
			fmt.Fprintf(env.Stderr, "history: failed to append/write file: %v\n", err)
			return 1
		}
		return 0
	}

	entries := ctx.History.Entries()
	start := 0
	if rest := fs.Args(); len(rest) > 0 {
		n, err := strconv.Atoi(rest[0])
		if err == nil && n >= 0 && n < len(entries) {
			start = len(entries) - n
		}
	}

	for i := start; i < len(entries); i++ {
		fmt.Fprintf(env.Stdout, "%5d  %s\n", i+1, entries[i])
	}
	return 0
}
