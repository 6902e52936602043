package builtin

import (
	"fmt"
	"os"

	"github.com/corvus-sh/shell/internal/execx"
)

func init() {
	Register(&Command{Name: "type", Run: typeCmd})
}

// typeCmd implements "type": builtin membership is checked before any
// PATH search, so a builtin name always reports "shell builtin" even
// when a same-named executable also exists on PATH.
func typeCmd(ctx *Context, env *ExecutionEnv, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(env.Stderr, "type: missing operand")
		return 1
	}
	name := args[0]

	if IsBuiltin(name) {
		fmt.Fprintf(env.Stdout, "%s is a shell builtin\n", name)
		return 0
	}

	if path, ok := execx.Lookup(os.Getenv("PATH"), name); ok {
		fmt.Fprintf(env.Stdout, "%s is %s\n", name, path)
		return 0
	}

	fmt.Fprintf(env.Stdout, "%s: not found\n", name)
	return 1
}
