package builtin

import (
	"fmt"
	"strings"
)

func init() {
	Register(&Command{Name: "echo", Run: echo})
}

// echo writes its arguments space-joined followed by a newline. There is
// no "-n" or other option.
func echo(ctx *Context, env *ExecutionEnv, args []string) int {
	fmt.Fprintln(env.Stdout, strings.Join(args, " "))
	return 0
}
