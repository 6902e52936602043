package builtin

import (
	"fmt"
	"os"
	"strings"
)

func init() {
	Register(&Command{Name: "cd", Run: cd})
	Register(&Command{Name: "pwd", Run: pwd})
	Register(&Command{Name: "exit", Run: exitCmd})
}

// resolveCDTarget implements "cd"'s target resolution table: no arg
// means HOME, "-" means OLDPWD, a leading "~/" expands HOME. No form
// echoes the resolved path — many shells echo the new directory for
// "cd -"; this one stays silent on success in every case.
func resolveCDTarget(arg string) (target string, err error) {
	switch {
	case arg == "":
		home := os.Getenv("HOME")
		if home == "" {
			return "", fmt.Errorf("cd: HOME not set")
		}
		return home, nil

	case arg == "-":
		oldpwd := os.Getenv("OLDPWD")
		if oldpwd == "" {
			return "", fmt.Errorf("cd: OLDPWD not set")
		}
		return oldpwd, nil

	case arg == "~":
		home := os.Getenv("HOME")
		if home == "" {
			return "", fmt.Errorf("cd: HOME not set")
		}
		return home, nil

	case strings.HasPrefix(arg, "~/"):
		home := os.Getenv("HOME")
		if home == "" {
			return "", fmt.Errorf("cd: HOME not set")
		}
		return home + arg[1:], nil

	default:
		return arg, nil
	}
}

// cd changes the process working directory and updates OLDPWD/PWD. This
// only has the intended effect on the REPL's single-stage fast path:
// inside a pipeline, cd runs as its own goroutine and os.Chdir there
// does not affect the parent shell — matching standard shell semantics
// intentionally.
func cd(ctx *Context, env *ExecutionEnv, args []string) int {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}

	target, err := resolveCDTarget(arg)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return 1
	}

	prev, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(env.Stderr, "cd: %v\n", err)
		return 1
	}

	if err := os.Chdir(target); err != nil {
		fmt.Fprintf(env.Stderr, "cd: %s: No such file or directory\n", target)
		return 1
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(env.Stderr, "cd: %v\n", err)
		return 1
	}

	os.Setenv("OLDPWD", prev)
	os.Setenv("PWD", cwd)
	return 0
}

func pwd(ctx *Context, env *ExecutionEnv, args []string) int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(env.Stderr, "pwd: %v\n", err)
		return 1
	}
	fmt.Fprintln(env.Stdout, cwd)
	return 0
}

// exitCmd terminates the REPL via ctx.RequestExit. In a pipeline stage it
// returns status 0 from the child instead — achieved here because the
// REPL hands the pipeline driver a Context whose RequestExit is a no-op.
func exitCmd(ctx *Context, env *ExecutionEnv, args []string) int {
	ctx.RequestExit()
	return 0
}
