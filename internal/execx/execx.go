// Package execx resolves and runs external (non-builtin) programs, and
// maintains a PATH-keyed executable cache used by tab completion. The
// "type" builtin's fallback lookup uses Lookup, not the cache.
package execx

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// IO bundles the three standard streams a stage runs with.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Lookup searches the directories of path (a PATH-style colon separated
// list) in order and returns the first "<dir>/<name>" that exists and is
// executable. Both "type" and the external executor rely on this same
// resolution.
func Lookup(path, name string) (string, bool) {
	if strings.Contains(name, "/") {
		if isExecutable(name) {
			return name, true
		}
		return "", false
	}
	for _, dir := range strings.Split(path, ":") {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0111 != 0
}

// Run execs argv[0] (already resolved not to be a builtin) with the
// remaining words as arguments, wiring io directly to the child's
// standard streams. Exec failure writes "<name>: not found" to stderr
// and reports status 127; a child terminated by signal reports 1, the
// same status a forked child killed by a signal would surface to its
// parent's wait(); os/exec.Cmd stands in for literal fork+execvp.
func Run(ctx context.Context, path string, argv []string, io2 IO) int {
	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Args = argv
	cmd.Stdin = io2.Stdin
	cmd.Stdout = io2.Stdout
	cmd.Stderr = io2.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			if exitErr.ProcessState.Exited() {
				return exitErr.ExitCode()
			}
			// Terminated by signal: ExitCode() would report -1 here.
			return 1
		}
		// Lookup already confirmed path is executable, but it can still
		// vanish or lose its permission bit between Lookup and Run; treat
		// that race exactly like a failed resolution.
		fmt.Fprintf(io2.Stderr, "%s: not found\n", argv[0])
		return 127
	}
	return 0
}

// Cache is the executable cache: a mapping from program base-name to
// "exists and is executable under PATH", keyed by the verbatim PATH
// value that produced it and invalidated whenever that value changes.
type Cache struct {
	mu      sync.Mutex
	path    string
	entries map[string]bool
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]bool)}
}

// Names returns the sorted, de-duplicated set of executable base-names
// visible on path, rebuilding the cache if path differs from the one
// that produced the last build.
func (c *Cache) Names(path string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if path != c.path || c.entries == nil {
		c.rebuild(path)
	}
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Cache) rebuild(path string) {
	c.path = path
	c.entries = make(map[string]bool)
	for _, dir := range strings.Split(path, ":") {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil || info.Mode()&0111 == 0 {
				continue
			}
			c.entries[e.Name()] = true
		}
	}
}
