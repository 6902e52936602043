package shell

import (
	"os"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/corvus-sh/shell/internal/builtin"
	"github.com/corvus-sh/shell/internal/execx"
)

// Completer offers command-name completion at the start of the line —
// the union of builtin names and PATH-resolved executable names. It
// does not complete filenames or arguments.
type Completer struct {
	cache *execx.Cache
}

// NewCompleter builds a Completer backed by cache for PATH lookups.
func NewCompleter(cache *execx.Cache) readline.AutoCompleter {
	return &Completer{cache: cache}
}

// Do implements readline.AutoCompleter.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	prefix := string(line[:pos])
	if strings.ContainsAny(prefix, " \t") {
		return nil, 0
	}

	seen := make(map[string]bool)
	var matches []string
	for _, name := range builtin.Names() {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			matches = append(matches, name)
			seen[name] = true
		}
	}
	for _, name := range c.cache.Names(os.Getenv("PATH")) {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			matches = append(matches, name)
			seen[name] = true
		}
	}
	sort.Strings(matches)

	result := make([][]rune, len(matches))
	for i, m := range matches {
		result[i] = []rune(m[len(prefix):] + " ")
	}
	return result, len(prefix)
}
