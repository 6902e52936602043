// Package history implements the shell's history engine: a capped,
// insertion-ordered buffer of accepted command lines, !-event expansion,
// and load/persist against a history file (or an arbitrary path given to
// history -r/-w/-a).
package history

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
)

// DefaultCapacity is the fixed history limit used when none is configured.
const DefaultCapacity = 1000

// Buffer is the in-memory history buffer plus its session checkpoint: the
// index marking the boundary between entries already persisted and those
// added in the current session.
type Buffer struct {
	entries    []string
	capacity   int
	checkpoint int
	filePath   string
}

// New returns an empty Buffer capped at capacity, associated with
// filePath for Clear and for the REPL's clean-exit persistence.
func New(capacity int, filePath string) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{capacity: capacity, filePath: filePath}
}

// Load reads the history file at startup, truncates from the front to
// capacity, and sets the session checkpoint to the resulting size. A
// missing file is not an error — the buffer just starts empty.
func (b *Buffer) Load() error {
	lines, err := readLines(b.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	b.entries = lines
	b.truncateFront()
	b.checkpoint = len(b.entries)
	return nil
}

// Entries returns the buffer's contents in insertion order.
func (b *Buffer) Entries() []string {
	out := make([]string, len(b.entries))
	copy(out, b.entries)
	return out
}

// Push records one accepted line, dropping from the front once the
// buffer exceeds capacity.
func (b *Buffer) Push(line string) {
	b.entries = append(b.entries, line)
	b.truncateFront()
}

func (b *Buffer) truncateFront() {
	if len(b.entries) <= b.capacity {
		return
	}
	drop := len(b.entries) - b.capacity
	b.entries = b.entries[drop:]
	b.checkpoint -= drop
	if b.checkpoint < 0 {
		b.checkpoint = 0
	}
}

// Clear empties the buffer and truncates the persistence file.
func (b *Buffer) Clear() error {
	b.entries = nil
	b.checkpoint = 0
	if b.filePath == "" {
		return nil
	}
	return renameio.WriteFile(b.filePath, nil, 0644)
}

// ReadFile reads path and appends its lines in-memory ("history -r FILE").
func (b *Buffer) ReadFile(path string) error {
	lines, err := readLines(path)
	if err != nil {
		return err
	}
	for _, l := range lines {
		b.Push(l)
	}
	return nil
}

// WriteFile overwrites path with the entire buffer ("history -w FILE")
// and advances the session checkpoint, written atomically via renameio
// so a crash mid-write never leaves a truncated history file.
func (b *Buffer) WriteFile(path string) error {
	if err := writeLines(path, b.entries); err != nil {
		return err
	}
	b.checkpoint = len(b.entries)
	return nil
}

// AppendFile appends entries recorded since the session checkpoint to
// path ("history -a FILE") and advances the checkpoint.
func (b *Buffer) AppendFile(path string) error {
	pending := b.entries[b.checkpoint:]
	if len(pending) == 0 {
		b.checkpoint = len(b.entries)
		return nil
	}
	if err := appendLines(path, pending); err != nil {
		return err
	}
	b.checkpoint = len(b.entries)
	return nil
}

// PersistOnExit appends entries recorded since the checkpoint to the
// configured history file on a clean exit. Append, not overwrite, is the
// mode here, matching the common-case shell behavior readline's own
// history file already assumes.
func (b *Buffer) PersistOnExit() error {
	if b.filePath == "" {
		return nil
	}
	return b.AppendFile(b.filePath)
}

// ErrEventNotFound is returned by ExpandEvent for any out-of-range or
// unparseable history event.
var ErrEventNotFound = errors.New("history: event not found")

// ExpandEvent implements "!"-event substitution ("!!", "!N", "!-N"). It
// is only meant to be invoked by the caller when the raw line starts
// with '!' and contains no space.
func ExpandEvent(entries []string, line string) (string, error) {
	switch {
	case line == "!!":
		if len(entries) == 0 {
			return "", ErrEventNotFound
		}
		return entries[len(entries)-1], nil

	case strings.HasPrefix(line, "!-"):
		n, err := strconv.Atoi(line[2:])
		if err != nil || n <= 0 || n > len(entries) {
			return "", ErrEventNotFound
		}
		return entries[len(entries)-n], nil

	case strings.HasPrefix(line, "!"):
		n, err := strconv.Atoi(line[1:])
		if err != nil || n <= 0 || n > len(entries) {
			return "", ErrEventNotFound
		}
		return entries[n-1], nil

	default:
		return line, nil
	}
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

func writeLines(path string, lines []string) error {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return renameio.WriteFile(path, []byte(sb.String()), 0644)
}

func appendLines(path string, lines []string) error {
	existing, err := readLines(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return writeLines(path, append(existing, lines...))
}
