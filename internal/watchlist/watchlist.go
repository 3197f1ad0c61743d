// Package watchlist reads the plain-text list of symbols processed by batch runs.
//
// One entry per line, "<symbol> [# comment]". Blank lines and lines starting
// with '#' are ignored.
package watchlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"StockLens/internal/symbol"
)

// DefaultFile is the well-known watchlist used when no path is given.
const DefaultFile = "stocks.txt"

var (
	ErrFileNotFound   = errors.New("watchlist file not found")
	ErrEmptyWatchlist = errors.New("watchlist has no valid entries")
)

// Entry is one resolved watchlist line.
type Entry struct {
	Symbol  symbol.Symbol
	Comment string
	Line    int
}

// Warning records a line whose symbol could not be resolved.
type Warning struct {
	Line int
	Text string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %q: %v", w.Line, w.Text, w.Err)
}

// Watchlist is the parse result: valid entries in file order plus per-line warnings.
type Watchlist struct {
	Path     string
	Entries  []Entry
	Warnings []Warning
}

// Symbols returns the entry symbols in file order.
func (w *Watchlist) Symbols() []symbol.Symbol {
	out := make([]symbol.Symbol, len(w.Entries))
	for i, e := range w.Entries {
		out[i] = e.Symbol
	}
	return out
}

// Parse reads the watchlist at path. When no entry is valid it returns the
// partial result together with ErrEmptyWatchlist so callers can still show warnings.
func Parse(path string) (*Watchlist, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("open watchlist: %w", err)
	}
	defer f.Close()

	wl, err := Read(f)
	if wl != nil {
		wl.Path = path
	}
	if err != nil {
		return wl, fmt.Errorf("%s: %w", path, err)
	}
	return wl, nil
}

// Read parses watchlist lines from r.
func Read(r io.Reader) (*Watchlist, error) {
	wl := &Watchlist{}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := sc.Text()
		if lineNo == 1 {
			raw = strings.TrimPrefix(raw, "\ufeff")
		}
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		text, comment, _ := strings.Cut(line, "#")
		text = strings.TrimSpace(text)
		sym, err := symbol.Resolve(text)
		if err != nil {
			wl.Warnings = append(wl.Warnings, Warning{Line: lineNo, Text: text, Err: err})
			continue
		}
		wl.Entries = append(wl.Entries, Entry{Symbol: sym, Comment: strings.TrimSpace(comment), Line: lineNo})
	}
	if err := sc.Err(); err != nil {
		return wl, fmt.Errorf("read watchlist: %w", err)
	}
	if len(wl.Entries) == 0 {
		return wl, ErrEmptyWatchlist
	}
	return wl, nil
}

const sampleContent = "sh.600000 # Shanghai Pudong Development Bank\n" +
	"sz.000002 # China Vanke A\n" +
	"sh.601398 # Industrial and Commercial Bank of China\n"

// EnsureDefault creates path with sample entries if it does not exist yet.
// It reports whether the file was created.
func EnsureDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat watchlist: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleContent), 0644); err != nil {
		return false, fmt.Errorf("create watchlist: %w", err)
	}
	return true, nil
}
