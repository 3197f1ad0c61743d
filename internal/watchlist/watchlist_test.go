package watchlist

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"StockLens/internal/symbol"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stocks.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParse_OrderAndComments(t *testing.T) {
	path := writeFile(t, "sh.600000 # SPDB\n\n# a comment line\nsz.000002#Vanke\n   601398   \n300750 # CATL # extra\n")
	wl, err := Parse(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct {
		sym     string
		comment string
		line    int
	}{
		{"sh.600000", "SPDB", 1},
		{"sz.000002", "Vanke", 4},
		{"sh.601398", "", 5},
		{"sz.300750", "CATL # extra", 6},
	}
	if len(wl.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(wl.Entries))
	}
	for i, w := range want {
		e := wl.Entries[i]
		if e.Symbol.String() != w.sym || e.Comment != w.comment || e.Line != w.line {
			t.Errorf("entry %d: expected %s/%q/%d, got %s/%q/%d", i, w.sym, w.comment, w.line, e.Symbol, e.Comment, e.Line)
		}
	}
	if len(wl.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", wl.Warnings)
	}
	if wl.Path != path {
		t.Errorf("expected path %s, got %s", path, wl.Path)
	}
}

func TestParse_InvalidLinesBecomeWarnings(t *testing.T) {
	path := writeFile(t, "sh.600000\nnot-a-code # junk\nsz.000002\n900001\n")
	wl, err := Parse(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := wl.Symbols(); len(got) != 2 || got[0] != symbol.MustResolve("sh.600000") || got[1] != symbol.MustResolve("sz.000002") {
		t.Errorf("unexpected symbols: %v", got)
	}
	if len(wl.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(wl.Warnings))
	}
	if wl.Warnings[0].Line != 2 || wl.Warnings[0].Text != "not-a-code" {
		t.Errorf("unexpected first warning: %+v", wl.Warnings[0])
	}
	if !errors.Is(wl.Warnings[1].Err, symbol.ErrInvalidSymbol) || wl.Warnings[1].Line != 4 {
		t.Errorf("unexpected second warning: %+v", wl.Warnings[1])
	}
	if !strings.Contains(wl.Warnings[0].String(), "line 2") {
		t.Errorf("warning string should name the line: %s", wl.Warnings[0])
	}
}

func TestParse_OnlyBlankAndComments(t *testing.T) {
	path := writeFile(t, "\n# one\n   \n#two\n\t\n")
	wl, err := Parse(path)
	if !errors.Is(err, ErrEmptyWatchlist) {
		t.Fatalf("expected ErrEmptyWatchlist, got %v", err)
	}
	if wl == nil || len(wl.Entries) != 0 {
		t.Errorf("expected empty partial result, got %+v", wl)
	}
}

func TestParse_AllInvalid(t *testing.T) {
	path := writeFile(t, "abc\n123\n")
	wl, err := Parse(path)
	if !errors.Is(err, ErrEmptyWatchlist) {
		t.Fatalf("expected ErrEmptyWatchlist, got %v", err)
	}
	if len(wl.Warnings) != 2 {
		t.Errorf("expected warnings to be kept, got %d", len(wl.Warnings))
	}
}

func TestParse_Missing(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "nope.txt"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestRead_ByteOrderMark(t *testing.T) {
	wl, err := Read(strings.NewReader("\ufeffsh.600000\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wl.Entries[0].Symbol.String() != "sh.600000" {
		t.Errorf("unexpected entry %v", wl.Entries[0].Symbol)
	}
}

func TestEnsureDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	created, err := EnsureDefault(path)
	if err != nil || !created {
		t.Fatalf("expected file to be created, got %v (%v)", created, err)
	}
	wl, err := Parse(path)
	if err != nil {
		t.Fatalf("parse sample: %v", err)
	}
	if len(wl.Entries) != 3 {
		t.Errorf("expected 3 sample entries, got %d", len(wl.Entries))
	}

	created, err = EnsureDefault(path)
	if err != nil || created {
		t.Errorf("expected existing file to be left alone, got %v (%v)", created, err)
	}
}
