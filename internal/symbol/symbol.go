package symbol

import (
	"errors"
	"fmt"
	"strings"
)

// Exchange is the lowercase exchange prefix of a canonical symbol.
type Exchange string

const (
	Shanghai Exchange = "sh"
	Shenzhen Exchange = "sz"
)

// ErrInvalidSymbol is matched by every InvalidSymbolError.
var ErrInvalidSymbol = errors.New("invalid symbol")

// InvalidSymbolError reports user input that does not reduce to a canonical symbol.
type InvalidSymbolError struct {
	Input  string
	Reason string
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid symbol %q: %s", e.Input, e.Reason)
}

func (e *InvalidSymbolError) Is(target error) bool { return target == ErrInvalidSymbol }

// Symbol identifies a tradable instrument as <exchange>.<6-digit code>.
type Symbol struct {
	Exchange Exchange
	Code     string
}

func (s Symbol) String() string {
	return string(s.Exchange) + "." + s.Code
}

// IsZero reports whether s is the zero Symbol.
func (s Symbol) IsZero() bool { return s.Exchange == "" && s.Code == "" }

// Resolve normalizes a user supplied ticker into its canonical form.
// It accepts "sh.600000", "SZ.000001" or a bare 6-digit code, where a leading
// 0 or 3 maps to Shenzhen and a leading 6 maps to Shanghai.
func Resolve(raw string) (Symbol, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Symbol{}, &InvalidSymbolError{Input: raw, Reason: "empty"}
	}

	if prefix, code, ok := strings.Cut(s, "."); ok {
		ex := Exchange(strings.ToLower(prefix))
		if ex != Shanghai && ex != Shenzhen {
			return Symbol{}, &InvalidSymbolError{Input: raw, Reason: fmt.Sprintf("unknown exchange prefix %q", prefix)}
		}
		if !isCode(code) {
			return Symbol{}, &InvalidSymbolError{Input: raw, Reason: "code must be exactly 6 digits"}
		}
		return Symbol{Exchange: ex, Code: code}, nil
	}

	if !isCode(s) {
		return Symbol{}, &InvalidSymbolError{Input: raw, Reason: "code must be exactly 6 digits"}
	}
	switch s[0] {
	case '0', '3':
		return Symbol{Exchange: Shenzhen, Code: s}, nil
	case '6':
		return Symbol{Exchange: Shanghai, Code: s}, nil
	default:
		return Symbol{}, &InvalidSymbolError{Input: raw, Reason: fmt.Sprintf("cannot infer exchange from leading digit %q", s[0])}
	}
}

// MustResolve is like Resolve but panics on error. Intended for constants and tests.
func MustResolve(raw string) Symbol {
	s, err := Resolve(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// ResolveAll resolves every input, stopping at the first failure.
func ResolveAll(raws []string) ([]Symbol, error) {
	out := make([]Symbol, 0, len(raws))
	for _, r := range raws {
		s, err := Resolve(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func isCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
