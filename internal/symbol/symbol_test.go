package symbol

import (
	"errors"
	"testing"
)

func TestResolve_BareCodes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"000001", "sz.000001"},
		{"000002", "sz.000002"},
		{"300750", "sz.300750"},
		{"600000", "sh.600000"},
		{"601398", "sh.601398"},
		{"  688981 ", "sh.688981"},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.in)
		if err != nil {
			t.Errorf("Resolve(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("Resolve(%q): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestResolve_EveryLeadingDigit(t *testing.T) {
	for d := byte('0'); d <= '9'; d++ {
		code := string([]byte{d, '0', '0', '0', '0', '1'})
		got, err := Resolve(code)
		switch d {
		case '0', '3':
			if err != nil || got.Exchange != Shenzhen {
				t.Errorf("%s: expected Shenzhen, got %v (err %v)", code, got, err)
			}
		case '6':
			if err != nil || got.Exchange != Shanghai {
				t.Errorf("%s: expected Shanghai, got %v (err %v)", code, got, err)
			}
		default:
			if !errors.Is(err, ErrInvalidSymbol) {
				t.Errorf("%s: expected ErrInvalidSymbol, got %v", code, err)
			}
		}
	}
}

func TestResolve_Qualified(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sh.600000", "sh.600000"},
		{"sz.000002", "sz.000002"},
		{"SZ.000001", "sz.000001"},
		{" sh.601398\t", "sh.601398"},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.in)
		if err != nil {
			t.Errorf("Resolve(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("Resolve(%q): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestResolve_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"12345",
		"1234567",
		"abcdef",
		"900001",
		"bj.430047",
		"sh.60000",
		"sh.60000a",
		"sh600000",
		".600000",
	}
	for _, in := range inputs {
		_, err := Resolve(in)
		if !errors.Is(err, ErrInvalidSymbol) {
			t.Errorf("Resolve(%q): expected ErrInvalidSymbol, got %v", in, err)
		}
		var ise *InvalidSymbolError
		if !errors.As(err, &ise) {
			t.Errorf("Resolve(%q): expected *InvalidSymbolError, got %T", in, err)
		} else if ise.Input != in {
			t.Errorf("Resolve(%q): error input = %q", in, ise.Input)
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	for _, in := range []string{"000001", "sh.600000", "300750", "SZ.000002", "601318"} {
		first, err := Resolve(in)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", in, err)
		}
		second, err := Resolve(first.String())
		if err != nil {
			t.Fatalf("Resolve(%q): %v", first, err)
		}
		if first != second {
			t.Errorf("not idempotent: %v then %v", first, second)
		}
	}
}

func TestResolveAll(t *testing.T) {
	got, err := ResolveAll([]string{"000001", "sh.600000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].String() != "sz.000001" || got[1].String() != "sh.600000" {
		t.Errorf("unexpected result: %v", got)
	}
	if _, err := ResolveAll([]string{"000001", "nope"}); !errors.Is(err, ErrInvalidSymbol) {
		t.Errorf("expected ErrInvalidSymbol, got %v", err)
	}
}

func TestLinks(t *testing.T) {
	links := MustResolve("sz.000001").Links()
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(links))
	}
	if links[0].URL != "https://gushitong.baidu.com/stock/ab-000001" {
		t.Errorf("unexpected baidu link: %s", links[0].URL)
	}
	if links[1].URL != "https://quote.eastmoney.com/concept/SZ000001.html?from=data" {
		t.Errorf("unexpected eastmoney link: %s", links[1].URL)
	}
}
