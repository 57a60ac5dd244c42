package engine

import (
	"math/big"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		value    string
		decimals uint8
		want     string
	}{
		{"1", 18, "1000000000000000000"},
		{"0.5", 18, "500000000000000000"},
		{"150", 6, "150000000"},
		{"", 18, "0"},
		{"0", 18, "0"},
		{"1.000000000000000000123", 18, "1000000000000000000"}, // truncates sub-unit dust
	}

	for _, tc := range cases {
		got, err := ParseAmount(tc.value, tc.decimals)
		if err != nil {
			t.Fatalf("ParseAmount(%q): unexpected error: %v", tc.value, err)
		}
		want, _ := new(big.Int).SetString(tc.want, 10)
		if got.Cmp(want) != 0 {
			t.Fatalf("ParseAmount(%q, %d) = %s, want %s", tc.value, tc.decimals, got, want)
		}
	}
}

func TestParseAmountInvalid(t *testing.T) {
	if _, err := ParseAmount("abc", 18); err == nil {
		t.Fatal("expected error for non-numeric amount")
	}
	if _, err := ParseAmount("-1", 18); err == nil {
		t.Fatal("expected error for negative amount")
	}
}

func TestFormatAmount(t *testing.T) {
	v, _ := new(big.Int).SetString("1500000000000000000", 10)
	if got := FormatAmount(v, 18); got != "1.5" {
		t.Fatalf("FormatAmount = %q, want 1.5", got)
	}
	if got := FormatAmount(nil, 18); got != "0" {
		t.Fatalf("FormatAmount(nil) = %q, want 0", got)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	values := []string{"0.000000000000000001", "123456.789", "1"}
	for _, value := range values {
		parsed, err := ParseAmount(value, 18)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := FormatAmount(parsed, 18); got != value {
			t.Fatalf("round trip %q -> %q", value, got)
		}
	}
}
