package scraper

import "testing"

func TestParseMoneyScales(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"$1.2M", 1_200_000},
		{"450k", 450_000},
		{"2 million", 2_000_000},
		{"750 thousand", 750_000},
		{"$950,000", 950_000},
		{"C$1,250,000", 1_250_000},
		{"CAD 600000", 600_000},
	}
	for _, c := range cases {
		got := parseMoney(c.in)
		if got == nil {
			t.Fatalf("parseMoney(%q) returned nil", c.in)
		}
		if *got != c.want {
			t.Fatalf("parseMoney(%q) = %v, want %v", c.in, *got, c.want)
		}
	}
}

func TestParseMoneyRejectsEmpty(t *testing.T) {
	if v := parseMoney(""); v != nil {
		t.Fatalf("expected nil for empty string, got %v", *v)
	}
	if v := parseMoney("call for details"); v != nil {
		t.Fatalf("expected nil for non-numeric text, got %v", *v)
	}
}

func TestParseNumberStripsFormatting(t *testing.T) {
	got := parseNumber("approx. 2,400 sq ft")
	if got == nil || *got != 2400 {
		t.Fatalf("expected 2400, got %v", got)
	}
}

func TestMoneyPresent(t *testing.T) {
	positives := []string{"$4,500", "C$1.1M", "1.2m", "450K", "2 million", "CAD 90000"}
	for _, s := range positives {
		if !moneyPresent(s) {
			t.Fatalf("expected money marker in %q", s)
		}
	}
	negatives := []string{"4500", "6 operatories", "2400 sq ft", ""}
	for _, s := range negatives {
		if moneyPresent(s) {
			t.Fatalf("did not expect money marker in %q", s)
		}
	}
}

func TestInRange(t *testing.T) {
	if !inRange(500_000, 100_000, 0) {
		t.Fatal("unbounded max should accept large values")
	}
	if inRange(99_999, 100_000, 0) {
		t.Fatal("below min should be rejected")
	}
	if inRange(13_000, 350, 12_000) {
		t.Fatal("above max should be rejected")
	}
}
