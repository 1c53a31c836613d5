package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRe      = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	scaleSuffixRe = regexp.MustCompile(`(?i)(-?\d+(?:\.\d+)?)\s*([km])\b`)
	scaleWordRe   = regexp.MustCompile(`(?i)(-?\d+(?:\.\d+)?)\s*(million|thousand)\b`)
	moneyMarkerRe = regexp.MustCompile(`(?i)(?:C\$|\$|CAD|\b\d+(?:\.\d+)?\s*[km]\b|\b\d+(?:\.\d+)?\s*(?:million|thousand)\b)`)
)

// parseNumber extracts the first decimal number from a text fragment.
// Currency markers, thousands separators and non-breaking spaces are stripped
// before matching. Returns nil when no number is found or the result is not finite.
func parseNumber(s string) *float64 {
	if s == "" {
		return nil
	}
	r := strings.NewReplacer("\u00a0", " ", ",", "", "CAD", "", "C$", "", "$", "")
	cleaned := strings.TrimSpace(r.Replace(s))

	m := numberRe.FindString(cleaned)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// parseMoney parses a monetary amount, honouring trailing scale suffixes:
// "1.2M" and "1.2 million" scale by 1e6, "450k" and "450 thousand" by 1e3.
// Without a suffix it behaves like parseNumber.
func parseMoney(s string) *float64 {
	if s == "" {
		return nil
	}
	t := strings.ReplaceAll(s, "\u00a0", " ")
	t = strings.ReplaceAll(t, ",", "")

	if m := scaleSuffixRe.FindStringSubmatch(t); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			if strings.EqualFold(m[2], "m") {
				v *= 1_000_000
			} else {
				v *= 1_000
			}
			return &v
		}
	}
	if m := scaleWordRe.FindStringSubmatch(t); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			if strings.EqualFold(m[2], "million") {
				v *= 1_000_000
			} else {
				v *= 1_000
			}
			return &v
		}
	}
	return parseNumber(t)
}

// moneyPresent reports whether the fragment visibly reads as currency: a $/C$/CAD
// marker or a K/M/million/thousand scale suffix. Bare numbers near a money label
// are rejected so that unrelated integers are not misread as prices.
func moneyPresent(s string) bool {
	if s == "" {
		return false
	}
	return moneyMarkerRe.MatchString(s)
}

// inRange checks a plausibility window. max <= 0 means unbounded above.
func inRange(v, min, max float64) bool {
	if v < min {
		return false
	}
	if max > 0 && v > max {
		return false
	}
	return true
}
