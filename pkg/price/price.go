// Package price converts the rupee display strings used across listings
// ("₹1.5 Cr", "₹75 L", "₹18,000/month") to whole-rupee amounts and back.
package price

import (
	"math"
	"strconv"
	"strings"
)

const (
	Crore = 10_000_000
	Lakh  = 100_000
)

// Parse returns the rupee amount of a display price. The second result is
// false when the string holds no leading number or the amount does not fit
// in an int64; callers must treat such prices as unknown rather than as zero.
//
// Monthly rents are returned as the literal monthly figure, so rent and sale
// amounts live on different scales.
func Parse(display string) (int64, bool) {
	cleaned := strings.NewReplacer("₹", "", ",", "").Replace(display)
	cleaned = strings.TrimSpace(cleaned)

	switch {
	case strings.Contains(cleaned, "Cr"):
		return scaled(cleaned, Crore)
	case strings.Contains(cleaned, "L"): // also covers "Lakh"
		return scaled(cleaned, Lakh)
	case strings.Contains(cleaned, "month"):
		return leadingInt(cleaned)
	default:
		return leadingInt(cleaned)
	}
}

// ParseBound coerces a user supplied min/max price. Every non-digit character
// is dropped, so "10,00,000" and "₹1000000" both give 1000000. An input with
// no digits yields false and the bound should be ignored.
func ParseBound(s string) (int64, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Format renders an amount using the listing display convention. Amounts of
// a crore or more are shown in Cr, a lakh or more in L, everything else as a
// grouped rupee figure. Cr and L values keep at most two decimals.
func Format(amount int64, monthly bool) string {
	if monthly {
		return "₹" + groupIndian(amount) + "/month"
	}
	switch {
	case amount >= Crore:
		return "₹" + decimal(float64(amount)/Crore) + " Cr"
	case amount >= Lakh:
		return "₹" + decimal(float64(amount)/Lakh) + " L"
	default:
		return "₹" + groupIndian(amount)
	}
}

func scaled(s string, multiplier float64) (int64, bool) {
	f, ok := leadingFloat(s)
	if !ok {
		return 0, false
	}
	v := math.Round(f * multiplier)
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v >= math.MaxInt64 {
		return 0, false
	}
	return int64(v), true
}

// leadingFloat mirrors parseFloat: it reads the longest numeric prefix and
// ignores whatever follows.
func leadingFloat(s string) (float64, bool) {
	end := 0
	seenDot := false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		break
	}
	prefix := strings.TrimSuffix(s[:end], ".")
	if prefix == "" || prefix == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func leadingInt(s string) (int64, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func decimal(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

// groupIndian formats n with lakh-style separators: 1234567 -> 12,34,567.
func groupIndian(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	head, tail := s[:len(s)-3], s[len(s)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)

	out := strings.Join(groups, ",") + "," + tail
	if neg {
		return "-" + out
	}
	return out
}
