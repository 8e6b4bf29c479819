package listing

import (
	"strconv"
	"strings"

	"realty_backend/pkg/price"
)

// Matcher is a single filter clause. Match returns an empty string when the
// record passes and a short reason when it is filtered out.
type Matcher interface {
	Match(r *Record) string
}

// Matchers builds the clause list for spec. Clauses whose spec field is
// absent, "all" or "any" are left out entirely.
func Matchers(spec FilterSpec) []Matcher {
	var matchers []Matcher

	if isSet(spec.Purpose, All) {
		matchers = append(matchers, &PurposeMatcher{Purpose: strings.TrimSpace(spec.Purpose)})
	}
	if isSet(spec.AgentName, All) {
		matchers = append(matchers, &AgentMatcher{Name: spec.AgentName})
	}
	if loc := strings.TrimSpace(spec.Location); loc != "" {
		matchers = append(matchers, &LocationMatcher{Query: loc})
	}
	if isSet(spec.PropertyType, All) {
		matchers = append(matchers, &TypeMatcher{Type: spec.PropertyType})
	}
	if m := newBedsMatcher(spec.Beds); m != nil {
		matchers = append(matchers, m)
	}

	pm := &PriceMatcher{}
	if v, ok := price.ParseBound(spec.MinPrice); ok {
		pm.Min = &v
	}
	if v, ok := price.ParseBound(spec.MaxPrice); ok {
		pm.Max = &v
	}
	if pm.Min != nil || pm.Max != nil {
		matchers = append(matchers, pm)
	}

	return matchers
}

// Filter returns the records of catalog that pass every clause of spec, in
// catalog order. The catalog itself is left untouched.
func Filter(catalog []Record, spec FilterSpec) []Record {
	matchers := Matchers(spec)
	filtered := make([]Record, 0, len(catalog))
	for i := range catalog {
		if passes(&catalog[i], matchers) {
			filtered = append(filtered, catalog[i])
		}
	}
	return filtered
}

// Reasons lists why r is rejected by spec; it is empty when r passes.
func Reasons(r Record, spec FilterSpec) []string {
	var reasons []string
	for _, m := range Matchers(spec) {
		if reason := m.Match(&r); reason != "" {
			reasons = append(reasons, reason)
		}
	}
	return reasons
}

func passes(r *Record, matchers []Matcher) bool {
	for _, m := range matchers {
		if m.Match(r) != "" {
			return false
		}
	}
	return true
}

func isSet(value, wildcard string) bool {
	v := strings.TrimSpace(value)
	return v != "" && !strings.EqualFold(v, wildcard)
}

// PurposeMatcher requires an exact purpose ("for-sale" / "for-rent").
type PurposeMatcher struct {
	Purpose string
}

func (m *PurposeMatcher) Match(r *Record) string {
	if r.Purpose != m.Purpose {
		return "wrong_purpose"
	}
	return ""
}

// AgentMatcher compares agent names ignoring case.
type AgentMatcher struct {
	Name string
}

func (m *AgentMatcher) Match(r *Record) string {
	if !strings.EqualFold(strings.TrimSpace(r.AgentName), strings.TrimSpace(m.Name)) {
		return "wrong_agent"
	}
	return ""
}

// LocationMatcher is a case-insensitive substring match on the location.
type LocationMatcher struct {
	Query string
}

func (m *LocationMatcher) Match(r *Record) string {
	if !strings.Contains(strings.ToLower(r.Location), strings.ToLower(m.Query)) {
		return "wrong_location"
	}
	return ""
}

// TypeMatcher compares property types ignoring case.
type TypeMatcher struct {
	Type string
}

func (m *TypeMatcher) Match(r *Record) string {
	if !strings.EqualFold(r.Type, strings.TrimSpace(m.Type)) {
		return "wrong_type"
	}
	return ""
}

// BedsMatcher requires an exact bedroom count, or at least Count when
// AtLeast is set. Only "4+" means at least; any other value is read like
// parseInt, so "3+" asks for exactly 3 and "-1" matches nothing.
type BedsMatcher struct {
	Count   int
	AtLeast bool
}

func newBedsMatcher(beds string) *BedsMatcher {
	beds = strings.TrimSpace(beds)
	if !isSet(beds, AnyBeds) {
		return nil
	}
	if beds == FourPlusBeds {
		return &BedsMatcher{Count: 4, AtLeast: true}
	}
	n, ok := leadingInt(beds)
	if !ok {
		return nil
	}
	return &BedsMatcher{Count: n}
}

func (m *BedsMatcher) Match(r *Record) string {
	if m.AtLeast {
		if r.Beds < m.Count {
			return "too_few_beds"
		}
		return ""
	}
	if r.Beds != m.Count {
		return "wrong_beds"
	}
	return ""
}

// PriceMatcher keeps records whose parsed price lies within [Min, Max].
// A record with an unparseable price never satisfies an active bound.
type PriceMatcher struct {
	Min *int64
	Max *int64
}

func (m *PriceMatcher) Match(r *Record) string {
	amount, ok := price.Parse(r.Price)
	if !ok {
		return "unknown_price"
	}
	if m.Min != nil && amount < *m.Min {
		return "price_too_low"
	}
	if m.Max != nil && amount > *m.Max {
		return "price_too_high"
	}
	return ""
}

// leadingInt behaves like parseInt: "3" and "3BHK" both give 3, "-1" gives -1.
func leadingInt(s string) (int, bool) {
	start := 0
	if start < len(s) && (s[start] == '-' || s[start] == '+') {
		start++
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
