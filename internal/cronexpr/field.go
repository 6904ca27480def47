package cronexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the parsed shape of a single cron field.
//
// The set of implementations is closed: List, Range, Step and Single.
type Value interface {
	// String prints the value back in cron syntax.
	String() string
	isValue()
}

// List is an explicit comma separated set of values ("1,2,3").
// Order and duplicates are kept exactly as written.
type List struct {
	Values []uint64
}

// Range is an inclusive "low-high" pair. Low > High is allowed and kept as written.
type Range struct {
	Low, High uint64
}

// Step is "*/n": every n-th unit starting from the field's zero.
type Step struct {
	Interval uint64
}

// Single is either the wildcard "*" or one number.
type Single struct {
	Wildcard bool
	N        uint64
}

// Wildcard is the "*" value.
var Wildcard = Single{Wildcard: true}

// Number returns a Single holding n.
func Number(n uint64) Single { return Single{N: n} }

func (List) isValue()   {}
func (Range) isValue()  {}
func (Step) isValue()   {}
func (Single) isValue() {}

func (l List) String() string {
	parts := make([]string, len(l.Values))
	for i, v := range l.Values {
		parts[i] = strconv.FormatUint(v, 10)
	}
	return strings.Join(parts, ",")
}

func (r Range) String() string { return fmt.Sprintf("%d-%d", r.Low, r.High) }

func (s Step) String() string { return "*/" + strconv.FormatUint(s.Interval, 10) }

func (s Single) String() string {
	if s.Wildcard {
		return "*"
	}
	return strconv.FormatUint(s.N, 10)
}

// IsWildcard reports whether v is the "*" value.
func IsWildcard(v Value) bool {
	s, ok := v.(Single)
	return ok && s.Wildcard
}

// ParseField decodes one field token.
//
// Shapes are tried in a fixed order: list (any comma), range (any hyphen),
// wildcard or number, then "*/n". A token with a comma is only ever a list,
// and a token with a hyphen is only ever a range.
func ParseField(text string) (Value, error) {
	if strings.Contains(text, ",") {
		return parseList(text)
	}
	if strings.Contains(text, "-") {
		return parseRange(text)
	}
	if text == "*" {
		return Wildcard, nil
	}
	if n, ok := parseUint(text); ok {
		return Number(n), nil
	}
	if rest, ok := strings.CutPrefix(text, "*/"); ok {
		if n, ok := parseUint(rest); ok && n > 0 {
			return Step{Interval: n}, nil
		}
	}
	return nil, fmt.Errorf("%w: unrecognized field %q", ErrParse, text)
}

func parseList(text string) (Value, error) {
	parts := strings.Split(text, ",")
	vals := make([]uint64, 0, len(parts))
	for _, p := range parts {
		n, ok := parseUint(p)
		if !ok {
			return nil, fmt.Errorf("%w: bad list item %q in %q", ErrParse, p, text)
		}
		vals = append(vals, n)
	}
	return List{Values: vals}, nil
}

func parseRange(text string) (Value, error) {
	lo, hi, _ := strings.Cut(text, "-")
	a, ok := parseUint(lo)
	if !ok {
		return nil, fmt.Errorf("%w: bad range start in %q", ErrParse, text)
	}
	b, ok := parseUint(hi)
	if !ok {
		return nil, fmt.Errorf("%w: bad range end in %q", ErrParse, text)
	}
	return Range{Low: a, High: b}, nil
}

func parseUint(s string) (uint64, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
