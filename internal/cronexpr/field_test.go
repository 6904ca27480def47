package cronexpr

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseFieldShapes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want Value
	}{
		{name: "wildcard", in: "*", want: Wildcard},
		{name: "number", in: "5", want: Number(5)},
		{name: "zero", in: "0", want: Number(0)},
		{name: "leading zeros", in: "007", want: Number(7)},
		{name: "list", in: "1,2,3", want: List{Values: []uint64{1, 2, 3}}},
		{name: "list keeps order and duplicates", in: "3,3,1", want: List{Values: []uint64{3, 3, 1}}},
		{name: "range", in: "8-14", want: Range{Low: 8, High: 14}},
		{name: "reversed range", in: "5-1", want: Range{Low: 5, High: 1}},
		{name: "step", in: "*/4", want: Step{Interval: 4}},
		{name: "unbounded number", in: "99", want: Number(99)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseField(tt.in)
			if err != nil {
				t.Fatalf("ParseField(%q) error: %v", tt.in, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseField(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFieldInvalid(t *testing.T) {
	t.Parallel()
	for _, in := range []string{
		"",
		"x",
		"**",
		"+1",
		"1,x",
		"1,,2",
		",",
		"1,2-3",
		"1-2-3",
		"-1",
		"1-",
		"*-5",
		"*/0",
		"*/",
		"*/x",
		"*/5/2",
		"*/-1",
		"1/2",
		"1-10/2",
		"MON",
	} {
		if v, err := ParseField(in); err == nil {
			t.Errorf("ParseField(%q) = %#v, want error", in, v)
		} else if !errors.Is(err, ErrParse) {
			t.Errorf("ParseField(%q) error %v does not wrap ErrParse", in, err)
		}
	}
}

func TestValueString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		v    Value
		want string
	}{
		{Wildcard, "*"},
		{Number(12), "12"},
		{List{Values: []uint64{0, 12}}, "0,12"},
		{Range{Low: 1, High: 5}, "1-5"},
		{Step{Interval: 3}, "*/3"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestIsWildcard(t *testing.T) {
	t.Parallel()
	if !IsWildcard(Wildcard) {
		t.Fatal("Wildcard should be a wildcard")
	}
	if IsWildcard(Number(0)) {
		t.Fatal("Number(0) should not be a wildcard")
	}
	if IsWildcard(Step{Interval: 1}) {
		t.Fatal("Step should not be a wildcard")
	}
}
