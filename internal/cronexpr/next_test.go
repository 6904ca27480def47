package cronexpr

import (
	"errors"
	"testing"
	"time"
)

func mustParse(t *testing.T, in string) Expression {
	t.Helper()
	e, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", in, err)
	}
	return e
}

func TestNextRuns(t *testing.T) {
	t.Parallel()
	from := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   string
		want []time.Time
	}{
		{
			name: "daily",
			in:   "0 4 * * *",
			want: []time.Time{
				time.Date(2026, 1, 16, 4, 0, 0, 0, time.UTC),
				time.Date(2026, 1, 17, 4, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "step",
			in:   "*/15 * * * *",
			want: []time.Time{
				time.Date(2026, 1, 15, 10, 15, 0, 0, time.UTC),
				time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
				time.Date(2026, 1, 15, 10, 45, 0, 0, time.UTC),
			},
		},
		{
			name: "list of hours",
			in:   "0 0,12 * * *",
			want: []time.Time{
				time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
				time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NextRuns(mustParse(t, tt.in), from, len(tt.want))
			if err != nil {
				t.Fatalf("NextRuns error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d runs, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if !got[i].Equal(tt.want[i]) {
					t.Fatalf("run[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNextRunsNotSchedulable(t *testing.T) {
	t.Parallel()
	from := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"0 0 * 0 *",  // month 0 only names December
		"75 * * * *", // out of range minute
		"0 0 5-1 * *",
		"0 0 30 2 *", // never happens
	} {
		_, err := NextRuns(mustParse(t, in), from, 1)
		if !errors.Is(err, ErrNotSchedulable) {
			t.Errorf("NextRuns(%q) error = %v, want ErrNotSchedulable", in, err)
		}
	}
}

func TestNextRunsZeroCount(t *testing.T) {
	t.Parallel()
	got, err := NextRuns(mustParse(t, "* * * * *"), time.Now(), 0)
	if err != nil || got != nil {
		t.Fatalf("NextRuns(n=0) = %v, %v; want nil, nil", got, err)
	}
}
