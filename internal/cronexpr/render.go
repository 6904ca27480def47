package cronexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// Render turns e into one English sentence ending with a period.
//
// Clause order is fixed: time, day-of-month, day-of-week, month.
// Wildcard day, weekday and month fields contribute nothing.
func Render(e Expression) string {
	var b strings.Builder
	b.WriteString(timeClause(e.Minute, e.Hour))

	day := dayOfMonthPhrasing.clause(e.DayOfMonth)
	weekday := dayOfWeekPhrasing.clause(e.DayOfWeek)
	switch {
	case day != "" && weekday != "":
		b.WriteString(" " + day + " and " + weekday)
	case day != "":
		b.WriteString(" " + day)
	case weekday != "":
		b.WriteString(" " + weekday)
	}

	if month := monthPhrasing.clause(e.Month); month != "" {
		b.WriteString(" " + month)
	}
	b.WriteString(".")
	return b.String()
}

// timeClause phrases minute and hour together; the wording depends on the pair.
func timeClause(minute, hour Value) string {
	switch m := minute.(type) {
	case List:
		return "At minute " + JoinOxford(numbers(m.Values)) + pad(hourSuffix(hour))
	case Range:
		return fmt.Sprintf("At every minute from %d through %d", m.Low, m.High) + pad(hourSuffix(hour))
	case Step:
		return "At every " + Ordinal(m.Interval) + " minute" + pad(hourSuffix(hour))
	case Single:
		h, ok := hour.(Single)
		if !ok {
			if m.Wildcard {
				return "At every minute" + pad(hourSuffix(hour))
			}
			return "At minute " + strconv.FormatUint(m.N, 10) + pad(hourSuffix(hour))
		}
		switch {
		case m.Wildcard && h.Wildcard:
			return "At every minute"
		case m.Wildcard:
			return "At every minute past " + Clock(h.N, 0)
		case h.Wildcard:
			return "At minute " + strconv.FormatUint(m.N, 10) + " every hour"
		default:
			return "At " + Clock(h.N, m.N)
		}
	}
	return "At every minute" + pad(hourSuffix(hour))
}

// hourSuffix is the "past ..." tail used when the minute is not a plain clock time.
// A single numeric hour yields "past hour N" here, unlike the older
// describer which dropped the hour and printed e.g. "At every 5th minute.".
func hourSuffix(hour Value) string {
	switch h := hour.(type) {
	case List:
		return "past hour " + JoinOxford(numbers(h.Values))
	case Range:
		return fmt.Sprintf("past every hour from %d through %d", h.Low, h.High)
	case Step:
		return "past every " + Ordinal(h.Interval) + " hour"
	case Single:
		if h.Wildcard {
			return ""
		}
		return "past hour " + strconv.FormatUint(h.N, 10)
	}
	return ""
}

func pad(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}

// phrasing holds the four wordings of a date field. Each format takes the
// already rendered items.
type phrasing struct {
	list   string // %s = Oxford list
	rng    string // %s, %s = bounds
	step   string // %s = ordinal
	single string // %s = item
	item   func(uint64) string
}

var (
	dayOfMonthPhrasing = phrasing{
		list:   "on day-of-month %s",
		rng:    "on every day-of-month from %s through %s",
		step:   "on every %s day-of-month",
		single: "on day-of-month %s",
		item:   func(n uint64) string { return strconv.FormatUint(n, 10) },
	}
	dayOfWeekPhrasing = phrasing{
		list:   "on %s",
		rng:    "on every day-of-week from %s through %s",
		step:   "on every %s day-of-week",
		single: "on %s",
		item:   WeekdayName,
	}
	monthPhrasing = phrasing{
		list:   "in %s",
		rng:    "in every month from %s through %s",
		step:   "in every %s month",
		single: "in %s",
		item:   MonthName,
	}
)

// clause renders v, or returns "" for a wildcard.
func (p phrasing) clause(v Value) string {
	switch x := v.(type) {
	case List:
		return fmt.Sprintf(p.list, JoinOxford(names(x.Values, p.item)))
	case Range:
		return fmt.Sprintf(p.rng, p.item(x.Low), p.item(x.High))
	case Step:
		return fmt.Sprintf(p.step, Ordinal(x.Interval))
	case Single:
		if x.Wildcard {
			return ""
		}
		return fmt.Sprintf(p.single, p.item(x.N))
	}
	return ""
}
