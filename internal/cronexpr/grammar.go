package cronexpr

import (
	"fmt"
	"strconv"
	"strings"
)

var weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var monthNames = [12]string{
	"December", "January", "February", "March", "April", "May",
	"June", "July", "August", "September", "October", "November",
}

// WeekdayName maps a day-of-week value to its name. Values wrap modulo 7,
// so both 0 and 7 are Sunday.
func WeekdayName(n uint64) string { return weekdayNames[n%uint64(len(weekdayNames))] }

// MonthName maps a month value to its name. Values wrap modulo 12,
// so 0 is December.
func MonthName(n uint64) string { return monthNames[n%uint64(len(monthNames))] }

// JoinOxford joins items as an English list: "A", "A and B", "A, B, and C".
func JoinOxford(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	var b strings.Builder
	for _, it := range items[:len(items)-1] {
		b.WriteString(it)
		b.WriteString(", ")
	}
	b.WriteString("and ")
	b.WriteString(items[len(items)-1])
	return b.String()
}

// Ordinal appends the English ordinal suffix to n.
//
// Only the bare values 11, 12 and 13 are exempt from the last-digit rule,
// so 111 becomes "111st".
func Ordinal(n uint64) string {
	s := strconv.FormatUint(n, 10)
	switch n {
	case 11, 12, 13:
		return s + "th"
	}
	switch n % 10 {
	case 1:
		return s + "st"
	case 2:
		return s + "nd"
	case 3:
		return s + "rd"
	default:
		return s + "th"
	}
}

// Clock formats hour and minute on a 12-hour clock, e.g. (14, 5) => "2:05 PM".
// The hour wraps modulo 24.
func Clock(hour, minute uint64) string {
	h := hour % 24
	switch {
	case h == 0:
		return fmt.Sprintf("12:%02d AM", minute)
	case h == 12:
		return fmt.Sprintf("12:%02d PM", minute)
	case h > 12:
		return fmt.Sprintf("%d:%02d PM", h-12, minute)
	default:
		return fmt.Sprintf("%d:%02d AM", h, minute)
	}
}

func numbers(vals []uint64) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strconv.FormatUint(v, 10)
	}
	return out
}

func names(vals []uint64, name func(uint64) string) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = name(v)
	}
	return out
}
