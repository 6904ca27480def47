// Package cronexpr turns five-field cron expressions into English sentences.
//
// The pipeline has two stages:
//   - Parse splits a line into minute, hour, day-of-month, month and
//     day-of-week tokens and decodes each one into a Value (List, Range,
//     Step or Single).
//   - Render composes those values into one sentence, e.g.
//     "5 4 1,2,3 1 2" => "At 4:05 AM on day-of-month 1, 2, and 3 and on Tuesday in January."
//
// Field bounds are not validated: month 0 renders as December and weekday 7
// as Sunday because name lookups are taken modulo the table size.
// NextRuns is the only function that applies real cron bounds.
package cronexpr
