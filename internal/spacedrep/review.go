package spacedrep

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/abhisek/flashiz/internal/collection"
)

const (
	day   = 24 * time.Hour
	month = 30 * day
	year  = 365 * day
)

// Describe renders an interval as a short button label.
func Describe(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "<1m"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(math.Round(d.Minutes())))
	case d < day:
		return fmt.Sprintf("%dh", int(math.Round(d.Hours())))
	case d < month:
		return fmt.Sprintf("%dd", int(math.Round(d.Hours()/24)))
	case d < year:
		return trimmed(float64(d)/float64(month)) + "mo"
	default:
		return trimmed(float64(d)/float64(year)) + "y"
	}
}

// DescribeStates returns one label per rating, in rating order.
func DescribeStates(ns collection.NextStates) []string {
	labels := make([]string, 0, len(collection.Ratings))
	for _, r := range collection.Ratings {
		labels = append(labels, Describe(ns.For(r).Interval))
	}
	return labels
}

// IsDue reports whether a card in queue q with the given due time should be
// shown now. Learning cards may be shown up to learnAhead early; review
// cards are due for the whole of their due day.
func IsDue(q collection.Queue, due, now time.Time, learnAhead time.Duration) bool {
	switch q {
	case collection.QueueLearning, collection.QueueRelearning:
		return !due.After(now.Add(learnAhead))
	case collection.QueueReview:
		return due.Before(EndOfDay(now))
	default:
		return true
	}
}

// StartOfDay returns local midnight at the start of now's day.
func StartOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// EndOfDay returns local midnight at the end of now's day.
func EndOfDay(now time.Time) time.Time {
	return StartOfDay(now).AddDate(0, 0, 1)
}

func trimmed(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}
