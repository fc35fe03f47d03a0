package fetch

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	Day  = 24 * time.Hour
	Year = 365 * Day
)

var ageToken = regexp.MustCompile(`(?i)^(\d+)([hdy])$`)

// ParseAge parses tokens like "6h", "30d" or "1y". A year is always 365 days.
func ParseAge(s string) (time.Duration, error) {
	m := ageToken.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: age %q must be digits followed by h, d or y", ErrInvalidArgument, s)
	}

	var unit time.Duration
	switch strings.ToLower(m[2]) {
	case "h":
		unit = time.Hour
	case "d":
		unit = Day
	case "y":
		unit = Year
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n > int64(math.MaxInt64/unit) {
		return 0, fmt.Errorf("%w: age %q is out of range", ErrInvalidArgument, s)
	}

	return time.Duration(n) * unit, nil
}

// AgeWindow bounds how long ago an object may have been modified. Either
// bound is optional; ordering between them is not checked.
type AgeWindow struct {
	MinAge time.Duration
	MaxAge time.Duration
	HasMin bool
	HasMax bool
}

func (w AgeWindow) WithMin(d time.Duration) AgeWindow {
	w.MinAge, w.HasMin = d, true
	return w
}

func (w AgeWindow) WithMax(d time.Duration) AgeWindow {
	w.MaxAge, w.HasMax = d, true
	return w
}

// Accept reports whether an object last modified at lastModified falls inside
// the window as seen from now. Negative ages (clock skew) are compared as is.
func (w AgeWindow) Accept(lastModified, now time.Time) bool {
	age := now.Sub(lastModified)
	if w.HasMin && age < w.MinAge {
		return false
	}
	if w.HasMax && age > w.MaxAge {
		return false
	}
	return true
}

func (w AgeWindow) String() string {
	switch {
	case w.HasMin && w.HasMax:
		return fmt.Sprintf("[%s, %s]", w.MinAge, w.MaxAge)
	case w.HasMin:
		return fmt.Sprintf("[%s, ∞)", w.MinAge)
	case w.HasMax:
		return fmt.Sprintf("[0, %s]", w.MaxAge)
	default:
		return "any"
	}
}
