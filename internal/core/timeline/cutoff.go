package timeline

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/neilberkman/locscope/pkg/loccsv"
)

// ErrEmptyCutoff is returned for a blank cutoff expression
var ErrEmptyCutoff = errors.New("cutoff expression is empty")

// Cutoff is a parsed cutoff expression: either an instant or a slider
// position.
type Cutoff struct {
	Expr       string
	Time       time.Time
	Position   float64
	ByPosition bool
}

func (c Cutoff) String() string {
	if c.ByPosition {
		return fmt.Sprintf("%g%%", c.Position)
	}
	return c.Time.Format(time.RFC3339)
}

// ParseCutoff parses what a user types to move the cutoff. Supports:
//   - start, end - the first and last commit
//   - pos:42, 42% - slider positions
//   - 2024-02-10, 2024-02-10T14:30, RFC 3339 - absolute times; a bare date
//     means the end of that day
//   - yesterday, last week, 3 days ago - natural language, relative to now
func ParseCutoff(expr string, now time.Time) (Cutoff, error) {
	c := Cutoff{Expr: expr}
	s := strings.TrimSpace(expr)
	if s == "" {
		return c, ErrEmptyCutoff
	}

	switch strings.ToLower(s) {
	case "start", "first":
		c.ByPosition, c.Position = true, PositionMin
		return c, nil
	case "end", "last", "latest":
		c.ByPosition, c.Position = true, PositionMax
		return c, nil
	}

	if p, ok, err := parsePosition(s); ok {
		if err != nil {
			return c, fmt.Errorf("invalid position %q: %w", expr, err)
		}
		c.ByPosition, c.Position = true, ClampPosition(p)
		return c, nil
	}

	if t, ok := parseDate(s, now.Location()); ok {
		c.Time = t
		return c, nil
	}

	if t, err := loccsv.ParseDatetime(s, now.Location()); err == nil {
		c.Time = t
		return c, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	result, err := w.Parse(s, now)
	if err == nil && result != nil {
		c.Time = result.Time
		return c, nil
	}

	return c, fmt.Errorf("unrecognised cutoff %q", expr)
}

// ErrInvalidPosition is returned for a position that is not a finite number
var ErrInvalidPosition = errors.New("position must be a finite number")

// parsePosition reports ok when s is written as a position (pos:NN or NN%),
// and err when that position is not a finite number.
func parsePosition(s string) (float64, bool, error) {
	var raw string
	switch {
	case strings.HasPrefix(strings.ToLower(s), "pos:"):
		raw = s[len("pos:"):]
	case strings.HasSuffix(s, "%"):
		raw = strings.TrimSuffix(s, "%")
	default:
		return 0, false, nil
	}

	p, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, true, ErrInvalidPosition
	}
	return p, true, nil
}

// parseDate accepts date-only layouts and returns the last instant of that
// day so the whole day is included.
func parseDate(s string, loc *time.Location) (time.Time, bool) {
	formats := []string{
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, s, loc); err == nil {
			return t.AddDate(0, 0, 1).Add(-time.Nanosecond), true
		}
	}
	return time.Time{}, false
}
