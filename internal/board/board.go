package board

import (
	"errors"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	Title = "Kirkeåsveien 6b"

	MaxSections        = 100
	MaxTasksPerSection = 500
	MaxSectionTitle    = 80
	MaxTaskText        = 220

	UntitledSection = "Untitled"

	// TimeLayout matches JavaScript's Date.toISOString so browser clients
	// can parse the value unchanged.
	TimeLayout = "2006-01-02T15:04:05.000Z"
)

var ErrNotObject = errors.New("payload is not an object")

// NewID returns "<prefix>-<uuid>".
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// CollapseText folds whitespace runs into single spaces, trims, and clamps to
// max runes. A trailing space left by the clamp is trimmed so the result is
// stable under repeated application.
func CollapseText(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > max {
		s = string([]rune(s)[:max])
	}
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

// Clock hands out strictly increasing timestamps at millisecond resolution.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

func (c *Clock) Stamp() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC().Truncate(time.Millisecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Millisecond)
	}
	c.last = t
	return t.Format(TimeLayout)
}

// Observe moves the clock past ts so the next Stamp sorts after it.
// Unparseable or older values are ignored.
func (c *Clock) Observe(ts string) {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return
	}
	t = t.UTC().Truncate(time.Millisecond)
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.After(c.last) {
		c.last = t
	}
}
