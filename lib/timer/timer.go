// Package timer provides a mark-point timer for tracing the phases of
// one operation in log output.
package timer

import (
	"fmt"
	"strings"
	"time"
)

type markPoint struct {
	tag   string
	delta time.Duration
}

// XTimer records a born time plus a sequence of tagged phase marks.
type XTimer struct {
	born   time.Time
	latest time.Time
	points []markPoint
}

// NewXTimer starts a timer born now.
func NewXTimer() *XTimer {
	now := time.Now()
	return &XTimer{born: now, latest: now}
}

// Mark closes the current phase under tag.
func (t *XTimer) Mark(tag string) {
	now := time.Now()
	t.points = append(t.points, markPoint{tag: tag, delta: now.Sub(t.latest)})
	t.latest = now
}

// Elapsed reports seconds since the timer was born.
func (t *XTimer) Elapsed() float64 {
	return time.Since(t.born).Seconds()
}

// Print renders every phase and the total as "tag:1.25ms,...,total:2.50ms".
func (t *XTimer) Print() string {
	msg := make([]string, 0, len(t.points)+1)
	for _, p := range t.points {
		msg = append(msg, fmt.Sprintf("%s:%.2fms", p.tag, float64(p.delta)/float64(time.Millisecond)))
	}
	msg = append(msg, fmt.Sprintf("total:%.2fms", float64(time.Since(t.born))/float64(time.Millisecond)))
	return strings.Join(msg, ",")
}
