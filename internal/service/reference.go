package service

import (
	"fmt"
	"sync"
	"time"
)

// ReferenceGenerator issues payment references of the form
// <sessionKey>-<orderNumber>-<unixMillis>. The millisecond part is strictly
// increasing across calls, so two attempts never share a reference even
// within the same millisecond.
type ReferenceGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewReferenceGenerator(now func() time.Time) *ReferenceGenerator {
	if now == nil {
		now = time.Now
	}
	return &ReferenceGenerator{now: now}
}

func (g *ReferenceGenerator) Next(sessionKey string, orderNumber int) string {
	g.mu.Lock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	g.mu.Unlock()

	return fmt.Sprintf("%s-%d-%d", sessionKey, orderNumber, ms)
}
