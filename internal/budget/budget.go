// Package budget tracks the rolling daily quota for automatically
// triggered buys. Operator-confirmed trades are not counted against it.
package budget

import (
	"sync"
	"time"
)

type Budget struct {
	mu       sync.Mutex
	enabled  bool
	ceiling  int
	count    int
	resetDay string
	now      func() time.Time
}

func New(enabled bool, ceiling int) *Budget {
	return &Budget{
		enabled: enabled,
		ceiling: ceiling,
		now:     time.Now,
	}
}

// ShouldAutoExecute reports whether the automatic-trigger path may fire:
// auto-buy is enabled and today's count is still below the ceiling.
func (b *Budget) ShouldAutoExecute() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.enabled {
		return false
	}
	b.rolloverLocked()
	return b.count < b.ceiling
}

// RecordExecution counts one automatic execution against today's quota.
func (b *Budget) RecordExecution() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rolloverLocked()
	b.count++
}

// Remaining returns how many automatic executions are left today.
func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rolloverLocked()
	if b.count >= b.ceiling {
		return 0
	}
	return b.ceiling - b.count
}

func (b *Budget) rolloverLocked() {
	day := b.now().Format("2006-01-02")
	if day != b.resetDay {
		b.count = 0
		b.resetDay = day
	}
}
