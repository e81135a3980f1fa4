// Package intent holds staged trades awaiting PIN confirmation. Each chat
// owns at most one slot; staging a new trade silently replaces an
// unconfirmed one, and any confirmation attempt consumes the slot whether
// or not the PIN matches.
package intent

import (
	"sync"
	"time"

	"github.com/sial-ari/evm-token-sniper/internal/models"
)

type Store struct {
	mu      sync.Mutex
	pending map[int64]models.PendingTrade
}

func NewStore() *Store {
	return &Store{
		pending: make(map[int64]models.PendingTrade),
	}
}

// Put stages a trade for the chat, overwriting any unconfirmed one.
func (s *Store) Put(trade models.PendingTrade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trade.CreatedAt = time.Now()
	s.pending[trade.ChatID] = trade
}

// Has reports whether the chat has a trade awaiting confirmation.
func (s *Store) Has(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.pending[chatID]
	return ok
}

// Take removes and returns the chat's staged trade. The slot is always
// cleared, so a failed PIN attempt discards the intent.
func (s *Store) Take(chatID int64) (models.PendingTrade, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trade, ok := s.pending[chatID]
	if ok {
		delete(s.pending, chatID)
	}
	return trade, ok
}
