package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sial-ari/evm-token-sniper/internal/models"
)

func TestTakeConsumesSlot(t *testing.T) {
	s := NewStore()
	s.Put(models.PendingTrade{ChatID: 7, Action: models.ActionBuy, TokenAddress: "0xaaa", Amount: "0.05"})

	assert.True(t, s.Has(7))

	trade, ok := s.Take(7)
	assert.True(t, ok)
	assert.Equal(t, models.ActionBuy, trade.Action)
	assert.Equal(t, "0xaaa", trade.TokenAddress)

	// Consumed whether or not the PIN check that follows succeeds.
	_, ok = s.Take(7)
	assert.False(t, ok)
	assert.False(t, s.Has(7))
}

func TestNewIntentOverwritesUnconfirmed(t *testing.T) {
	s := NewStore()
	s.Put(models.PendingTrade{ChatID: 7, Action: models.ActionBuy, TokenAddress: "0xaaa", Amount: "0.01"})
	s.Put(models.PendingTrade{ChatID: 7, Action: models.ActionSell, TokenAddress: "0xbbb", Amount: "50"})

	trade, ok := s.Take(7)
	assert.True(t, ok)
	assert.Equal(t, models.ActionSell, trade.Action)
	assert.Equal(t, "0xbbb", trade.TokenAddress)

	_, ok = s.Take(7)
	assert.False(t, ok, "the first intent was discarded, not queued")
}

func TestSlotsAreScopedPerChat(t *testing.T) {
	s := NewStore()
	s.Put(models.PendingTrade{ChatID: 1, Action: models.ActionBuy, TokenAddress: "0xaaa", Amount: "0.01"})
	s.Put(models.PendingTrade{ChatID: 2, Action: models.ActionSell, TokenAddress: "0xbbb", Amount: "100"})

	a, ok := s.Take(1)
	assert.True(t, ok)
	assert.Equal(t, "0xaaa", a.TokenAddress)

	b, ok := s.Take(2)
	assert.True(t, ok)
	assert.Equal(t, "0xbbb", b.TokenAddress)
}
