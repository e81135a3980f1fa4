package shield

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sial-ari/evm-token-sniper/internal/models"
)

func defaultPolicy() Policy {
	return Policy{
		MaxRiskScore:       40,
		RequireBuySuccess:  true,
		RequireSellSuccess: true,
		MaxTotalTaxPercent: 15,
	}
}

func cleanVerdict() *models.SafetyVerdict {
	return &models.SafetyVerdict{
		RiskScore:      25,
		BuySuccess:     true,
		SellSuccess:    true,
		BuyTaxPercent:  2,
		SellTaxPercent: 3,
	}
}

func TestPassesCleanVerdict(t *testing.T) {
	passed, reason := defaultPolicy().Passes(cleanVerdict())
	assert.True(t, passed)
	assert.Equal(t, "passed all checks", reason)
}

func TestHoneypotAlwaysFails(t *testing.T) {
	// Honeypot short-circuits regardless of every other field looking fine.
	v := cleanVerdict()
	v.IsHoneypot = true
	v.RiskScore = 0

	passed, reason := defaultPolicy().Passes(v)
	assert.False(t, passed)
	assert.Contains(t, reason, "honeypot")
}

func TestRiskScoreStrictlyGreater(t *testing.T) {
	p := defaultPolicy()

	v := cleanVerdict()
	v.RiskScore = 40
	passed, _ := p.Passes(v)
	assert.True(t, passed, "score equal to the threshold passes")

	v.RiskScore = 41
	passed, reason := p.Passes(v)
	assert.False(t, passed)
	assert.Contains(t, reason, "41/100")
}

func TestSimulationRequirements(t *testing.T) {
	p := defaultPolicy()

	v := cleanVerdict()
	v.BuySuccess = false
	passed, reason := p.Passes(v)
	assert.False(t, passed)
	assert.Contains(t, reason, "buy simulation")

	v = cleanVerdict()
	v.SellSuccess = false
	passed, reason = p.Passes(v)
	assert.False(t, passed)
	assert.Contains(t, reason, "sell simulation")

	// Not required -> failures tolerated.
	p.RequireBuySuccess = false
	p.RequireSellSuccess = false
	v.BuySuccess = false
	passed, _ = p.Passes(v)
	assert.True(t, passed)
}

func TestTotalTaxBoundary(t *testing.T) {
	p := defaultPolicy()

	cases := []struct {
		buyTax, sellTax float64
		wantPass        bool
	}{
		{7.0, 7.9, true},  // 14.9
		{7.5, 7.5, true},  // exactly 15.0, comparison is strict-greater
		{7.6, 7.5, false}, // 15.1
		{0, 0, true},
		{20, 0, false}, // the cap is on the sum, a single heavy leg trips it
	}

	for _, tc := range cases {
		v := cleanVerdict()
		v.BuyTaxPercent = tc.buyTax
		v.SellTaxPercent = tc.sellTax
		passed, reason := p.Passes(v)
		assert.Equal(t, tc.wantPass, passed, "buy=%v sell=%v", tc.buyTax, tc.sellTax)
		if !tc.wantPass {
			assert.Contains(t, reason, "tax too high")
		}
	}
}

func TestRuleOrderHoneypotBeforeRisk(t *testing.T) {
	// Both rules would fail; the honeypot reason must win.
	v := cleanVerdict()
	v.IsHoneypot = true
	v.RiskScore = 95

	_, reason := defaultPolicy().Passes(v)
	assert.Equal(t, "honeypot detected", reason)
}
