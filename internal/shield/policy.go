package shield

import (
	"fmt"

	"github.com/sial-ari/evm-token-sniper/internal/models"
)

// Policy holds the thresholds that turn a verdict into a binary decision.
type Policy struct {
	MaxRiskScore       int
	RequireBuySuccess  bool
	RequireSellSuccess bool
	MaxTotalTaxPercent float64
}

// Passes reduces a verdict to pass/fail plus the reason shown to the
// operator. Rules run in a fixed order and the first failure wins. The tax
// rule caps the plain sum of both legs, not each leg independently.
func (p Policy) Passes(v *models.SafetyVerdict) (bool, string) {
	if v.IsHoneypot {
		return false, "honeypot detected"
	}
	if v.RiskScore > p.MaxRiskScore {
		return false, fmt.Sprintf("risk too high: %d/100", v.RiskScore)
	}
	if p.RequireBuySuccess && !v.BuySuccess {
		return false, "buy simulation failed"
	}
	if p.RequireSellSuccess && !v.SellSuccess {
		return false, "sell simulation failed"
	}
	if total := v.BuyTaxPercent + v.SellTaxPercent; total > p.MaxTotalTaxPercent {
		return false, fmt.Sprintf("tax too high: %.1f%%", total)
	}
	return true, "passed all checks"
}
