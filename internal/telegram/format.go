package telegram

import (
	"fmt"
	"strings"

	"github.com/sial-ari/evm-token-sniper/internal/models"
)

func riskEmoji(score int) string {
	switch {
	case score <= 20:
		return "🟢"
	case score <= 40:
		return "🔵"
	case score <= 60:
		return "🟡"
	case score <= 80:
		return "🟠"
	default:
		return "🔴"
	}
}

func riskLevel(score int) string {
	switch {
	case score <= 20:
		return "SAFE"
	case score <= 40:
		return "LOW"
	case score <= 60:
		return "MEDIUM"
	case score <= 80:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}

func formatUSD(value float64) string {
	switch {
	case value >= 1_000_000:
		return fmt.Sprintf("$%.2fM", value/1_000_000)
	case value >= 1_000:
		return fmt.Sprintf("$%.2fK", value/1_000)
	default:
		return fmt.Sprintf("$%.2f", value)
	}
}

func checkMark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

// formatPairAlert renders the scan alert for a discovered pair.
func formatPairAlert(pair models.CandidatePair, verdict *models.SafetyVerdict, passed bool, reason string) string {
	var sb strings.Builder

	sb.WriteString("🎯 *NEW PAIR DETECTED*\n\n")
	sb.WriteString(fmt.Sprintf("%s *%s* - %s\n", riskEmoji(verdict.RiskScore), pair.TokenSymbol, pair.TokenName))
	if passed {
		sb.WriteString("✅ *SAFE TO TRADE*\n")
	} else {
		sb.WriteString(fmt.Sprintf("⛔ *REJECTED*\n_%s_\n", reason))
	}

	sb.WriteString("\n📊 *Analysis:*\n")
	sb.WriteString(fmt.Sprintf("├ Risk Score: `%d/100` (%s)\n", verdict.RiskScore, riskLevel(verdict.RiskScore)))
	sb.WriteString(fmt.Sprintf("├ Buy Tax: `%.1f%%`\n", verdict.BuyTaxPercent))
	sb.WriteString(fmt.Sprintf("├ Sell Tax: `%.1f%%`\n", verdict.SellTaxPercent))
	sb.WriteString(fmt.Sprintf("├ Buy Sim: %s\n", checkMark(verdict.BuySuccess)))
	sb.WriteString(fmt.Sprintf("└ Sell Sim: %s\n", checkMark(verdict.SellSuccess)))

	sb.WriteString("\n💰 *Market:*\n")
	sb.WriteString(fmt.Sprintf("├ Price: `$%.8f`\n", pair.PriceUSD))
	sb.WriteString(fmt.Sprintf("├ Liquidity: `%s`\n", formatUSD(pair.LiquidityUSD)))
	sb.WriteString(fmt.Sprintf("├ Volume 24h: `%s`\n", formatUSD(pair.Volume24hUSD)))
	sb.WriteString(fmt.Sprintf("└ Age: `%.1f min`\n", pair.PairAgeMinutes))

	sb.WriteString(fmt.Sprintf("\n🔗 Chain: %s (%s)\n", strings.ToUpper(pair.Chain), pair.DexID))
	sb.WriteString(fmt.Sprintf("[DexScreener](https://dexscreener.com/%s/%s)\n", pair.Chain, pair.PairAddress))
	sb.WriteString(fmt.Sprintf("\n`%s`\n", pair.TokenAddress))

	return sb.String()
}

// formatCheckCard renders the /check analysis result.
func formatCheckCard(verdict *models.SafetyVerdict, passed bool, reason string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s *%s* - %s\n\n", riskEmoji(verdict.RiskScore), verdict.TokenSymbol, verdict.TokenName))
	if verdict.IsHoneypot {
		sb.WriteString("🍯 *HONEYPOT DETECTED*\n\n")
	} else if passed {
		sb.WriteString("✅ *Safe*\n\n")
	} else {
		sb.WriteString(fmt.Sprintf("⛔ *RISKY*\n_%s_\n\n", reason))
	}

	sb.WriteString(fmt.Sprintf("📊 Risk: `%d/100` (%s)\n", verdict.RiskScore, riskLevel(verdict.RiskScore)))
	if verdict.ChainName != "" {
		sb.WriteString(fmt.Sprintf("🔗 Chain: %s\n", verdict.ChainName))
	}
	sb.WriteString(fmt.Sprintf("💸 Tax: Buy `%.1f%%` | Sell `%.1f%%`\n", verdict.BuyTaxPercent, verdict.SellTaxPercent))
	sb.WriteString(fmt.Sprintf("🧪 Sim: %s Buy | %s Sell\n", checkMark(verdict.BuySuccess), checkMark(verdict.SellSuccess)))
	if verdict.SimulationLatencyMs > 0 {
		sb.WriteString(fmt.Sprintf("⏱ Latency: `%dms`\n", verdict.SimulationLatencyMs))
	}
	sb.WriteString(fmt.Sprintf("\n`%s`\n", verdict.TokenAddress))

	return sb.String()
}

func formatTrades(trades []models.TradeRecord) string {
	if len(trades) == 0 {
		return "No trades recorded yet"
	}

	var sb strings.Builder
	sb.WriteString("*Recent Trades:*\n\n")
	for i, t := range trades {
		status := "✅"
		if !t.Success {
			status = "❌"
		}
		origin := ""
		if t.Auto {
			origin = " (auto)"
		}
		sb.WriteString(fmt.Sprintf("%d. %s *%s*%s `%s`\n", i+1, status, strings.ToUpper(string(t.Action)), origin, shortAddr(t.Token)))
		sb.WriteString(fmt.Sprintf("   Amount: `%s`", t.Amount))
		if t.TxHash != "" {
			sb.WriteString(fmt.Sprintf(" | Tx: `%s`", shortAddr(t.TxHash)))
		}
		if t.Error != "" {
			sb.WriteString(fmt.Sprintf("\n   Error: _%s_", t.Error))
		}
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func shortAddr(addr string) string {
	if len(addr) <= 16 {
		return addr
	}
	return addr[:10] + "..." + addr[len(addr)-6:]
}
