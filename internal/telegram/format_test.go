package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sial-ari/evm-token-sniper/internal/models"
)

func samplePair() models.CandidatePair {
	return models.CandidatePair{
		Chain:          "bsc",
		ChainID:        56,
		PairAddress:    "0x1234567890abcdef1234567890abcdef12345678",
		TokenAddress:   "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd",
		TokenName:      "Moon Token",
		TokenSymbol:    "MOON",
		PriceUSD:       0.00001234,
		LiquidityUSD:   25000,
		Volume24hUSD:   4200,
		PairAgeMinutes: 7.5,
		DexID:          "pancakeswap",
	}
}

func TestFormatPairAlertPassed(t *testing.T) {
	v := &models.SafetyVerdict{RiskScore: 15, BuySuccess: true, SellSuccess: true, BuyTaxPercent: 2, SellTaxPercent: 3}
	out := formatPairAlert(samplePair(), v, true, "passed all checks")

	assert.Contains(t, out, "NEW PAIR DETECTED")
	assert.Contains(t, out, "SAFE TO TRADE")
	assert.Contains(t, out, "MOON")
	assert.Contains(t, out, "15/100")
	assert.Contains(t, out, "$25.00K")
	assert.Contains(t, out, "7.5 min")
	assert.Contains(t, out, samplePair().TokenAddress)
	assert.NotContains(t, out, "REJECTED")
}

func TestFormatPairAlertRejectedShowsReason(t *testing.T) {
	v := &models.SafetyVerdict{RiskScore: 85, BuySuccess: true, SellSuccess: false}
	out := formatPairAlert(samplePair(), v, false, "sell simulation failed")

	assert.Contains(t, out, "REJECTED")
	assert.Contains(t, out, "sell simulation failed")
	assert.NotContains(t, out, "SAFE TO TRADE")
}

func TestRiskBands(t *testing.T) {
	assert.Equal(t, "🟢", riskEmoji(0))
	assert.Equal(t, "🟢", riskEmoji(20))
	assert.Equal(t, "🔵", riskEmoji(21))
	assert.Equal(t, "🟡", riskEmoji(41))
	assert.Equal(t, "🟠", riskEmoji(61))
	assert.Equal(t, "🔴", riskEmoji(81))

	assert.Equal(t, "SAFE", riskLevel(20))
	assert.Equal(t, "LOW", riskLevel(40))
	assert.Equal(t, "MEDIUM", riskLevel(60))
	assert.Equal(t, "HIGH", riskLevel(80))
	assert.Equal(t, "CRITICAL", riskLevel(81))
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$12.50", formatUSD(12.5))
	assert.Equal(t, "$5.00K", formatUSD(5000))
	assert.Equal(t, "$1.25M", formatUSD(1250000))
}

func TestFormatTrades(t *testing.T) {
	assert.Equal(t, "No trades recorded yet", formatTrades(nil))

	trades := []models.TradeRecord{
		{Action: models.ActionBuy, Token: "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd", Amount: "0.05", TxHash: "0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef", Success: true, Auto: true},
		{Action: models.ActionSell, Token: "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd", Amount: "50", Error: "transaction reverted"},
	}
	out := formatTrades(trades)

	assert.Contains(t, out, "BUY")
	assert.Contains(t, out, "(auto)")
	assert.Contains(t, out, "SELL")
	assert.Contains(t, out, "transaction reverted")
	assert.Contains(t, out, "0xabcdefab...efabcd")
}

func TestShortAddr(t *testing.T) {
	assert.Equal(t, "0xshort", shortAddr("0xshort"))
	assert.Equal(t, "0x12345678...345678",
		shortAddr("0x1234567890abcdef1234567890abcdef12345678"))
}

func TestParseCallback(t *testing.T) {
	cb, err := parseCallback("buy:0xTOKEN:0.05")
	require.NoError(t, err)
	assert.Equal(t, "buy", cb.Action)
	assert.Equal(t, "0xTOKEN", cb.Token)
	assert.Equal(t, "0.05", cb.Arg)

	cb, err = parseCallback("sell:0xTOKEN:50")
	require.NoError(t, err)
	assert.Equal(t, "sell", cb.Action)
	assert.Equal(t, "50", cb.Arg)

	cb, err = parseCallback("check:0xTOKEN:56")
	require.NoError(t, err)
	assert.Equal(t, int64(56), cb.ChainID)

	_, err = parseCallback("buy:0xTOKEN")
	assert.Error(t, err)

	_, err = parseCallback("launch:0xTOKEN:1")
	assert.Error(t, err)

	_, err = parseCallback("check:0xTOKEN:not-a-chain")
	assert.Error(t, err)
}

func TestAlertKeyboardCallbackData(t *testing.T) {
	kb := alertKeyboard(samplePair())
	require.Len(t, kb.InlineKeyboard, 2)

	buyRow := kb.InlineKeyboard[0]
	require.Len(t, buyRow, 3)
	assert.Equal(t, "buy:"+samplePair().TokenAddress+":0.01", *buyRow[0].CallbackData)
	assert.Equal(t, "buy:"+samplePair().TokenAddress+":0.1", *buyRow[2].CallbackData)

	actionRow := kb.InlineKeyboard[1]
	require.Len(t, actionRow, 2)
	assert.Equal(t, "check:"+samplePair().TokenAddress+":56", *actionRow[0].CallbackData)
	require.NotNil(t, actionRow[1].URL)
	assert.Contains(t, *actionRow[1].URL, "dexscreener.com/bsc/")
}

func TestCheckKeyboardCallbackData(t *testing.T) {
	kb := checkKeyboard("0xTOKEN")
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "buy:0xTOKEN:0.01", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "sell:0xTOKEN:50", *kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "sell:0xTOKEN:100", *kb.InlineKeyboard[1][1].CallbackData)
}

func TestHashPIN(t *testing.T) {
	// sha256 of the literal string, hex encoded.
	assert.Equal(t,
		"03ac674216f3e15c761ee1a5e255f067953623c8b388b4459e13f978d7c846f4",
		hashPIN("1234"))
	assert.NotEqual(t, hashPIN("1234"), hashPIN("12345"))
	assert.Len(t, hashPIN("x"), 64)
}
