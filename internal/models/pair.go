package models

import "time"

// CandidatePair is a newly discovered trading pair that survived the
// discovery filters. It is read-only after creation.
type CandidatePair struct {
	Chain          string  `json:"chain"`
	ChainID        int64   `json:"chainId"`
	PairAddress    string  `json:"pairAddress"`
	TokenAddress   string  `json:"tokenAddress"`
	TokenName      string  `json:"tokenName"`
	TokenSymbol    string  `json:"tokenSymbol"`
	PriceUSD       float64 `json:"priceUsd"`
	LiquidityUSD   float64 `json:"liquidityUsd"`
	Volume24hUSD   float64 `json:"volume24h"`
	PairAgeMinutes float64 `json:"pairAgeMinutes"`
	DexID          string  `json:"dexId"`
}

// SafetyVerdict is the risk service's assessment of a single token.
type SafetyVerdict struct {
	TokenAddress        string  `json:"token_address"`
	TokenName           string  `json:"token_name"`
	TokenSymbol         string  `json:"token_symbol"`
	ChainName           string  `json:"chain_name"`
	IsHoneypot          bool    `json:"is_honeypot"`
	RiskScore           int     `json:"risk_score"`
	BuySuccess          bool    `json:"buy_success"`
	SellSuccess         bool    `json:"sell_success"`
	BuyTaxPercent       float64 `json:"buy_tax_percent"`
	SellTaxPercent      float64 `json:"sell_tax_percent"`
	SimulationLatencyMs int64   `json:"simulation_latency_ms"`
	Reason              string  `json:"reason"`
}

// TradeAction distinguishes the two sides of a pending trade.
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// PendingTrade is a staged trade intent awaiting PIN confirmation.
// Amount carries the native amount for buys and the balance percentage
// for sells.
type PendingTrade struct {
	ChatID       int64
	Action       TradeAction
	TokenAddress string
	Amount       string
	CreatedAt    time.Time
}

// TradeRecord is a persisted execution attempt, successful or not.
type TradeRecord struct {
	ID        string
	Action    TradeAction
	Token     string
	Amount    string
	TxHash    string
	Success   bool
	Error     string
	Auto      bool
	CreatedAt time.Time
}
