package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Chain is the immutable per-network configuration: where to poll, which
// router to trade through and what the native asset wraps to.
type Chain struct {
	Name          string `yaml:"name"`
	ChainID       int64  `yaml:"chain_id"`
	RPCURL        string `yaml:"rpc_url"`
	NativeSymbol  string `yaml:"native_symbol"`
	Router        string `yaml:"router"`
	WrappedNative string `yaml:"wrapped_native"`
	ExplorerTxURL string `yaml:"explorer_tx_url"`
}

type Config struct {
	// Notification channel
	TelegramToken string
	OwnerChatID   int64

	// Upstream services
	ShieldAPIURL      string
	DexScreenerAPIURL string

	// Wallet / confirmation
	WalletPrivateKey string
	TradingPINHash   string
	TradeChain       string

	// Discovery filters
	MaxPairAgeMinutes float64
	MinPairAgeMinutes float64
	MinLiquidityUSD   float64
	MaxLiquidityUSD   float64
	MinVolume24hUSD   float64

	// Safety thresholds
	MaxRiskScore       int
	RequireBuySuccess  bool
	RequireSellSuccess bool
	MaxTotalTaxPercent float64

	// Pacing. ChainPause and CheckPause are outbound rate limits against
	// the market-data and risk services, not tuning knobs; keep them > 0.
	ScanInterval time.Duration
	ChainPause   time.Duration
	CheckPause   time.Duration

	// Execution
	SlippagePercent    int64
	GasLimit           uint64
	ApproveGasLimit    uint64
	ConfirmTimeout     time.Duration
	ApproveSettleDelay time.Duration
	DeadlineMinutes    int64
	MaxBuyNative       float64

	// Auto-buy
	AutoBuyEnabled  bool
	AutoBuyAmount   float64
	AutoBuyMaxDaily int

	DatabasePath     string
	ChainsConfigPath string
	MetricsAddr      string
}

// Load reads configuration from environment variables, applying the same
// defaults the scanner has always shipped with.
func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		ShieldAPIURL:      getEnvWithDefault("SHIELD_API_URL", "https://yelling-patience-nirvagold-0a943e82.koyeb.app"),
		DexScreenerAPIURL: getEnvWithDefault("DEXSCREENER_API_URL", "https://api.dexscreener.com/latest/dex"),
		WalletPrivateKey:  os.Getenv("WALLET_PRIVATE_KEY"),
		TradingPINHash:    os.Getenv("TRADING_PIN_HASH"),
		TradeChain:        getEnvWithDefault("TRADE_CHAIN", "bsc"),

		MaxPairAgeMinutes: getEnvFloat("MAX_PAIR_AGE_MINUTES", 30),
		MinPairAgeMinutes: getEnvFloat("MIN_PAIR_AGE_MINUTES", 2),
		MinLiquidityUSD:   getEnvFloat("MIN_LIQUIDITY_USD", 5000),
		MaxLiquidityUSD:   getEnvFloat("MAX_LIQUIDITY_USD", 500000),
		MinVolume24hUSD:   getEnvFloat("MIN_VOLUME_24H_USD", 1000),

		MaxRiskScore:       getEnvInt("MAX_RISK_SCORE", 40),
		RequireBuySuccess:  getEnvBool("REQUIRE_BUY_SUCCESS", true),
		RequireSellSuccess: getEnvBool("REQUIRE_SELL_SUCCESS", true),
		MaxTotalTaxPercent: getEnvFloat("MAX_TOTAL_TAX_PERCENT", 15),

		ScanInterval: getEnvSeconds("SCAN_INTERVAL_SECONDS", 30),
		ChainPause:   getEnvSeconds("CHAIN_PAUSE_SECONDS", 1),
		CheckPause:   getEnvSeconds("CHECK_PAUSE_SECONDS", 2),

		SlippagePercent:    int64(getEnvInt("SLIPPAGE_PERCENT", 15)),
		GasLimit:           uint64(getEnvInt("GAS_LIMIT", 500000)),
		ApproveGasLimit:    uint64(getEnvInt("APPROVE_GAS_LIMIT", 100000)),
		ConfirmTimeout:     getEnvSeconds("CONFIRM_TIMEOUT_SECONDS", 120),
		ApproveSettleDelay: getEnvSeconds("APPROVE_SETTLE_SECONDS", 5),
		DeadlineMinutes:    int64(getEnvInt("SWAP_DEADLINE_MINUTES", 20)),
		MaxBuyNative:       getEnvFloat("MAX_BUY_NATIVE", 0.5),

		AutoBuyEnabled:  getEnvBool("AUTO_BUY_ENABLED", false),
		AutoBuyAmount:   getEnvFloat("AUTO_BUY_AMOUNT", 0.01),
		AutoBuyMaxDaily: getEnvInt("AUTO_BUY_MAX_DAILY", 5),

		DatabasePath:     getEnvWithDefault("DATABASE_PATH", "sniper.db"),
		ChainsConfigPath: getEnvWithDefault("CHAINS_CONFIG", "chains.yaml"),
		MetricsAddr:      os.Getenv("METRICS_ADDR"),
	}

	if raw := os.Getenv("OWNER_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OWNER_CHAT_ID %q: %w", raw, err)
		}
		cfg.OwnerChatID = id
	}

	if cfg.SlippagePercent < 0 || cfg.SlippagePercent >= 100 {
		return nil, fmt.Errorf("SLIPPAGE_PERCENT must be in [0,100), got %d", cfg.SlippagePercent)
	}
	if cfg.MinPairAgeMinutes > cfg.MaxPairAgeMinutes {
		return nil, fmt.Errorf("MIN_PAIR_AGE_MINUTES (%v) exceeds MAX_PAIR_AGE_MINUTES (%v)",
			cfg.MinPairAgeMinutes, cfg.MaxPairAgeMinutes)
	}
	if cfg.ChainPause <= 0 || cfg.CheckPause <= 0 {
		return nil, fmt.Errorf("chain and check pauses must be positive")
	}

	return cfg, nil
}

// LoadChains parses the chain list from a YAML file.
func LoadChains(path string) ([]Chain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chains config: %w", err)
	}

	var doc struct {
		Chains []Chain `yaml:"chains"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse chains config: %w", err)
	}
	if len(doc.Chains) == 0 {
		return nil, fmt.Errorf("chains config %s lists no chains", path)
	}

	for _, c := range doc.Chains {
		if c.Name == "" || c.ChainID == 0 || c.RPCURL == "" {
			return nil, fmt.Errorf("chain entry %q is missing name, chain_id or rpc_url", c.Name)
		}
	}
	return doc.Chains, nil
}

// FindChain returns the chain with the given name, or an error.
func FindChain(chains []Chain, name string) (Chain, error) {
	for _, c := range chains {
		if c.Name == name {
			return c, nil
		}
	}
	return Chain{}, fmt.Errorf("chain %q not found in chains config", name)
}

func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds)) * time.Second
}
