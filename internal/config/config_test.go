package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30.0, cfg.MaxPairAgeMinutes)
	assert.Equal(t, 2.0, cfg.MinPairAgeMinutes)
	assert.Equal(t, 5000.0, cfg.MinLiquidityUSD)
	assert.Equal(t, 500000.0, cfg.MaxLiquidityUSD)
	assert.Equal(t, 1000.0, cfg.MinVolume24hUSD)
	assert.Equal(t, 40, cfg.MaxRiskScore)
	assert.True(t, cfg.RequireBuySuccess)
	assert.True(t, cfg.RequireSellSuccess)
	assert.Equal(t, 15.0, cfg.MaxTotalTaxPercent)
	assert.Equal(t, 30*time.Second, cfg.ScanInterval)
	assert.Equal(t, int64(15), cfg.SlippagePercent)
	assert.Equal(t, uint64(500000), cfg.GasLimit)
	assert.Equal(t, 120*time.Second, cfg.ConfirmTimeout)
	assert.Equal(t, int64(20), cfg.DeadlineMinutes)
	assert.Equal(t, "bsc", cfg.TradeChain)
	assert.False(t, cfg.AutoBuyEnabled)
	assert.Equal(t, 5, cfg.AutoBuyMaxDaily)
	assert.Equal(t, "sniper.db", cfg.DatabasePath)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_RISK_SCORE", "60")
	t.Setenv("SCAN_INTERVAL_SECONDS", "10")
	t.Setenv("AUTO_BUY_ENABLED", "true")
	t.Setenv("OWNER_CHAT_ID", "123456")
	t.Setenv("TRADE_CHAIN", "base")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.MaxRiskScore)
	assert.Equal(t, 10*time.Second, cfg.ScanInterval)
	assert.True(t, cfg.AutoBuyEnabled)
	assert.Equal(t, int64(123456), cfg.OwnerChatID)
	assert.Equal(t, "base", cfg.TradeChain)
}

func TestLoadMalformedValueFallsBack(t *testing.T) {
	t.Setenv("MAX_RISK_SCORE", "not-a-number")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.MaxRiskScore)
}

func TestLoadRejectsBadSlippage(t *testing.T) {
	t.Setenv("SLIPPAGE_PERCENT", "100")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvertedAgeBounds(t *testing.T) {
	t.Setenv("MIN_PAIR_AGE_MINUTES", "45")
	t.Setenv("MAX_PAIR_AGE_MINUTES", "30")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadOwnerChatID(t *testing.T) {
	t.Setenv("OWNER_CHAT_ID", "abc")
	_, err := Load()
	assert.Error(t, err)
}

const chainsYAML = `chains:
  - name: bsc
    chain_id: 56
    rpc_url: https://bsc-dataseed.binance.org
    native_symbol: BNB
    router: "0x10ED43C718714eb63d5aA57B78B54704E256024E"
    wrapped_native: "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"
    explorer_tx_url: https://bscscan.com/tx/
  - name: ethereum
    chain_id: 1
    rpc_url: https://eth.llamarpc.com
    native_symbol: ETH
`

func writeChains(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chains.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadChains(t *testing.T) {
	chains, err := LoadChains(writeChains(t, chainsYAML))
	require.NoError(t, err)
	require.Len(t, chains, 2)

	assert.Equal(t, "bsc", chains[0].Name)
	assert.Equal(t, int64(56), chains[0].ChainID)
	assert.Equal(t, "BNB", chains[0].NativeSymbol)
	assert.Equal(t, "0x10ED43C718714eb63d5aA57B78B54704E256024E", chains[0].Router)
	assert.Equal(t, "https://bscscan.com/tx/", chains[0].ExplorerTxURL)
}

func TestLoadChainsRejectsIncompleteEntry(t *testing.T) {
	_, err := LoadChains(writeChains(t, "chains:\n  - name: bsc\n    chain_id: 56\n"))
	assert.Error(t, err, "rpc_url is required")
}

func TestLoadChainsRejectsEmptyList(t *testing.T) {
	_, err := LoadChains(writeChains(t, "chains: []\n"))
	assert.Error(t, err)
}

func TestLoadChainsMissingFile(t *testing.T) {
	_, err := LoadChains(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFindChain(t *testing.T) {
	chains := []Chain{{Name: "bsc", ChainID: 56}, {Name: "base", ChainID: 8453}}

	c, err := FindChain(chains, "base")
	require.NoError(t, err)
	assert.Equal(t, int64(8453), c.ChainID)

	_, err = FindChain(chains, "solana")
	assert.Error(t, err)
}
