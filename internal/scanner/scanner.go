// Package scanner runs the discovery loop: poll each chain's latest pairs,
// filter and deduplicate, screen survivors through the risk service and
// hand the verdict to the alert dispatcher. Chains are scanned one after
// another with explicit pauses; the pacing is a rate limit owed to the
// upstream services, not a performance artifact.
package scanner

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/sial-ari/evm-token-sniper/internal/budget"
	"github.com/sial-ari/evm-token-sniper/internal/config"
	"github.com/sial-ari/evm-token-sniper/internal/metrics"
	"github.com/sial-ari/evm-token-sniper/internal/models"
	"github.com/sial-ari/evm-token-sniper/internal/shield"
	"github.com/sial-ari/evm-token-sniper/internal/trader"
)

// PairSource polls a chain's latest-pair listing.
type PairSource interface {
	LatestPairs(ctx context.Context, chain config.Chain) ([]models.CandidatePair, error)
}

// Store is the persistent side of discovery: the seen-set and the trade
// history.
type Store interface {
	IsSeen(chainID int64, pairAddress string) (bool, error)
	MarkSeen(chainID int64, pairAddress, tokenAddress string) (bool, error)
	SaveTrade(rec *models.TradeRecord) (string, error)
}

// Checker runs a token through the risk service.
type Checker interface {
	Check(ctx context.Context, tokenAddress string, chainID int64) (*models.SafetyVerdict, error)
}

// Alerter dispatches notifications; it must never return delivery errors
// into the scan loop.
type Alerter interface {
	NotifyPair(pair models.CandidatePair, verdict *models.SafetyVerdict, passed bool, reason string)
	NotifyText(text string)
}

// Buyer is the automatic-trigger slice of the execution engine.
type Buyer interface {
	Buy(ctx context.Context, token string, nativeAmount float64) (*trader.TxResult, error)
}

type Scanner struct {
	chains  []config.Chain
	source  PairSource
	store   Store
	checker Checker
	policy  shield.Policy
	alerter Alerter
	engine  Buyer // nil disables the auto-buy path
	budget  *budget.Budget
	metrics *metrics.Metrics
	logger  *slog.Logger

	tradeChainID  int64
	autoBuyAmount float64

	maxAgeMinutes float64
	minAgeMinutes float64
	minLiquidity  float64
	maxLiquidity  float64
	minVolume     float64

	scanInterval time.Duration
	chainPause   time.Duration
	checkPause   time.Duration
}

func New(cfg *config.Config, chains []config.Chain, tradeChain config.Chain, source PairSource,
	store Store, checker Checker, policy shield.Policy, alerter Alerter, engine Buyer,
	b *budget.Budget, m *metrics.Metrics, logger *slog.Logger) *Scanner {
	return &Scanner{
		chains:        chains,
		source:        source,
		store:         store,
		checker:       checker,
		policy:        policy,
		alerter:       alerter,
		engine:        engine,
		budget:        b,
		metrics:       m,
		logger:        logger,
		tradeChainID:  tradeChain.ChainID,
		autoBuyAmount: cfg.AutoBuyAmount,
		maxAgeMinutes: cfg.MaxPairAgeMinutes,
		minAgeMinutes: cfg.MinPairAgeMinutes,
		minLiquidity:  cfg.MinLiquidityUSD,
		maxLiquidity:  cfg.MaxLiquidityUSD,
		minVolume:     cfg.MinVolume24hUSD,
		scanInterval:  cfg.ScanInterval,
		chainPause:    cfg.ChainPause,
		checkPause:    cfg.CheckPause,
	}
}

// Run scans until the context is cancelled. Transient upstream failures
// are logged and skipped; the loop itself never stops on them.
func (s *Scanner) Run(ctx context.Context) {
	s.logger.Info("scanner starting",
		"chains", len(s.chains),
		"scan_interval", s.scanInterval,
		"auto_buy", s.engine != nil && s.budget.ShouldAutoExecute())

	s.alerter.NotifyText("🎯 *Sniper Bot Started*\n\nMonitoring for new pairs...")

	for {
		cycleStart := time.Now()
		for _, chain := range s.chains {
			s.scanChain(ctx, chain)
			if !sleepCtx(ctx, s.chainPause) {
				return
			}
		}
		s.metrics.ScanCycle(time.Since(cycleStart))

		if !sleepCtx(ctx, s.scanInterval) {
			return
		}
	}
}

func (s *Scanner) scanChain(ctx context.Context, chain config.Chain) {
	pairs, err := s.source.LatestPairs(ctx, chain)
	if err != nil {
		s.metrics.UpstreamFailure("dexscreener")
		s.logger.Error("pair fetch failed", "chain", chain.Name, "error", err)
		return
	}

	for _, pair := range pairs {
		if ctx.Err() != nil {
			return
		}
		if !s.qualify(chain, pair) {
			continue
		}

		// Claim the dedup key before doing anything visible with the
		// pair; losing the insert means another poll already emitted it.
		inserted, err := s.store.MarkSeen(pair.ChainID, pair.PairAddress, pair.TokenAddress)
		if err != nil {
			s.logger.Error("failed to mark pair seen", "chain", chain.Name, "pair", pair.PairAddress, "error", err)
			continue
		}
		if !inserted {
			continue
		}

		s.metrics.PairDiscovered(chain.Name)
		s.logger.Info("new pair discovered",
			"chain", chain.Name,
			"symbol", pair.TokenSymbol,
			"token", pair.TokenAddress,
			"liquidity_usd", pair.LiquidityUSD,
			"age_minutes", pair.PairAgeMinutes)

		s.checkPair(ctx, pair)

		if !sleepCtx(ctx, s.checkPause) {
			return
		}
	}
}

// qualify applies the discovery filters in their fixed order. Both age
// bounds are inclusive: a pair exactly at min or max age passes.
func (s *Scanner) qualify(chain config.Chain, pair models.CandidatePair) bool {
	seen, err := s.store.IsSeen(pair.ChainID, pair.PairAddress)
	if err != nil {
		s.logger.Error("seen-set lookup failed", "pair", pair.PairAddress, "error", err)
		return false
	}
	if seen {
		return false
	}
	if pair.PairAgeMinutes > s.maxAgeMinutes {
		s.metrics.PairFiltered(chain.Name, "too_old")
		return false
	}
	if pair.PairAgeMinutes < s.minAgeMinutes {
		s.metrics.PairFiltered(chain.Name, "too_new")
		return false
	}
	if pair.LiquidityUSD < s.minLiquidity {
		s.metrics.PairFiltered(chain.Name, "liquidity_low")
		return false
	}
	if pair.LiquidityUSD > s.maxLiquidity {
		s.metrics.PairFiltered(chain.Name, "liquidity_high")
		return false
	}
	if pair.Volume24hUSD < s.minVolume {
		s.metrics.PairFiltered(chain.Name, "volume_low")
		return false
	}
	if pair.TokenAddress == "" {
		s.metrics.PairFiltered(chain.Name, "no_token_address")
		return false
	}
	return true
}

// checkPair screens one pair through the risk service and dispatches the
// alert. No verdict means no alert: an unreachable risk service fails
// closed.
func (s *Scanner) checkPair(ctx context.Context, pair models.CandidatePair) {
	start := time.Now()
	verdict, err := s.checker.Check(ctx, pair.TokenAddress, pair.ChainID)
	elapsed := time.Since(start)

	if err != nil {
		s.metrics.SafetyCheck("unavailable", elapsed)
		s.metrics.UpstreamFailure("shield")
		s.logger.Warn("safety check unavailable, skipping pair",
			"token", pair.TokenAddress, "error", err)
		return
	}

	passed, reason := s.policy.Passes(verdict)
	if passed {
		s.metrics.SafetyCheck("pass", elapsed)
		s.metrics.AlertSent("actionable")
	} else {
		s.metrics.SafetyCheck("fail", elapsed)
		s.metrics.AlertSent("info")
		s.logger.Info("pair rejected", "token", pair.TokenAddress, "reason", reason)
	}

	s.alerter.NotifyPair(pair, verdict, passed, reason)

	if passed {
		s.maybeAutoBuy(ctx, pair)
	}
}

// maybeAutoBuy fires the automatic execution path when it is enabled, the
// pair is on the trading chain and the daily budget has room. The budget
// is charged before the goroutine starts so concurrent passes cannot
// overshoot the ceiling.
func (s *Scanner) maybeAutoBuy(ctx context.Context, pair models.CandidatePair) {
	if s.engine == nil || pair.ChainID != s.tradeChainID {
		return
	}
	if !s.budget.ShouldAutoExecute() {
		return
	}
	s.budget.RecordExecution()

	s.logger.Info("auto-buy triggered",
		"token", pair.TokenAddress,
		"amount", s.autoBuyAmount,
		"remaining_today", s.budget.Remaining())

	// Execution blocks on receipt confirmation; keep it off the scan loop.
	go s.autoBuy(ctx, pair)
}

func (s *Scanner) autoBuy(ctx context.Context, pair models.CandidatePair) {
	result, err := s.engine.Buy(ctx, pair.TokenAddress, s.autoBuyAmount)

	rec := &models.TradeRecord{
		Action: models.ActionBuy,
		Token:  pair.TokenAddress,
		Amount: formatAmount(s.autoBuyAmount),
		Auto:   true,
	}

	if err != nil {
		rec.Error = err.Error()
		if _, dberr := s.store.SaveTrade(rec); dberr != nil {
			s.logger.Error("failed to record auto-buy", "error", dberr)
		}
		s.metrics.TradeExecuted("buy", "failure")
		s.logger.Error("auto-buy failed", "token", pair.TokenAddress, "error", err)
		s.alerter.NotifyText("❌ *Auto-buy failed* for `" + pair.TokenSymbol + "`\n\n`" + err.Error() + "`")
		return
	}

	rec.TxHash = result.Hash
	rec.Success = true
	if _, dberr := s.store.SaveTrade(rec); dberr != nil {
		s.logger.Error("failed to record auto-buy", "error", dberr)
	}
	s.metrics.TradeExecuted("buy", "success")
	s.logger.Info("auto-buy executed", "token", pair.TokenAddress, "tx", result.Hash)
	s.alerter.NotifyText("🤖 *Auto-buy executed* for `" + pair.TokenSymbol + "`\n\n[View TX](" + result.URL + ")")
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// sleepCtx pauses for d, returning false if the context was cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
