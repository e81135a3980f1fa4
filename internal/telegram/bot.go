package telegram

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sial-ari/evm-token-sniper/internal/config"
	"github.com/sial-ari/evm-token-sniper/internal/db"
	"github.com/sial-ari/evm-token-sniper/internal/intent"
	"github.com/sial-ari/evm-token-sniper/internal/metrics"
	"github.com/sial-ari/evm-token-sniper/internal/models"
	"github.com/sial-ari/evm-token-sniper/internal/shield"
	"github.com/sial-ari/evm-token-sniper/internal/trader"
)

// Executor is the slice of the trading engine the bot needs.
type Executor interface {
	Buy(ctx context.Context, token string, nativeAmount float64) (*trader.TxResult, error)
	Sell(ctx context.Context, token string, percent int64) (*trader.TxResult, error)
	NativeBalance(ctx context.Context) (*big.Int, error)
	Address() string
}

// Checker runs a token through the risk service.
type Checker interface {
	Check(ctx context.Context, tokenAddress string, chainID int64) (*models.SafetyVerdict, error)
}

// Bot consumes operator commands and button presses over the long-poll
// channel and drives the PIN-gated trade confirmation flow.
type Bot struct {
	api     *tgbotapi.BotAPI
	cfg     *config.Config
	chains  []config.Chain
	trade   config.Chain
	db      *db.Database
	intents *intent.Store
	engine  Executor // nil when no wallet is configured
	checker Checker
	policy  shield.Policy
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu      sync.RWMutex
	pinHash string
}

func NewBot(api *tgbotapi.BotAPI, cfg *config.Config, chains []config.Chain, tradeChain config.Chain,
	database *db.Database, intents *intent.Store, engine Executor, checker Checker,
	policy shield.Policy, m *metrics.Metrics, logger *slog.Logger) *Bot {
	return &Bot{
		api:     api,
		cfg:     cfg,
		chains:  chains,
		trade:   tradeChain,
		db:      database,
		intents: intents,
		engine:  engine,
		checker: checker,
		policy:  policy,
		metrics: m,
		logger:  logger,
		pinHash: cfg.TradingPINHash,
	}
}

// Start runs the update intake loop until the context is cancelled. The
// library advances the update offset and retries transient fetch failures,
// so no update is processed twice within a process lifetime.
func (b *Bot) Start(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			switch {
			case update.CallbackQuery != nil:
				b.handleCallback(ctx, update.CallbackQuery)
			case update.Message != nil:
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) authorized(chatID int64) bool {
	return b.cfg.OwnerChatID == 0 || chatID == b.cfg.OwnerChatID
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !b.authorized(chatID) {
		b.reply(chatID, "⛔ Unauthorized")
		return
	}

	text := message.Text

	// A non-command message from a chat with a staged trade is a PIN
	// attempt, nothing else.
	if b.intents.Has(chatID) && !strings.HasPrefix(text, "/") {
		b.handlePINAttempt(ctx, chatID, text)
		return
	}

	if !message.IsCommand() {
		return
	}

	switch message.Command() {
	case "start", "help":
		b.reply(chatID, helpText)
	case "check":
		b.cmdCheck(ctx, chatID, strings.Fields(message.CommandArguments()))
	case "chains":
		b.cmdChains(chatID)
	case "balance":
		b.cmdBalance(ctx, chatID)
	case "trades":
		b.cmdTrades(chatID)
	case "setpin":
		b.cmdSetPIN(chatID, strings.TrimSpace(message.CommandArguments()))
	default:
		b.reply(chatID, "❓ Unknown command. Use /help")
	}
}

const helpText = `🛡️ *EVM Token Sniper*

` + "`/check <address> [chain_id]`" + ` - Analyze token
` + "`/chains`" + ` - Show configured chains
` + "`/balance`" + ` - Check trading wallet
` + "`/trades`" + ` - Recent executions
` + "`/setpin <pin>`" + ` - Set trading PIN

_Use the buttons on alerts or /check results to trade._`

func (b *Bot) cmdCheck(ctx context.Context, chatID int64, args []string) {
	if len(args) < 1 {
		b.reply(chatID, "❌ Usage: `/check <token_address> [chain_id]`")
		return
	}

	token := args[0]
	if !strings.HasPrefix(token, "0x") || len(token) != 42 {
		b.reply(chatID, "❌ Invalid token address. Must be 0x... (42 chars)")
		return
	}

	chainID := b.trade.ChainID
	if len(args) > 1 {
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			b.reply(chatID, fmt.Sprintf("❌ Invalid chain id %q", args[1]))
			return
		}
		chainID = id
	}

	b.reply(chatID, fmt.Sprintf("🔍 Analyzing `%s`\n\n_Please wait..._", shortAddr(token)))
	b.runCheck(ctx, chatID, token, chainID)
}

// runCheck serves both /check and the re-check button.
func (b *Bot) runCheck(ctx context.Context, chatID int64, token string, chainID int64) {
	verdict, err := b.checker.Check(ctx, token, chainID)
	if err != nil {
		b.logger.Error("manual check failed", "token", token, "error", err)
		b.reply(chatID, fmt.Sprintf("❌ *Analysis Failed*\n\n`%v`", err))
		return
	}

	passed, reason := b.policy.Passes(verdict)
	msg := tgbotapi.NewMessage(chatID, formatCheckCard(verdict, passed, reason))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if passed {
		msg.ReplyMarkup = checkKeyboard(token)
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send check result", "error", err)
	}
}

func (b *Bot) cmdChains(chatID int64) {
	var sb strings.Builder
	sb.WriteString("*Configured Chains:*\n\n")
	for _, c := range b.chains {
		sb.WriteString(fmt.Sprintf("`%d` - %s (%s)\n", c.ChainID, c.Name, c.NativeSymbol))
	}
	sb.WriteString(fmt.Sprintf("\nTrading on: *%s*", b.trade.Name))
	b.reply(chatID, sb.String())
}

func (b *Bot) cmdBalance(ctx context.Context, chatID int64) {
	if b.engine == nil {
		b.reply(chatID, "❌ No wallet configured. Set WALLET_PRIVATE_KEY")
		return
	}

	balance, err := b.engine.NativeBalance(ctx)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("❌ Balance check failed: `%v`", err))
		return
	}

	native := new(big.Float).Quo(new(big.Float).SetInt(balance), big.NewFloat(1e18))
	b.reply(chatID, fmt.Sprintf("💰 *Balance*\n\n`%s`\n`%.4f %s`",
		shortAddr(b.engine.Address()), native, b.trade.NativeSymbol))
}

func (b *Bot) cmdTrades(chatID int64) {
	trades, err := b.db.RecentTrades(10)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("❌ Failed to load trades: `%v`", err))
		return
	}
	b.reply(chatID, formatTrades(trades))
}

func (b *Bot) cmdSetPIN(chatID int64, pin string) {
	if len(pin) < 4 {
		b.reply(chatID, "❌ PIN must be at least 4 characters")
		return
	}

	digest := hashPIN(pin)
	b.mu.Lock()
	b.pinHash = digest
	b.mu.Unlock()

	// The new digest lives only in this process; the operator must persist
	// it or the next restart reverts to the old one.
	b.reply(chatID, fmt.Sprintf("✅ PIN set! Hash: `%s...`\n\n⚠️ Add to your environment:\n`TRADING_PIN_HASH=%s`",
		digest[:16], digest))
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	if !b.authorized(chatID) {
		return
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.logger.Error("failed to ack callback", "error", err)
	}

	cb, err := parseCallback(cq.Data)
	if err != nil {
		b.logger.Error("bad callback data", "data", cq.Data, "error", err)
		return
	}

	switch cb.Action {
	case "check":
		b.reply(chatID, fmt.Sprintf("🔍 Re-checking `%s`...", shortAddr(cb.Token)))
		b.runCheck(ctx, chatID, cb.Token, cb.ChainID)

	case "buy":
		if _, err := strconv.ParseFloat(cb.Arg, 64); err != nil {
			b.logger.Error("bad buy amount in callback", "data", cq.Data)
			return
		}
		b.stageTrade(chatID, models.PendingTrade{
			ChatID:       chatID,
			Action:       models.ActionBuy,
			TokenAddress: cb.Token,
			Amount:       cb.Arg,
		}, fmt.Sprintf("⚠️ *Confirm Buy*\n\nToken: `%s`\nAmount: `%s %s`\n\n*Enter PIN:*",
			shortAddr(cb.Token), cb.Arg, b.trade.NativeSymbol))

	case "sell":
		if _, err := strconv.ParseInt(cb.Arg, 10, 64); err != nil {
			b.logger.Error("bad sell percent in callback", "data", cq.Data)
			return
		}
		b.stageTrade(chatID, models.PendingTrade{
			ChatID:       chatID,
			Action:       models.ActionSell,
			TokenAddress: cb.Token,
			Amount:       cb.Arg,
		}, fmt.Sprintf("⚠️ *Confirm Sell*\n\nToken: `%s`\nSell: `%s%%`\n\n*Enter PIN:*",
			shortAddr(cb.Token), cb.Arg))
	}
}

// stageTrade puts the chat into the awaiting-PIN state. Any trade already
// staged for this chat is silently replaced.
func (b *Bot) stageTrade(chatID int64, trade models.PendingTrade, prompt string) {
	if b.engine == nil {
		b.reply(chatID, "❌ No wallet configured. Set WALLET_PRIVATE_KEY to enable trading")
		return
	}

	b.mu.RLock()
	pinSet := b.pinHash != ""
	b.mu.RUnlock()
	if !pinSet {
		b.reply(chatID, "❌ No trading PIN set. Use `/setpin <pin>` first")
		return
	}

	b.intents.Put(trade)
	b.reply(chatID, prompt)
}

// handlePINAttempt consumes the staged trade whatever the outcome: a wrong
// PIN discards it and the operator must press a button again.
func (b *Bot) handlePINAttempt(ctx context.Context, chatID int64, pin string) {
	trade, ok := b.intents.Take(chatID)
	if !ok {
		return
	}

	b.mu.RLock()
	match := b.pinHash != "" && hashPIN(pin) == b.pinHash
	b.mu.RUnlock()

	if !match {
		b.logger.Warn("pin mismatch, trade discarded", "chat_id", chatID, "token", trade.TokenAddress)
		b.reply(chatID, "❌ Wrong PIN! Trade cancelled.")
		return
	}

	b.reply(chatID, fmt.Sprintf("⏳ Executing %s...", trade.Action))

	// Receipt waits can take minutes; keep the intake loop responsive.
	go b.execute(ctx, trade)
}

func (b *Bot) execute(ctx context.Context, trade models.PendingTrade) {
	result, err := b.run(ctx, trade)

	rec := &models.TradeRecord{
		Action: trade.Action,
		Token:  trade.TokenAddress,
		Amount: trade.Amount,
	}

	if err != nil {
		rec.Error = err.Error()
		if _, dberr := b.db.SaveTrade(rec); dberr != nil {
			b.logger.Error("failed to record trade", "error", dberr)
		}
		b.metrics.TradeExecuted(string(trade.Action), "failure")
		b.logger.Error("trade failed", "action", trade.Action, "token", trade.TokenAddress, "error", err)
		b.reply(trade.ChatID, fmt.Sprintf("❌ *Trade Failed*\n\n`%v`", err))
		return
	}

	rec.TxHash = result.Hash
	rec.Success = true
	if _, dberr := b.db.SaveTrade(rec); dberr != nil {
		b.logger.Error("failed to record trade", "error", dberr)
	}
	b.metrics.TradeExecuted(string(trade.Action), "success")
	b.logger.Info("trade executed", "action", trade.Action, "token", trade.TokenAddress, "tx", result.Hash)
	b.reply(trade.ChatID, fmt.Sprintf("✅ *Success!*\n\n[View TX](%s)", result.URL))
}

// run dispatches a confirmed trade to the engine. The amounts were already
// validated when the intent was staged, but a malformed value must still be
// a failed trade here, never a zero-amount one.
func (b *Bot) run(ctx context.Context, trade models.PendingTrade) (*trader.TxResult, error) {
	switch trade.Action {
	case models.ActionBuy:
		amount, err := strconv.ParseFloat(trade.Amount, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid buy amount %q", trade.Amount)
		}
		return b.engine.Buy(ctx, trade.TokenAddress, amount)
	case models.ActionSell:
		percent, err := strconv.ParseInt(trade.Amount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid sell percent %q", trade.Amount)
		}
		return b.engine.Sell(ctx, trade.TokenAddress, percent)
	default:
		return nil, fmt.Errorf("unknown trade action %q", trade.Action)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send reply", "error", err)
	}
}

func hashPIN(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}
