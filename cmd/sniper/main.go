package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/ethclient"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/sial-ari/evm-token-sniper/internal/budget"
	"github.com/sial-ari/evm-token-sniper/internal/config"
	"github.com/sial-ari/evm-token-sniper/internal/db"
	"github.com/sial-ari/evm-token-sniper/internal/dexscreener"
	"github.com/sial-ari/evm-token-sniper/internal/intent"
	"github.com/sial-ari/evm-token-sniper/internal/metrics"
	"github.com/sial-ari/evm-token-sniper/internal/scanner"
	"github.com/sial-ari/evm-token-sniper/internal/shield"
	"github.com/sial-ari/evm-token-sniper/internal/telegram"
	"github.com/sial-ari/evm-token-sniper/internal/trader"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	chains, err := config.LoadChains(cfg.ChainsConfigPath)
	if err != nil {
		logger.Error("failed to load chains config", "error", err)
		os.Exit(1)
	}

	tradeChain, err := config.FindChain(chains, cfg.TradeChain)
	if err != nil {
		logger.Error("invalid trade chain", "error", err)
		os.Exit(1)
	}

	database, err := db.Initialize(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	m := metrics.New(nil)
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(cfg.MetricsAddr); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	// The execution engine is optional: without a wallet key the process
	// still scans and alerts, it just cannot trade.
	var engine *trader.Engine
	if cfg.WalletPrivateKey != "" {
		client, err := ethclient.Dial(tradeChain.RPCURL)
		if err != nil {
			logger.Error("failed to dial RPC endpoint", "chain", tradeChain.Name, "error", err)
			os.Exit(1)
		}
		defer client.Close()

		engine, err = trader.NewEngine(client, tradeChain, cfg.WalletPrivateKey, cfg, logger.With("component", "trader"))
		if err != nil {
			logger.Error("failed to create trading engine", "error", err)
			os.Exit(1)
		}
		logger.Info("trading wallet loaded", "address", engine.Address(), "chain", tradeChain.Name)
	} else {
		logger.Warn("no wallet configured, trading disabled")
	}

	checker := shield.NewClient(cfg.ShieldAPIURL)
	policy := shield.Policy{
		MaxRiskScore:       cfg.MaxRiskScore,
		RequireBuySuccess:  cfg.RequireBuySuccess,
		RequireSellSuccess: cfg.RequireSellSuccess,
		MaxTotalTaxPercent: cfg.MaxTotalTaxPercent,
	}

	var api *tgbotapi.BotAPI
	if cfg.TelegramToken != "" {
		api, err = tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			logger.Error("failed to create telegram bot", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("no telegram token configured, alerts will be logged only")
	}

	notifier := telegram.NewNotifier(api, cfg.OwnerChatID, logger.With("component", "notifier"))
	dailyBudget := budget.New(cfg.AutoBuyEnabled, cfg.AutoBuyMaxDaily)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if api != nil {
		intents := intent.NewStore()
		bot := telegram.NewBot(api, cfg, chains, tradeChain, database, intents,
			engineOrNil(engine), checker, policy, m, logger.With("component", "bot"))
		go bot.Start(ctx)
	}

	source := dexscreener.NewClient(cfg.DexScreenerAPIURL)
	scan := scanner.New(cfg, chains, tradeChain, source, database, checker, policy,
		notifier, buyerOrNil(engine), dailyBudget, m, logger.With("component", "scanner"))
	go scan.Run(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping")
	cancel()
}

// A nil *trader.Engine stored in an interface would not compare equal to
// nil; convert explicitly.
func engineOrNil(e *trader.Engine) telegram.Executor {
	if e == nil {
		return nil
	}
	return e
}

func buyerOrNil(e *trader.Engine) scanner.Buyer {
	if e == nil {
		return nil
	}
	return e
}
