// Command simbot runs an LLM-driven Starknet portfolio agent against a
// simulated wallet. Market data comes from the AVNU aggregator, Paradex and
// centralized reference venues; trades settle in a local SQLite ledger.
//
// Usage:
//
//	simbot --config config.yaml
//	simbot --setup    (first-run configuration wizard)
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/adshao/go-binance/v2"
	bybit "github.com/hirokisan/bybit/v2"
	"github.com/qmerle/simbot/config"
	"github.com/qmerle/simbot/internal"
	"github.com/qmerle/simbot/internal/clients"
	"github.com/qmerle/simbot/internal/domain"
	"github.com/qmerle/simbot/internal/services/collector"
	"github.com/qmerle/simbot/internal/services/pricer"
	"github.com/qmerle/simbot/internal/services/promptbuilder"
	"github.com/qmerle/simbot/internal/services/providers"
	"github.com/qmerle/simbot/internal/services/trader"
	"github.com/qmerle/simbot/internal/setup"
	"github.com/qmerle/simbot/internal/storage/journal"
	"github.com/qmerle/simbot/internal/storage/sqlite"
	"github.com/qmerle/simbot/internal/storage/wallet"
	"github.com/qmerle/simbot/internal/storage/watchlist"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	configPath := flag.String("config", "config.yaml", "path to yaml config")
	runSetup := flag.Bool("setup", false, "run the configuration wizard")
	flag.Parse()

	if *runSetup {
		if err := setup.RunTUI(); err != nil {
			logger.Fatal("setup wizard failed", zap.Error(err))
		}
		*configPath = setup.GeneratedConfigPath
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	registry := domain.DefaultRegistry()

	walletStore, err := wallet.NewStore(db, registry, logger)
	if err != nil {
		logger.Fatal("failed to init wallet store", zap.Error(err))
	}
	watchlistStore, err := watchlist.NewStore(db)
	if err != nil {
		logger.Fatal("failed to init watchlist store", zap.Error(err))
	}
	settlementJournal, err := journal.NewWALStore(cfg.WALDir)
	if err != nil {
		logger.Fatal("failed to init settlement journal", zap.Error(err))
	}
	defer settlementJournal.Close()

	avnuOpts := []clients.AvnuOption{}
	if cfg.Avnu.BaseURL != "" {
		avnuOpts = append(avnuOpts, clients.WithAvnuBaseURL(cfg.Avnu.BaseURL))
	}
	if cfg.Avnu.ImpulseURL != "" {
		avnuOpts = append(avnuOpts, clients.WithAvnuImpulseURL(cfg.Avnu.ImpulseURL))
	}
	avnuClient := clients.NewAvnuClient(avnuOpts...)

	paradexOpts := []clients.ParadexOption{}
	if cfg.Paradex.BaseURL != "" {
		paradexOpts = append(paradexOpts, clients.WithParadexBaseURL(cfg.Paradex.BaseURL))
	}
	if cfg.Paradex.Token != "" {
		paradexOpts = append(paradexOpts, clients.WithParadexTokenSource(clients.StaticToken(cfg.Paradex.Token)))
	}
	paradexClient := clients.NewParadexClient(paradexOpts...)

	llmClient := clients.NewOpenAICompatibleClient(cfg.LLM.APIURL, cfg.LLM.APIKey, cfg.LLM.Model)

	// public market data endpoints need no credentials
	bybitClient := bybit.NewClient()
	var klineProvider collector.KlineProvider
	if cfg.KlineSource == "bybit" {
		klineProvider = collector.NewBybitKlineProvider(bybitClient)
	} else {
		klineProvider = collector.NewBinanceKlineProvider(binance.NewClient("", ""))
	}
	referencePricer := pricer.NewBybitPricer(bybitClient)

	promptBuilder := promptbuilder.NewPromptBuilder(registry, logger)
	simulator := trader.NewSimulator(avnuClient, walletStore, settlementJournal, registry, logger)

	g, ctx := errgroup.WithContext(ctx)
	for _, agentCfg := range cfg.Agents {
		agentCfg := agentCfg

		if len(agentCfg.WatchlistMarkets) > 0 {
			if err := watchlistStore.Upsert(ctx, agentCfg.RoomID, agentCfg.ID, agentCfg.WatchlistMarkets); err != nil {
				logger.Fatal("failed to seed watchlist",
					zap.String("agent", agentCfg.ID.String()), zap.Error(err))
			}
		}

		providerRegistry := providers.NewRegistry(logger, cfg.ProviderConcurrency,
			providers.NewMarketInfoProvider(avnuClient, registry, agentCfg.TrackedTokens),
			providers.NewPriceFeedProvider(avnuClient, registry, agentCfg.TrackedTokens, 14),
			providers.NewTechnicalProvider(klineProvider, cfg.ReferenceSymbols, cfg.KlineInterval, cfg.KlineLimit),
			providers.NewReferencePriceProvider(referencePricer, cfg.ReferenceSymbols),
			providers.NewOrderBookProvider(paradexClient, watchlistStore, agentCfg.RoomID),
			providers.NewWatchlistProvider(watchlistStore, agentCfg.RoomID),
		)

		agent, err := internal.NewAgent(
			agentCfg.ID,
			agentCfg.PollInterval,
			walletStore,
			providerRegistry,
			promptBuilder,
			llmClient,
			simulator,
			logger,
		)
		if err != nil {
			logger.Fatal("failed to create agent",
				zap.String("agent", agentCfg.ID.String()), zap.Error(err))
		}

		g.Go(func() error {
			return agent.Run(ctx)
		})
		logger.Info("agent started", zap.String("agent", agentCfg.ID.String()))
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("agent group stopped", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
