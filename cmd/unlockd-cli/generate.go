package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/UnlockdFinance/unlockd-v2/internal/chain"
	"github.com/UnlockdFinance/unlockd-v2/internal/fixture"
	"github.com/UnlockdFinance/unlockd-v2/internal/generate"
	"github.com/UnlockdFinance/unlockd-v2/internal/quotecache"
	"github.com/UnlockdFinance/unlockd-v2/internal/rate"
	"github.com/UnlockdFinance/unlockd-v2/internal/reservoir"
	intsecrets "github.com/UnlockdFinance/unlockd-v2/internal/secrets"
	"github.com/UnlockdFinance/unlockd-v2/pkg/config"
	"github.com/UnlockdFinance/unlockd-v2/pkg/pricing"
	pkgsecrets "github.com/UnlockdFinance/unlockd-v2/pkg/secrets"
	"github.com/UnlockdFinance/unlockd-v2/pkg/utils"
)

func runGenerate(ctx context.Context, cfg *config.Config, log *zap.Logger, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var req generate.Request
	fs.StringVar(&req.Taker, "address", "", "Taker of the NFT on succeed")
	fs.StringVar(&req.NFT, "nft", "", `Address and tokenId of the nft, format "address:tokenId"`)
	fs.StringVar(&req.Action, "action", "", `Action "buy" or "sell"`)
	fs.StringVar(&req.Currency, "currency", "", "Currency address, eth is 0x0000000000000000000000000000000000000000")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidateGenerate(); err != nil {
		return err
	}

	// --- Ethereum JSON-RPC ---
	eth, err := chain.Dial(ctx, cfg.RPCURL)
	if err != nil {
		return err
	}
	defer eth.Close()

	// --- Reservoir API key (env, else AWS Secrets Manager) ---
	var provider pkgsecrets.Provider
	if cfg.ReservoirAPIKey == "" {
		provider, err = pkgsecrets.NewAWSProvider(ctx, cfg.AWSRegion)
		if err != nil {
			return err
		}
	}
	resolver := intsecrets.NewAPIKeyResolver(
		log,
		cfg.ReservoirAPIKey,
		cfg.ReservoirAPIKeySecret,
		provider,
		pkgsecrets.NewCache[string](cfg.SecretCacheTTL),
	)
	apiKey, err := resolver.Resolve(ctx)
	if err != nil {
		return err
	}

	log.Info("generate.start",
		zap.String("rpc", utils.MaskURL(cfg.RPCURL)),
		zap.String("reservoir", cfg.ReservoirBaseURL),
		zap.String("api_key", utils.MaskKey(apiKey)))

	// --- Reservoir client ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	})
	var quotes generate.QuoteSource = reservoir.NewClient(log, rateMgr, cfg.ReservoirBaseURL, apiKey, reservoir.Options{
		Timeout:  cfg.HTTPTimeout,
		RetryMax: cfg.HTTPRetryMax,
	})

	// --- Optional Redis quote cache ---
	if cfg.RedisAddr != "" {
		qc, err := quotecache.New(cfg.RedisAddr, cfg.RedisDB, cfg.RedisPass, cfg.QuoteCacheTTL, log)
		if err != nil {
			log.Warn("quotecache.disabled", zap.Error(err))
		} else {
			defer qc.Close() //nolint:errcheck
			quotes = quotecache.NewCachingSource(quotes, qc, log)
		}
	}

	svc := generate.NewService(
		log,
		quotes,
		eth,
		pricing.NewCalculator(pricing.DefaultCurrencies(), pricing.DefaultSlippagePercent),
		fixture.NewWriter(cfg.FixtureDir),
	)

	res, err := svc.Generate(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Fixture: %s\n", res.Path)
	fmt.Fprintf(stdout, "Block: %s\n", res.Fixture.BlockNumber)
	fmt.Fprintf(stdout, "Price: %s\n", res.Fixture.Price)
	return nil
}
