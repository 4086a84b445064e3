package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vitos/coin_tracker/internal/config"
	"github.com/vitos/coin_tracker/internal/infrastructure/paprika"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	coinID := flag.String("coin", "btc-bitcoin", "coin id to check")
	flag.Parse()

	// 1. Load Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Testing Coinpaprika Interaction...\n")
	fmt.Printf("Endpoint: %s\n", cfg.Paprika.BaseURL)

	client := paprika.NewClient(paprika.ClientConfig{
		BaseURL:     cfg.Paprika.BaseURL,
		IconBaseURL: cfg.Paprika.IconBaseURL,
		Timeout:     cfg.PaprikaTimeout(),
	})
	ctx := context.Background()
	failed := false

	// 2. Coin list
	coins, err := client.ListCoins(ctx)
	if err != nil {
		failed = true
		fmt.Printf("❌ Failed to list coins: %v\n", err)
	} else {
		fmt.Printf("✅ Coins: %d listed\n", len(coins))
	}

	// 3. Coin info
	coin, err := client.GetCoin(ctx, *coinID)
	if err != nil {
		failed = true
		fmt.Printf("❌ Failed to get coin %s: %v\n", *coinID, err)
	} else {
		fmt.Printf("✅ Coin: %s (%s), rank %d\n", coin.Name, coin.Symbol, coin.Rank)
		fmt.Printf("   Icon: %s\n", client.IconURL(coin.Symbol))
	}

	// 4. Ticker
	ticker, err := client.GetTicker(ctx, *coinID)
	if err != nil {
		failed = true
		fmt.Printf("❌ Failed to get ticker %s: %v\n", *coinID, err)
	} else {
		usd := ticker.USD()
		fmt.Printf("✅ Ticker: price=%f, 24h=%.2f%%\n", usd.Price, usd.PercentChange24h)
	}

	// 5. OHLCV
	end := time.Now().UTC().Truncate(24 * time.Hour)
	candles, err := client.GetOHLCV(ctx, *coinID, end.AddDate(0, 0, -cfg.Views.ChartDays), end)
	if err != nil {
		failed = true
		fmt.Printf("❌ Failed to get OHLCV %s: %v\n", *coinID, err)
	} else {
		fmt.Printf("✅ OHLCV: %d candles\n", len(candles))
	}

	if failed {
		os.Exit(1)
	}
}
