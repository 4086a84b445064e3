package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/vitos/coin_tracker/internal/infrastructure/storage"
)

func main() {
	dbPath := flag.String("db", "coins.db", "path to the fetch audit database")
	limit := flag.Int("limit", 20, "number of recent fetches to print")
	flag.Parse()

	store, err := storage.NewSQLiteStore(*dbPath)
	if err != nil {
		fmt.Printf("Failed to init sqlite: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	counts, err := store.CountByKind(ctx)
	if err != nil {
		fmt.Printf("Failed to count fetches: %v\n", err)
		os.Exit(1)
	}

	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	fmt.Printf("Fetches by kind:\n")
	for _, k := range kinds {
		fmt.Printf("- %s: %d\n", k, counts[k])
	}

	records, err := store.ListFetches(ctx, *limit)
	if err != nil {
		fmt.Printf("Failed to list fetches: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nLast %d fetches:\n", len(records))
	for _, r := range records {
		if r.OK {
			fmt.Printf("  ✅ %s %s %s status=%d took=%s\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"), r.Kind, r.CoinID, r.StatusCode, r.Duration)
		} else {
			fmt.Printf("  ❌ %s %s %s status=%d took=%s err=%s\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"), r.Kind, r.CoinID, r.StatusCode, r.Duration, r.Error)
		}
	}
}
