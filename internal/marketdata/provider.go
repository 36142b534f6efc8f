// Package marketdata supplies daily price history to the backtest, either
// synthesized deterministically or fetched from the Zerodha Kite API.
package marketdata

import (
	"context"
	"fmt"
	"time"

	"quantsim/internal/config"
	"quantsim/internal/types"
)

// Provider loads daily bars for one symbol over a date range, oldest first.
type Provider interface {
	DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]types.Bar, error)
}

// FromConfig builds the provider the data section selects.
func FromConfig(cfg config.DataConfig) (Provider, error) {
	switch cfg.Source {
	case "STATIC":
		return NewStatic(cfg.Seed), nil
	case "ZERODHA":
		return NewZerodhaFromEnv(cfg)
	default:
		return nil, fmt.Errorf("marketdata: unknown source %q", cfg.Source)
	}
}

// LoadUniverse fetches the daily history of every symbol. A symbol that
// fails to load aborts the whole load; partial universes skew the backtest.
func LoadUniverse(ctx context.Context, p Provider, symbols []string, from, to time.Time) (map[string][]types.Bar, error) {
	out := make(map[string][]types.Bar, len(symbols))
	for _, symbol := range symbols {
		bars, err := p.DailyBars(ctx, symbol, from, to)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", symbol, err)
		}
		out[symbol] = bars
	}
	return out, nil
}
