package marketdata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"quantsim/internal/config"
	"quantsim/internal/types"
)

// Zerodha loads daily candles from the Kite Connect historical API. It needs
// the instrument token of every symbol up front; the historical endpoint is
// token-addressed.
type Zerodha struct {
	client *kiteconnect.Client
	tokens map[string]int
}

// NewZerodha builds a provider from an authenticated client and a
// symbol-to-instrument-token map.
func NewZerodha(client *kiteconnect.Client, tokens map[string]int) *Zerodha {
	return &Zerodha{client: client, tokens: tokens}
}

// NewZerodhaFromEnv reads KITE_API_KEY and KITE_ACCESS_TOKEN and wires the
// client with the configured token map.
func NewZerodhaFromEnv(cfg config.DataConfig) (*Zerodha, error) {
	apiKey := os.Getenv("KITE_API_KEY")
	accessToken := os.Getenv("KITE_ACCESS_TOKEN")
	if apiKey == "" || accessToken == "" {
		return nil, errors.New("marketdata: KITE_API_KEY and KITE_ACCESS_TOKEN must be set for the ZERODHA source")
	}
	if len(cfg.Tokens) == 0 {
		return nil, errors.New("marketdata: data.tokens must map every symbol to its instrument token")
	}
	client := kiteconnect.New(apiKey)
	client.SetAccessToken(accessToken)
	return NewZerodha(client, cfg.Tokens), nil
}

// DailyBars fetches day candles for the symbol's instrument token.
func (z *Zerodha) DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]types.Bar, error) {
	token, ok := z.tokens[symbol]
	if !ok {
		return nil, fmt.Errorf("marketdata: no instrument token for %q", symbol)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	candles, err := z.client.GetHistoricalData(token, "day", from, to, false, false)
	if err != nil {
		return nil, fmt.Errorf("marketdata: historical data for %s: %w", symbol, err)
	}
	bars := make([]types.Bar, 0, len(candles))
	for _, c := range candles {
		bars = append(bars, types.Bar{
			Date:   c.Date.Time,
			Open:   c.Open,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Close,
			Volume: float64(c.Volume),
		})
	}
	return bars, nil
}
