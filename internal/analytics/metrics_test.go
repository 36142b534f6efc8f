package analytics

import (
	"math"
	"testing"
	"time"

	"quantsim/internal/types"
)

func history(values ...float64) []types.PortfolioSnapshot {
	out := make([]types.PortfolioSnapshot, len(values))
	for i, v := range values {
		out[i] = types.PortfolioSnapshot{
			Date:       time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			TotalValue: v,
			Cash:       v,
		}
	}
	return out
}

func defaultOpts() Options {
	return Options{RiskFreeRate: 0.03, TradingDays: 252}
}

func TestComputeTotalReturn(t *testing.T) {
	m := Compute(history(100_000, 105_000, 110_000), nil, nil, defaultOpts())
	if math.Abs(m.TotalReturn-0.1) > 1e-9 {
		t.Errorf("total return = %f, want 0.1", m.TotalReturn)
	}
	if m.AnnualReturn <= m.TotalReturn {
		t.Errorf("annualized %f should exceed the 2-day total %f", m.AnnualReturn, m.TotalReturn)
	}
}

func TestComputeShortHistoryIsZero(t *testing.T) {
	m := Compute(history(100_000), nil, nil, defaultOpts())
	if m.TotalReturn != 0 || m.SharpeRatio != 0 || m.MaxDrawdown != 0 {
		t.Errorf("single snapshot should yield zero metrics: %+v", m)
	}
	if m.Beta != 1 {
		t.Errorf("beta = %f, want neutral 1", m.Beta)
	}
}

func TestMaxDrawdown(t *testing.T) {
	m := Compute(history(100, 120, 90, 110, 80), nil, nil, defaultOpts())
	want := (80.0 - 120.0) / 120.0
	if math.Abs(m.MaxDrawdown-want) > 1e-9 {
		t.Errorf("max drawdown = %f, want %f", m.MaxDrawdown, want)
	}
	if m.MaxDrawdown > 0 {
		t.Error("drawdown must not be positive")
	}
}

func TestFlatHistoryZeroVolatility(t *testing.T) {
	m := Compute(history(100, 100, 100, 100), nil, nil, defaultOpts())
	if m.Volatility != 0 {
		t.Errorf("volatility = %f, want 0", m.Volatility)
	}
	if m.SharpeRatio != 0 {
		t.Errorf("sharpe with zero volatility = %f, want 0", m.SharpeRatio)
	}
}

func TestBetaAgainstIdenticalBenchmark(t *testing.T) {
	h := history(100, 102, 101, 105, 103)
	bench := []float64{100, 102, 101, 105, 103}
	m := Compute(h, nil, bench, defaultOpts())
	if math.Abs(m.Beta-1) > 1e-9 {
		t.Errorf("beta against itself = %f, want 1", m.Beta)
	}
	if math.Abs(m.Alpha) > 1e-9 {
		t.Errorf("alpha against itself = %f, want 0", m.Alpha)
	}
}

func TestNoBenchmarkNeutralAlphaBeta(t *testing.T) {
	m := Compute(history(100, 102, 104), nil, nil, defaultOpts())
	if m.Alpha != 0 || m.Beta != 1 {
		t.Errorf("alpha/beta without benchmark = %f/%f, want 0/1", m.Alpha, m.Beta)
	}
}

func TestWinRateAndProfitFactor(t *testing.T) {
	trades := []types.Trade{
		tradeAt(2, "AAA", types.ActionBuy, 100, 10, 0),
		tradeAt(3, "AAA", types.ActionSell, 100, 12, 0), // +200
		tradeAt(4, "AAA", types.ActionBuy, 100, 10, 0),
		tradeAt(5, "AAA", types.ActionSell, 100, 9, 0), // -100
	}
	m := Compute(history(100, 101, 102), trades, nil, defaultOpts())
	if math.Abs(m.WinRate-0.5) > 1e-9 {
		t.Errorf("win rate = %f, want 0.5", m.WinRate)
	}
	if math.Abs(m.ProfitFactor-2) > 1e-9 {
		t.Errorf("profit factor = %f, want 2", m.ProfitFactor)
	}
	if m.TotalTrades != 4 {
		t.Errorf("total trades = %d, want 4", m.TotalTrades)
	}
}
