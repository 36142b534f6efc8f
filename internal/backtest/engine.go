// Package backtest replays merged signals against daily price history,
// executing simulated trades under the cost model and producing the run
// report.
package backtest

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"quantsim/internal/analytics"
	"quantsim/internal/config"
	"quantsim/internal/logger"
	"quantsim/internal/portfolio"
	"quantsim/internal/tradelog"
	"quantsim/internal/types"
)

// Engine drives one backtest run. Engines are cheap; build one per run.
type Engine struct {
	cfg     *config.Config
	costs   portfolio.CostModel
	metrics analytics.Options
	journal bool
}

// New builds an engine from configuration.
func New(cfg *config.Config) *Engine {
	return &Engine{
		cfg:     cfg,
		costs:   portfolio.NewCostModel(cfg.Costs),
		metrics: analytics.FromConfig(cfg.Metrics),
	}
}

// WithJournal enables the on-disk trade journal for this run.
func (e *Engine) WithJournal() *Engine {
	e.journal = true
	return e
}

// Run replays the signals over the bar history day by day and returns the
// run report. Benchmark bars are optional; without them alpha and beta stay
// at their neutral values. Runs are deterministic: the same inputs produce
// the same report.
func (e *Engine) Run(ctx context.Context, bars map[string][]types.Bar, signals []types.Signal, benchmark []types.Bar) types.RunResult {
	ctx, span := logger.StartSpan(ctx, "backtest-run")
	defer span.End()

	days, prices := indexBars(bars)
	if len(days) == 0 {
		return types.RunResult{Status: "error", Message: "no price history to backtest"}
	}

	dueByDay := groupSignals(signals)
	pf := portfolio.New(e.cfg.InitialCash)
	var trades []types.Trade
	var history []types.PortfolioSnapshot

	for _, day := range days {
		quotes := prices[day]
		for _, sig := range dueByDay[day] {
			tr, ok := e.execute(ctx, pf, sig, quotes)
			if !ok {
				continue
			}
			trades = append(trades, tr)
			if e.journal {
				if err := tradelog.Append(tr); err != nil {
					logger.Warn(ctx, "trade journal write failed", "error", err)
				}
			}
		}
		pf.MarkToMarket(quotes)
		history = append(history, pf.Snapshot(day))
	}

	benchValues := alignBenchmark(benchmark, days)
	metrics := analytics.Compute(history, trades, benchValues, e.metrics)
	logger.Info(ctx, "backtest finished",
		"days", len(days),
		"trades", len(trades),
		"final_value", pf.TotalValue(),
		"total_return", metrics.TotalReturn)

	return types.RunResult{
		Status: "success",
		Data: &types.RunData{
			PortfolioHistory:   history,
			TradesHistory:      trades,
			PerformanceMetrics: metrics,
		},
	}
}

// execute turns one due signal into a trade, or skips it with a logged
// reason. A skipped signal never aborts the run.
func (e *Engine) execute(ctx context.Context, pf *portfolio.Portfolio, sig types.Signal, quotes map[string]float64) (types.Trade, bool) {
	price, ok := quotes[sig.Symbol]
	if !ok || price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		logger.Skip(ctx, sig.Symbol, "no usable price on signal day")
		return types.Trade{}, false
	}

	switch sig.Direction {
	case types.DirectionBuy:
		return e.buy(ctx, pf, sig, price)
	case types.DirectionSell:
		return e.sell(ctx, pf, sig, price)
	default:
		return types.Trade{}, false
	}
}

func (e *Engine) buy(ctx context.Context, pf *portfolio.Portfolio, sig types.Signal, price float64) (types.Trade, bool) {
	notional := pf.Cash() * sig.Strength * e.cfg.Trading.MaxPositionFraction
	lot := e.cfg.Trading.LotSize
	shares := int(notional/price) / lot * lot
	if shares <= 0 {
		logger.Skip(ctx, sig.Symbol, "buy below one lot", "notional", notional, "price", price)
		return types.Trade{}, false
	}
	amount := float64(shares) * price
	cost := e.costs.Cost(types.ActionBuy, amount)
	if err := pf.Buy(sig.Symbol, shares, price, cost); err != nil {
		logger.Skip(ctx, sig.Symbol, fmt.Sprintf("buy rejected: %v", err))
		return types.Trade{}, false
	}
	logger.Trade(ctx, sig.Symbol, string(types.ActionBuy), shares, price, cost)
	return types.Trade{
		Symbol:      sig.Symbol,
		Action:      types.ActionBuy,
		Shares:      shares,
		Price:       price,
		Amount:      amount,
		TradingCost: cost,
		Timestamp:   sig.Timestamp,
		Reason:      sig.Reason,
	}, true
}

func (e *Engine) sell(ctx context.Context, pf *portfolio.Portfolio, sig types.Signal, price float64) (types.Trade, bool) {
	pos, ok := pf.Position(sig.Symbol)
	if !ok {
		logger.Skip(ctx, sig.Symbol, "sell without a position")
		return types.Trade{}, false
	}
	shares := int(float64(pos.Shares) * sig.Strength)
	if shares <= 0 {
		logger.Skip(ctx, sig.Symbol, "sell rounds to zero shares", "held", pos.Shares, "strength", sig.Strength)
		return types.Trade{}, false
	}
	amount := float64(shares) * price
	cost := e.costs.Cost(types.ActionSell, amount)
	if _, err := pf.Sell(sig.Symbol, shares, price, cost); err != nil {
		logger.Skip(ctx, sig.Symbol, fmt.Sprintf("sell rejected: %v", err))
		return types.Trade{}, false
	}
	logger.Trade(ctx, sig.Symbol, string(types.ActionSell), shares, price, cost)
	return types.Trade{
		Symbol:      sig.Symbol,
		Action:      types.ActionSell,
		Shares:      shares,
		Price:       price,
		Amount:      amount,
		TradingCost: cost,
		Timestamp:   sig.Timestamp,
		Reason:      sig.Reason,
	}, true
}

// indexBars builds the sorted union of trading days and, per day, the close
// quotes of every symbol that traded. Bars with non-finite or non-positive
// closes are dropped for that symbol and day.
func indexBars(bars map[string][]types.Bar) ([]time.Time, map[time.Time]map[string]float64) {
	prices := make(map[time.Time]map[string]float64)
	for symbol, series := range bars {
		for _, bar := range series {
			if bar.Close <= 0 || math.IsNaN(bar.Close) || math.IsInf(bar.Close, 0) {
				continue
			}
			day := types.Day(bar.Date)
			if prices[day] == nil {
				prices[day] = make(map[string]float64)
			}
			prices[day][symbol] = bar.Close
		}
	}
	days := make([]time.Time, 0, len(prices))
	for day := range prices {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, prices
}

// groupSignals buckets signals by trading day, with all sells ahead of all
// buys so same-day rotations free cash first, and symbol order fixed for
// deterministic replays.
func groupSignals(signals []types.Signal) map[time.Time][]types.Signal {
	byDay := make(map[time.Time][]types.Signal)
	for _, sig := range signals {
		if sig.Direction == types.DirectionHold {
			continue
		}
		day := types.Day(sig.Timestamp)
		byDay[day] = append(byDay[day], sig)
	}
	for day, due := range byDay {
		sort.SliceStable(due, func(i, j int) bool {
			if due[i].Direction != due[j].Direction {
				return due[i].Direction < due[j].Direction
			}
			return due[i].Symbol < due[j].Symbol
		})
		byDay[day] = due
	}
	return byDay
}

// alignBenchmark maps benchmark closes onto the run's trading days, carrying
// the last known value across gaps. Days before the first benchmark bar get
// its first close so returns start flat. Without benchmark bars it returns
// nil.
func alignBenchmark(benchmark []types.Bar, days []time.Time) []float64 {
	if len(benchmark) == 0 {
		return nil
	}
	closes := make(map[time.Time]float64, len(benchmark))
	for _, bar := range benchmark {
		if bar.Close > 0 && !math.IsNaN(bar.Close) {
			closes[types.Day(bar.Date)] = bar.Close
		}
	}
	if len(closes) == 0 {
		return nil
	}
	first := 0.0
	for _, bar := range benchmark {
		if bar.Close > 0 && !math.IsNaN(bar.Close) {
			first = bar.Close
			break
		}
	}
	out := make([]float64, len(days))
	last := first
	for i, day := range days {
		if v, ok := closes[day]; ok {
			last = v
		}
		out[i] = last
	}
	return out
}
