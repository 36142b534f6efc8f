package analytics

import (
	"math"

	"quantsim/internal/config"
	"quantsim/internal/types"
)

// Options parameterize the derived metrics.
type Options struct {
	RiskFreeRate float64
	TradingDays  int
}

// FromConfig builds metric options from configuration.
func FromConfig(cfg config.MetricsConfig) Options {
	return Options{RiskFreeRate: cfg.RiskFreeRate, TradingDays: cfg.TradingDays}
}

// Compute derives run-level performance metrics from the daily portfolio
// history, the trade ledger and an optional benchmark value series aligned
// with the history. With fewer than two snapshots every metric is zero. With
// no benchmark, alpha stays zero and beta stays one.
func Compute(history []types.PortfolioSnapshot, trades []types.Trade, benchmark []float64, opts Options) types.PerformanceMetrics {
	m := types.PerformanceMetrics{Beta: 1, TotalTrades: len(trades)}
	if len(history) < 2 {
		return m
	}
	if opts.TradingDays <= 0 {
		opts.TradingDays = 252
	}

	initial := history[0].TotalValue
	final := history[len(history)-1].TotalValue
	if initial > 0 {
		m.TotalReturn = (final - initial) / initial
	}

	returns := dailyReturns(history)
	periods := float64(len(returns))
	if m.TotalReturn > -1 {
		m.AnnualReturn = math.Pow(1+m.TotalReturn, float64(opts.TradingDays)/periods) - 1
	} else {
		m.AnnualReturn = -1
	}

	m.Volatility = stddev(returns) * math.Sqrt(float64(opts.TradingDays))
	if m.Volatility > 0 {
		m.SharpeRatio = (m.AnnualReturn - opts.RiskFreeRate) / m.Volatility
	}
	m.MaxDrawdown = maxDrawdown(history)

	if len(benchmark) == len(history) && len(benchmark) >= 2 {
		benchReturns := make([]float64, 0, len(benchmark)-1)
		for i := 1; i < len(benchmark); i++ {
			if benchmark[i-1] == 0 {
				benchReturns = append(benchReturns, 0)
				continue
			}
			benchReturns = append(benchReturns, (benchmark[i]-benchmark[i-1])/benchmark[i-1])
		}
		m.Alpha, m.Beta = alphaBeta(returns, benchReturns, opts)
	}

	pairs := PairTrades(trades)
	m.WinRate, m.ProfitFactor = tradeStats(pairs)
	return m
}

func dailyReturns(history []types.PortfolioSnapshot) []float64 {
	out := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		prev := history[i-1].TotalValue
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (history[i].TotalValue-prev)/prev)
	}
	return out
}

// maxDrawdown is the deepest peak-to-trough decline, as a negative fraction.
func maxDrawdown(history []types.PortfolioSnapshot) float64 {
	peak := history[0].TotalValue
	worst := 0.0
	for _, snap := range history[1:] {
		if snap.TotalValue > peak {
			peak = snap.TotalValue
			continue
		}
		if peak > 0 {
			dd := (snap.TotalValue - peak) / peak
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

func alphaBeta(returns, bench []float64, opts Options) (alpha, beta float64) {
	n := len(returns)
	if len(bench) < n {
		n = len(bench)
	}
	if n < 2 {
		return 0, 1
	}
	returns, bench = returns[:n], bench[:n]

	meanR := mean(returns)
	meanB := mean(bench)
	var cov, varB float64
	for i := 0; i < n; i++ {
		cov += (returns[i] - meanR) * (bench[i] - meanB)
		varB += (bench[i] - meanB) * (bench[i] - meanB)
	}
	if varB == 0 {
		return 0, 1
	}
	beta = cov / varB
	// annualized intercept of the daily regression
	alpha = (meanR - beta*meanB) * float64(opts.TradingDays)
	return alpha, beta
}

// tradeStats works on percentage returns rather than currency P&L so a few
// large trades cannot dominate the ratios.
func tradeStats(pairs []types.TradePair) (winRate, profitFactor float64) {
	if len(pairs) == 0 {
		return 0, 0
	}
	wins := 0
	var gain, loss float64
	for _, p := range pairs {
		if p.ReturnPct > 0 {
			wins++
			gain += p.ReturnPct
		} else {
			loss += -p.ReturnPct
		}
	}
	winRate = float64(wins) / float64(len(pairs))
	if loss > 0 {
		profitFactor = gain / loss
	} else if gain > 0 {
		profitFactor = math.Inf(1)
	}
	return winRate, profitFactor
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var sumSq float64
	for _, v := range vals {
		sumSq += (v - m) * (v - m)
	}
	return math.Sqrt(sumSq / float64(len(vals)))
}
