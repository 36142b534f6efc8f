package portfolio

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"quantsim/internal/types"
)

var (
	// ErrInsufficientCash rejects a buy the cash balance cannot cover.
	ErrInsufficientCash = errors.New("portfolio: insufficient cash")
	// ErrInsufficientShares rejects a sell beyond the held quantity.
	ErrInsufficientShares = errors.New("portfolio: insufficient shares")
)

// Position is one open holding. Positions are owned by the Portfolio and
// mutated only through Buy/Sell.
type Position struct {
	Symbol       string
	Shares       int
	AvgPrice     float64
	CurrentPrice float64
	RealizedPnL  float64
}

// MarketValue is shares times the current price.
func (p *Position) MarketValue() float64 {
	return float64(p.Shares) * p.CurrentPrice
}

// UnrealizedPnL is the open profit against the average cost.
func (p *Position) UnrealizedPnL() float64 {
	return (p.CurrentPrice - p.AvgPrice) * float64(p.Shares)
}

// Portfolio tracks cash and open positions. It is a single-writer
// structure: concurrent backtests must use independent instances.
type Portfolio struct {
	cash      float64
	positions map[string]*Position
}

// New creates a portfolio with the given starting cash.
func New(cash float64) *Portfolio {
	return &Portfolio{
		cash:      cash,
		positions: make(map[string]*Position),
	}
}

// Cash returns the current cash balance.
func (pf *Portfolio) Cash() float64 { return pf.cash }

// Position returns the open position for a symbol, if any.
func (pf *Portfolio) Position(symbol string) (*Position, bool) {
	p, ok := pf.positions[symbol]
	return p, ok
}

// Buy adds shares at price, charging cost against cash. The average entry
// price is cost-weighted across lots.
func (pf *Portfolio) Buy(symbol string, shares int, price, cost float64) error {
	if shares <= 0 {
		return fmt.Errorf("buy %s: non-positive share count %d", symbol, shares)
	}
	amount := float64(shares) * price
	if pf.cash < amount+cost {
		return fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientCash, amount+cost, pf.cash)
	}
	pf.cash -= amount + cost

	p := pf.positions[symbol]
	if p == nil {
		p = &Position{Symbol: symbol, Shares: shares, AvgPrice: price, CurrentPrice: price}
		pf.positions[symbol] = p
		return nil
	}
	total := p.AvgPrice*float64(p.Shares) + amount
	p.Shares += shares
	p.AvgPrice = total / float64(p.Shares)
	p.CurrentPrice = price
	return nil
}

// Sell removes shares at price, crediting the proceeds net of cost, and
// returns the realized P&L of the sold lot. Selling more than held is
// rejected outright, never partially executed.
func (pf *Portfolio) Sell(symbol string, shares int, price, cost float64) (float64, error) {
	if shares <= 0 {
		return 0, fmt.Errorf("sell %s: non-positive share count %d", symbol, shares)
	}
	p := pf.positions[symbol]
	if p == nil || p.Shares < shares {
		held := 0
		if p != nil {
			held = p.Shares
		}
		return 0, fmt.Errorf("%w: want %d, hold %d", ErrInsufficientShares, shares, held)
	}
	amount := float64(shares) * price
	pf.cash += amount - cost

	realized := (price - p.AvgPrice)*float64(shares) - cost
	p.Shares -= shares
	p.CurrentPrice = price
	p.RealizedPnL += realized
	if p.Shares == 0 {
		delete(pf.positions, symbol)
	}
	return realized, nil
}

// MarkToMarket updates current prices for every position present in the
// price map. Symbols without a quote keep their last price.
func (pf *Portfolio) MarkToMarket(prices map[string]float64) {
	for sym, p := range pf.positions {
		if price, ok := prices[sym]; ok {
			p.CurrentPrice = price
		}
	}
}

// TotalValue is cash plus the market value of every position.
func (pf *Portfolio) TotalValue() float64 {
	total := pf.cash
	for _, p := range pf.positions {
		total += p.MarketValue()
	}
	return total
}

// Snapshot captures the portfolio state for one simulated day, with
// position weights relative to total value.
func (pf *Portfolio) Snapshot(date time.Time) types.PortfolioSnapshot {
	total := pf.TotalValue()
	snap := types.PortfolioSnapshot{
		Date:       date,
		TotalValue: total,
		Cash:       pf.cash,
	}
	symbols := make([]string, 0, len(pf.positions))
	for sym := range pf.positions {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	for _, sym := range symbols {
		p := pf.positions[sym]
		ps := types.PositionSnapshot{
			Symbol:        p.Symbol,
			Shares:        p.Shares,
			AvgPrice:      p.AvgPrice,
			CurrentPrice:  p.CurrentPrice,
			MarketValue:   p.MarketValue(),
			UnrealizedPnL: p.UnrealizedPnL(),
		}
		if total > 0 {
			ps.Weight = ps.MarketValue / total
		}
		snap.Positions = append(snap.Positions, ps)
	}
	return snap
}
