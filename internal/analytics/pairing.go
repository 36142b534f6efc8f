// Package analytics derives per-trade attribution and run-level performance
// metrics from a completed backtest.
package analytics

import (
	"sort"
	"time"

	"quantsim/internal/types"
)

type buyLot struct {
	shares       int
	price        float64
	time         time.Time
	costPerShare float64
}

// PairTrades matches sells against buys per symbol in FIFO order and returns
// the closed round trips. A sell larger than the oldest lot splits across
// lots; transaction costs are allocated to pairs proportionally by shares.
// Unmatched buys (still-open lots) and unmatched sells are ignored.
func PairTrades(trades []types.Trade) []types.TradePair {
	ordered := make([]types.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	lots := make(map[string][]buyLot)
	var pairs []types.TradePair
	for _, tr := range ordered {
		if tr.Shares <= 0 {
			continue
		}
		switch tr.Action {
		case types.ActionBuy:
			lots[tr.Symbol] = append(lots[tr.Symbol], buyLot{
				shares:       tr.Shares,
				price:        tr.Price,
				time:         tr.Timestamp,
				costPerShare: tr.TradingCost / float64(tr.Shares),
			})
		case types.ActionSell:
			sellCostPerShare := tr.TradingCost / float64(tr.Shares)
			remaining := tr.Shares
			queue := lots[tr.Symbol]
			for remaining > 0 && len(queue) > 0 {
				lot := &queue[0]
				matched := lot.shares
				if matched > remaining {
					matched = remaining
				}
				gross := (tr.Price - lot.price) * float64(matched)
				net := gross - (lot.costPerShare+sellCostPerShare)*float64(matched)
				pair := types.TradePair{
					Symbol:    tr.Symbol,
					Shares:    matched,
					BuyPrice:  lot.price,
					SellPrice: tr.Price,
					BuyTime:   lot.time,
					SellTime:  tr.Timestamp,
					GrossPnL:  gross,
					NetPnL:    net,
				}
				if lot.price != 0 {
					pair.ReturnPct = (tr.Price - lot.price) / lot.price * 100
				}
				pairs = append(pairs, pair)

				lot.shares -= matched
				remaining -= matched
				if lot.shares == 0 {
					queue = queue[1:]
				}
			}
			lots[tr.Symbol] = queue
		}
	}
	return pairs
}
