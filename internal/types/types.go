// Package types holds the domain types shared across the simulator: price
// bars, market events, signals, trades and run results.
package types

import "time"

// Bar is one daily OHLCV record for a symbol.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Direction encodes the side of a signal: -1 sell, 0 hold, 1 buy.
type Direction int

const (
	DirectionSell Direction = -1
	DirectionHold Direction = 0
	DirectionBuy  Direction = 1
)

// Signal is the unified signal record produced by both the technical and the
// event generators. Strength is always in [0,1].
type Signal struct {
	Symbol         string    `json:"symbol"`
	Direction      Direction `json:"signal"`
	Strength       float64   `json:"strength"`
	Reason         string    `json:"reason"`
	Timestamp      time.Time `json:"timestamp"`
	RuleName       string    `json:"rule_name"`
	Category       string    `json:"category"`
	IndicatorsUsed []string  `json:"indicators_used,omitempty"`

	// SourceRules and SourceReasons list the contributing rule names and
	// their reasons, index-aligned, when this signal is the result of
	// merging several signals for the same symbol and day.
	SourceRules   []string `json:"source_rules,omitempty"`
	SourceReasons []string `json:"source_reasons,omitempty"`
}

// EventType classifies a market event.
type EventType string

const (
	EventNews            EventType = "news"
	EventFinancialReport EventType = "financial_report"
	EventAnnouncement    EventType = "announcement"
	EventSentiment       EventType = "sentiment"
	EventMacro           EventType = "macro"
	EventEarnings        EventType = "earnings"
	EventDividend        EventType = "dividend"
	EventInsider         EventType = "insider"
	EventRating          EventType = "rating"
)

// Severity grades how market-moving an event is expected to be.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// MarketEvent is a discrete market event (news item, disclosure, rating
// change). Events are produced by the collector and consumed read-only.
type MarketEvent struct {
	ID             string         `json:"event_id"`
	Type           EventType      `json:"type"`
	Symbol         string         `json:"symbol"`
	Timestamp      time.Time      `json:"timestamp"`
	Title          string         `json:"title"`
	Content        string         `json:"content,omitempty"`
	Severity       Severity       `json:"severity"`
	SentimentScore float64        `json:"sentiment_score"`
	Keywords       []string       `json:"keywords,omitempty"`
	Source         string         `json:"source"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// TradeAction is the side of an executed trade.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// Trade is one append-only ledger entry for an executed trade.
type Trade struct {
	Symbol      string      `json:"symbol"`
	Action      TradeAction `json:"action"`
	Shares      int         `json:"shares"`
	Price       float64     `json:"price"`
	Amount      float64     `json:"amount"`
	TradingCost float64     `json:"trading_cost"`
	Timestamp   time.Time   `json:"timestamp"`
	Reason      string      `json:"reason,omitempty"`
}

// TradePair is a FIFO-matched buy/sell lot pair used for per-trade P&L
// attribution. Pairs are derived from the trade ledger, never stored.
type TradePair struct {
	Symbol    string    `json:"symbol"`
	Shares    int       `json:"shares"`
	BuyPrice  float64   `json:"buy_price"`
	SellPrice float64   `json:"sell_price"`
	BuyTime   time.Time `json:"buy_time"`
	SellTime  time.Time `json:"sell_time"`
	GrossPnL  float64   `json:"gross_pnl"`
	NetPnL    float64   `json:"net_pnl"`
	ReturnPct float64   `json:"return_pct"`
}

// PositionSnapshot is the state of one position inside a daily snapshot.
type PositionSnapshot struct {
	Symbol        string  `json:"symbol"`
	Shares        int     `json:"shares"`
	AvgPrice      float64 `json:"avg_price"`
	CurrentPrice  float64 `json:"current_price"`
	MarketValue   float64 `json:"market_value"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	Weight        float64 `json:"weight"`
}

// PortfolioSnapshot records the portfolio state after one simulated day.
type PortfolioSnapshot struct {
	Date       time.Time          `json:"date"`
	TotalValue float64            `json:"value"`
	Cash       float64            `json:"cash"`
	Positions  []PositionSnapshot `json:"positions"`
}

// PerformanceMetrics are the derived metrics of a completed run.
type PerformanceMetrics struct {
	TotalReturn  float64 `json:"total_return"`
	AnnualReturn float64 `json:"annual_return"`
	Volatility   float64 `json:"volatility"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	Alpha        float64 `json:"alpha"`
	Beta         float64 `json:"beta"`
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
	TotalTrades  int     `json:"total_trades"`
}

// RunData is the payload of a successful backtest run.
type RunData struct {
	PortfolioHistory   []PortfolioSnapshot `json:"portfolio_history"`
	TradesHistory      []Trade             `json:"trades_history"`
	PerformanceMetrics PerformanceMetrics  `json:"performance_metrics"`
}

// RunResult is the output contract of a backtest run.
type RunResult struct {
	Status  string   `json:"status"`
	Data    *RunData `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
}

// Day truncates a timestamp to its trading day in UTC. Signals and bars are
// matched on this value.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
