// Package tradelog appends the simulated trade and signal journals as daily
// JSON-lines files.
package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"quantsim/internal/types"
)

var mu sync.Mutex

// Entry is one journaled trade line.
type Entry struct {
	Time   string         `json:"time"`
	Symbol string         `json:"symbol"`
	Action string         `json:"action"`
	Shares int            `json:"shares"`
	Price  float64        `json:"price"`
	Cost   float64        `json:"cost"`
	Reason string         `json:"reason,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// SignalEntry is one journaled signal line.
type SignalEntry struct {
	Time      string   `json:"time"`
	Symbol    string   `json:"symbol"`
	Direction int      `json:"direction"`
	Strength  float64  `json:"strength"`
	Rule      string   `json:"rule"`
	Reason    string   `json:"reason,omitempty"`
	Sources   []string `json:"sources,omitempty"`
}

func logDir() string {
	if v := os.Getenv("QUANTSIM_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func dailyFilepath(t time.Time) string {
	return filepath.Join(logDir(), t.UTC().Format("2006-01-02")+".txt")
}

func signalsFilepath(t time.Time) string {
	return filepath.Join(logDir(), "signals", t.UTC().Format("2006-01-02")+".txt")
}

// Append journals an executed trade under the trade's own day, so a
// backtest over past dates lands in the right files.
func Append(tr types.Trade) error {
	e := Entry{
		Time:   tr.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		Symbol: tr.Symbol,
		Action: string(tr.Action),
		Shares: tr.Shares,
		Price:  tr.Price,
		Cost:   tr.TradingCost,
		Reason: tr.Reason,
	}
	return appendLine(dailyFilepath(tr.Timestamp), e)
}

// AppendSignal journals a merged signal under its own day.
func AppendSignal(sig types.Signal) error {
	e := SignalEntry{
		Time:      sig.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		Symbol:    sig.Symbol,
		Direction: int(sig.Direction),
		Strength:  sig.Strength,
		Rule:      sig.RuleName,
		Reason:    sig.Reason,
		Sources:   sig.SourceRules,
	}
	return appendLine(signalsFilepath(sig.Timestamp), e)
}

func appendLine(path string, v any) error {
	mu.Lock()
	defer mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips journal files older than the retention window and
// removes the originals.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(logDir(), func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			return os.Remove(p)
		}
		if e3 := compressFile(p, gz); e3 != nil {
			return nil
		}
		return os.Remove(p)
	})
}

func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		out.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
