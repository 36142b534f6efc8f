package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
initial_cash: 100000
universe: [AAA, BBB]
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Trading.LotSize != 100 {
		t.Errorf("lot size = %d, want default 100", cfg.Trading.LotSize)
	}
	if cfg.Trading.MaxPositionFraction != 0.2 {
		t.Errorf("max position fraction = %f, want default 0.2", cfg.Trading.MaxPositionFraction)
	}
	if cfg.Costs.MinCommission != 5 {
		t.Errorf("min commission = %f, want default 5", cfg.Costs.MinCommission)
	}
	if cfg.Signals.MergePolicy != "weighted" {
		t.Errorf("merge policy = %q, want default weighted", cfg.Signals.MergePolicy)
	}
	if cfg.Data.Source != "STATIC" || cfg.Data.Days != 250 {
		t.Errorf("data defaults wrong: %+v", cfg.Data)
	}
	if cfg.Collector.PollSeconds != 300 || cfg.Collector.BackoffSeconds != 60 {
		t.Errorf("collector defaults wrong: %+v", cfg.Collector)
	}
	if cfg.Data.Benchmark != "" {
		t.Errorf("benchmark = %q, want none by default", cfg.Data.Benchmark)
	}
}

func TestLoadParsesBenchmark(t *testing.T) {
	body := minimalConfig + `
data:
  source: STATIC
  benchmark: NIFTY50
`
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Data.Benchmark != "NIFTY50" {
		t.Errorf("benchmark = %q, want NIFTY50", cfg.Data.Benchmark)
	}
}

func TestLoadParsesRules(t *testing.T) {
	body := minimalConfig + `
rules:
  technical:
    - name: ma_cross
      short: 5
      long: 20
      filters:
        volume_confirmation: 1.2
  event:
    - name: keyword_trigger
      positive: [upgrade]
      negative: [fraud]
`
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cfg.Rules.Technical) != 1 || cfg.Rules.Technical[0].Name != "ma_cross" {
		t.Errorf("technical rules wrong: %+v", cfg.Rules.Technical)
	}
	if cfg.Rules.Technical[0].Filters.VolumeConfirmation != 1.2 {
		t.Errorf("filter parse wrong: %+v", cfg.Rules.Technical[0].Filters)
	}
	if len(cfg.Rules.Event) != 1 || len(cfg.Rules.Event[0].Negative) != 1 {
		t.Errorf("event rules wrong: %+v", cfg.Rules.Event)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"no cash", "universe: [AAA]\n", "initial_cash"},
		{"empty universe", "initial_cash: 1000\n", "universe"},
		{"bad fraction", minimalConfig + "trading:\n  max_position_fraction: 1.5\n", "max_position_fraction"},
		{"bad policy", minimalConfig + "signals:\n  merge_policy: coinflip\n", "merge_policy"},
		{"bad source", minimalConfig + "data:\n  source: CSV\n", "data.source"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil {
				t.Fatal("bad config accepted")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
