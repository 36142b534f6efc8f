package marketdata

import (
	"context"
	"reflect"
	"testing"
	"time"

	"quantsim/internal/config"
)

var (
	testFrom = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testTo   = time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC)
)

func TestStaticDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := NewStatic(7).DailyBars(ctx, "AAA", testFrom, testTo)
	if err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	b, err := NewStatic(7).DailyBars(ctx, "AAA", testFrom, testTo)
	if err != nil {
		t.Fatalf("second load failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed and symbol produced different bars")
	}
}

func TestStaticSymbolsDiffer(t *testing.T) {
	ctx := context.Background()
	a, _ := NewStatic(7).DailyBars(ctx, "AAA", testFrom, testTo)
	b, _ := NewStatic(7).DailyBars(ctx, "BBB", testFrom, testTo)
	if reflect.DeepEqual(a, b) {
		t.Error("different symbols produced identical bars")
	}
}

func TestStaticSkipsWeekends(t *testing.T) {
	bars, _ := NewStatic(1).DailyBars(context.Background(), "AAA", testFrom, testTo)
	if len(bars) == 0 {
		t.Fatal("no bars generated")
	}
	for _, bar := range bars {
		if wd := bar.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Errorf("weekend bar on %s", bar.Date.Format("2006-01-02"))
		}
	}
}

func TestStaticBarsWellFormed(t *testing.T) {
	bars, _ := NewStatic(3).DailyBars(context.Background(), "AAA", testFrom, testTo)
	var prev time.Time
	for _, bar := range bars {
		if bar.Close <= 0 || bar.Volume <= 0 {
			t.Errorf("bad bar %+v", bar)
		}
		if bar.High < bar.Low || bar.High < bar.Close || bar.Low > bar.Close {
			t.Errorf("inconsistent range on %s: %+v", bar.Date.Format("2006-01-02"), bar)
		}
		if !bar.Date.After(prev) {
			t.Errorf("bars out of order at %s", bar.Date.Format("2006-01-02"))
		}
		prev = bar.Date
	}
}

func TestFromConfigStatic(t *testing.T) {
	p, err := FromConfig(config.DataConfig{Source: "STATIC", Seed: 1})
	if err != nil {
		t.Fatalf("static provider failed: %v", err)
	}
	if _, ok := p.(*Static); !ok {
		t.Errorf("provider type = %T, want *Static", p)
	}
}

func TestFromConfigUnknownSource(t *testing.T) {
	if _, err := FromConfig(config.DataConfig{Source: "CSV"}); err == nil {
		t.Error("unknown source accepted")
	}
}

func TestLoadUniverse(t *testing.T) {
	p := NewStatic(5)
	bars, err := LoadUniverse(context.Background(), p, []string{"AAA", "BBB"}, testFrom, testTo)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d symbols, want 2", len(bars))
	}
	if len(bars["AAA"]) == 0 || len(bars["BBB"]) == 0 {
		t.Error("empty history for a universe symbol")
	}
}
