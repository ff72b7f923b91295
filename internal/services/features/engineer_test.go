package features

import (
	"math"
	"testing"
	"time"

	"Coinsight/internal/domain/models"
)

func syntheticSeries(n int, full bool) models.PriceSeries {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, n)
	for i := 0; i < n; i++ {
		price := 100 + 10*math.Sin(float64(i)/5) + float64(i)*0.3
		points[i] = models.PricePoint{
			Time:  base.AddDate(0, 0, i),
			Price: price,
		}
		if full {
			points[i].High = price * 1.02
			points[i].Low = price * 0.98
			points[i].Volume = 1000 + 50*math.Cos(float64(i)/3)
			points[i].MarketCap = price * 1e6
			points[i].Change1h = 0.1
			points[i].Change24h = 0.5
			points[i].HasHighLow = true
			points[i].HasVolume = true
			points[i].HasMarketCap = true
			points[i].HasChangeFields = true
		}
	}
	return models.PriceSeries{Symbol: "BTC", Points: points}
}

func TestColumnNamesStable(t *testing.T) {
	if len(ColumnNames) != 20 {
		t.Fatalf("column count = %d", len(ColumnNames))
	}
	if ColumnNames[ColClose] != "close" || ColumnNames[ColRSI] != "rsi" || ColumnNames[ColSentimentNeg] != "sentiment_neg" {
		t.Fatalf("column order drifted: %v", ColumnNames)
	}
}

func TestEngineerDropsWarmupRows(t *testing.T) {
	series := syntheticSeries(120, true)
	table := Engineer(series)

	if len(table.Rows) == 0 {
		t.Fatal("no rows survived")
	}
	// BB(20) has the longest warm-up among the NaN-producing columns when
	// high/low and changes are supplied; the first 19 rows must be gone.
	// volume_change and market_cap_change also kill row 0.
	if len(table.Rows) >= 120 {
		t.Fatalf("warm-up rows not dropped: %d rows", len(table.Rows))
	}
	if table.Times[0] < 19 {
		t.Fatalf("first surviving row index = %d, want >= 19", table.Times[0])
	}
	for _, row := range table.Rows {
		for c, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("non-finite value in column %s", ColumnNames[c])
			}
		}
	}
	if len(table.Times) != len(table.Rows) {
		t.Fatalf("times/rows misaligned: %d vs %d", len(table.Times), len(table.Rows))
	}
}

func TestEngineerSentimentPlaceholders(t *testing.T) {
	table := Engineer(syntheticSeries(120, true))
	row, ok := table.Latest()
	if !ok {
		t.Fatal("empty table")
	}
	for _, c := range []int{ColSocialScore, ColSentimentPos, ColSentimentNeg} {
		if row[c] != SentimentPlaceholder {
			t.Fatalf("%s = %v, want %v", ColumnNames[c], row[c], SentimentPlaceholder)
		}
	}
}

func TestEngineerSparseSeriesDerivesColumns(t *testing.T) {
	// price-only series: changes derived from prices, hl_spread from rolling
	// std, volume and market cap columns zero
	table := Engineer(syntheticSeries(150, false))
	if len(table.Rows) == 0 {
		t.Fatal("no rows survived sparse series")
	}
	row, _ := table.Latest()
	if row[ColVolume] != 0 || row[ColMarketCap] != 0 {
		t.Fatalf("missing columns must be zero, got volume=%v cap=%v", row[ColVolume], row[ColMarketCap])
	}
	if row[ColHLSpread] <= 0 {
		t.Fatalf("hl_spread proxy = %v, want > 0", row[ColHLSpread])
	}
}

func TestSnapshot(t *testing.T) {
	table := Engineer(syntheticSeries(120, true))
	snap := table.Snapshot()

	if snap.RSI < 0 || snap.RSI > 100 {
		t.Fatalf("rsi = %v out of range", snap.RSI)
	}
	if snap.MACD != "bullish" && snap.MACD != "bearish" {
		t.Fatalf("macd = %q", snap.MACD)
	}
	if snap.VolumeTrend != "increasing" && snap.VolumeTrend != "decreasing" {
		t.Fatalf("volume trend = %q", snap.VolumeTrend)
	}
	if snap.SocialSentiment != 0.5 {
		t.Fatalf("social sentiment = %v, want 0.5 from placeholder", snap.SocialSentiment)
	}
}

func TestSnapshotEmptyTable(t *testing.T) {
	snap := FeatureTable{}.Snapshot()
	if snap.RSI != 50 || snap.MACD != "bearish" {
		t.Fatalf("empty-table snapshot = %+v", snap)
	}
}
