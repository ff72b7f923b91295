package features

import (
	"math"

	"Coinsight/internal/domain/models"
)

// ColumnNames is the stable order of the 20 engineered feature columns.
var ColumnNames = [20]string{
	"close", "change_1h", "change_24h", "hl_spread", "log_returns",
	"rsi", "macd", "macd_signal", "bb_upper", "bb_lower",
	"ema_20", "ema_50", "volume_ma", "volume", "volume_change",
	"market_cap", "market_cap_change", "social_score", "sentiment_pos", "sentiment_neg",
}

// Column indexes into a FeatureVector.
const (
	ColClose = iota
	ColChange1h
	ColChange24h
	ColHLSpread
	ColLogReturns
	ColRSI
	ColMACD
	ColMACDSignal
	ColBBUpper
	ColBBLower
	ColEMA20
	ColEMA50
	ColVolumeMA
	ColVolume
	ColVolumeChange
	ColMarketCap
	ColMarketCapChange
	ColSocialScore
	ColSentimentPos
	ColSentimentNeg
)

// SentimentPlaceholder is the fixed value used when no external sentiment
// source supplies the social columns. Never fabricated as noise.
const SentimentPlaceholder = 50.0

// FeatureTable is the engineered feature matrix with original timestamps.
type FeatureTable struct {
	Symbol  string
	Rows    []models.FeatureVector
	// Times aligns 1:1 with Rows after warm-up rows are dropped.
	Times []int // indexes into the source series
}

// Engineer computes the 20-column feature table from a raw price series.
// Rows containing any rolling-window NaN are dropped, never back-filled.
func Engineer(series models.PriceSeries) FeatureTable {
	n := series.Len()
	prices := series.Prices()

	cols := make([][]float64, 20)

	// Price-based (5)
	cols[ColClose] = prices
	cols[ColChange1h] = changeColumn(series, func(p models.PricePoint) float64 { return p.Change1h }, prices, 1)
	cols[ColChange24h] = changeColumn(series, func(p models.PricePoint) float64 { return p.Change24h }, prices, 24)
	cols[ColHLSpread] = hlSpread(series, prices)
	cols[ColLogReturns] = LogReturns(prices)

	// Technical indicators (8)
	cols[ColRSI] = RSI(prices, 14)
	macd, macdSignal := MACD(prices, 12, 26, 9)
	cols[ColMACD] = macd
	cols[ColMACDSignal] = macdSignal
	upper, lower := BollingerBands(prices, 20, 2.0)
	cols[ColBBUpper] = upper
	cols[ColBBLower] = lower
	cols[ColEMA20] = EMA(prices, 20)
	cols[ColEMA50] = EMA(prices, 50)

	// Volume & market data (4 + volume MA)
	if hasVolume(series) {
		vols := series.Volumes()
		cols[ColVolumeMA] = RollingMean(vols, 20)
		cols[ColVolume] = vols
		cols[ColVolumeChange] = PctChange(vols, 1)
	} else {
		cols[ColVolumeMA] = make([]float64, n)
		cols[ColVolume] = make([]float64, n)
		cols[ColVolumeChange] = make([]float64, n)
	}
	if hasMarketCap(series) {
		caps := make([]float64, n)
		for i, p := range series.Points {
			caps[i] = p.MarketCap
		}
		cols[ColMarketCap] = caps
		cols[ColMarketCapChange] = PctChange(caps, 1)
	} else {
		cols[ColMarketCap] = make([]float64, n)
		cols[ColMarketCapChange] = make([]float64, n)
	}

	// Sentiment placeholders (3)
	cols[ColSocialScore] = constSlice(n, SentimentPlaceholder)
	cols[ColSentimentPos] = constSlice(n, SentimentPlaceholder)
	cols[ColSentimentNeg] = constSlice(n, SentimentPlaceholder)

	// Drop warm-up rows: any NaN in a row invalidates the whole row.
	table := FeatureTable{Symbol: series.Symbol}
	for i := 0; i < n; i++ {
		var row models.FeatureVector
		valid := true
		for c := 0; c < 20; c++ {
			v := cols[c][i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				valid = false
				break
			}
			row[c] = v
		}
		if valid {
			table.Rows = append(table.Rows, row)
			table.Times = append(table.Times, i)
		}
	}
	return table
}

// Latest returns the most recent feature row, or false when the table is empty.
func (t FeatureTable) Latest() (models.FeatureVector, bool) {
	if len(t.Rows) == 0 {
		return models.FeatureVector{}, false
	}
	return t.Rows[len(t.Rows)-1], true
}

// Snapshot summarizes the latest row into the response indicator block.
func (t FeatureTable) Snapshot() models.IndicatorSnapshot {
	row, ok := t.Latest()
	if !ok {
		return models.IndicatorSnapshot{RSI: 50, MACD: "bearish", VolumeTrend: "decreasing", SocialSentiment: 0.5}
	}
	snap := models.IndicatorSnapshot{
		RSI:             math.Round(row[ColRSI]*100) / 100,
		MACD:            "bearish",
		VolumeTrend:     "decreasing",
		SocialSentiment: math.Round(row[ColSocialScore]) / 100,
	}
	if row[ColMACD] > row[ColMACDSignal] {
		snap.MACD = "bullish"
	}
	if row[ColVolumeChange] > 0 {
		snap.VolumeTrend = "increasing"
	}
	return snap
}

// changeColumn uses the supplied change field when the series carries it,
// otherwise derives pct-change over `periods` from prices.
func changeColumn(series models.PriceSeries, get func(models.PricePoint) float64, prices []float64, periods int) []float64 {
	if len(series.Points) > 0 && series.Points[0].HasChangeFields {
		out := make([]float64, len(series.Points))
		for i, p := range series.Points {
			out[i] = get(p)
		}
		return out
	}
	return PctChange(prices, periods)
}

// hlSpread is (high-low)/price, or rolling-std(24)/price as a proxy when
// high/low are unavailable.
func hlSpread(series models.PriceSeries, prices []float64) []float64 {
	if len(series.Points) > 0 && series.Points[0].HasHighLow {
		out := make([]float64, len(series.Points))
		for i, p := range series.Points {
			out[i] = (p.High - p.Low) / p.Price
		}
		return out
	}
	std := RollingStd(prices, 24)
	out := nanSlice(len(prices))
	for i := range prices {
		out[i] = std[i] / prices[i]
	}
	return out
}

func hasVolume(series models.PriceSeries) bool {
	return len(series.Points) > 0 && series.Points[0].HasVolume
}

func hasMarketCap(series models.PriceSeries) bool {
	return len(series.Points) > 0 && series.Points[0].HasMarketCap
}

func constSlice(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
