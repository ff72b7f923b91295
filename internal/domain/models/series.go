package models

import "time"

// PricePoint is a single observation of an asset's market state.
type PricePoint struct {
	Time            time.Time `db:"time" json:"time"`
	Price           float64   `db:"price" json:"price"`
	High            float64   `db:"high" json:"high"`
	Low             float64   `db:"low" json:"low"`
	Volume          float64   `db:"volume" json:"volume"`
	MarketCap       float64   `db:"market_cap" json:"marketCap"`
	Change1h        float64   `db:"change_1h" json:"change1h"`
	Change24h       float64   `db:"change_24h" json:"change24h"`
	HasHighLow      bool      `db:"-" json:"-"`
	HasVolume       bool      `db:"-" json:"-"`
	HasMarketCap    bool      `db:"-" json:"-"`
	HasChangeFields bool      `db:"-" json:"-"`
}

// PriceSeries is an ordered-by-time sequence of price points for one symbol.
// Once fetched it is treated as immutable.
type PriceSeries struct {
	Symbol string
	Points []PricePoint
}

// Len returns the number of points in the series.
func (s PriceSeries) Len() int { return len(s.Points) }

// Prices returns the close prices in time order.
func (s PriceSeries) Prices() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Price
	}
	return out
}

// Volumes returns the volume column in time order.
func (s PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Volume
	}
	return out
}

// IsOrdered reports whether timestamps are strictly increasing.
func (s PriceSeries) IsOrdered() bool {
	for i := 1; i < len(s.Points); i++ {
		if !s.Points[i].Time.After(s.Points[i-1].Time) {
			return false
		}
	}
	return true
}
