package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"Coinsight/internal/domain/models"
	"Coinsight/internal/domain/repository"
	xutil "Coinsight/pkg/util"
)

// PostgresPriceStore implements PriceStore over the price_data table.
type PostgresPriceStore struct {
	db *sqlx.DB
}

// NewPostgresPriceStore creates the Postgres-backed price store.
func NewPostgresPriceStore(db *sqlx.DB) repository.PriceStore {
	return &PostgresPriceStore{db: db}
}

type priceRow struct {
	Time      time.Time       `db:"time"`
	Price     float64         `db:"price"`
	High      sql.NullFloat64 `db:"high"`
	Low       sql.NullFloat64 `db:"low"`
	Volume    sql.NullFloat64 `db:"volume"`
	MarketCap sql.NullFloat64 `db:"market_cap"`
	Change1h  sql.NullFloat64 `db:"change_1h"`
	Change24h sql.NullFloat64 `db:"change_24h"`
}

const priceHistoryQuery = `
SELECT p.time, p.price, p.high, p.low, p.volume, p.market_cap, p.change_1h, p.change_24h
FROM price_data p
JOIN tokens t ON t.id = p.token_id
WHERE t.symbol = $1 AND p.time >= $2
ORDER BY p.time ASC`

func (s *PostgresPriceStore) GetPriceHistory(ctx context.Context, symbol string, days int) (models.PriceSeries, error) {
	symbol = strings.ToUpper(symbol)
	cutoff := xutil.DaysAgo(time.Now(), days)

	var rows []priceRow
	if err := s.db.SelectContext(ctx, &rows, priceHistoryQuery, symbol, cutoff); err != nil {
		return models.PriceSeries{}, fmt.Errorf("price history %s: %w", symbol, err)
	}

	series := models.PriceSeries{
		Symbol: symbol,
		Points: make([]models.PricePoint, 0, len(rows)),
	}
	for _, r := range rows {
		p := models.PricePoint{
			Time:  r.Time,
			Price: r.Price,
		}
		if r.High.Valid && r.Low.Valid {
			p.High = r.High.Float64
			p.Low = r.Low.Float64
			p.HasHighLow = true
		}
		if r.Volume.Valid {
			p.Volume = r.Volume.Float64
			p.HasVolume = true
		}
		if r.MarketCap.Valid {
			p.MarketCap = r.MarketCap.Float64
			p.HasMarketCap = true
		}
		if r.Change1h.Valid && r.Change24h.Valid {
			p.Change1h = r.Change1h.Float64
			p.Change24h = r.Change24h.Float64
			p.HasChangeFields = true
		}
		series.Points = append(series.Points, p)
	}
	return series, nil
}

const latestPriceQuery = `
SELECT p.time, p.price
FROM price_data p
JOIN tokens t ON t.id = p.token_id
WHERE t.symbol = $1
ORDER BY p.time DESC
LIMIT 1`

func (s *PostgresPriceStore) GetLatestPrice(ctx context.Context, symbol string) (float64, time.Time, error) {
	symbol = strings.ToUpper(symbol)

	var row struct {
		Time  time.Time `db:"time"`
		Price float64   `db:"price"`
	}
	if err := s.db.GetContext(ctx, &row, latestPriceQuery, symbol); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, time.Time{}, &models.UnsupportedSymbolError{Symbol: symbol}
		}
		return 0, time.Time{}, fmt.Errorf("latest price %s: %w", symbol, err)
	}
	return row.Price, row.Time, nil
}

func (s *PostgresPriceStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresPriceStore) Close() error {
	return nil // pool is managed by pkg/postgres
}
