package storage

import (
	"database/sql"
	"time"

	"github.com/guttosm/stockchat/internal/domain/models"
	pq "github.com/lib/pq"
)

// TradesRepository defines the contract for DB operations.
//
// All read methods treat absence as data: a code or date with no trades
// yields empty results, never an error. Errors are reserved for
// infrastructure failures. The underlying *sql.DB pool is safe for
// concurrent use, so the repository may be shared across requests.
type TradesRepository interface {
	InsertTradesBatch(trades []models.Trade) error
	GetNotional(code string, date time.Time) (*models.NotionalAggregate, error)
	LatestTradeDate() (*time.Time, error)
	HasTradesForDate(date time.Time) (bool, error)
	AvailableDates() ([]time.Time, error)
	AvailableStocks(date *time.Time) ([]string, error)
	HasIngestionForDate(date time.Time) (bool, error)
	UpsertIngestionLog(date time.Time, filename string, rowCount int) error
	DeleteTradesByDate(date time.Time) error
}

type tradesRepository struct {
	db *sql.DB
}

func NewTradesRepository(db *sql.DB) TradesRepository {
	return &tradesRepository{db: db}
}

// InsertTradesBatch inserts multiple trades into DB in a single transaction.
func (r *tradesRepository) InsertTradesBatch(trades []models.Trade) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	// Small optimization for bulk load
	if _, err := tx.Exec(`SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare(pq.CopyIn(
		"trades",
		"trade_date",
		"stock_code",
		"trade_price",
		"trade_quantity",
		"trade_time",
		"trade_id",
		"buyer_broker_code",
		"seller_broker_code",
	))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	// helper to map zero-value times to NULL (nil)
	toNullTime := func(t time.Time) interface{} {
		if t.IsZero() {
			return nil
		}
		return t
	}

	for _, rec := range trades {
		if _, err := stmt.Exec(
			rec.TradeDate,
			rec.StockCode,
			rec.TradePrice,
			rec.TradeQuantity,
			toNullTime(rec.TradeTime),
			rec.TradeID,
			rec.BuyerBrokerCode,
			rec.SellerBrokerCode,
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.Exec(); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// GetNotional computes the notional aggregate for a stock code on a single
// trading day. Notional is derived as SUM(trade_price * trade_quantity) in
// SQL rather than read from a stored column, so it cannot drift from the
// underlying price/quantity figures. Average price is guarded against a
// zero total quantity. A day with no trades yields TradeCount == 0, not an
// error.
func (r *tradesRepository) GetNotional(code string, date time.Time) (*models.NotionalAggregate, error) {
	const q = `
		SELECT COALESCE(SUM(trade_price * trade_quantity), 0) AS notional,
		       COALESCE(SUM(trade_quantity), 0)               AS total_quantity,
		       COUNT(*)                                       AS trade_count
		FROM trades
		WHERE stock_code = $1 AND trade_date = $2
	`

	agg := models.NotionalAggregate{StockCode: code, TradeDate: date}
	if err := r.db.QueryRow(q, code, date).Scan(&agg.Notional, &agg.TotalQuantity, &agg.TradeCount); err != nil {
		return nil, err
	}

	if agg.TotalQuantity > 0 {
		agg.AveragePrice = agg.Notional / float64(agg.TotalQuantity)
	}

	return &agg, nil
}

// LatestTradeDate returns the most recent trade_date present, or nil when
// no trades have been ingested yet.
func (r *tradesRepository) LatestTradeDate() (*time.Time, error) {
	var latest sql.NullTime
	if err := r.db.QueryRow(`SELECT MAX(trade_date) FROM trades`).Scan(&latest); err != nil {
		return nil, err
	}
	if !latest.Valid {
		return nil, nil
	}
	return &latest.Time, nil
}

// HasTradesForDate reports whether any trades exist for a given trade_date.
func (r *tradesRepository) HasTradesForDate(date time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM trades WHERE trade_date = $1)`, date).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// AvailableDates lists all distinct trade dates, ascending.
func (r *tradesRepository) AvailableDates() ([]time.Time, error) {
	rows, err := r.db.Query(`SELECT DISTINCT trade_date FROM trades ORDER BY trade_date`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// AvailableStocks lists distinct stock codes traded on a given date, or
// across all dates when date is nil.
func (r *tradesRepository) AvailableStocks(date *time.Time) ([]string, error) {
	var rows *sql.Rows
	var err error
	if date != nil {
		rows, err = r.db.Query(`SELECT DISTINCT stock_code FROM trades WHERE trade_date = $1 ORDER BY stock_code`, *date)
	} else {
		rows, err = r.db.Query(`SELECT DISTINCT stock_code FROM trades ORDER BY stock_code`)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var codes []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// HasIngestionForDate checks if an ingestion was already recorded for a given trading day.
func (r *tradesRepository) HasIngestionForDate(date time.Time) (bool, error) {
	var exists bool
	// ingestion_log.file_date is the canonical per-file day
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM ingestion_log WHERE file_date = $1)`, date).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertIngestionLog records (or updates) an ingestion entry for a given day.
func (r *tradesRepository) UpsertIngestionLog(date time.Time, filename string, rowCount int) error {
	_, err := r.db.Exec(`
		INSERT INTO ingestion_log (file_date, filename, row_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (file_date)
		DO UPDATE SET filename = EXCLUDED.filename,
					  row_count = EXCLUDED.row_count,
					  ingested_at = NOW()
	`, date, filename, rowCount)
	return err
}

// DeleteTradesByDate removes all trades for a given trade_date.
func (r *tradesRepository) DeleteTradesByDate(date time.Time) error {
	_, err := r.db.Exec(`DELETE FROM trades WHERE trade_date = $1`, date)
	return err
}
