package ingestion

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/stockchat/internal/domain/models"
	"github.com/guttosm/stockchat/internal/storage"
)

// expectedHeaders enforces strict column ordering for daily trade files.
// If the header doesn't match EXACTLY (order + count), ingestion must fail.
var expectedHeaders = []string{
	"trade_date",
	"stock_code",
	"price",
	"quantity",
	"trade_time",
	"trade_id",
	"buyer_broker",
	"seller_broker",
}

// parseAndPersistFile opens, validates, parses, and persists one file in batches.
// It fails on:
//   - header not matching expected order/length
//   - rows whose trade_date disagrees with the filename date
//   - unrecoverable I/O errors
//
// It tolerates:
//   - empty cells (they become zero values)
//
// Parameters:
//   - ctx:      context for cancellation/timeouts.
//   - path:     file path.
//   - fileDate: trading day derived from the filename; rows default to it.
//   - repo:     repository for DB insertion.
//   - batch:    batch size for inserts (e.g., 5000).
func parseAndPersistFile(ctx context.Context, path string, fileDate time.Time, repo storage.TradesRepository, batch int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1 // allow variable but we'll check explicitly

	// Validate headers strictly.
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(expectedHeaders) {
		return 0, fmt.Errorf("invalid header length: expected %d, got %d", len(expectedHeaders), len(header))
	}
	for i, h := range header {
		if strings.TrimSpace(h) != expectedHeaders[i] {
			return 0, fmt.Errorf("invalid header at col %d: expected %q, got %q", i+1, expectedHeaders[i], h)
		}
	}

	// Parse rows streaming; flush batches to DB.
	buf := make([]models.Trade, 0, batch)
	lineNumber := 1 // header already read

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if err := repo.InsertTradesBatch(buf); err != nil {
			return err
		}
		buf = buf[:0]
		return nil
	}

	total := 0

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return 0, fmt.Errorf("read line after %d: %w", lineNumber, err)
		}
		lineNumber++

		// Enforce structure: exactly 8 columns. If not, fail entire ingestion.
		if len(rec) != len(expectedHeaders) {
			return 0, fmt.Errorf("invalid column count on line %d: expected %d got %d", lineNumber, len(expectedHeaders), len(rec))
		}

		tr, err := recordToTrade(rec, fileDate)
		if err != nil {
			// Structural/format error fails the whole file.
			return 0, fmt.Errorf("line %d: %w", lineNumber, err)
		}

		buf = append(buf, tr)
		total++
		if len(buf) >= batch {
			if err := flush(); err != nil {
				return 0, fmt.Errorf("flush batch ending line %d: %w", lineNumber, err)
			}
		}
	}

	// Final flush
	if err := flush(); err != nil {
		return 0, fmt.Errorf("final flush: %w", err)
	}

	return total, nil
}

// recordToTrade converts a single CSV record (already validated length==8)
// into a models.Trade. It is STRICT about types/format but TOLERATES empty
// cells, mapping them to zero-values. The trade date defaults to the
// filename date; an explicit trade_date cell must agree with it.
//
// Column order:
//
//	0 trade_date    → TradeDate (DATE, "2006-01-02"; empty→fileDate)
//	1 stock_code    → StockCode (string, upper-cased)
//	2 price         → TradePrice (float, empty→0)
//	3 quantity      → TradeQuantity (int64, empty→0)
//	4 trade_time    → TradeTime (TIME "15:04:05"; empty→zero)
//	5 trade_id      → TradeID (string)
//	6 buyer_broker  → BuyerBrokerCode (string)
//	7 seller_broker → SellerBrokerCode (string)
func recordToTrade(rec []string, fileDate time.Time) (models.Trade, error) {
	t := models.Trade{TradeDate: fileDate}

	// trade_date (0): may be empty; when present it must match the filename date
	if s := strings.TrimSpace(rec[0]); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return t, fmt.Errorf("invalid trade_date: %v", err)
		}
		if !d.Equal(fileDate) {
			return t, fmt.Errorf("trade_date %s does not match file date %s", s, fileDate.Format("2006-01-02"))
		}
		t.TradeDate = d
	}

	// stock_code (1)
	t.StockCode = strings.ToUpper(strings.TrimSpace(rec[1]))

	// price (2): may be empty
	if s := strings.TrimSpace(rec[2]); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return t, fmt.Errorf("invalid price: %v", err)
		}
		t.TradePrice = v
	}

	// quantity (3): may be empty
	if s := strings.TrimSpace(rec[3]); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return t, fmt.Errorf("invalid quantity: %v", err)
		}
		t.TradeQuantity = v
	}

	// trade_time (4): may be empty
	if s := strings.TrimSpace(rec[4]); s != "" {
		h, err := time.Parse("15:04:05", s)
		if err != nil {
			return t, fmt.Errorf("invalid trade_time: %v", err)
		}
		// Keep only the clock part.
		t.TradeTime = time.Date(0, 1, 1, h.Hour(), h.Minute(), h.Second(), 0, time.UTC)
	}

	// trade_id (5)
	t.TradeID = strings.TrimSpace(rec[5])

	// buyer_broker (6)
	t.BuyerBrokerCode = strings.TrimSpace(rec[6])

	// seller_broker (7)
	t.SellerBrokerCode = strings.TrimSpace(rec[7])

	return t, nil
}
