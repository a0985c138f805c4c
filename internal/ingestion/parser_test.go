package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/guttosm/stockchat/internal/domain/models"
)

type fakeRepo struct {
	batches   [][]models.Trade
	insertErr error
	ingested  map[string]bool
	deleted   []time.Time
	logged    []string
}

func (f *fakeRepo) InsertTradesBatch(trades []models.Trade) error {
	f.batches = append(f.batches, append([]models.Trade(nil), trades...))
	return f.insertErr
}
func (f *fakeRepo) GetNotional(string, time.Time) (*models.NotionalAggregate, error) {
	return nil, nil
}
func (f *fakeRepo) LatestTradeDate() (*time.Time, error)        { return nil, nil }
func (f *fakeRepo) HasTradesForDate(time.Time) (bool, error)    { return false, nil }
func (f *fakeRepo) AvailableDates() ([]time.Time, error)        { return nil, nil }
func (f *fakeRepo) AvailableStocks(*time.Time) ([]string, error) { return nil, nil }
func (f *fakeRepo) HasIngestionForDate(d time.Time) (bool, error) {
	return f.ingested[d.Format("2006-01-02")], nil
}
func (f *fakeRepo) UpsertIngestionLog(_ time.Time, filename string, _ int) error {
	f.logged = append(f.logged, filename)
	return nil
}
func (f *fakeRepo) DeleteTradesByDate(d time.Time) error {
	f.deleted = append(f.deleted, d)
	return nil
}

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return p
}

const validHeader = "trade_date,stock_code,price,quantity,trade_time,trade_id,buyer_broker,seller_broker\n"

func TestParseAndPersistFile_TableDriven(t *testing.T) {
	dir := t.TempDir()
	fileDate := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	validRow := "2024-01-02,0148.HK,150.0,10000,10:15:30,T1,B01,S02\n"
	emptyCellsRow := ",0148.HK,,,,,,\n"

	cases := []struct {
		name        string
		content     string
		wantErr     bool
		wantBatches int
		wantRows    int
	}{
		{name: "ok single row", content: validHeader + validRow, wantErr: false, wantBatches: 1, wantRows: 1},
		{name: "ok empty cells tolerated", content: validHeader + emptyCellsRow, wantErr: false, wantBatches: 1, wantRows: 1},
		{name: "ok header only", content: validHeader, wantErr: false, wantBatches: 0, wantRows: 0},
		{name: "bad header order", content: "stock_code,trade_date,price,quantity,trade_time,trade_id,buyer_broker,seller_broker\n" + validRow, wantErr: true},
		{name: "short header", content: "trade_date,stock_code\n", wantErr: true},
		{name: "bad price", content: validHeader + "2024-01-02,0148.HK,abc,10000,10:15:30,T1,B01,S02\n", wantErr: true},
		{name: "bad quantity", content: validHeader + "2024-01-02,0148.HK,150.0,x,10:15:30,T1,B01,S02\n", wantErr: true},
		{name: "bad time", content: validHeader + "2024-01-02,0148.HK,150.0,10000,25:99:99,T1,B01,S02\n", wantErr: true},
		{name: "date mismatch with filename", content: validHeader + "2024-01-03,0148.HK,150.0,10000,10:15:30,T1,B01,S02\n", wantErr: true},
		{name: "wrong column count", content: validHeader + "2024-01-02,0148.HK,150.0\n", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := writeTempFile(t, dir, "2024-01-02_trades.csv", tc.content)
			repo := &fakeRepo{}
			total, err := parseAndPersistFile(context.Background(), p, fileDate, repo, 100)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if total != tc.wantRows || len(repo.batches) != tc.wantBatches {
				t.Fatalf("rows=%d batches=%d, want %d/%d", total, len(repo.batches), tc.wantRows, tc.wantBatches)
			}
		})
	}
}

func TestParseAndPersistFile_Batching(t *testing.T) {
	dir := t.TempDir()
	fileDate := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	content := validHeader
	for i := 0; i < 5; i++ {
		content += "2024-01-02,0148.HK,150.0,100,10:15:30,T1,B01,S02\n"
	}
	p := writeTempFile(t, dir, "2024-01-02_trades.csv", content)

	repo := &fakeRepo{}
	total, err := parseAndPersistFile(context.Background(), p, fileDate, repo, 2)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if total != 5 {
		t.Fatalf("total=%d", total)
	}
	// 2+2+1 rows across three flushes
	if len(repo.batches) != 3 || len(repo.batches[2]) != 1 {
		t.Fatalf("unexpected batching: %d batches", len(repo.batches))
	}
}

func TestRecordToTrade_Fields(t *testing.T) {
	fileDate := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	rec := []string{"2024-01-02", "0148.hk", "166.67", "15000", "14:05:00", "T42", "B07", "S11"}

	tr, err := recordToTrade(rec, fileDate)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if tr.StockCode != "0148.HK" {
		t.Fatalf("stock code not normalized: %q", tr.StockCode)
	}
	if tr.TradePrice != 166.67 || tr.TradeQuantity != 15000 || tr.TradeID != "T42" {
		t.Fatalf("unexpected trade: %+v", tr)
	}
	if tr.TradeTime.Hour() != 14 || tr.TradeTime.Minute() != 5 {
		t.Fatalf("unexpected time: %v", tr.TradeTime)
	}
	if tr.BuyerBrokerCode != "B07" || tr.SellerBrokerCode != "S11" {
		t.Fatalf("unexpected brokers: %+v", tr)
	}
}

func TestRecordToTrade_EmptyDateDefaultsToFileDate(t *testing.T) {
	fileDate := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	rec := []string{"", "0148.HK", "150.0", "100", "", "T1", "", ""}

	tr, err := recordToTrade(rec, fileDate)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !tr.TradeDate.Equal(fileDate) {
		t.Fatalf("trade date %v, want file date", tr.TradeDate)
	}
	if !tr.TradeTime.IsZero() {
		t.Fatalf("empty time should stay zero, got %v", tr.TradeTime)
	}
}
