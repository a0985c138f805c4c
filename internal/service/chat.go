package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/guttosm/stockchat/internal/domain/dto"
	"github.com/guttosm/stockchat/internal/llm"
	"github.com/guttosm/stockchat/internal/logger"
	"github.com/guttosm/stockchat/internal/query"
	"github.com/guttosm/stockchat/internal/storage"
)

// capabilitySentence is appended to every generative fallback answer so
// users learn what the service can actually do.
const capabilitySentence = " I specialize in stock trading information including notional amounts, prices, and volumes for specific dates."

// noCodeResponse asks the user to include a stock code, with an example.
const noCodeResponse = "I couldn't identify a stock code in your query. Please specify a stock like '0148.HK'."

// ChatService answers natural-language questions about historical trades.
//
// ProcessQuery is the single operation of the pipeline; the returned error
// is reserved for infrastructure failures (DB unreachable) that the HTTP
// layer maps to a generic 500. Everything the pipeline can express itself
// lands in the ChatResponse payload, including "no data" outcomes.
type ChatService interface {
	ProcessQuery(ctx context.Context, rawQuery string) (dto.ChatResponse, error)
	AvailableDates(ctx context.Context) ([]time.Time, error)
	AvailableStocks(ctx context.Context, date *time.Time) ([]string, error)
}

type chatService struct {
	repo storage.TradesRepository
	gen  llm.Generator
	now  func() time.Time // indirection for tests
}

func NewChatService(repo storage.TradesRepository, gen llm.Generator) ChatService {
	return &chatService{repo: repo, gen: gen, now: time.Now}
}

// currencyPrinter renders numbers with English thousands separators.
var currencyPrinter = message.NewPrinter(language.English)

// notionalOutcome normalizes the repository result into either a success
// aggregate or a human-readable failure message. Absence is data here,
// never an error.
type notionalOutcome struct {
	ok            bool
	msg           string
	date          time.Time // zero when no date could be determined
	notional      float64
	totalQuantity int64
	averagePrice  float64
	tradeCount    int64
}

// getNotional is the aggregation gateway: given a code and an optional
// date, it fetches the notional aggregate, substituting the most recent
// available trading day when the date is unspecified. Failure messages
// name the missing dimension (date vs. code).
func (s *chatService) getNotional(code string, date *time.Time) (notionalOutcome, error) {
	d := date
	if d == nil {
		latest, err := s.repo.LatestTradeDate()
		if err != nil {
			return notionalOutcome{}, fmt.Errorf("latest trade date: %w", err)
		}
		if latest == nil {
			return notionalOutcome{
				msg: "No trading data has been loaded yet. Please add daily trade files and run ingestion.",
			}, nil
		}
		d = latest
	}

	agg, err := s.repo.GetNotional(code, *d)
	if err != nil {
		return notionalOutcome{}, fmt.Errorf("notional aggregate: %w", err)
	}

	if agg.TradeCount == 0 {
		hasDate, err := s.repo.HasTradesForDate(*d)
		if err != nil {
			return notionalOutcome{}, fmt.Errorf("check trades for date: %w", err)
		}
		if !hasDate {
			return notionalOutcome{
				date: *d,
				msg:  fmt.Sprintf("No trading data available for %s.", d.Format("2006-01-02")),
			}, nil
		}
		return notionalOutcome{
			date: *d,
			msg:  fmt.Sprintf("No trades found for %s on %s.", code, d.Format("2006-01-02")),
		}, nil
	}

	return notionalOutcome{
		ok:            true,
		date:          *d,
		notional:      agg.Notional,
		totalQuantity: agg.TotalQuantity,
		averagePrice:  agg.AveragePrice,
		tradeCount:    agg.TradeCount,
	}, nil
}

// ProcessQuery runs the full pipeline: extraction, date resolution and
// intent classification happen independently on the raw text, then the
// intent routes to the notional aggregation, the date listing, the
// no-code rejection, or the generative fallback.
//
// The branch order below is the contract. In particular, a notional query
// without a stock code is caught by the no-code rejection (its own branch
// requires a code), while date queries are exempt from that rejection and
// general queries always reach the fallback.
func (s *chatService) ProcessQuery(ctx context.Context, rawQuery string) (dto.ChatResponse, error) {
	stockCode := query.ExtractStockCode(rawQuery)
	queryDate := query.ResolveDateFromText(rawQuery, s.now())
	intent := query.ClassifyIntent(rawQuery)

	logger.L().Info().
		Str("intent", string(intent)).
		Str("stock_code", stockCode).
		Msg("processing query")

	switch {
	case intent == query.IntentNotional && stockCode != "":
		outcome, err := s.getNotional(stockCode, queryDate)
		if err != nil {
			return dto.ChatResponse{}, err
		}

		resp := dto.ChatResponse{
			StockCode: stockCode,
		}
		if !outcome.date.IsZero() {
			resp.QueryDate = outcome.date.Format("2006-01-02")
		}

		if !outcome.ok {
			resp.Response = outcome.msg
			return resp, nil
		}

		notional := outcome.notional
		resp.Success = true
		resp.NotionalAmount = &notional
		resp.Response = formatNotionalSummary(stockCode, outcome)
		return resp, nil

	case intent == query.IntentDate:
		dates, err := s.repo.AvailableDates()
		if err != nil {
			return dto.ChatResponse{}, fmt.Errorf("available dates: %w", err)
		}

		var response string
		if len(dates) == 0 {
			response = "No trading data files found in the data directory."
		} else {
			formatted := make([]string, len(dates))
			for i, d := range dates {
				formatted[i] = d.Format("2006-01-02")
			}
			response = "I have trading data available for the following dates: " + strings.Join(formatted, ", ")
		}

		return dto.ChatResponse{Success: true, Response: response}, nil

	case stockCode == "" && intent != query.IntentGeneral:
		return dto.ChatResponse{Response: noCodeResponse}, nil

	default:
		contextText := "User is asking about stocks. Query: " + rawQuery
		if stockCode != "" {
			contextText += " Stock code: " + stockCode
		}
		if queryDate != nil {
			contextText += " Date: " + queryDate.Format("2006-01-02")
		}

		resp := dto.ChatResponse{
			Success:   true,
			Response:  s.gen.Generate(ctx, contextText) + capabilitySentence,
			StockCode: stockCode,
		}
		if queryDate != nil {
			resp.QueryDate = queryDate.Format("2006-01-02")
		}
		return resp, nil
	}
}

// formatNotionalSummary renders the multi-line success answer with
// 2-decimal currency figures and thousands separators.
func formatNotionalSummary(code string, o notionalOutcome) string {
	var b strings.Builder
	currencyPrinter.Fprintf(&b, "The total notional traded for %s on %s was HK$%.2f\n",
		code, o.date.Format("2006-01-02"), o.notional)
	currencyPrinter.Fprintf(&b, "• Total Quantity: %d shares\n", o.totalQuantity)
	fmt.Fprintf(&b, "• Average Price: HK$%.2f\n", o.averagePrice)
	fmt.Fprintf(&b, "• Number of Trades: %d", o.tradeCount)
	return b.String()
}

// AvailableDates lists all trading days with ingested data, ascending.
func (s *chatService) AvailableDates(ctx context.Context) ([]time.Time, error) {
	return s.repo.AvailableDates()
}

// AvailableStocks lists instruments traded on a date, or across all dates
// when date is nil.
func (s *chatService) AvailableStocks(ctx context.Context, date *time.Time) ([]string, error) {
	return s.repo.AvailableStocks(date)
}
