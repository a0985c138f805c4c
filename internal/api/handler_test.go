package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/stockchat/internal/domain/dto"
	"github.com/guttosm/stockchat/internal/service"
)

type mockChatService struct {
	resp   dto.ChatResponse
	dates  []time.Time
	stocks []string
	err    error
}

func (m *mockChatService) ProcessQuery(_ context.Context, _ string) (dto.ChatResponse, error) {
	return m.resp, m.err
}

func (m *mockChatService) AvailableDates(_ context.Context) ([]time.Time, error) {
	return m.dates, m.err
}

func (m *mockChatService) AvailableStocks(_ context.Context, _ *time.Time) ([]string, error) {
	return m.stocks, m.err
}

var _ service.ChatService = (*mockChatService)(nil)

type mockGenerator struct {
	available bool
	model     string
}

func (m *mockGenerator) Generate(_ context.Context, _ string) string { return "" }
func (m *mockGenerator) Available() bool                             { return m.available }
func (m *mockGenerator) Model() string                               { return m.model }

func setupRouterWithMock(svc service.ChatService, gen *mockGenerator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if gen == nil {
		gen = &mockGenerator{}
	}
	h := NewHandler(svc, gen)
	r := gin.New()
	r.GET("/models/status", h.GetModelStatus)
	v1 := r.Group("/api/v1")
	v1.POST("/chat", h.PostChat)
	v1.GET("/dates", h.GetDates)
	v1.GET("/stocks", h.GetStocks)
	return r
}

func TestPostChat_TableDriven(t *testing.T) {
	notional := 4000050.0
	cases := []struct {
		name   string
		svc    *mockChatService
		body   string
		status int
		assert func(t *testing.T, body []byte)
	}{
		{
			name:   "missing message",
			svc:    &mockChatService{},
			body:   `{}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "malformed json",
			svc:    &mockChatService{},
			body:   `{"message":`,
			status: http.StatusBadRequest,
		},
		{
			name:   "internal error",
			svc:    &mockChatService{err: errors.New("db down")},
			body:   `{"message":"notional for 0148.HK"}`,
			status: http.StatusInternalServerError,
		},
		{
			name: "success",
			svc: &mockChatService{resp: dto.ChatResponse{
				Success:        true,
				Response:       "The total notional traded for 0148.HK on 2024-01-02 was HK$4,000,050.00",
				StockCode:      "0148.HK",
				NotionalAmount: &notional,
				QueryDate:      "2024-01-02",
			}},
			body:   `{"message":"What was the notional for 0148.HK on 2024-01-02?"}`,
			status: http.StatusOK,
			assert: func(t *testing.T, body []byte) {
				var out dto.ChatResponse
				if err := json.Unmarshal(body, &out); err != nil {
					t.Fatalf("invalid json: %v", err)
				}
				if !out.Success || out.StockCode != "0148.HK" || out.QueryDate != "2024-01-02" {
					t.Fatalf("unexpected body: %+v", out)
				}
				if out.NotionalAmount == nil || *out.NotionalAmount != notional {
					t.Fatalf("unexpected notional: %+v", out.NotionalAmount)
				}
			},
		},
		{
			name: "no data is still 200",
			svc: &mockChatService{resp: dto.ChatResponse{
				Response:  "No trades found for 9999.HK on 2024-01-02.",
				StockCode: "9999.HK",
				QueryDate: "2024-01-02",
			}},
			body:   `{"message":"notional for 9999.HK on 2024-01-02"}`,
			status: http.StatusOK,
			assert: func(t *testing.T, body []byte) {
				var out dto.ChatResponse
				if err := json.Unmarshal(body, &out); err != nil {
					t.Fatalf("invalid json: %v", err)
				}
				if out.Success {
					t.Fatalf("expected success=false, got %+v", out)
				}
				if _, has := rawField(body, "notional_amount"); has {
					t.Fatalf("notional_amount should be omitted: %s", body)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouterWithMock(tc.svc, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d (body %s)", tc.status, w.Code, w.Body.String())
			}
			if tc.assert != nil {
				tc.assert(t, w.Body.Bytes())
			}
		})
	}
}

// rawField reports whether a top-level key is present in a JSON object.
func rawField(body []byte, key string) (json.RawMessage, bool) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

func TestGetDates(t *testing.T) {
	d1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		svc    *mockChatService
		status int
		want   []string
	}{
		{name: "two dates", svc: &mockChatService{dates: []time.Time{d1, d2}}, status: http.StatusOK, want: []string{"2024-01-02", "2024-01-03"}},
		{name: "empty", svc: &mockChatService{}, status: http.StatusOK, want: []string{}},
		{name: "internal error", svc: &mockChatService{err: errors.New("db down")}, status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouterWithMock(tc.svc, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/dates", nil))
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if tc.want == nil {
				return
			}
			var out dto.DatesResponse
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if len(out.AvailableDates) != len(tc.want) {
				t.Fatalf("dates=%v, want %v", out.AvailableDates, tc.want)
			}
			for i := range tc.want {
				if out.AvailableDates[i] != tc.want[i] {
					t.Fatalf("dates=%v, want %v", out.AvailableDates, tc.want)
				}
			}
		})
	}
}

func TestGetStocks_TableDriven(t *testing.T) {
	cases := []struct {
		name     string
		svc      *mockChatService
		query    string
		status   int
		wantDate string
	}{
		{
			name:   "all stocks",
			svc:    &mockChatService{stocks: []string{"0148.HK", "0700.HK"}},
			query:  "/api/v1/stocks",
			status: http.StatusOK,
		},
		{
			name:     "filtered by date",
			svc:      &mockChatService{stocks: []string{"0148.HK"}},
			query:    "/api/v1/stocks?date=2024-01-02",
			status:   http.StatusOK,
			wantDate: "2024-01-02",
		},
		{
			name:   "invalid date",
			svc:    &mockChatService{},
			query:  "/api/v1/stocks?date=02/01/2024",
			status: http.StatusBadRequest,
		},
		{
			name:   "internal error",
			svc:    &mockChatService{err: errors.New("db down")},
			query:  "/api/v1/stocks",
			status: http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouterWithMock(tc.svc, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.query, nil))
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if tc.status != http.StatusOK {
				return
			}
			var out dto.StocksResponse
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if out.Date != tc.wantDate {
				t.Fatalf("date=%q, want %q", out.Date, tc.wantDate)
			}
		})
	}
}

func TestGetModelStatus(t *testing.T) {
	r := setupRouterWithMock(&mockChatService{}, &mockGenerator{available: true, model: "gemini-2.0-flash"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/models/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var out dto.ModelStatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !out.GeneratorAvailable || out.Model != "gemini-2.0-flash" {
		t.Fatalf("unexpected body: %+v", out)
	}
}
