package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/stockchat/internal/domain/dto"
	"github.com/guttosm/stockchat/internal/llm"
	"github.com/guttosm/stockchat/internal/service"
)

// Handler provides HTTP handlers for the chat and data discovery endpoints.
//
// Responsibilities:
//   - Validate incoming JSON bodies and query parameters
//   - Delegate to the chat service for query processing
//   - Translate service results into response DTOs
//   - Return structured JSON responses with appropriate HTTP status codes
type Handler struct {
	svc service.ChatService
	gen llm.Generator
}

// NewHandler constructs a new Handler instance.
//
// Parameters:
//   - svc (service.ChatService): Query pipeline dependency.
//   - gen (llm.Generator): Generative model, used only for status reporting.
//
// Returns:
//   - *Handler: A handler ready to be registered with the router.
func NewHandler(svc service.ChatService, gen llm.Generator) *Handler {
	return &Handler{svc: svc, gen: gen}
}

// PostChat handles POST /api/v1/chat requests.
//
// Body:
//   - message (string, required): Natural-language query about trades.
//
// Responses:
//   - 200 OK: Returns ChatResponse. "No data" outcomes are still 200; the
//     payload carries the explanation.
//   - 400 Bad Request: Missing or empty message.
//   - 500 Internal Server Error: Failure in repository or database layer.
//
// PostChat godoc
// @Summary      Ask about trades
// @Description  Answers natural-language questions about notional, trading dates, and stocks
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body      dto.ChatRequest  true  "Query"
// @Success      200      {object}  dto.ChatResponse   "Success"
// @Failure      400      {object}  dto.ErrorResponse  "Bad Request"
// @Failure      500      {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/chat [post]
func (h *Handler) PostChat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("message is required", err))
		return
	}

	resp, err := h.svc.ProcessQuery(c.Request.Context(), req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to process query", err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetDates handles GET /api/v1/dates requests.
//
// GetDates godoc
// @Summary      List available trading dates
// @Description  Returns all dates with ingested trade data, ascending
// @Tags         data
// @Produce      json
// @Success      200  {object}  dto.DatesResponse  "Success"
// @Failure      500  {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/dates [get]
func (h *Handler) GetDates(c *gin.Context) {
	dates, err := h.svc.AvailableDates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch dates", err))
		return
	}

	formatted := make([]string, len(dates))
	for i, d := range dates {
		formatted[i] = d.Format("2006-01-02")
	}
	c.JSON(http.StatusOK, dto.DatesResponse{AvailableDates: formatted})
}

// GetStocks handles GET /api/v1/stocks requests.
//
// Query Parameters:
//   - date (string, optional): Restrict to one trading day, YYYY-MM-DD.
//
// GetStocks godoc
// @Summary      List traded stocks
// @Description  Returns stock codes with trades, optionally restricted to one date
// @Tags         data
// @Produce      json
// @Param        date  query     string  false  "Trading date in YYYY-MM-DD" example(2024-01-02)
// @Success      200   {object}  dto.StocksResponse  "Success"
// @Failure      400   {object}  dto.ErrorResponse   "Bad Request"
// @Failure      500   {object}  dto.ErrorResponse   "Internal Error"
// @Router       /api/v1/stocks [get]
func (h *Handler) GetStocks(c *gin.Context) {
	var date *time.Time
	if s := c.Query("date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid date format, expected YYYY-MM-DD", err))
			return
		}
		date = &parsed
	}

	stocks, err := h.svc.AvailableStocks(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch stocks", err))
		return
	}

	resp := dto.StocksResponse{Stocks: stocks}
	if date != nil {
		resp.Date = date.Format("2006-01-02")
	}
	c.JSON(http.StatusOK, resp)
}

// GetModelStatus handles GET /models/status requests.
//
// GetModelStatus godoc
// @Summary      Generative model status
// @Description  Reports whether the fallback generator is configured and which model it uses
// @Tags         models
// @Produce      json
// @Success      200  {object}  dto.ModelStatusResponse  "Success"
// @Router       /models/status [get]
func (h *Handler) GetModelStatus(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ModelStatusResponse{
		GeneratorAvailable: h.gen.Available(),
		Model:              h.gen.Model(),
	})
}
