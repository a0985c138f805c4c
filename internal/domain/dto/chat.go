package dto

// ChatRequest is the JSON body accepted by POST /api/v1/chat.
type ChatRequest struct {
	Message string `json:"message" binding:"required" example:"What's the notional for 0148.HK yesterday?"`
}

// ChatResponse is the JSON structure returned by POST /api/v1/chat.
//
// It is the sole externally observable output of the query pipeline.
// Optional fields are omitted when the pipeline could not extract or
// resolve them; absence is part of the contract, not an error.
type ChatResponse struct {
	Success        bool     `json:"success"`                                     // Whether the query was answered with data
	Response       string   `json:"response"`                                    // Human-readable answer text
	StockCode      string   `json:"stock_code,omitempty" example:"0148.HK"`      // Extracted stock code, if any
	NotionalAmount *float64 `json:"notional_amount,omitempty" example:"4000050"` // Total notional on success
	QueryDate      string   `json:"query_date,omitempty" example:"2024-01-02"`   // Resolved date in YYYY-MM-DD, if any
}

// DatesResponse is the JSON structure returned by GET /api/v1/dates.
type DatesResponse struct {
	AvailableDates []string `json:"available_dates" example:"2024-01-02,2024-01-03"`
}

// StocksResponse is the JSON structure returned by GET /api/v1/stocks.
type StocksResponse struct {
	Stocks []string `json:"stocks" example:"0148.HK,0700.HK"`
	Date   string   `json:"date,omitempty" example:"2024-01-02"`
}

// ModelStatusResponse is the JSON structure returned by GET /models/status.
type ModelStatusResponse struct {
	GeneratorAvailable bool   `json:"generator_available"`
	Model              string `json:"model" example:"gemini-2.0-flash"`
}
