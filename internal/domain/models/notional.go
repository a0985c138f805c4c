package models

import "time"

// NotionalAggregate represents the result of the notional aggregation
// over trades for a single stock code on a single trading day.
//
// Fields:
//   - StockCode: The code the aggregation was computed for (e.g., "0148.HK").
//   - TradeDate: The trading day the figures refer to.
//   - Notional: Total traded value, SUM(trade_price * trade_quantity).
//     Always derived from price and quantity so it cannot drift from them.
//   - TotalQuantity: Total number of shares traded, SUM(trade_quantity).
//   - AveragePrice: Notional / TotalQuantity; zero when no shares traded.
//   - TradeCount: Number of trades that contributed to the figures.
//
// swagger:model NotionalAggregate
type NotionalAggregate struct {
	StockCode     string    `json:"stock_code" example:"0148.HK"`
	TradeDate     time.Time `json:"trade_date"`
	Notional      float64   `json:"notional" example:"4000050.00"`
	TotalQuantity int64     `json:"total_quantity" example:"25000"`
	AveragePrice  float64   `json:"average_price" example:"160.00"`
	TradeCount    int64     `json:"trade_count" example:"2"`
}
