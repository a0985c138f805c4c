package models

import "time"

// Trade represents a single row in a daily trade file.
// Each field matches one column in the .csv file.
//
// Column order:
//  1. TradeDate
//  2. StockCode
//  3. TradePrice
//  4. TradeQuantity
//  5. TradeTime
//  6. TradeID
//  7. BuyerBrokerCode
//  8. SellerBrokerCode
type Trade struct {
	TradeDate        time.Time
	StockCode        string
	TradePrice       float64
	TradeQuantity    int64
	TradeTime        time.Time
	TradeID          string
	BuyerBrokerCode  string
	SellerBrokerCode string
}
