package domain

import (
	"fmt"
	"time"
)

// QuoteCurrency is the quote every view reads from a ticker.
const QuoteCurrency = "USD"

type Quote struct {
	Price               float64    `json:"price"`
	Volume24h           float64    `json:"volume_24h"`
	Volume24hChange24h  float64    `json:"volume_24h_change_24h"`
	MarketCap           float64    `json:"market_cap"`
	MarketCapChange24h  float64    `json:"market_cap_change_24h"`
	PercentChange15m    float64    `json:"percent_change_15m"`
	PercentChange30m    float64    `json:"percent_change_30m"`
	PercentChange1h     float64    `json:"percent_change_1h"`
	PercentChange6h     float64    `json:"percent_change_6h"`
	PercentChange12h    float64    `json:"percent_change_12h"`
	PercentChange24h    float64    `json:"percent_change_24h"`
	PercentChange7d     float64    `json:"percent_change_7d"`
	PercentChange30d    float64    `json:"percent_change_30d"`
	PercentChange1y     float64    `json:"percent_change_1y"`
	AthPrice            float64    `json:"ath_price"`
	AthDate             *time.Time `json:"ath_date"`
	PercentFromPriceAth float64    `json:"percent_from_price_ath"`
}

// PriceSnapshot is the ticker of a single coin: supply figures plus quotes.
type PriceSnapshot struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Symbol            string           `json:"symbol"`
	Rank              int              `json:"rank"`
	CirculatingSupply float64          `json:"circulating_supply"`
	TotalSupply       float64          `json:"total_supply"`
	MaxSupply         float64          `json:"max_supply"`
	BetaValue         float64          `json:"beta_value"`
	FirstDataAt       *time.Time       `json:"first_data_at"`
	LastUpdated       *time.Time       `json:"last_updated"`
	Quotes            map[string]Quote `json:"quotes"`
}

func (p *PriceSnapshot) Validate(coinID string) error {
	if p.ID != coinID {
		return fmt.Errorf("%w: requested ticker %q, got %q", ErrInvalidPayload, coinID, p.ID)
	}
	if _, ok := p.Quotes[QuoteCurrency]; !ok {
		return fmt.Errorf("%w: ticker %s without %s quote", ErrInvalidPayload, coinID, QuoteCurrency)
	}
	return nil
}

// USD returns the quote the views render.
func (p *PriceSnapshot) USD() Quote {
	return p.Quotes[QuoteCurrency]
}
