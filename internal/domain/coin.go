package domain

import (
	"fmt"
	"time"
)

// CoinSummary is one entry of the coin list.
type CoinSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Rank     int    `json:"rank"`
	IsNew    bool   `json:"is_new"`
	IsActive bool   `json:"is_active"`
	Type     string `json:"type"`
}

func (c *CoinSummary) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: coin summary without id", ErrInvalidPayload)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: coin %s without name", ErrInvalidPayload, c.ID)
	}
	return nil
}

type Tag struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CoinCounter int    `json:"coin_counter"`
	IcoCounter  int    `json:"ico_counter"`
}

type TeamMember struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
}

type Links struct {
	Explorer   []string `json:"explorer"`
	Facebook   []string `json:"facebook"`
	Reddit     []string `json:"reddit"`
	SourceCode []string `json:"source_code"`
	Website    []string `json:"website"`
	Youtube    []string `json:"youtube"`
}

type LinkStats struct {
	Subscribers  int `json:"subscribers"`
	Contributors int `json:"contributors,omitempty"`
	Stars        int `json:"stars,omitempty"`
	Followers    int `json:"followers,omitempty"`
}

type LinkExtended struct {
	URL   string    `json:"url"`
	Type  string    `json:"type"`
	Stats LinkStats `json:"stats"`
}

type Whitepaper struct {
	Link      string `json:"link"`
	Thumbnail string `json:"thumbnail"`
}

// CoinDetail is the metadata of a single coin.
type CoinDetail struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Symbol            string         `json:"symbol"`
	Rank              int            `json:"rank"`
	IsNew             bool           `json:"is_new"`
	IsActive          bool           `json:"is_active"`
	Type              string         `json:"type"`
	Tags              []Tag          `json:"tags"`
	Team              []TeamMember   `json:"team"`
	Description       string         `json:"description"`
	Message           string         `json:"message"`
	OpenSource        bool           `json:"open_source"`
	StartedAt         *time.Time     `json:"started_at"`
	DevelopmentStatus string         `json:"development_status"`
	HardwareWallet    bool           `json:"hardware_wallet"`
	ProofType         string         `json:"proof_type"`
	OrgStructure      string         `json:"org_structure"`
	HashAlgorithm     string         `json:"hash_algorithm"`
	Links             Links          `json:"links"`
	LinksExtended     []LinkExtended `json:"links_extended"`
	Whitepaper        Whitepaper     `json:"whitepaper"`
	FirstDataAt       *time.Time     `json:"first_data_at"`
	LastDataAt        *time.Time     `json:"last_data_at"`
}

// Validate checks the payload answers the request for coinID.
func (c *CoinDetail) Validate(coinID string) error {
	if c.ID != coinID {
		return fmt.Errorf("%w: requested coin %q, got %q", ErrInvalidPayload, coinID, c.ID)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: coin %s without name", ErrInvalidPayload, coinID)
	}
	return nil
}

// Candle is one day of the OHLCV series shown on the chart tab.
type Candle struct {
	TimeOpen  time.Time `json:"time_open"`
	TimeClose time.Time `json:"time_close"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	MarketCap float64   `json:"market_cap"`
}
