package domain

import "time"

// FetchRecord is one upstream request as kept in the audit log.
type FetchRecord struct {
	ID         int64         `json:"id"`
	Kind       string        `json:"kind"`
	CoinID     string        `json:"coin_id"`
	OK         bool          `json:"ok"`
	StatusCode int           `json:"status_code"`
	Duration   time.Duration `json:"duration"`
	Error      string        `json:"error,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}
