package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vitos/coin_tracker/internal/domain"
	"github.com/vitos/coin_tracker/internal/usecase"
	"go.uber.org/zap"
)

const liveWriteTimeout = 10 * time.Second

// liveSelect is sent by the client to switch the tracked coin.
type liveSelect struct {
	CoinID string `json:"coin_id"`
	Name   string `json:"name"`
}

type liveMessage struct {
	Type       string                `json:"type"`
	Generation uint64                `json:"generation"`
	CoinID     string                `json:"coin_id"`
	Title      string                `json:"title"`
	Coin       *domain.CoinDetail    `json:"coin,omitempty"`
	Ticker     *domain.PriceSnapshot `json:"ticker,omitempty"`
	Status     int                   `json:"status,omitempty"`
	Error      string                `json:"error,omitempty"`
}

func toLiveMessage(u usecase.Update) liveMessage {
	msg := liveMessage{
		Type:       string(u.Type),
		Generation: u.Generation,
		CoinID:     u.CoinID,
		Title:      u.Title,
	}
	switch u.Type {
	case usecase.UpdateDetail:
		msg.Coin = u.Detail.Info.Data
		msg.Ticker = u.Detail.Price.Data
	case usecase.UpdateError:
		msg.Status = errorStatus(u.Err)
		msg.Error = u.Err.Error()
	}
	return msg
}

// handleLive tracks /ws/coins/{coinId} and then whatever coin the client
// selects next. Only the latest selection is ever answered.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// The tracker serializes deliveries, so writes never overlap.
	tracker := usecase.NewTracker(s.service, func(u usecase.Update) {
		conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
		if err := conn.WriteJSON(toLiveMessage(u)); err != nil {
			log.Debug("Failed to write live update", zap.Error(err))
		}
	}, log)
	defer tracker.Close()

	tracker.Select(r.PathValue("coinId"), readHint(r))

	for {
		var sel liveSelect
		if err := conn.ReadJSON(&sel); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("Live session closed", zap.Error(err))
			}
			return
		}
		if sel.CoinID == "" {
			continue
		}

		var hint *domain.NavigationHint
		if sel.Name != "" {
			hint = &domain.NavigationHint{Name: sel.Name}
		}
		tracker.Select(sel.CoinID, hint)
	}
}
