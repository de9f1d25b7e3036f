package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"riichiscore/internal/domain"
)

// WSMessage is a generic WebSocket message.
type WSMessage struct {
	Type    string          `json:"type"`    // "preview", "confirm", "undo", "redo", "edit_round", "reset", "rename", "ping"
	ID      string          `json:"id"`      // Request ID for correlating responses
	Payload json.RawMessage `json:"payload"` // Type-specific payload
}

// WSResponse is a generic WebSocket response.
type WSResponse struct {
	Type    string      `json:"type"`              // "state", "preview", "pong", "error"
	ID      string      `json:"id,omitempty"`      // Request ID
	Payload interface{} `json:"payload,omitempty"` // Response data
	Error   string      `json:"error,omitempty"`   // Error message if any
}

// ErrBadNumber reports a han/fu field that did not parse as an integer.
// Values arrive from dialog forms as strings and are converted here at the
// boundary; the domain only ever sees integers.
var ErrBadNumber = errors.New("han and fu must be numeric")

// SettlementForm is the client payload for previews and confirmations.
// Winner and loser are pointers so "not yet chosen" is distinct from seat 0.
type SettlementForm struct {
	Outcome string                 `json:"outcome"` // "tsumo", "ron" or "draw"
	Winner  *int                   `json:"winner,omitempty"`
	Loser   *int                   `json:"loser,omitempty"`
	Han     string                 `json:"han"`
	Fu      string                 `json:"fu"`
	Riichi  [domain.SeatCount]bool `json:"riichi"`
	Tenpai  [domain.SeatCount]bool `json:"tenpai"`
}

// EditRoundForm is the client payload for a manual round correction.
type EditRoundForm struct {
	Wind   int `json:"wind"` // 0 = East, 1 = South
	Number int `json:"number"`
	Honba  int `json:"honba"`
	Dealer int `json:"dealer"`
}

// ResetForm is the client payload for starting a new match.
type ResetForm struct {
	ResetNames bool `json:"reset_names"`
}

// RenameForm is the client payload for editing the four display names.
type RenameForm struct {
	Names [domain.SeatCount]string `json:"names"`
}

// StateMessage is the committed aggregate as broadcast to every client.
type StateMessage struct {
	Points     [domain.SeatCount]int    `json:"points"`
	Pool       int                      `json:"pool"`
	Honba      int                      `json:"honba"`
	RoundIndex int                      `json:"round_index"`
	RoundLabel string                   `json:"round_label"`
	DealerSeat int                      `json:"dealer_seat"`
	Names      [domain.SeatCount]string `json:"names"`
	History    []domain.HistoryEntry    `json:"history"`
	Standings  []domain.Standing        `json:"standings"`
	CanUndo    bool                     `json:"can_undo"`
	CanRedo    bool                     `json:"can_redo"`
}

func seatFromPtr(p *int) domain.Seat {
	if p == nil {
		return domain.NoSeat
	}
	return domain.Seat(*p)
}

func parseHandValue(field, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrBadNumber, field, value)
	}
	return n, nil
}

func (f SettlementForm) toTsumo() (domain.TsumoRequest, error) {
	han, err := parseHandValue("han", f.Han)
	if err != nil {
		return domain.TsumoRequest{}, err
	}
	fu, err := parseHandValue("fu", f.Fu)
	if err != nil {
		return domain.TsumoRequest{}, err
	}
	return domain.TsumoRequest{
		Winner: seatFromPtr(f.Winner),
		Han:    han,
		Fu:     fu,
		Riichi: f.Riichi,
	}, nil
}

func (f SettlementForm) toRon() (domain.RonRequest, error) {
	han, err := parseHandValue("han", f.Han)
	if err != nil {
		return domain.RonRequest{}, err
	}
	fu, err := parseHandValue("fu", f.Fu)
	if err != nil {
		return domain.RonRequest{}, err
	}
	return domain.RonRequest{
		Winner: seatFromPtr(f.Winner),
		Loser:  seatFromPtr(f.Loser),
		Han:    han,
		Fu:     fu,
		Riichi: f.Riichi,
	}, nil
}

func (f SettlementForm) toDraw() domain.DrawRequest {
	return domain.DrawRequest{Tenpai: f.Tenpai, Riichi: f.Riichi}
}

func (f EditRoundForm) toDomain() domain.RoundEdit {
	return domain.RoundEdit{
		Wind:   f.Wind,
		Number: f.Number,
		Honba:  f.Honba,
		Dealer: domain.Seat(f.Dealer),
	}
}
