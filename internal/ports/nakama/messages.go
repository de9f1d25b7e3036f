package nakama

import (
	"errors"
	"fmt"
	"strconv"

	"riichiscore/internal/domain"
)

// ErrBadNumber reports a han/fu field that did not parse as an integer.
// Values arrive from dialog forms as strings and are converted here at the
// boundary; the domain only ever sees integers.
var ErrBadNumber = errors.New("han and fu must be numeric")

// SettlementMessage is the client payload for settlement confirmations and
// previews. Winner and loser are pointers so "not yet chosen" is distinct
// from seat 0.
type SettlementMessage struct {
	Outcome string                     `json:"outcome"` // "tsumo", "ron" or "draw"
	Winner  *int                       `json:"winner,omitempty"`
	Loser   *int                       `json:"loser,omitempty"`
	Han     string                     `json:"han"`
	Fu      string                     `json:"fu"`
	Riichi  [domain.SeatCount]bool     `json:"riichi"`
	Tenpai  [domain.SeatCount]bool     `json:"tenpai"`
}

// EditRoundMessage is the client payload for a manual round correction.
type EditRoundMessage struct {
	Wind   int `json:"wind"` // 0 = East, 1 = South
	Number int `json:"number"`
	Honba  int `json:"honba"`
	Dealer int `json:"dealer"`
}

// ResetMessage is the client payload for starting a new match.
type ResetMessage struct {
	ResetNames bool `json:"reset_names"`
}

// RenameMessage is the client payload for editing the four display names.
type RenameMessage struct {
	Names [domain.SeatCount]string `json:"names"`
}

// ErrorPayload is sent to the requesting client when an operation is
// rejected. No state has changed when one of these is emitted.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// StatePayload is the committed aggregate as broadcast to every client.
type StatePayload struct {
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

func (m SettlementMessage) toTsumo() (domain.TsumoRequest, error) {
	han, err := parseHandValue("han", m.Han)
	if err != nil {
		return domain.TsumoRequest{}, err
	}
	fu, err := parseHandValue("fu", m.Fu)
	if err != nil {
		return domain.TsumoRequest{}, err
	}
	return domain.TsumoRequest{
		Winner: seatFromPtr(m.Winner),
		Han:    han,
		Fu:     fu,
		Riichi: m.Riichi,
	}, nil
}

func (m SettlementMessage) toRon() (domain.RonRequest, error) {
	han, err := parseHandValue("han", m.Han)
	if err != nil {
		return domain.RonRequest{}, err
	}
	fu, err := parseHandValue("fu", m.Fu)
	if err != nil {
		return domain.RonRequest{}, err
	}
	return domain.RonRequest{
		Winner: seatFromPtr(m.Winner),
		Loser:  seatFromPtr(m.Loser),
		Han:    han,
		Fu:     fu,
		Riichi: m.Riichi,
	}, nil
}

func (m SettlementMessage) toDraw() domain.DrawRequest {
	return domain.DrawRequest{Tenpai: m.Tenpai, Riichi: m.Riichi}
}

func (m EditRoundMessage) toDomain() domain.RoundEdit {
	return domain.RoundEdit{
		Wind:   m.Wind,
		Number: m.Number,
		Honba:  m.Honba,
		Dealer: domain.Seat(m.Dealer),
	}
}
