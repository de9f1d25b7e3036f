// Package persist encodes the match aggregate and the pending undo pair as
// a single JSON document, and decodes it defensively: a malformed field is
// replaced with its default instead of failing the whole load.
package persist

import (
	"encoding/json"
	"time"

	"riichiscore/internal/domain"
)

// DocumentVersion tags the snapshot layout for future migrations.
const DocumentVersion = 1

// Document is the persisted form of one tracked match.
type Document struct {
	Version int                 `json:"version"`
	SavedAt time.Time           `json:"saved_at"`
	State   *domain.MatchState  `json:"state"`
	Undo    domain.UndoSnapshot `json:"undo"`
}

// Encode serializes the aggregate plus the pending undo pair.
func Encode(state *domain.MatchState, undo domain.UndoSnapshot, now time.Time) ([]byte, error) {
	doc := Document{
		Version: DocumentVersion,
		SavedAt: now,
		State:   state.Clone(),
		Undo:    undo,
	}
	return json.Marshal(doc)
}

// rawDocument mirrors Document with deferred fields so each one can fail
// independently.
type rawDocument struct {
	State json.RawMessage `json:"state"`
	Undo  json.RawMessage `json:"undo"`
}

type rawState struct {
	Points     json.RawMessage `json:"points"`
	Pool       json.RawMessage `json:"pool"`
	Honba      json.RawMessage `json:"honba"`
	RoundIndex json.RawMessage `json:"round_index"`
	DealerSeat json.RawMessage `json:"dealer_seat"`
	Names      json.RawMessage `json:"names"`
	History    json.RawMessage `json:"history"`
}

// Decode rebuilds the aggregate and undo pair from a stored document.
// Startup must never fail on bad data: an unreadable document yields a fresh
// match, and individual malformed fields fall back to their defaults.
func Decode(data []byte, startingPoints int) (*domain.MatchState, domain.UndoSnapshot) {
	fresh := domain.NewMatchState(startingPoints)

	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil || len(doc.State) == 0 {
		return fresh, domain.UndoSnapshot{}
	}

	var raw rawState
	if err := json.Unmarshal(doc.State, &raw); err != nil {
		return fresh, domain.UndoSnapshot{}
	}

	state := fresh

	// Points must be exactly four numbers or the whole stack layout is
	// untrustworthy and the fresh stacks stand.
	var points []int
	if err := json.Unmarshal(raw.Points, &points); err == nil && len(points) == domain.SeatCount {
		copy(state.Points[:], points)
	}

	if v, ok := decodeInt(raw.Pool); ok && v >= 0 {
		state.Pool = v
	}
	if v, ok := decodeInt(raw.Honba); ok && v >= 0 {
		state.Honba = v
	}
	if v, ok := decodeInt(raw.RoundIndex); ok {
		state.RoundIndex = ((v % domain.RoundCount) + domain.RoundCount) % domain.RoundCount
	}
	if v, ok := decodeInt(raw.DealerSeat); ok {
		state.DealerSeat = domain.Seat(((v % domain.SeatCount) + domain.SeatCount) % domain.SeatCount)
	}

	var names []string
	if err := json.Unmarshal(raw.Names, &names); err == nil && len(names) == domain.SeatCount {
		for i, name := range names {
			if name != "" {
				state.Names[i] = name
			}
		}
	}

	var history []domain.HistoryEntry
	if err := json.Unmarshal(raw.History, &history); err == nil && history != nil {
		state.History = history
	}

	var undo domain.UndoSnapshot
	if len(doc.Undo) > 0 {
		if err := json.Unmarshal(doc.Undo, &undo); err != nil {
			undo = domain.UndoSnapshot{}
		}
	}

	return state, undo
}

func decodeInt(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}
