package domain

// DefaultStartingPoints is the stack each seat begins with unless the rules
// config overrides it.
const DefaultStartingPoints = 25000

// RiichiStickValue is the point value of one riichi stick held in the pool.
const RiichiStickValue = 1000

// MatchState is the authoritative aggregate for one tracked match.
//
// Transitions never mutate an existing MatchState; every confirmed settlement
// or manual edit produces a fresh aggregate via Clone, so a reader observing
// the state between two fields can never see a half-applied update.
type MatchState struct {
	Points     [SeatCount]int    `json:"points"`
	Pool       int               `json:"pool"` // riichi sticks awaiting a winner, in 1000-point units
	Honba      int               `json:"honba"`
	RoundIndex int               `json:"round_index"` // 0..7: East 1-4, South 1-4
	DealerSeat Seat              `json:"dealer_seat"`
	Names      [SeatCount]string `json:"names"`
	History    []HistoryEntry    `json:"history"` // newest first
}

// NewMatchState returns the initial aggregate: equal stacks, East 1, seat
// East dealing, positional default names, empty ledger.
func NewMatchState(startingPoints int) *MatchState {
	if startingPoints <= 0 {
		startingPoints = DefaultStartingPoints
	}
	s := &MatchState{DealerSeat: SeatEast}
	for i := range s.Points {
		s.Points[i] = startingPoints
		s.Names[i] = windLabels[i]
	}
	return s
}

// Clone performs a deep copy of every mutable field. It is the single
// snapshot constructor shared by transitions, undo capture and persistence,
// so the copies can never diverge.
func (s *MatchState) Clone() *MatchState {
	if s == nil {
		return nil
	}
	next := *s
	if s.History != nil {
		next.History = make([]HistoryEntry, len(s.History))
		copy(next.History, s.History)
	}
	return &next
}

// TotalPoints returns the conserved quantity: seat stacks plus pooled sticks.
// It stays equal to SeatCount*startingPoints for the whole life of a match.
func (s *MatchState) TotalPoints() int {
	total := s.Pool * RiichiStickValue
	for _, p := range s.Points {
		total += p
	}
	return total
}

// NameOf returns the display name for a seat, falling back to the wind label.
func (s *MatchState) NameOf(seat Seat) string {
	if !seat.Selected() {
		return ""
	}
	if s.Names[seat] != "" {
		return s.Names[seat]
	}
	return seat.WindLabel()
}
