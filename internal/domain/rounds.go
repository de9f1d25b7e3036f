package domain

import "sort"

// Advance applies a confirmed settlement to produce the next MatchState.
// The previous state is left untouched; the result is a fresh aggregate with
// deltas applied, pool updated, the ledger entry prepended, and the dealer /
// round / honba progression resolved:
//
//   - win by the current dealer: dealer stays, honba+1, round unchanged
//   - win by a non-dealer: dealer rotates, round+1 (mod 8), honba reset
//   - exhaustive draw: honba+1 always; dealer and round advance unless the
//     dealer was tenpai
func Advance(prev *MatchState, pv Preview, entry HistoryEntry) *MatchState {
	next := prev.Clone()
	for seat, delta := range pv.Deltas {
		next.Points[seat] += delta
	}
	next.Pool = pv.PoolAfter
	next.History = appendHistory(next.History, entry)

	dealerStays := false
	switch pv.Outcome {
	case OutcomeTsumo, OutcomeRon:
		dealerStays = pv.Winner == prev.DealerSeat
	case OutcomeDraw:
		dealerStays = pv.DealerTenpai
	}

	if dealerStays {
		next.Honba = prev.Honba + 1
		return next
	}

	next.DealerSeat = prev.DealerSeat.Next()
	next.RoundIndex = (prev.RoundIndex + 1) % RoundCount
	if pv.Outcome == OutcomeDraw {
		next.Honba = prev.Honba + 1
	} else {
		next.Honba = 0
	}
	return next
}

// RoundEdit is an operator correction of the round position. It never moves
// points and never touches the pool or the ledger.
type RoundEdit struct {
	Wind   int // 0 = East, 1 = South
	Number int // hand number 1..4
	Honba  int
	Dealer Seat
}

// EditRound applies a manual round correction, returning a fresh aggregate.
func EditRound(prev *MatchState, edit RoundEdit) *MatchState {
	next := prev.Clone()
	next.RoundIndex = RoundIndexOf(edit.Wind, edit.Number)
	if edit.Honba >= 0 {
		next.Honba = edit.Honba
	}
	if edit.Dealer.Selected() {
		next.DealerSeat = edit.Dealer
	}
	return next
}

// Standing is one row of the final-settlement report.
type Standing struct {
	Seat   Seat   `json:"seat"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Rank   int    `json:"rank"`
}

// Standings is the read-only final report over the current state: seats
// ordered by points, ties broken by seat order. It is a view, not a
// transition; the match ends by external decision.
func Standings(state *MatchState) [SeatCount]Standing {
	var out [SeatCount]Standing
	for i := range out {
		seat := Seat(i)
		out[i] = Standing{Seat: seat, Name: state.NameOf(seat), Points: state.Points[seat]}
	}
	sort.SliceStable(out[:], func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Seat < out[j].Seat
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
