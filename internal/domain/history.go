package domain

import (
	"fmt"
	"time"
)

// HistoryEntry is one immutable row of the settlement ledger. Names and
// deltas are copied at append time so later renames cannot rewrite the
// record of what happened.
type HistoryEntry struct {
	Outcome     Outcome           `json:"outcome"`
	RoundLabel  string            `json:"round_label"`
	DealerName  string            `json:"dealer_name"`
	RiichiCount int               `json:"riichi_count"`
	Description string            `json:"description"`
	Timestamp   time.Time         `json:"timestamp"`
	Names       [SeatCount]string `json:"names"`
	Deltas      [SeatCount]int    `json:"deltas"`
}

// NewHistoryEntry captures a settlement against the state it was computed
// from. The entry snapshots the pre-settlement names and the preview deltas.
func NewHistoryEntry(state *MatchState, pv Preview, now time.Time) HistoryEntry {
	entry := HistoryEntry{
		Outcome:     pv.Outcome,
		RoundLabel:  RoundLabel(state.RoundIndex),
		DealerName:  state.NameOf(state.DealerSeat),
		RiichiCount: pv.RiichiCount,
		Timestamp:   now,
		Deltas:      pv.Deltas,
	}
	for i := range entry.Names {
		entry.Names[i] = state.NameOf(Seat(i))
	}
	entry.Description = describe(state, pv)
	return entry
}

func describe(state *MatchState, pv Preview) string {
	label := RoundLabel(state.RoundIndex)
	switch pv.Outcome {
	case OutcomeTsumo:
		return fmt.Sprintf("%s: %s won by tsumo (%d han %d fu)",
			label, state.NameOf(pv.Winner), pv.Han, pv.Fu)
	case OutcomeRon:
		return fmt.Sprintf("%s: %s won by ron off %s (%d han %d fu)",
			label, state.NameOf(pv.Winner), state.NameOf(pv.Loser), pv.Han, pv.Fu)
	default:
		return fmt.Sprintf("%s: exhaustive draw, %d tenpai", label, pv.TenpaiCount)
	}
}

// appendHistory prepends an entry, newest first. Existing entries are never
// edited or removed.
func appendHistory(history []HistoryEntry, entry HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(history)+1)
	out = append(out, entry)
	out = append(out, history...)
	return out
}
