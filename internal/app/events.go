package app

import "riichiscore/internal/domain"

// EventKind identifies emitted app events for transport dispatch.
type EventKind string

const (
	EventSettlementApplied EventKind = "settlement_applied"
	EventUndoApplied       EventKind = "undo_applied"
	EventRedoApplied       EventKind = "redo_applied"
	EventRoundEdited       EventKind = "round_edited"
	EventMatchReset        EventKind = "match_reset"
	EventNamesChanged      EventKind = "names_changed"
)

// Event is an app event produced by a confirmed operation.
type Event struct {
	Kind    EventKind
	Payload any
}

type SettlementAppliedPayload struct {
	Preview domain.Preview
	Entry   domain.HistoryEntry
}

type UndoAppliedPayload struct {
	Label string
}

type RedoAppliedPayload struct {
	Label string
}

type RoundEditedPayload struct {
	Edit domain.RoundEdit
}

type MatchResetPayload struct {
	NamesReset bool
}

type NamesChangedPayload struct {
	Names [domain.SeatCount]string
}
