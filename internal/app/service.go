package app

import (
	"strings"
	"time"

	"riichiscore/internal/domain"
)

// Service contains the score-tracking use-cases operating on the match
// aggregate. Every confirmed operation returns the next aggregate as a whole
// replacement; callers must not keep mutating the previous one.
//
// The service owns the single-slot undo controller: confirming a settlement
// installs a fresh (before, after) pair, while manual edits, resets and
// renames drop it since they are not undoable.
type Service struct {
	clock          func() time.Time
	undo           *domain.UndoController
	startingPoints int
	defaultNames   [domain.SeatCount]string
}

// NewService constructs a Service with the provided clock or a wall-clock
// default.
func NewService(clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		clock:          clock,
		undo:           domain.NewUndoController(),
		startingPoints: domain.DefaultStartingPoints,
	}
}

// SetStartingPoints overrides the stack each seat starts with on reset.
func (s *Service) SetStartingPoints(points int) {
	if points > 0 {
		s.startingPoints = points
	}
}

// SetDefaultNames overrides the display names a fresh match starts with.
// Blank entries keep the wind-label default.
func (s *Service) SetDefaultNames(names [domain.SeatCount]string) {
	s.defaultNames = names
}

// NewMatch returns a fresh aggregate using the configured starting stacks
// and default names.
func (s *Service) NewMatch() *domain.MatchState {
	state := domain.NewMatchState(s.startingPoints)
	for i, name := range s.defaultNames {
		if name != "" {
			state.Names[i] = name
		}
	}
	return state
}

// PreviewTsumo recomputes the live preview for a self-draw without mutating
// anything.
func (s *Service) PreviewTsumo(state *domain.MatchState, req domain.TsumoRequest) (domain.Preview, error) {
	return domain.PreviewTsumo(state, req)
}

// PreviewRon recomputes the live preview for a discard win.
func (s *Service) PreviewRon(state *domain.MatchState, req domain.RonRequest) (domain.Preview, error) {
	return domain.PreviewRon(state, req)
}

// PreviewDraw recomputes the live preview for an exhaustive draw.
func (s *Service) PreviewDraw(state *domain.MatchState, req domain.DrawRequest) domain.Preview {
	return domain.PreviewDraw(state, req)
}

// ConfirmTsumo validates, settles and commits a self-draw win.
func (s *Service) ConfirmTsumo(state *domain.MatchState, req domain.TsumoRequest) (*domain.MatchState, []Event, error) {
	pv, err := domain.PreviewTsumo(state, req)
	if err != nil {
		return state, nil, err
	}
	return s.commit(state, pv)
}

// ConfirmRon validates, settles and commits a discard win.
func (s *Service) ConfirmRon(state *domain.MatchState, req domain.RonRequest) (*domain.MatchState, []Event, error) {
	pv, err := domain.PreviewRon(state, req)
	if err != nil {
		return state, nil, err
	}
	return s.commit(state, pv)
}

// ConfirmDraw settles and commits an exhaustive draw. Draws never fail.
func (s *Service) ConfirmDraw(state *domain.MatchState, req domain.DrawRequest) (*domain.MatchState, []Event) {
	next, events, _ := s.commit(state, domain.PreviewDraw(state, req))
	return next, events
}

func (s *Service) commit(state *domain.MatchState, pv domain.Preview) (*domain.MatchState, []Event, error) {
	entry := domain.NewHistoryEntry(state, pv, s.clock())
	next := domain.Advance(state, pv, entry)
	s.undo.Record(state, next, entry.Description)

	events := []Event{{
		Kind:    EventSettlementApplied,
		Payload: SettlementAppliedPayload{Preview: pv, Entry: entry},
	}}
	return next, events, nil
}

// Undo restores the pre-settlement snapshot of the most recent confirmed
// settlement. With nothing pending it returns the state unchanged.
func (s *Service) Undo(state *domain.MatchState) (*domain.MatchState, []Event) {
	restored, ok := s.undo.Undo(state)
	if !ok {
		return state, nil
	}
	return restored, []Event{{Kind: EventUndoApplied, Payload: UndoAppliedPayload{Label: s.undo.Label()}}}
}

// Redo restores the post-settlement snapshot after an undo.
func (s *Service) Redo(state *domain.MatchState) (*domain.MatchState, []Event) {
	restored, ok := s.undo.Redo(state)
	if !ok {
		return state, nil
	}
	return restored, []Event{{Kind: EventRedoApplied, Payload: RedoAppliedPayload{Label: s.undo.Label()}}}
}

// CanUndo reports undo availability for display.
func (s *Service) CanUndo() bool { return s.undo.CanUndo() }

// CanRedo reports redo availability for display.
func (s *Service) CanRedo() bool { return s.undo.CanRedo() }

// EditRound applies an operator correction of wind/number/honba/dealer. It
// moves no points and is not undoable.
func (s *Service) EditRound(state *domain.MatchState, edit domain.RoundEdit) (*domain.MatchState, []Event) {
	next := domain.EditRound(state, edit)
	s.undo.Clear()
	return next, []Event{{Kind: EventRoundEdited, Payload: RoundEditedPayload{Edit: edit}}}
}

// Reset starts a new match with a fresh ledger. Player names survive unless
// resetNames is set.
func (s *Service) Reset(state *domain.MatchState, resetNames bool) (*domain.MatchState, []Event) {
	next := s.NewMatch()
	if !resetNames && state != nil {
		next.Names = state.Names
	}
	s.undo.Clear()
	return next, []Event{{Kind: EventMatchReset, Payload: MatchResetPayload{NamesReset: resetNames}}}
}

// Rename replaces the four display names. Entries are trimmed; an empty name
// falls back to the seat's wind label. Ledger snapshots are untouched.
func (s *Service) Rename(state *domain.MatchState, names [domain.SeatCount]string) (*domain.MatchState, []Event) {
	next := state.Clone()
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			name = domain.Seat(i).WindLabel()
		}
		next.Names[i] = name
	}
	s.undo.Clear()
	return next, []Event{{Kind: EventNamesChanged, Payload: NamesChangedPayload{Names: next.Names}}}
}

// UndoSnapshot exports the pending undo pair for persistence.
func (s *Service) UndoSnapshot() domain.UndoSnapshot {
	return s.undo.Snapshot()
}

// RestoreUndoSnapshot rebuilds the pending undo pair from a persisted
// document, tolerating malformed input.
func (s *Service) RestoreUndoSnapshot(snap domain.UndoSnapshot) {
	s.undo = domain.RestoreUndo(snap)
}
