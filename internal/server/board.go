package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"riichiscore/internal/app"
	"riichiscore/internal/domain"
	"riichiscore/internal/persist"
	"riichiscore/internal/ports"
)

// Board serializes access to the match aggregate for the standalone server.
// Every mutation runs under the lock, replaces the aggregate wholesale,
// persists the document and returns the committed state for broadcast.
type Board struct {
	mu      sync.Mutex
	app     *app.Service
	tracker *domain.MatchState
	store   ports.SnapshotStore
	logger  *slog.Logger
}

// NewBoard creates a board with a fresh match.
func NewBoard(svc *app.Service, store ports.SnapshotStore, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{
		app:     svc,
		tracker: svc.NewMatch(),
		store:   store,
		logger:  logger,
	}
}

// Restore resumes from a persisted document if one exists. Decode never
// fails; malformed fields fall back to defaults.
func (b *Board) Restore(ctx context.Context, startingPoints int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, found, err := b.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore match: %w", err)
	}
	if !found {
		return nil
	}

	tracker, undo := persist.Decode(doc, startingPoints)
	b.tracker = tracker
	b.app.RestoreUndoSnapshot(undo)
	b.logger.Info("Resumed match",
		"round", domain.RoundLabel(tracker.RoundIndex),
		"honba", tracker.Honba)
	return nil
}

// State returns the committed aggregate for display.
func (b *Board) State() StateMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

// Preview recomputes the live settlement preview without mutating anything.
func (b *Board) Preview(form SettlementForm) (domain.Preview, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch form.Outcome {
	case string(domain.OutcomeTsumo):
		req, err := form.toTsumo()
		if err != nil {
			return domain.Preview{}, err
		}
		return b.app.PreviewTsumo(b.tracker, req)
	case string(domain.OutcomeRon):
		req, err := form.toRon()
		if err != nil {
			return domain.Preview{}, err
		}
		return b.app.PreviewRon(b.tracker, req)
	case string(domain.OutcomeDraw):
		return b.app.PreviewDraw(b.tracker, form.toDraw()), nil
	default:
		return domain.Preview{}, fmt.Errorf("unknown outcome %q", form.Outcome)
	}
}

// Confirm validates and commits a settlement, advancing the round.
func (b *Board) Confirm(ctx context.Context, form SettlementForm) (StateMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var (
		next   *domain.MatchState
		events []app.Event
		err    error
	)
	switch form.Outcome {
	case string(domain.OutcomeTsumo):
		var req domain.TsumoRequest
		if req, err = form.toTsumo(); err == nil {
			next, events, err = b.app.ConfirmTsumo(b.tracker, req)
		}
	case string(domain.OutcomeRon):
		var req domain.RonRequest
		if req, err = form.toRon(); err == nil {
			next, events, err = b.app.ConfirmRon(b.tracker, req)
		}
	case string(domain.OutcomeDraw):
		next, events = b.app.ConfirmDraw(b.tracker, form.toDraw())
	default:
		err = fmt.Errorf("unknown outcome %q", form.Outcome)
	}
	if err != nil {
		return StateMessage{}, err
	}

	b.tracker = next
	b.persistLocked(ctx)
	for _, ev := range events {
		if payload, ok := ev.Payload.(app.SettlementAppliedPayload); ok {
			b.logger.Info("Settlement applied", "entry", payload.Entry.Description)
		}
	}
	return b.stateLocked(), nil
}

// Undo restores the pre-settlement snapshot of the last confirmed
// settlement. The second return is false when nothing is pending.
func (b *Board) Undo(ctx context.Context) (StateMessage, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next, events := b.app.Undo(b.tracker)
	if len(events) == 0 {
		return StateMessage{}, false
	}
	b.tracker = next
	b.persistLocked(ctx)
	return b.stateLocked(), true
}

// Redo restores the post-settlement snapshot after an undo.
func (b *Board) Redo(ctx context.Context) (StateMessage, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next, events := b.app.Redo(b.tracker)
	if len(events) == 0 {
		return StateMessage{}, false
	}
	b.tracker = next
	b.persistLocked(ctx)
	return b.stateLocked(), true
}

// EditRound applies a manual round correction.
func (b *Board) EditRound(ctx context.Context, form EditRoundForm) StateMessage {
	b.mu.Lock()
	defer b.mu.Unlock()

	next, _ := b.app.EditRound(b.tracker, form.toDomain())
	b.tracker = next
	b.persistLocked(ctx)
	return b.stateLocked()
}

// Reset starts a new match, keeping names unless the form says otherwise.
func (b *Board) Reset(ctx context.Context, form ResetForm) StateMessage {
	b.mu.Lock()
	defer b.mu.Unlock()

	next, _ := b.app.Reset(b.tracker, form.ResetNames)
	b.tracker = next
	b.persistLocked(ctx)
	b.logger.Info("Match reset", "names_reset", form.ResetNames)
	return b.stateLocked()
}

// Rename replaces the four display names.
func (b *Board) Rename(ctx context.Context, form RenameForm) StateMessage {
	b.mu.Lock()
	defer b.mu.Unlock()

	next, _ := b.app.Rename(b.tracker, form.Names)
	b.tracker = next
	b.persistLocked(ctx)
	return b.stateLocked()
}

// Flush persists the current document, used on shutdown.
func (b *Board) Flush(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.persistLocked(ctx)
}

// persistLocked saves the document; a storage failure is logged but never
// blocks the in-memory transition. Callers hold the lock.
func (b *Board) persistLocked(ctx context.Context) {
	doc, err := persist.Encode(b.tracker, b.app.UndoSnapshot(), time.Now().UTC())
	if err != nil {
		b.logger.Error("Failed to encode match document", "error", err)
		return
	}
	if err := b.store.Save(ctx, doc); err != nil {
		b.logger.Error("Failed to persist match document", "error", err)
	}
}

func (b *Board) stateLocked() StateMessage {
	standings := domain.Standings(b.tracker)
	return StateMessage{
		Points:     b.tracker.Points,
		Pool:       b.tracker.Pool,
		Honba:      b.tracker.Honba,
		RoundIndex: b.tracker.RoundIndex,
		RoundLabel: domain.RoundLabel(b.tracker.RoundIndex),
		DealerSeat: int(b.tracker.DealerSeat),
		Names:      b.tracker.Names,
		History:    b.tracker.History,
		Standings:  standings[:],
		CanUndo:    b.app.CanUndo(),
		CanRedo:    b.app.CanRedo(),
	}
}
