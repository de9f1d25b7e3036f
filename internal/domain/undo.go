package domain

// undoPhase tags the controller's single pending transition.
type undoPhase string

const (
	undoNone      undoPhase = "none"
	undoCommitted undoPhase = "committed"
	undoUndone    undoPhase = "undone"
)

// UndoController retains at most one (before, after) state pair. Confirming
// a new settlement replaces whatever pair existed; there is deliberately no
// multi-level stack.
type UndoController struct {
	phase  undoPhase
	before *MatchState
	after  *MatchState
	label  string
}

// NewUndoController returns an empty controller.
func NewUndoController() *UndoController {
	return &UndoController{phase: undoNone}
}

// Record installs a fresh transition pair, discarding any pending one. The
// snapshots are deep-copied so later mutations of live state cannot leak in.
func (u *UndoController) Record(before, after *MatchState, label string) {
	u.phase = undoCommitted
	u.before = before.Clone()
	u.after = after.Clone()
	u.label = label
}

// Clear drops the pending pair. Manual edits, resets and renames call this
// because their effects are not undoable.
func (u *UndoController) Clear() {
	*u = UndoController{phase: undoNone}
}

// CanUndo reports whether an undo is currently available.
func (u *UndoController) CanUndo() bool { return u.phase == undoCommitted }

// CanRedo reports whether a redo is currently available.
func (u *UndoController) CanRedo() bool { return u.phase == undoUndone }

// Label returns a short description of the pending transition.
func (u *UndoController) Label() string { return u.label }

// Undo restores the "before" snapshot. With nothing pending it returns the
// current state unchanged and reports false.
func (u *UndoController) Undo(current *MatchState) (*MatchState, bool) {
	if !u.CanUndo() {
		return current, false
	}
	u.phase = undoUndone
	return u.before.Clone(), true
}

// Redo restores the "after" snapshot. It is only valid while undone.
func (u *UndoController) Redo(current *MatchState) (*MatchState, bool) {
	if !u.CanRedo() {
		return current, false
	}
	u.phase = undoCommitted
	return u.after.Clone(), true
}

// UndoSnapshot is the serializable form of the pending pair, carried inside
// the persisted match document.
type UndoSnapshot struct {
	Phase  string      `json:"phase"`
	Before *MatchState `json:"before,omitempty"`
	After  *MatchState `json:"after,omitempty"`
	Label  string      `json:"label,omitempty"`
}

// Snapshot exports the controller for persistence.
func (u *UndoController) Snapshot() UndoSnapshot {
	return UndoSnapshot{
		Phase:  string(u.phase),
		Before: u.before.Clone(),
		After:  u.after.Clone(),
		Label:  u.label,
	}
}

// RestoreUndo rebuilds a controller from a persisted snapshot. Malformed
// snapshots fall back to the empty controller.
func RestoreUndo(snap UndoSnapshot) *UndoController {
	phase := undoPhase(snap.Phase)
	if (phase != undoCommitted && phase != undoUndone) || snap.Before == nil || snap.After == nil {
		return NewUndoController()
	}
	return &UndoController{
		phase:  phase,
		before: snap.Before.Clone(),
		after:  snap.After.Clone(),
		label:  snap.Label,
	}
}
