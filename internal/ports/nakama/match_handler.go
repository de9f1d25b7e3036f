package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"riichiscore/internal/app"
	"riichiscore/internal/config"
	"riichiscore/internal/domain"
	"riichiscore/internal/persist"
	"riichiscore/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the authoritative runtime state for the scoreboard match
// handler. The domain aggregate is replaced wholesale on every confirmed
// operation; the match loop is the single writer, so no locking is needed.
type MatchState struct {
	Tracker   *domain.MatchState          `json:"tracker"`
	Presences map[string]runtime.Presence `json:"-"` // UserId -> Presence
	App       *app.Service                `json:"-"`
	Store     ports.SnapshotStore         `json:"-"`
	Tick      int64                       `json:"tick"`
}

// Label is the match label advertised for find-or-create queries.
type Label struct {
	Game string `json:"game"`
	Open bool   `json:"open"`
}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit restores the persisted match document (or starts a fresh one)
// and advertises the scoreboard label.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing scoreboard handler.")

	if err := config.LoadRulesConfig("data/rules_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load rules config: %v", err)
	}

	svc := app.NewService(nil)
	svc.SetStartingPoints(config.GetStartingPoints())
	svc.SetDefaultNames(config.GetDefaultNames())

	state := &MatchState{
		Presences: make(map[string]runtime.Presence),
		App:       svc,
		Store:     NewNakamaStorageAdapter(nk),
	}

	doc, found, err := state.Store.Load(ctx)
	if err != nil {
		logger.Warn("MatchInit: Could not load stored match: %v", err)
	}
	if found {
		tracker, undo := persist.Decode(doc, config.GetStartingPoints())
		state.Tracker = tracker
		svc.RestoreUndoSnapshot(undo)
		logger.Info("MatchInit: Resumed match at %s, honba %d.", domain.RoundLabel(tracker.RoundIndex), tracker.Honba)
	} else {
		state.Tracker = svc.NewMatch()
	}

	labelBytes, err := json.Marshal(Label{Game: "riichi_score", Open: true})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

// MatchJoinAttempt admits every client; the scoreboard has viewers, not
// seated players.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	if _, ok := state.(*MatchState); !ok {
		return state, false, "state not found"
	}
	return state, true, ""
}

// MatchJoin sends the committed state to newly joined clients.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
	}
	mh.broadcastState(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave drops presences and ends the match once nobody is watching.
// The persisted document outlives the match instance.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
	}
	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: No clients remain, ending match instance.")
		return nil
	}
	return matchState
}

// MatchLoop dispatches client requests. Every confirmed mutation replaces
// the aggregate, persists the document and broadcasts the new state.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpConfirmTsumo, OpConfirmRon, OpConfirmDraw:
			mh.handleConfirm(ctx, matchState, dispatcher, logger, msg)
		case OpPreviewSettlement:
			mh.handlePreview(matchState, dispatcher, logger, msg)
		case OpUndo:
			mh.handleUndo(ctx, matchState, dispatcher, logger)
		case OpRedo:
			mh.handleRedo(ctx, matchState, dispatcher, logger)
		case OpEditRound:
			mh.handleEditRound(ctx, matchState, dispatcher, logger, msg)
		case OpResetMatch:
			mh.handleReset(ctx, matchState, dispatcher, logger, msg)
		case OpRenamePlayers:
			mh.handleRename(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}
	return matchState
}

func (mh *matchHandler) handleConfirm(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	var request SettlementMessage
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handleConfirm: Invalid settlement payload from %s: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, "invalid settlement payload")
		return
	}

	var (
		next   *domain.MatchState
		events []app.Event
		err    error
	)
	switch msg.GetOpCode() {
	case OpConfirmTsumo:
		var req domain.TsumoRequest
		if req, err = request.toTsumo(); err == nil {
			next, events, err = state.App.ConfirmTsumo(state.Tracker, req)
		}
	case OpConfirmRon:
		var req domain.RonRequest
		if req, err = request.toRon(); err == nil {
			next, events, err = state.App.ConfirmRon(state.Tracker, req)
		}
	case OpConfirmDraw:
		next, events = state.App.ConfirmDraw(state.Tracker, request.toDraw())
	}
	if err != nil {
		logger.Warn("handleConfirm: User %s settlement rejected: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, err.Error())
		return
	}

	state.Tracker = next
	mh.saveState(ctx, state, logger)
	for _, ev := range events {
		logger.Info("handleConfirm: %s", describeEvent(ev))
	}
	mh.broadcastState(state, dispatcher, logger)
}

func (mh *matchHandler) handlePreview(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	var request SettlementMessage
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, "invalid settlement payload")
		return
	}

	var (
		pv  domain.Preview
		err error
	)
	switch request.Outcome {
	case string(domain.OutcomeTsumo):
		var req domain.TsumoRequest
		if req, err = request.toTsumo(); err == nil {
			pv, err = state.App.PreviewTsumo(state.Tracker, req)
		}
	case string(domain.OutcomeRon):
		var req domain.RonRequest
		if req, err = request.toRon(); err == nil {
			pv, err = state.App.PreviewRon(state.Tracker, req)
		}
	case string(domain.OutcomeDraw):
		pv = state.App.PreviewDraw(state.Tracker, request.toDraw())
	default:
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, "unknown outcome")
		return
	}
	if err != nil {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, err.Error())
		return
	}

	mh.sendToUser(state, dispatcher, logger, msg.GetUserId(), OpPreviewResult, pv)
}

func (mh *matchHandler) handleUndo(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	next, events := state.App.Undo(state.Tracker)
	if len(events) == 0 {
		// Nothing pending; deliberately a silent no-op.
		return
	}
	state.Tracker = next
	mh.saveState(ctx, state, logger)
	mh.broadcastState(state, dispatcher, logger)
}

func (mh *matchHandler) handleRedo(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	next, events := state.App.Redo(state.Tracker)
	if len(events) == 0 {
		return
	}
	state.Tracker = next
	mh.saveState(ctx, state, logger)
	mh.broadcastState(state, dispatcher, logger)
}

func (mh *matchHandler) handleEditRound(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	var request EditRoundMessage
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, "invalid round edit payload")
		return
	}

	next, _ := state.App.EditRound(state.Tracker, request.toDomain())
	state.Tracker = next
	mh.saveState(ctx, state, logger)
	mh.broadcastState(state, dispatcher, logger)
}

func (mh *matchHandler) handleReset(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	var request ResetMessage
	if len(msg.GetData()) > 0 {
		if err := json.Unmarshal(msg.GetData(), &request); err != nil {
			mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, "invalid reset payload")
			return
		}
	}

	next, _ := state.App.Reset(state.Tracker, request.ResetNames)
	state.Tracker = next
	mh.saveState(ctx, state, logger)
	mh.broadcastState(state, dispatcher, logger)
	logger.Info("handleReset: Match reset by %s (names reset: %t)", msg.GetUserId(), request.ResetNames)
}

func (mh *matchHandler) handleRename(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	var request RenameMessage
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, "invalid rename payload")
		return
	}

	next, _ := state.App.Rename(state.Tracker, request.Names)
	state.Tracker = next
	mh.saveState(ctx, state, logger)
	mh.broadcastState(state, dispatcher, logger)
}

// saveState persists the current document; a storage failure is logged but
// never blocks the in-memory transition.
func (mh *matchHandler) saveState(ctx context.Context, state *MatchState, logger runtime.Logger) {
	doc, err := persist.Encode(state.Tracker, state.App.UndoSnapshot(), time.Now().UTC())
	if err != nil {
		logger.Error("saveState: Failed to encode match document: %v", err)
		return
	}
	if err := state.Store.Save(ctx, doc); err != nil {
		logger.Error("saveState: Failed to persist match document: %v", err)
	}
}

func (mh *matchHandler) broadcastState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	standings := domain.Standings(state.Tracker)
	payload := StatePayload{
		Points:     state.Tracker.Points,
		Pool:       state.Tracker.Pool,
		Honba:      state.Tracker.Honba,
		RoundIndex: state.Tracker.RoundIndex,
		RoundLabel: domain.RoundLabel(state.Tracker.RoundIndex),
		DealerSeat: int(state.Tracker.DealerSeat),
		Names:      state.Tracker.Names,
		History:    state.Tracker.History,
		Standings:  standings[:],
		CanUndo:    state.App.CanUndo(),
		CanRedo:    state.App.CanRedo(),
	}
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("broadcastState: Failed to marshal state: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpStateUpdate, bytes, nil, nil, true)
}

// sendToUser sends a payload to a single connected client.
func (mh *matchHandler) sendToUser(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, opCode int64, payload any) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("sendToUser: Failed to marshal payload: %v", err)
		return
	}
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("sendToUser: Presence not found for %s", userID)
		return
	}
	dispatcher.BroadcastMessage(opCode, bytes, []runtime.Presence{presence}, nil, true)
}

// sendError sends an ErrorPayload to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	mh.sendToUser(state, dispatcher, logger, userID, OpError, ErrorPayload{Code: code, Message: message})
}

func describeEvent(ev app.Event) string {
	if payload, ok := ev.Payload.(app.SettlementAppliedPayload); ok {
		return payload.Entry.Description
	}
	return string(ev.Kind)
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	mh.saveState(ctx, matchState, logger)
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return matchState
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
