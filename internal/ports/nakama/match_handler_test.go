package nakama

import (
	"context"
	"encoding/json"
	"testing"

	"riichiscore/internal/app"
	"riichiscore/internal/domain"
	"riichiscore/internal/persist"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy
// the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	broadcasts []broadcast
}

type broadcast struct {
	opCode    int64
	data      []byte
	presences []runtime.Presence
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcasts = append(md.broadcasts, broadcast{
		opCode:    opCode,
		data:      append([]byte(nil), data...),
		presences: presences,
	})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	return nil
}

func (md *mockDispatcher) last() broadcast {
	return md.broadcasts[len(md.broadcasts)-1]
}

func (md *mockDispatcher) lastWithOp(opCode int64) (broadcast, bool) {
	for i := len(md.broadcasts) - 1; i >= 0; i-- {
		if md.broadcasts[i].opCode == opCode {
			return md.broadcasts[i], true
		}
	}
	return broadcast{}, false
}

// memoryStore implements ports.SnapshotStore in memory.
type memoryStore struct {
	doc   []byte
	saves int
}

func (ms *memoryStore) Save(ctx context.Context, doc []byte) error {
	ms.doc = append([]byte(nil), doc...)
	ms.saves++
	return nil
}

func (ms *memoryStore) Load(ctx context.Context) ([]byte, bool, error) {
	if ms.doc == nil {
		return nil, false, nil
	}
	return ms.doc, true, nil
}

// fakePresence satisfies runtime.Presence for a test client.
type fakePresence struct {
	userID string
}

func (fp fakePresence) GetUserId() string                 { return fp.userID }
func (fp fakePresence) GetSessionId() string              { return "session-" + fp.userID }
func (fp fakePresence) GetNodeId() string                 { return "node" }
func (fp fakePresence) GetHidden() bool                   { return false }
func (fp fakePresence) GetPersistence() bool              { return true }
func (fp fakePresence) GetUsername() string               { return fp.userID }
func (fp fakePresence) GetStatus() string                 { return "" }
func (fp fakePresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }

// fakeMatchData wraps a presence with an opcode and JSON payload.
type fakeMatchData struct {
	fakePresence
	opCode int64
	data   []byte
}

func (fm fakeMatchData) GetOpCode() int64      { return fm.opCode }
func (fm fakeMatchData) GetData() []byte       { return fm.data }
func (fm fakeMatchData) GetReliable() bool     { return true }
func (fm fakeMatchData) GetReceiveTime() int64 { return 0 }

func newTestMatchState(store *memoryStore) *MatchState {
	svc := app.NewService(nil)
	return &MatchState{
		Tracker:   svc.NewMatch(),
		Presences: map[string]runtime.Presence{"scorer": fakePresence{userID: "scorer"}},
		App:       svc,
		Store:     store,
	}
}

func message(t *testing.T, opCode int64, payload any) fakeMatchData {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return fakeMatchData{
		fakePresence: fakePresence{userID: "scorer"},
		opCode:       opCode,
		data:         data,
	}
}

func seatPtr(seat int) *int { return &seat }

func TestMatchLoopConfirmTsumo(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	store := &memoryStore{}
	state := newTestMatchState(store)

	msg := message(t, OpConfirmTsumo, SettlementMessage{
		Outcome: "tsumo",
		Winner:  seatPtr(0),
		Han:     "3",
		Fu:      "40",
	})

	result := handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{msg})
	matchState := result.(*MatchState)

	if got := matchState.Tracker.Points[domain.SeatEast]; got != 25000+7800 {
		t.Errorf("winner points = %d, want %d", got, 25000+7800)
	}
	if matchState.Tracker.Honba != 1 {
		t.Errorf("Honba = %d, want 1 after dealer win", matchState.Tracker.Honba)
	}
	if store.saves != 1 {
		t.Errorf("store saves = %d, want 1", store.saves)
	}

	stateMsg, ok := dispatcher.lastWithOp(OpStateUpdate)
	if !ok {
		t.Fatal("no state update broadcast")
	}
	var payload StatePayload
	if err := json.Unmarshal(stateMsg.data, &payload); err != nil {
		t.Fatalf("unmarshal state payload: %v", err)
	}
	if !payload.CanUndo || payload.CanRedo {
		t.Errorf("undo flags = (%t, %t), want (true, false)", payload.CanUndo, payload.CanRedo)
	}
	if len(payload.History) != 1 {
		t.Errorf("history length = %d, want 1", len(payload.History))
	}

	// Persisted document resumes to the same aggregate.
	loaded, _ := persist.Decode(store.doc, 0)
	if loaded.Points != matchState.Tracker.Points {
		t.Errorf("persisted points = %v, want %v", loaded.Points, matchState.Tracker.Points)
	}
}

func TestMatchLoopRejectsBadHan(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	store := &memoryStore{}
	state := newTestMatchState(store)

	msg := message(t, OpConfirmRon, SettlementMessage{
		Outcome: "ron",
		Winner:  seatPtr(1),
		Loser:   seatPtr(2),
		Han:     "three",
		Fu:      "40",
	})

	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{msg})

	if state.Tracker.Points != domain.NewMatchState(0).Points {
		t.Error("rejected settlement moved points")
	}
	if store.saves != 0 {
		t.Errorf("store saves = %d, want 0 on rejection", store.saves)
	}

	errMsg, ok := dispatcher.lastWithOp(OpError)
	if !ok {
		t.Fatal("no error sent to requester")
	}
	if len(errMsg.presences) != 1 || errMsg.presences[0].GetUserId() != "scorer" {
		t.Error("error should target only the requesting client")
	}
}

func TestMatchLoopRejectsWinnerEqualsLoser(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	store := &memoryStore{}
	state := newTestMatchState(store)

	msg := message(t, OpConfirmRon, SettlementMessage{
		Outcome: "ron",
		Winner:  seatPtr(2),
		Loser:   seatPtr(2),
		Han:     "2",
		Fu:      "30",
	})

	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{msg})

	if _, ok := dispatcher.lastWithOp(OpError); !ok {
		t.Fatal("winner == loser should be rejected")
	}
	if store.saves != 0 {
		t.Error("rejected settlement must not persist")
	}
}

func TestMatchLoopPreviewDoesNotMutate(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	store := &memoryStore{}
	state := newTestMatchState(store)

	msg := message(t, OpPreviewSettlement, SettlementMessage{
		Outcome: "ron",
		Winner:  seatPtr(1),
		Loser:   seatPtr(2),
		Han:     "3",
		Fu:      "40",
	})

	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{msg})

	previewMsg, ok := dispatcher.lastWithOp(OpPreviewResult)
	if !ok {
		t.Fatal("no preview result sent")
	}
	var pv domain.Preview
	if err := json.Unmarshal(previewMsg.data, &pv); err != nil {
		t.Fatalf("unmarshal preview: %v", err)
	}
	if pv.Deltas[1] != 5200 || pv.Deltas[2] != -5200 {
		t.Errorf("preview deltas = %v, want +5200/-5200", pv.Deltas)
	}
	if len(previewMsg.presences) != 1 {
		t.Error("preview should go only to the requesting client")
	}

	if state.Tracker.Points != domain.NewMatchState(0).Points {
		t.Error("preview mutated the aggregate")
	}
	if store.saves != 0 {
		t.Error("preview must not persist")
	}
}

func TestMatchLoopUndoRedo(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	store := &memoryStore{}
	state := newTestMatchState(store)

	confirm := message(t, OpConfirmDraw, SettlementMessage{
		Outcome: "draw",
		Tenpai:  [domain.SeatCount]bool{false, true, false, false},
	})
	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{confirm})

	if state.Tracker.Points[1] != 25000+3000 {
		t.Fatalf("tenpai seat points = %d, want %d", state.Tracker.Points[1], 25000+3000)
	}

	undoMsg := fakeMatchData{fakePresence: fakePresence{userID: "scorer"}, opCode: OpUndo}
	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 2, state, []runtime.MatchData{undoMsg})

	if state.Tracker.Points[1] != 25000 {
		t.Errorf("points after undo = %d, want 25000", state.Tracker.Points[1])
	}
	if len(state.Tracker.History) != 0 {
		t.Error("undo should restore the pre-settlement ledger")
	}

	redoMsg := fakeMatchData{fakePresence: fakePresence{userID: "scorer"}, opCode: OpRedo}
	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 3, state, []runtime.MatchData{redoMsg})

	if state.Tracker.Points[1] != 25000+3000 {
		t.Errorf("points after redo = %d, want %d", state.Tracker.Points[1], 25000+3000)
	}

	// A second undo cycle is still available; an undo on a fresh handler
	// state with nothing pending broadcasts nothing.
	fresh := newTestMatchState(&memoryStore{})
	quiet := &mockDispatcher{}
	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, quiet, 4, fresh, []runtime.MatchData{undoMsg})
	if len(quiet.broadcasts) != 0 {
		t.Error("undo with nothing pending should be silent")
	}
}

func TestMatchLoopRenameAndEditRound(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	store := &memoryStore{}
	state := newTestMatchState(store)

	rename := message(t, OpRenamePlayers, RenameMessage{
		Names: [domain.SeatCount]string{" Aki ", "", "Chika", "Dan"},
	})
	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{rename})

	want := [domain.SeatCount]string{"Aki", "South", "Chika", "Dan"}
	if state.Tracker.Names != want {
		t.Errorf("Names = %v, want %v", state.Tracker.Names, want)
	}

	edit := message(t, OpEditRound, EditRoundMessage{Wind: 1, Number: 4, Honba: 2, Dealer: 3})
	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 2, state, []runtime.MatchData{edit})

	if state.Tracker.RoundIndex != 7 {
		t.Errorf("RoundIndex = %d, want 7 (South 4)", state.Tracker.RoundIndex)
	}
	if state.Tracker.Honba != 2 || state.Tracker.DealerSeat != domain.SeatNorth {
		t.Errorf("round fields = (%d, %v), want (2, north)", state.Tracker.Honba, state.Tracker.DealerSeat)
	}
	if store.saves != 2 {
		t.Errorf("store saves = %d, want 2", store.saves)
	}
}

func TestMatchJoinBroadcastsState(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newTestMatchState(&memoryStore{})

	presence := fakePresence{userID: "viewer"}
	result := handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.Presence{presence})
	matchState := result.(*MatchState)

	if _, ok := matchState.Presences["viewer"]; !ok {
		t.Error("joined presence not tracked")
	}
	if _, ok := dispatcher.lastWithOp(OpStateUpdate); !ok {
		t.Error("join should broadcast the committed state")
	}
}

func TestMatchLeaveEndsWhenEmpty(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newTestMatchState(&memoryStore{})

	presence := fakePresence{userID: "scorer"}
	result := handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.Presence{presence})
	if result != nil {
		t.Error("match should end when the last client leaves")
	}
}
