package persist

import (
	"encoding/json"
	"testing"
	"time"

	"riichiscore/internal/domain"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	state := domain.NewMatchState(0)
	pv, err := domain.PreviewRon(state, domain.RonRequest{Winner: domain.SeatSouth, Loser: domain.SeatWest, Han: 3, Fu: 40})
	if err != nil {
		t.Fatal(err)
	}
	entry := domain.NewHistoryEntry(state, pv, time.Unix(100, 0).UTC())
	next := domain.Advance(state, pv, entry)

	undo := domain.NewUndoController()
	undo.Record(state, next, entry.Description)

	data, err := Encode(next, undo.Snapshot(), time.Unix(200, 0).UTC())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	loaded, undoSnap := Decode(data, 0)
	if loaded.Points != next.Points {
		t.Errorf("Points = %v, want %v", loaded.Points, next.Points)
	}
	if loaded.DealerSeat != next.DealerSeat || loaded.RoundIndex != next.RoundIndex || loaded.Honba != next.Honba {
		t.Errorf("round fields = (%v, %d, %d), want (%v, %d, %d)",
			loaded.DealerSeat, loaded.RoundIndex, loaded.Honba,
			next.DealerSeat, next.RoundIndex, next.Honba)
	}
	if len(loaded.History) != 1 || loaded.History[0].Description != entry.Description {
		t.Errorf("history = %+v, want one entry %q", loaded.History, entry.Description)
	}

	restored := domain.RestoreUndo(undoSnap)
	if !restored.CanUndo() {
		t.Error("restored undo lost the pending pair")
	}
}

func TestDecodeMalformedDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "Garbage", data: "not json"},
		{name: "EmptyObject", data: "{}"},
		{name: "NullState", data: `{"state": null}`},
		{name: "StateWrongType", data: `{"state": 17}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, undo := Decode([]byte(tt.data), 0)
			if state.TotalPoints() != 100000 {
				t.Errorf("TotalPoints() = %d, want fresh 100000", state.TotalPoints())
			}
			if state.RoundIndex != 0 || state.DealerSeat != domain.SeatEast {
				t.Error("malformed document should decode to the initial round position")
			}
			if domain.RestoreUndo(undo).CanUndo() {
				t.Error("malformed document should not carry an undo pair")
			}
		})
	}
}

func TestDecodeFieldFallbacks(t *testing.T) {
	doc := `{
		"state": {
			"points": [26000, 24000, "oops", 25000],
			"pool": "two",
			"honba": -3,
			"round_index": 13,
			"dealer_seat": 6,
			"names": "nope",
			"history": null
		}
	}`

	state, _ := Decode([]byte(doc), 0)

	// Invalid points array: fresh stacks stand.
	for seat, points := range state.Points {
		if points != domain.DefaultStartingPoints {
			t.Errorf("seat %d points = %d, want default", seat, points)
		}
	}
	if state.Pool != 0 {
		t.Errorf("Pool = %d, want 0", state.Pool)
	}
	if state.Honba != 0 {
		t.Errorf("Honba = %d, want 0 (negative rejected)", state.Honba)
	}
	if state.RoundIndex != 13%domain.RoundCount {
		t.Errorf("RoundIndex = %d, want %d", state.RoundIndex, 13%domain.RoundCount)
	}
	if state.DealerSeat != domain.Seat(6%domain.SeatCount) {
		t.Errorf("DealerSeat = %v, want normalized %v", state.DealerSeat, domain.Seat(6%domain.SeatCount))
	}
	if state.Names != [domain.SeatCount]string{"East", "South", "West", "North"} {
		t.Errorf("Names = %v, want defaults", state.Names)
	}
	if len(state.History) != 0 {
		t.Errorf("History length = %d, want 0", len(state.History))
	}
}

func TestDecodePartialStateKeepsValidFields(t *testing.T) {
	doc := `{
		"state": {
			"points": [26000, 24000, 26000, 24000],
			"dealer_seat": -1,
			"names": ["Aki", "", "Chika", "Dan"]
		}
	}`

	state, _ := Decode([]byte(doc), 0)

	want := [domain.SeatCount]int{26000, 24000, 26000, 24000}
	if state.Points != want {
		t.Errorf("Points = %v, want %v", state.Points, want)
	}
	// -1 normalizes into range via modulo.
	if !state.DealerSeat.Selected() {
		t.Errorf("DealerSeat = %v, want normalized into range", state.DealerSeat)
	}
	if state.Names[0] != "Aki" || state.Names[1] != "South" {
		t.Errorf("Names = %v, want blanks replaced by wind labels", state.Names)
	}
}

func TestEncodeProducesVersionedDocument(t *testing.T) {
	data, err := Encode(domain.NewMatchState(0), domain.UndoSnapshot{}, time.Unix(0, 0).UTC())
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if string(doc["version"]) != "1" {
		t.Errorf("version = %s, want 1", doc["version"])
	}
	if _, ok := doc["state"]; !ok {
		t.Error("document missing state field")
	}
}
