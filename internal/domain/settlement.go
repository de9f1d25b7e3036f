package domain

import "errors"

// Outcome is the kind of hand result being settled.
type Outcome string

const (
	OutcomeTsumo Outcome = "tsumo"
	OutcomeRon   Outcome = "ron"
	OutcomeDraw  Outcome = "draw"
)

var (
	// ErrNoWinner is returned when a win settlement has no winner selected.
	ErrNoWinner = errors.New("no winner seat selected")
	// ErrNoLoser is returned when a ron settlement has no discarder selected.
	ErrNoLoser = errors.New("no discarder seat selected")
	// ErrWinnerIsLoser is returned when the ron winner and discarder coincide.
	ErrWinnerIsLoser = errors.New("winner and discarder are the same seat")
	// ErrInvalidHanFu is returned when han or fu is not a positive integer.
	ErrInvalidHanFu = errors.New("han and fu must be positive")
)

// TsumoRequest describes a self-draw win.
type TsumoRequest struct {
	Winner Seat
	Han    int
	Fu     int
	Riichi [SeatCount]bool
}

// RonRequest describes a discard win.
type RonRequest struct {
	Winner Seat
	Loser  Seat
	Han    int
	Fu     int
	Riichi [SeatCount]bool
}

// DrawRequest describes an exhaustive draw.
type DrawRequest struct {
	Tenpai [SeatCount]bool
	Riichi [SeatCount]bool
}

// Preview is the full effect of a settlement, computed without mutating
// anything. The identical computation backs both the live preview shown
// before confirmation and the delta actually applied, so the two can never
// diverge.
type Preview struct {
	Outcome Outcome        `json:"outcome"`
	Deltas  [SeatCount]int `json:"deltas"`

	PoolBefore   int `json:"pool_before"`
	PoolAfter    int `json:"pool_after"`
	PoolIncome   int `json:"pool_income"`   // points claimed from the pool by the winner
	RiichiIncome int `json:"riichi_income"` // points from sticks declared this hand
	RiichiCount  int `json:"riichi_count"`

	// Inputs echoed for the ledger and for round progression.
	Winner       Seat `json:"winner"`
	Loser        Seat `json:"loser"`
	Han          int  `json:"han"`
	Fu           int  `json:"fu"`
	TenpaiCount  int  `json:"tenpai_count"`
	DealerTenpai bool `json:"dealer_tenpai"`
}

// declareRiichi applies the step common to all outcomes: every declarer puts
// a 1000-point stick on the table.
func declareRiichi(pv *Preview, riichi [SeatCount]bool) {
	for seat, declared := range riichi {
		if declared {
			pv.Deltas[seat] -= RiichiStickValue
			pv.RiichiCount++
		}
	}
}

// claimSticks pays the pool and this hand's sticks to the winner and empties
// the pool.
func claimSticks(pv *Preview, winner Seat) {
	pv.PoolIncome = pv.PoolBefore * RiichiStickValue
	pv.RiichiIncome = pv.RiichiCount * RiichiStickValue
	pv.Deltas[winner] += pv.PoolIncome + pv.RiichiIncome
	pv.PoolAfter = 0
}

func validateHanFu(han, fu int) error {
	if han < 1 || fu < 1 {
		return ErrInvalidHanFu
	}
	return nil
}

// PreviewTsumo computes the effect of a self-draw win against the current
// state. The state is read-only.
func PreviewTsumo(state *MatchState, req TsumoRequest) (Preview, error) {
	if !req.Winner.Selected() {
		return Preview{}, ErrNoWinner
	}
	if err := validateHanFu(req.Han, req.Fu); err != nil {
		return Preview{}, err
	}

	pv := Preview{
		Outcome:    OutcomeTsumo,
		PoolBefore: state.Pool,
		Winner:     req.Winner,
		Loser:      NoSeat,
		Han:        req.Han,
		Fu:         req.Fu,
	}
	declareRiichi(&pv, req.Riichi)

	base := BasePoints(req.Han, req.Fu)
	dealerWon := req.Winner == state.DealerSeat
	collected := 0
	for seat := Seat(0); seat < SeatCount; seat++ {
		if seat == req.Winner {
			continue
		}
		var payment int
		if dealerWon || seat == state.DealerSeat {
			payment = RoundUpToHundred(2 * base)
		} else {
			payment = RoundUpToHundred(base)
		}
		payment += state.Honba * 100
		pv.Deltas[seat] -= payment
		collected += payment
	}
	pv.Deltas[req.Winner] += collected
	claimSticks(&pv, req.Winner)
	return pv, nil
}

// PreviewRon computes the effect of a discard win against the current state.
func PreviewRon(state *MatchState, req RonRequest) (Preview, error) {
	if !req.Winner.Selected() {
		return Preview{}, ErrNoWinner
	}
	if !req.Loser.Selected() {
		return Preview{}, ErrNoLoser
	}
	if req.Winner == req.Loser {
		return Preview{}, ErrWinnerIsLoser
	}
	if err := validateHanFu(req.Han, req.Fu); err != nil {
		return Preview{}, err
	}

	pv := Preview{
		Outcome:    OutcomeRon,
		PoolBefore: state.Pool,
		Winner:     req.Winner,
		Loser:      req.Loser,
		Han:        req.Han,
		Fu:         req.Fu,
	}
	declareRiichi(&pv, req.Riichi)

	multiplier := 4
	if req.Winner == state.DealerSeat {
		multiplier = 6
	}
	payment := RoundUpToHundred(multiplier*BasePoints(req.Han, req.Fu)) + state.Honba*300
	pv.Deltas[req.Loser] -= payment
	pv.Deltas[req.Winner] += payment
	claimSticks(&pv, req.Winner)
	return pv, nil
}

// PreviewDraw computes the effect of an exhaustive draw. Tenpai payments are
// transfers between seat stacks; riichi sticks declared this hand join the
// pool instead of being paid out, so the pool income fields stay zero.
// A draw preview is always valid.
func PreviewDraw(state *MatchState, req DrawRequest) Preview {
	pv := Preview{
		Outcome:      OutcomeDraw,
		PoolBefore:   state.Pool,
		Winner:       NoSeat,
		Loser:        NoSeat,
		DealerTenpai: req.Tenpai[state.DealerSeat],
	}
	declareRiichi(&pv, req.Riichi)

	for _, ready := range req.Tenpai {
		if ready {
			pv.TenpaiCount++
		}
	}

	var gain, loss int
	switch pv.TenpaiCount {
	case 1:
		gain, loss = 3000, 1000
	case 2:
		gain, loss = 1500, 1500
	case 3:
		gain, loss = 1000, 3000
	}
	for seat, ready := range req.Tenpai {
		if gain == 0 {
			break
		}
		if ready {
			pv.Deltas[seat] += gain
		} else {
			pv.Deltas[seat] -= loss
		}
	}

	pv.PoolAfter = pv.PoolBefore + pv.RiichiCount
	return pv
}
