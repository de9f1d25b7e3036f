package domain

import "fmt"

// Seat identifies one of the four fixed positions at the table.
// Seat order never changes during a match; only the dealer marker moves.
type Seat int

const (
	SeatEast Seat = iota
	SeatSouth
	SeatWest
	SeatNorth

	// NoSeat marks an absent seat selection (e.g. no winner chosen yet).
	NoSeat Seat = -1
)

// SeatCount is the number of players in a riichi match.
const SeatCount = 4

// windLabels are the positional display names, also used as default player names.
var windLabels = [SeatCount]string{"East", "South", "West", "North"}

// Selected reports whether the seat refers to an actual position.
func (s Seat) Selected() bool {
	return s >= 0 && s < SeatCount
}

// Next returns the seat to the right, wrapping North back to East.
func (s Seat) Next() Seat {
	return (s + 1) % SeatCount
}

// WindLabel returns the positional name for the seat ("East".."North").
func (s Seat) WindLabel() string {
	if !s.Selected() {
		return ""
	}
	return windLabels[s]
}

// RoundCount is the number of hands in a full East+South match cycle.
const RoundCount = 8

// RoundLabel formats a round index 0..7 as "East 1".."South 4".
func RoundLabel(roundIndex int) string {
	wind := "East"
	if roundIndex >= 4 {
		wind = "South"
	}
	return fmt.Sprintf("%s %d", wind, roundIndex%4+1)
}

// RoundIndexOf converts a wind (0=East, 1=South) and hand number 1..4 into
// the flat round index used by MatchState.
func RoundIndexOf(wind, number int) int {
	idx := wind*4 + (number - 1)
	return ((idx % RoundCount) + RoundCount) % RoundCount
}
