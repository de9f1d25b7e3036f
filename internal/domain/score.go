package domain

// BasePoints computes the base point value for a winning hand from its han
// and fu counts. The table is evaluated top-down; limit hands collapse fu.
//
// Inputs are assumed positive; validation happens in the settlement engine
// before any value reaches here.
func BasePoints(han, fu int) int {
	switch {
	case han >= 13:
		return 8000 // yakuman
	case han >= 11:
		return 6000 // sanbaiman
	case han >= 8:
		return 4000 // baiman
	case han >= 6:
		return 3000 // haneman
	case han >= 5:
		return 2000 // mangan
	}

	// Kiriage mangan: 4 han 30 fu and 3 han 60 fu round up to mangan.
	if (han == 4 && fu == 30) || (han == 3 && fu == 60) {
		return 2000
	}

	base := fu * (1 << (2 + han))
	if base > 2000 {
		return 2000
	}
	return base
}

// RoundUpToHundred rounds a payment up to the next multiple of 100.
func RoundUpToHundred(x int) int {
	return (x + 99) / 100 * 100
}
