package spread

import "math"

type probabilityBucket struct {
	minDistancePct float64 // exclusive
	probability    int
}

// probabilityTable is checked top to bottom; the first bucket whose distance
// is exceeded wins. This is a coarse lookup by how far the short strike sits
// from the underlying, not a pricing model.
var probabilityTable = []probabilityBucket{
	{10, 85},
	{7, 75},
	{5, 65},
	{3, 55},
}

const floorProbability = 45

// ProfitProbability estimates the chance of keeping the credit from the
// percentage distance between the current price and the short strike.
func ProfitProbability(currentPrice, shortStrike float64) int {
	if currentPrice == 0 {
		return floorProbability
	}
	dist := math.Abs(currentPrice-shortStrike) / currentPrice * 100
	for _, b := range probabilityTable {
		if dist > b.minDistancePct {
			return b.probability
		}
	}
	return floorProbability
}
