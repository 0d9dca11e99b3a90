package wheel

import "github.com/angelmondragon/boutique-backend/pkg/db/models"

// TotalWeight sums the weights of both pools. Negative weights count as zero.
func TotalWeight(winning, losing []models.WheelZone) float64 {
	var total float64
	for _, zone := range winning {
		total += weight(zone)
	}
	for _, zone := range losing {
		total += weight(zone)
	}
	return total
}

// SelectZone scans winning zones then losing zones and returns the first zone
// whose cumulative weight reaches draw. A draw of exactly a boundary value
// selects the zone that ends there. ok is false when draw exceeds the total.
func SelectZone(winning, losing []models.WheelZone, draw float64) (zone models.WheelZone, winner bool, ok bool) {
	var cumulative float64
	for _, z := range winning {
		cumulative += weight(z)
		if weight(z) > 0 && draw <= cumulative {
			return z, true, true
		}
	}
	for _, z := range losing {
		cumulative += weight(z)
		if weight(z) > 0 && draw <= cumulative {
			return z, false, true
		}
	}
	return models.WheelZone{}, false, false
}

func weight(zone models.WheelZone) float64 {
	if zone.Probability < 0 {
		return 0
	}
	return zone.Probability
}
