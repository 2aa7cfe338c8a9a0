package normaliser

import (
	"math"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

// metStep is one row of a MET table: applies while speed is below upTo km/h.
type metStep struct {
	upTo float64
	met  float64
}

// MET tables by category. The last row of each table has upTo +Inf.
var metTables = map[domain.ActivityType][]metStep{
	domain.ActivityTypeRun: {
		{8.0, 6.0}, {9.7, 8.3}, {11.3, 9.8}, {12.9, 11.0}, {14.5, 11.8}, {16.1, 12.8}, {math.Inf(1), 14.5},
	},
	domain.ActivityTypeWalk: {
		{3.2, 2.0}, {4.8, 3.0}, {5.6, 3.5}, {6.4, 4.3}, {math.Inf(1), 5.0},
	},
	domain.ActivityTypeHike: {
		{4.0, 5.3}, {5.5, 6.0}, {math.Inf(1), 7.8},
	},
	domain.ActivityTypeRide: {
		{16.0, 4.0}, {19.3, 6.8}, {22.5, 8.0}, {25.7, 10.0}, {30.6, 12.0}, {math.Inf(1), 15.8},
	},
	domain.ActivityTypeSwim: {
		{2.0, 6.0}, {3.0, 8.3}, {math.Inf(1), 10.0},
	},
	domain.ActivityTypeRow: {
		{8.0, 4.8}, {12.0, 7.0}, {math.Inf(1), 8.5},
	},
	domain.ActivityTypeSki: {
		{8.0, 5.3}, {12.0, 7.0}, {math.Inf(1), 9.0},
	},
}

const otherMET = 5.0

// MET returns the metabolic equivalent for a category at speedKmh.
func MET(category domain.ActivityType, speedKmh float64) float64 {
	table, ok := metTables[category]
	if !ok {
		return otherMET
	}
	for _, step := range table {
		if speedKmh < step.upTo {
			return step.met
		}
	}
	return table[len(table)-1].met
}

// heartRateFactor scales MET by relative effort. Returns 1 when either side is unknown.
func heartRateFactor(avgHR, maxHR *float64) float64 {
	if avgHR == nil || maxHR == nil || *avgHR <= 0 || *maxHR <= 0 {
		return 1
	}
	ratio := clamp(*avgHR / *maxHR, 0.5, 1.05)
	return clamp(ratio/0.7, 0.8, 1.25)
}

// EnergyInput carries what the energy model needs from one activity.
type EnergyInput struct {
	Category          domain.ActivityType
	MovingTimeSeconds int
	DistanceMeters    float64
	AverageSpeed      float64 // m/s
	Kilojoules        *float64
	AverageWatts      *float64
	AverageHeartRate  *float64
	HeartRateMax      *float64
	WeightKg          float64
}

// EstimateCalories estimates kcal, trying mechanical work before the MET model.
// Returns nil when moving time is not positive.
func EstimateCalories(in EnergyInput) *float64 {
	if in.MovingTimeSeconds <= 0 {
		return nil
	}

	// 1 kJ of mechanical work is taken as 1 kcal expended.
	if in.Kilojoules != nil && *in.Kilojoules > 0 {
		return ptr(round2(*in.Kilojoules))
	}

	if in.AverageWatts != nil && *in.AverageWatts > 0 {
		return ptr(round2(*in.AverageWatts * float64(in.MovingTimeSeconds) / 1000))
	}

	speed := in.AverageSpeed
	if speed <= 0 && in.DistanceMeters > 0 {
		speed = in.DistanceMeters / float64(in.MovingTimeSeconds)
	}

	weight := in.WeightKg
	if weight <= 0 {
		weight = domain.DefaultWeightKg
	}

	met := MET(in.Category, speed*3.6) * heartRateFactor(in.AverageHeartRate, in.HeartRateMax)
	hours := float64(in.MovingTimeSeconds) / 3600
	return ptr(round2(met * weight * hours))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ptr[T any](v T) *T {
	return &v
}
