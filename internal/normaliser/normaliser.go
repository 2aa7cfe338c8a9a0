// Package normaliser maps raw provider activities into the local schema
// and derives the energy and gait fields the provider left out.
package normaliser

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ActivityNormaliser = (*Normaliser)(nil)

// Normaliser converts RawActivity records into Activity rows.
type Normaliser struct {
	deriver driven.RunDynamicsDeriver
	now     func() time.Time
}

// Option configures a Normaliser.
type Option func(*Normaliser)

// WithDeriver replaces the default run-dynamics deriver.
func WithDeriver(d driven.RunDynamicsDeriver) Option {
	return func(n *Normaliser) {
		n.deriver = d
	}
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Normaliser) {
		n.now = now
	}
}

// New creates a Normaliser using the heuristic deriver unless overridden.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{
		deriver: NewHeuristicDeriver(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize maps one raw record. profile may be nil.
func (n *Normaliser) Normalize(userID string, raw domain.RawActivity, profile *domain.UserProfile) *domain.Activity {
	now := n.now()
	category := CategoryOf(raw.Type, raw.SportType)

	a := &domain.Activity{
		ID:                 uuid.NewString(),
		UserID:             userID,
		ExternalActivityID: strconv.FormatInt(raw.ID, 10),
		Name:               raw.Name,
		Type:               raw.Type,
		SportType:          raw.SportType,
		Category:           category,
		StartDate:          raw.StartDate,
		StartDateLocal:     raw.StartDateLocal,
		Timezone:           raw.Timezone,

		DistanceMeters:     floatOr(raw.Distance),
		MovingTimeSeconds:  intOr(raw.MovingTime),
		ElapsedTimeSeconds: intOr(raw.ElapsedTime),
		ElevationGain:      floatOr(raw.TotalElevationGain),
		ElevationHigh:      floatOr(raw.ElevHigh),
		ElevationLow:       floatOr(raw.ElevLow),
		AverageSpeed:       floatOr(raw.AverageSpeed),
		MaxSpeed:           floatOr(raw.MaxSpeed),

		AverageHeartRate:     raw.AverageHeartrate,
		MaxHeartRate:         raw.MaxHeartrate,
		HasHeartRate:         boolOr(raw.HasHeartrate),
		AverageWatts:         raw.AverageWatts,
		MaxWatts:             raw.MaxWatts,
		WeightedAverageWatts: raw.WeightedAverageWatts,
		Kilojoules:           raw.Kilojoules,
		DeviceWatts:          boolOr(raw.DeviceWatts),
		AverageCadence:       raw.AverageCadence,
		SufferScore:          raw.SufferScore,
		Calories:             raw.Calories,

		StrideLength:        raw.AverageStrideLength,
		GroundContactTime:   raw.AverageGroundContactTime,
		VerticalOscillation: raw.AverageVerticalOscillation,

		Trainer: boolOr(raw.Trainer),
		Commute: boolOr(raw.Commute),
		Manual:  boolOr(raw.Manual),
		Private: boolOr(raw.Private),

		CreatedAt: now,
		UpdatedAt: now,
	}

	n.mergeRunDynamics(a)
	a.EstimatedCalories = n.energy(a, profile)

	return a
}

// NormalizePage maps every record of one provider page. Records without a
// provider id are dropped, since they have no external key to upsert on.
func (n *Normaliser) NormalizePage(userID string, raws []domain.RawActivity, profile *domain.UserProfile) []*domain.Activity {
	out := make([]*domain.Activity, 0, len(raws))
	for _, raw := range raws {
		if raw.ID <= 0 {
			continue
		}
		out = append(out, n.Normalize(userID, raw, profile))
	}
	return out
}

func (n *Normaliser) mergeRunDynamics(a *domain.Activity) {
	if n.deriver == nil {
		return
	}
	if a.StrideLength != nil && a.GroundContactTime != nil && a.VerticalOscillation != nil {
		return
	}

	d := n.deriver.Derive(domain.RunDynamicsInput{
		Type:           a.Type,
		SportType:      a.SportType,
		AverageSpeed:   a.AverageSpeed,
		AverageCadence: floatOr(a.AverageCadence),
	})

	if a.StrideLength == nil {
		a.StrideLength = d.StrideLength
	}
	if a.GroundContactTime == nil {
		a.GroundContactTime = d.GroundContactTime
	}
	if a.VerticalOscillation == nil {
		a.VerticalOscillation = d.VerticalOscillation
	}
}

func (n *Normaliser) energy(a *domain.Activity, profile *domain.UserProfile) *float64 {
	if a.Calories != nil && *a.Calories > 0 {
		return ptr(round2(*a.Calories))
	}

	var hrMax *float64
	if profile != nil {
		hrMax = profile.HeartRateMax
	}

	return EstimateCalories(EnergyInput{
		Category:          a.Category,
		MovingTimeSeconds: a.MovingTimeSeconds,
		DistanceMeters:    a.DistanceMeters,
		AverageSpeed:      a.AverageSpeed,
		Kilojoules:        a.Kilojoules,
		AverageWatts:      a.AverageWatts,
		AverageHeartRate:  a.AverageHeartRate,
		HeartRateMax:      hrMax,
		WeightKg:          profile.EffectiveWeightKg(),
	})
}

func floatOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intOr(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func boolOr(v *bool) bool {
	return v != nil && *v
}
