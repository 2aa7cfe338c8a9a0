package normaliser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type countingDeriver struct {
	calls  int
	result domain.RunDynamics
}

func (c *countingDeriver) Derive(in domain.RunDynamicsInput) domain.RunDynamics {
	c.calls++
	return c.result
}

func TestNormalize_Defaults(t *testing.T) {
	n := New(WithClock(func() time.Time { return fixedNow }))

	a := n.Normalize("user-1", domain.RawActivity{ID: 987654321}, nil)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "user-1", a.UserID)
	assert.Equal(t, "987654321", a.ExternalActivityID)
	assert.Equal(t, domain.ActivityTypeOther, a.Category)
	assert.Zero(t, a.DistanceMeters)
	assert.Zero(t, a.MovingTimeSeconds)
	assert.Zero(t, a.ElevationGain)
	assert.Zero(t, a.AverageSpeed)
	assert.Nil(t, a.AverageHeartRate)
	assert.Nil(t, a.AverageWatts)
	assert.Nil(t, a.Calories)
	assert.Nil(t, a.EstimatedCalories)
	assert.Nil(t, a.StrideLength)
	assert.False(t, a.HasHeartRate)
	assert.False(t, a.Trainer)
	assert.False(t, a.Private)
	assert.Equal(t, fixedNow, a.CreatedAt)
}

func TestNormalize_CopiesMeasuredFields(t *testing.T) {
	n := New()
	distance, moving, elapsed := 10000.0, 3000, 3100
	speed, hr, cadence := 3.33, 151.0, 86.0
	yes := true

	a := n.Normalize("user-1", domain.RawActivity{
		ID:               1,
		Name:             "Morning Run",
		Type:             "Run",
		SportType:        "TrailRun",
		Distance:         &distance,
		MovingTime:       &moving,
		ElapsedTime:      &elapsed,
		AverageSpeed:     &speed,
		AverageHeartrate: &hr,
		HasHeartrate:     &yes,
		AverageCadence:   &cadence,
		Commute:          &yes,
	}, nil)

	assert.Equal(t, "Morning Run", a.Name)
	assert.Equal(t, domain.ActivityTypeRun, a.Category)
	assert.Equal(t, 10000.0, a.DistanceMeters)
	assert.Equal(t, 3000, a.MovingTimeSeconds)
	assert.Equal(t, 3100, a.ElapsedTimeSeconds)
	assert.Equal(t, 151.0, *a.AverageHeartRate)
	assert.True(t, a.HasHeartRate)
	assert.True(t, a.Commute)
	assert.NotNil(t, a.StrideLength)
	assert.NotNil(t, a.EstimatedCalories)
}

func TestNormalize_ProviderCaloriesWin(t *testing.T) {
	n := New()
	moving := 3600
	calories, kj := 512.3, 900.0

	a := n.Normalize("user-1", domain.RawActivity{ID: 1, Type: "Ride", MovingTime: &moving, Calories: &calories, Kilojoules: &kj}, nil)

	require.NotNil(t, a.EstimatedCalories)
	assert.Equal(t, 512.3, *a.EstimatedCalories)
	assert.Equal(t, 512.3, *a.Calories)
}

func TestNormalize_NonPositiveCaloriesEstimated(t *testing.T) {
	n := New()
	moving := 3600
	calories, kj := 0.0, 900.0

	a := n.Normalize("user-1", domain.RawActivity{ID: 1, Type: "Ride", MovingTime: &moving, Calories: &calories, Kilojoules: &kj}, nil)

	require.NotNil(t, a.EstimatedCalories)
	assert.Equal(t, 900.0, *a.EstimatedCalories)
}

func TestNormalize_UsesProfileWeightAndHeartRate(t *testing.T) {
	n := New()
	moving := 3600
	speed := 20 / 3.6
	hr := 180.0
	weight, hrMax := 80.0, 200.0

	a := n.Normalize("user-1", domain.RawActivity{ID: 1, SportType: "Ride", MovingTime: &moving, AverageSpeed: &speed, AverageHeartrate: &hr},
		&domain.UserProfile{UserID: "user-1", WeightKg: &weight, HeartRateMax: &hrMax})

	require.NotNil(t, a.EstimatedCalories)
	assert.InDelta(t, 800.0, *a.EstimatedCalories, 0.001)
}

func TestNormalize_ProviderDynamicsTakePrecedence(t *testing.T) {
	derived := 9.9
	d := &countingDeriver{result: domain.RunDynamics{StrideLength: &derived, GroundContactTime: &derived, VerticalOscillation: &derived}}
	n := New(WithDeriver(d))
	speed, cadence, stride := 3.0, 85.0, 1.2

	a := n.Normalize("user-1", domain.RawActivity{ID: 1, Type: "Run", AverageSpeed: &speed, AverageCadence: &cadence, AverageStrideLength: &stride}, nil)

	assert.Equal(t, 1, d.calls)
	assert.Equal(t, 1.2, *a.StrideLength)
	assert.Equal(t, 9.9, *a.GroundContactTime)
	assert.Equal(t, 9.9, *a.VerticalOscillation)
}

func TestNormalize_DeriverSkippedWhenComplete(t *testing.T) {
	d := &countingDeriver{}
	n := New(WithDeriver(d))
	v := 1.0

	n.Normalize("user-1", domain.RawActivity{ID: 1, Type: "Run", AverageStrideLength: &v, AverageGroundContactTime: &v, AverageVerticalOscillation: &v}, nil)

	assert.Zero(t, d.calls)
}

func TestNormalize_NullDynamicsStayNull(t *testing.T) {
	n := New(WithDeriver(&countingDeriver{}))

	a := n.Normalize("user-1", domain.RawActivity{ID: 1, Type: "Run"}, nil)

	assert.Nil(t, a.StrideLength)
	assert.Nil(t, a.GroundContactTime)
	assert.Nil(t, a.VerticalOscillation)
}

func TestNormalizePage(t *testing.T) {
	n := New()

	out := n.NormalizePage("user-1", []domain.RawActivity{{ID: 1}, {ID: 2}, {ID: 3}}, nil)

	require.Len(t, out, 3)
	assert.Equal(t, "1", out[0].ExternalActivityID)
	assert.Equal(t, "3", out[2].ExternalActivityID)
	assert.Empty(t, n.NormalizePage("user-1", nil, nil))
}

func TestNormalizePage_DropsRecordsWithoutID(t *testing.T) {
	n := New()

	out := n.NormalizePage("user-1", []domain.RawActivity{{ID: 7}, {}, {ID: -1, Name: "broken"}, {ID: 8}}, nil)

	require.Len(t, out, 2)
	assert.Equal(t, "7", out[0].ExternalActivityID)
	assert.Equal(t, "8", out[1].ExternalActivityID)
	for _, a := range out {
		assert.NotEqual(t, "0", a.ExternalActivityID)
	}
}
