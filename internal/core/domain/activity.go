package domain

import "time"

// ActivityType is the coarse bucket used by the energy model.
type ActivityType string

const (
	ActivityTypeRun   ActivityType = "run"
	ActivityTypeWalk  ActivityType = "walk"
	ActivityTypeHike  ActivityType = "hike"
	ActivityTypeRide  ActivityType = "ride"
	ActivityTypeSwim  ActivityType = "swim"
	ActivityTypeRow   ActivityType = "row"
	ActivityTypeSki   ActivityType = "ski"
	ActivityTypeOther ActivityType = "other"
)

// RawActivity is one record as returned by the provider's activity list.
// Pointer fields are nullable on the wire.
type RawActivity struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	SportType      string    `json:"sport_type"`
	StartDate      time.Time `json:"start_date"`
	StartDateLocal time.Time `json:"start_date_local"`
	Timezone       string    `json:"timezone"`

	Distance           *float64 `json:"distance"`
	MovingTime         *int     `json:"moving_time"`
	ElapsedTime        *int     `json:"elapsed_time"`
	TotalElevationGain *float64 `json:"total_elevation_gain"`
	ElevHigh           *float64 `json:"elev_high"`
	ElevLow            *float64 `json:"elev_low"`
	AverageSpeed       *float64 `json:"average_speed"`
	MaxSpeed           *float64 `json:"max_speed"`

	AverageHeartrate *float64 `json:"average_heartrate"`
	MaxHeartrate     *float64 `json:"max_heartrate"`
	HasHeartrate     *bool    `json:"has_heartrate"`

	AverageWatts         *float64 `json:"average_watts"`
	MaxWatts             *float64 `json:"max_watts"`
	WeightedAverageWatts *float64 `json:"weighted_average_watts"`
	Kilojoules           *float64 `json:"kilojoules"`
	DeviceWatts          *bool    `json:"device_watts"`
	AverageCadence       *float64 `json:"average_cadence"`
	Calories             *float64 `json:"calories"`
	SufferScore          *float64 `json:"suffer_score"`

	Trainer *bool `json:"trainer"`
	Commute *bool `json:"commute"`
	Manual  *bool `json:"manual"`
	Private *bool `json:"private"`

	AverageStrideLength        *float64 `json:"average_stride_length"`
	AverageGroundContactTime   *float64 `json:"average_ground_contact_time"`
	AverageVerticalOscillation *float64 `json:"average_vertical_oscillation"`
}

// Activity is the normalized, locally stored exercise record.
// ExternalActivityID is unique across the store.
type Activity struct {
	ID                 string       `json:"id"`
	UserID             string       `json:"user_id"`
	ExternalActivityID string       `json:"external_activity_id"`
	Name               string       `json:"name"`
	Type               string       `json:"type"`
	SportType          string       `json:"sport_type"`
	Category           ActivityType `json:"category"`
	StartDate          time.Time    `json:"start_date"`
	StartDateLocal     time.Time    `json:"start_date_local"`
	Timezone           string       `json:"timezone"`

	DistanceMeters     float64 `json:"distance_meters"`
	MovingTimeSeconds  int     `json:"moving_time_seconds"`
	ElapsedTimeSeconds int     `json:"elapsed_time_seconds"`
	ElevationGain      float64 `json:"elevation_gain"`
	ElevationHigh      float64 `json:"elevation_high"`
	ElevationLow       float64 `json:"elevation_low"`
	AverageSpeed       float64 `json:"average_speed"`
	MaxSpeed           float64 `json:"max_speed"`

	AverageHeartRate     *float64 `json:"average_heart_rate,omitempty"`
	MaxHeartRate         *float64 `json:"max_heart_rate,omitempty"`
	HasHeartRate         bool     `json:"has_heart_rate"`
	AverageWatts         *float64 `json:"average_watts,omitempty"`
	MaxWatts             *float64 `json:"max_watts,omitempty"`
	WeightedAverageWatts *float64 `json:"weighted_average_watts,omitempty"`
	Kilojoules           *float64 `json:"kilojoules,omitempty"`
	DeviceWatts          bool     `json:"device_watts"`
	AverageCadence       *float64 `json:"average_cadence,omitempty"`
	SufferScore          *float64 `json:"suffer_score,omitempty"`

	Calories          *float64 `json:"calories,omitempty"`
	EstimatedCalories *float64 `json:"estimated_calories,omitempty"`

	StrideLength        *float64 `json:"stride_length,omitempty"`
	GroundContactTime   *float64 `json:"ground_contact_time,omitempty"`
	VerticalOscillation *float64 `json:"vertical_oscillation,omitempty"`

	Trainer bool `json:"trainer"`
	Commute bool `json:"commute"`
	Manual  bool `json:"manual"`
	Private bool `json:"private"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunDynamicsInput is what a run-dynamics deriver gets to work with.
type RunDynamicsInput struct {
	Type           string
	SportType      string
	AverageSpeed   float64
	AverageCadence float64
}

// RunDynamics holds derived gait metrics. Nil means not derivable.
type RunDynamics struct {
	StrideLength        *float64 // meters
	GroundContactTime   *float64 // milliseconds
	VerticalOscillation *float64 // centimeters
}
