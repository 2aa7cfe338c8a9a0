package normaliser

import "github.com/custodia-labs/stride-sync/internal/core/domain"

var sportCategories = map[string]domain.ActivityType{
	"Run":        domain.ActivityTypeRun,
	"TrailRun":   domain.ActivityTypeRun,
	"VirtualRun": domain.ActivityTypeRun,

	"Walk": domain.ActivityTypeWalk,
	"Hike": domain.ActivityTypeHike,

	"Ride":              domain.ActivityTypeRide,
	"VirtualRide":       domain.ActivityTypeRide,
	"MountainBikeRide":  domain.ActivityTypeRide,
	"GravelRide":        domain.ActivityTypeRide,
	"EBikeRide":         domain.ActivityTypeRide,
	"EMountainBikeRide": domain.ActivityTypeRide,
	"Velomobile":        domain.ActivityTypeRide,

	"Swim": domain.ActivityTypeSwim,

	"Rowing":     domain.ActivityTypeRow,
	"VirtualRow": domain.ActivityTypeRow,
	"Canoeing":   domain.ActivityTypeRow,
	"Kayaking":   domain.ActivityTypeRow,

	"AlpineSki":      domain.ActivityTypeSki,
	"BackcountrySki": domain.ActivityTypeSki,
	"NordicSki":      domain.ActivityTypeSki,
	"Snowboard":      domain.ActivityTypeSki,
	"RollerSki":      domain.ActivityTypeSki,
}

// CategoryOf buckets a provider activity. sportType wins over the legacy type field.
func CategoryOf(activityType, sportType string) domain.ActivityType {
	if c, ok := sportCategories[sportType]; ok {
		return c
	}
	if c, ok := sportCategories[activityType]; ok {
		return c
	}
	return domain.ActivityTypeOther
}
