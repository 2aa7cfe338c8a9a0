package domain

// DefaultWeightKg is the body mass assumed when the profile has none.
const DefaultWeightKg = 70.0

// UserProfile is the read-only physiology snapshot used during an import.
// Nil fields are unknown.
type UserProfile struct {
	UserID       string
	HeartRateMax *float64
	WeightKg     *float64
	Age          *int
	HeightCm     *float64
}

// EffectiveWeightKg returns the profile weight or DefaultWeightKg.
func (p *UserProfile) EffectiveWeightKg() float64 {
	if p == nil || p.WeightKg == nil || *p.WeightKg <= 0 {
		return DefaultWeightKg
	}
	return *p.WeightKg
}
