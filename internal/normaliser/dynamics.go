package normaliser

import (
	"github.com/custodia-labs/stride-sync/internal/core/domain"
	"github.com/custodia-labs/stride-sync/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.RunDynamicsDeriver = (*HeuristicDeriver)(nil)

// HeuristicDeriver estimates gait metrics from average speed and cadence.
// It only answers for runs; everything else derives nothing.
type HeuristicDeriver struct{}

// NewHeuristicDeriver creates the default run-dynamics deriver.
func NewHeuristicDeriver() *HeuristicDeriver {
	return &HeuristicDeriver{}
}

// Derive implements driven.RunDynamicsDeriver.
func (HeuristicDeriver) Derive(in domain.RunDynamicsInput) domain.RunDynamics {
	if CategoryOf(in.Type, in.SportType) != domain.ActivityTypeRun {
		return domain.RunDynamics{}
	}
	if in.AverageSpeed <= 0 || in.AverageCadence <= 0 {
		return domain.RunDynamics{}
	}

	// Provider run cadence is per leg; below 120 it cannot be whole-body steps.
	steps := in.AverageCadence
	if steps < 120 {
		steps *= 2
	}

	stride := in.AverageSpeed * 60 / steps
	gct := clamp(340-28*in.AverageSpeed, 160, 350)
	vo := clamp(stride*8, 5, 13)

	return domain.RunDynamics{
		StrideLength:        ptr(round2(stride)),
		GroundContactTime:   ptr(round2(gct)),
		VerticalOscillation: ptr(round2(vo)),
	}
}
