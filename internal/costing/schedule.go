package costing

import "fmt"

// FeeSchedule defines a clearing-agent fee as a percentage of customs value
// with a minimum floor. Two schedules are in use: the current agency tariff
// and the legacy DAVIF tariff kept for re-costing historical estimates.
type FeeSchedule struct {
	Code       string
	Rate       float64 // fraction of customs value
	MinimumZar float64
}

const (
	ScheduleAgency = "agency"
	ScheduleDavif  = "davif"
)

var schedules = map[string]FeeSchedule{
	ScheduleAgency: {Code: ScheduleAgency, Rate: 0.035, MinimumZar: 1187.00},
	ScheduleDavif:  {Code: ScheduleDavif, Rate: 0.0325, MinimumZar: 125.00},
}

// ResolveSchedule returns the fee schedule for the given code.
// An empty code resolves to the current agency schedule.
func ResolveSchedule(code string) (FeeSchedule, error) {
	if code == "" {
		code = ScheduleAgency
	}
	s, ok := schedules[code]
	if !ok {
		return FeeSchedule{}, fmt.Errorf("unknown fee schedule %q", code)
	}
	return s, nil
}

// Fee computes the clearing fee for a customs value: percentage with a
// minimum floor, rounded to cents.
func (s FeeSchedule) Fee(customsValueZar float64) float64 {
	fee := customsValueZar * s.Rate
	if fee < s.MinimumZar {
		fee = s.MinimumZar
	}
	return Round2(fee)
}
