package models

type Phase string

const (
	PhaseMenstrual  Phase = "menstrual"
	PhaseFollicular Phase = "follicular"
	PhaseOvulation  Phase = "ovulation"
	PhaseLuteal     Phase = "luteal"

	// PhaseGeneral only appears on tip records.
	PhaseGeneral Phase = "general"
)

// AllPhases is the one-hot order of the feature vector.
var AllPhases = [4]Phase{PhaseMenstrual, PhaseFollicular, PhaseOvulation, PhaseLuteal}

func (phase Phase) IsCyclePhase() bool {
	switch phase {
	case PhaseMenstrual, PhaseFollicular, PhaseOvulation, PhaseLuteal:
		return true
	default:
		return false
	}
}

func (phase Phase) Index() (int, bool) {
	for index, candidate := range AllPhases {
		if candidate == phase {
			return index, true
		}
	}
	return 0, false
}
