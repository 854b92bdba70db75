package booking

import "fmt"

type Stage string

const (
	StageModeling Stage = "modeling"
	StageDrying   Stage = "drying"
	StageFiring   Stage = "firing"
	StagePainting Stage = "painting"
	StageGlazing  Stage = "glazing"
	StageFinished Stage = "finished"
)

var pipeline = []Stage{
	StageModeling,
	StageDrying,
	StageFiring,
	StagePainting,
	StageGlazing,
	StageFinished,
}

// Pipeline returns the production stages in order.
func Pipeline() []Stage {
	out := make([]Stage, len(pipeline))
	copy(out, pipeline)
	return out
}

// Next returns the stage that follows s. Finished has no successor.
func (s Stage) Next() (Stage, bool) {
	for i, st := range pipeline {
		if st == s && i+1 < len(pipeline) {
			return pipeline[i+1], true
		}
	}
	return "", false
}

func (s Stage) Valid() bool {
	for _, st := range pipeline {
		if st == s {
			return true
		}
	}
	return false
}

func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown stage %q", s)
	}
	return st, nil
}
