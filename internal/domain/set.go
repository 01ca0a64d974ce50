package domain

// WorkoutSet is one row in an exercise's set list. Weight, reps and rest stay
// raw strings until completion; the effective weight is computed once, at the
// moment the set is completed, and only recomputed through the edit flow.
type WorkoutSet struct {
	ID              string   `json:"id"`
	Weight          string   `json:"weight"` // raw user input
	Reps            string   `json:"reps"`
	Rest            string   `json:"rest"`
	Completed       bool     `json:"completed"`
	Editing         bool     `json:"editing"`
	EffectiveWeight *float64 `json:"effective_weight,omitempty"`
	Order           int      `json:"order"`              // global order, assigned at completion
	GroupID         string   `json:"group_id,omitempty"` // set-group id, assigned at completion
	RowReference    string   `json:"row_reference,omitempty"`
	BaselineWeight  *float64 `json:"baseline_weight,omitempty"` // prior session load, for delta display
}

// Clone returns a deep copy of the set.
func (s *WorkoutSet) Clone() *WorkoutSet {
	cp := *s
	if s.EffectiveWeight != nil {
		v := *s.EffectiveWeight
		cp.EffectiveWeight = &v
	}
	if s.BaselineWeight != nil {
		v := *s.BaselineWeight
		cp.BaselineWeight = &v
	}
	return &cp
}
