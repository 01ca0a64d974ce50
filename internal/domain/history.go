package domain

// SetRecord is one historical set as returned by the training-log service.
// Weight is the effective (normalized) load.
type SetRecord struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
	Rest   float64 `json:"rest"`
	Order  int     `json:"order"`
}

// ExerciseHistory is one exercise's slice of a superset history group.
type ExerciseHistory struct {
	ExerciseID   string      `json:"exerciseId"`
	ExerciseName string      `json:"exerciseName,omitempty"`
	Sets         []SetRecord `json:"sets"`
}

// HistoryGroup is one workout-day entry in an exercise's history. The log
// service returns two shapes: a flat group carries Sets directly, a superset
// group (IsSuperset) nests per-exercise sections. The IsSuperset tag decides
// which branch is populated.
type HistoryGroup struct {
	Date       string            `json:"date"`
	SetGroupID string            `json:"setGroupId,omitempty"`
	IsSuperset bool              `json:"isSuperset"`
	Sets       []SetRecord       `json:"sets,omitempty"`
	Exercises  []ExerciseHistory `json:"exercises,omitempty"`
}

// SetsFor returns the group's rows belonging to the given exercise,
// regardless of which variant the group is.
func (g HistoryGroup) SetsFor(exerciseID string) []SetRecord {
	if !g.IsSuperset {
		return g.Sets
	}
	for _, ex := range g.Exercises {
		if ex.ExerciseID == exerciseID {
			return ex.Sets
		}
	}
	return nil
}
