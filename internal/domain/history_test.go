package domain

import (
	"encoding/json"
	"testing"
)

func TestHistoryGroupSetsFor(t *testing.T) {
	flat := HistoryGroup{
		Date: "2026.01.15",
		Sets: []SetRecord{{Weight: 60, Reps: 8}},
	}
	if got := flat.SetsFor("ex-1"); len(got) != 1 || got[0].Weight != 60 {
		t.Errorf("flat SetsFor = %v", got)
	}

	superset := HistoryGroup{
		Date:       "2026.01.15",
		IsSuperset: true,
		Exercises: []ExerciseHistory{
			{ExerciseID: "ex-1", Sets: []SetRecord{{Weight: 60, Reps: 8}}},
			{ExerciseID: "ex-2", Sets: []SetRecord{{Weight: 40, Reps: 12}}},
		},
	}
	if got := superset.SetsFor("ex-2"); len(got) != 1 || got[0].Weight != 40 {
		t.Errorf("superset SetsFor(ex-2) = %v", got)
	}
	if got := superset.SetsFor("ex-3"); got != nil {
		t.Errorf("superset SetsFor(ex-3) = %v, want nil", got)
	}
}

func TestHistoryGroupDecodeBothShapes(t *testing.T) {
	payload := `[
		{"date":"2026.01.15","sets":[{"weight":60,"reps":8,"rest":90,"order":3}]},
		{"date":"2026.01.12","isSuperset":true,"setGroupId":"grp-1","exercises":[
			{"exerciseId":"ex-1","sets":[{"weight":55,"reps":10}]}
		]}
	]`

	var groups []HistoryGroup
	if err := json.Unmarshal([]byte(payload), &groups); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if groups[0].IsSuperset || len(groups[0].Sets) != 1 {
		t.Errorf("flat group decoded wrong: %+v", groups[0])
	}
	if !groups[1].IsSuperset || len(groups[1].Exercises) != 1 {
		t.Errorf("superset group decoded wrong: %+v", groups[1])
	}
}
