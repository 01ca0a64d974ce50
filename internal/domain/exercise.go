package domain

// WeightInputType describes how the raw value the user types relates to the
// actual load on the bar/stack.
type WeightInputType string

const (
	InputBarbell     WeightInputType = "barbell"      // per-side plates, bar adds base weight
	InputPlateLoaded WeightInputType = "plate_loaded" // per-side plates on a loaded machine
	InputDumbbell    WeightInputType = "dumbbell"
	InputMachine     WeightInputType = "machine"
	InputAssisted    WeightInputType = "assisted"   // counterweight subtracted from body weight
	InputBodyweight  WeightInputType = "bodyweight" // added load on top of body weight
	InputStandard    WeightInputType = "standard"
)

// Allows1RM reports whether a 1-rep-max estimate is meaningful for this
// input type. It is not when the load is derived by subtracting from body
// weight.
func (t WeightInputType) Allows1RM() bool {
	return t != InputAssisted && t != InputBodyweight
}

// Exercise is the catalog metadata snapshot the session engine works with.
// The catalog itself is owned by the exercise service; the engine only reads
// these fields.
type Exercise struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	MuscleGroup string          `json:"muscle_group"`
	Equipment   string          `json:"equipment"`
	InputType   WeightInputType `json:"input_type"`
	BaseWeight  *float64        `json:"base_weight,omitempty"` // overrides the input type default
	Multiplier  *float64        `json:"multiplier,omitempty"`  // overrides the input type default
	Show1RM     bool            `json:"show_1rm"`
}
