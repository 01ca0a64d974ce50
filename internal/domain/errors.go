package domain

import "errors"

// Common errors
var (
	ErrValidation        = errors.New("weight and reps are required to complete a set")
	ErrSetNotFound       = errors.New("set not found")
	ErrExerciseNotActive = errors.New("exercise is not active in this session")
	ErrSetCompleted      = errors.New("completed sets cannot be deleted")
	ErrSetNotCompleted   = errors.New("only completed sets can be edited")
	ErrSetNotEditing     = errors.New("set is not in editing mode")
	ErrNoSession         = errors.New("no active workout session")
)
