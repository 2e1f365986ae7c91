// Package stage defines the job pipeline stages shared by the server-side
// status reporting and the client-side polling controller.
package stage

// Stage is the coarse-grained phase of a catalog job's pipeline.
type Stage string

const (
	Uploading  Stage = "uploading"
	Generating Stage = "generating"
	Assembling Stage = "assembling"
	Complete   Stage = "complete"
	Error      Stage = "error"
)

// order positions the happy-path stages; terminal error is handled separately.
var order = map[Stage]int{
	Uploading:  0,
	Generating: 1,
	Assembling: 2,
	Complete:   3,
}

// Valid reports whether s is one of the five known stages.
func (s Stage) Valid() bool {
	if s == Error {
		return true
	}
	_, ok := order[s]
	return ok
}

// Terminal reports whether no further transitions are possible from s.
func (s Stage) Terminal() bool {
	return s == Complete || s == Error
}

// CanAdvance reports whether a job may move from one stage to another.
// Happy-path transitions are strictly forward (forward skips are allowed,
// since ingestion completes synchronously before the first status read).
// Error is reachable from any non-terminal stage. Nothing leaves a terminal
// stage.
func CanAdvance(from, to Stage) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from.Terminal() {
		return false
	}
	if to == Error {
		return true
	}
	return order[to] >= order[from]
}

// Clamp forces a progress value into the [0,100] range.
func Clamp(progress int) int {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// MapToOverall linearly rescales a per-phase progress value in [0,100] into
// the [low,high] slice of the overall progress bar allotted to that phase.
// The polling controller uses this to place server-reported generation
// progress inside its own scale.
func MapToOverall(progress, low, high int) int {
	progress = Clamp(progress)
	if high <= low {
		return Clamp(low)
	}
	return low + (high-low)*progress/100
}
