// Package snap decides how a moving chunk should attach to the chunks around
// it. One query runs the whole pipeline: find socket pairs near each other,
// drop pairs that add no rotational information, solve for the rigid
// transform that brings the moving chunk's sockets onto their targets, and
// classify the result for feedback.
//
// Every function here is pure. Inputs are chunk values and frame snapshots;
// nothing is mutated and repeated calls with the same inputs return
// identical results.
package snap

// Config bundles the fixed thresholds used by the pipeline.
type Config struct {
	// CandidateRadius is the largest socket distance considered at all.
	CandidateRadius float64
	// CommitRadius is the tighter distance at which a pair is snapped.
	CommitRadius float64
	// MinOpposition is the minimum cosine between one socket's up axis and
	// the negated up axis of the other. 0.5 accepts up to 60 degrees off.
	MinOpposition float64
	// CollinearTolerance is how close |dot| must get to 1 for two pairs to
	// be treated as collinear.
	CollinearTolerance float64
}

// DefaultConfig returns the thresholds used by the editor.
func DefaultConfig() Config {
	return Config{
		CandidateRadius:    0.25,
		CommitRadius:       0.05,
		MinOpposition:      0.5,
		CollinearTolerance: 1e-4,
	}
}
