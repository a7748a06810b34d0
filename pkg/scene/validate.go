package scene

import (
	"fmt"

	"github.com/chazu/snapjoin/pkg/chunk"
	"gonum.org/v1/gonum/spatial/r3"
)

// frameTolerance bounds how far a socket frame may stray from orthonormal.
const frameTolerance = 1e-6

// ValidationSeverity indicates whether a finding makes the scene unusable
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // scene is rejected
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Chunk    chunk.ChunkID      // empty if scene-level
	Socket   string             // socket name, if the finding is about one
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	switch {
	case e.Chunk == "":
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	case e.Socket == "":
		return fmt.Sprintf("[%s] chunk %s: %s", e.Severity, e.Chunk, e.Message)
	default:
		return fmt.Sprintf("[%s] socket %s.%s: %s", e.Severity, e.Chunk, e.Socket, e.Message)
	}
}

// Validate checks every chunk in s and returns all findings. An empty slice
// means the scene is valid. It never mutates s.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateNames(s)...)
	for _, c := range s.chunks {
		errs = append(errs, validateBlocks(c)...)
		errs = append(errs, validateSockets(c)...)
	}
	return errs
}

// HasErrors reports whether any finding is error-severity.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

func validateNames(s *Scene) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(s.chunks))
	for i, c := range s.chunks {
		if c.Name == "" {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("chunk %d has no name", i),
				Severity: SeverityError,
			})
			continue
		}
		if seen[c.Name] {
			errs = append(errs, ValidationError{
				Chunk:    c.ID,
				Message:  fmt.Sprintf("duplicate chunk name %q", c.Name),
				Severity: SeverityError,
			})
		}
		seen[c.Name] = true
	}
	return errs
}

func validateBlocks(c *chunk.Chunk) []ValidationError {
	var errs []ValidationError
	if len(c.Blocks) == 0 {
		errs = append(errs, ValidationError{
			Chunk:    c.ID,
			Message:  "chunk has no blocks",
			Severity: SeverityWarning,
		})
	}
	for i, b := range c.Blocks {
		for _, axis := range []struct {
			name string
			v    float64
		}{{"X", b.Size.X}, {"Y", b.Size.Y}, {"Z", b.Size.Z}} {
			if axis.v <= 0 {
				errs = append(errs, ValidationError{
					Chunk:    c.ID,
					Message:  fmt.Sprintf("block %d size %s is %.4f, must be positive", i, axis.name, axis.v),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

func validateSockets(c *chunk.Chunk) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(c.Sockets))
	for _, spec := range c.Sockets {
		if seen[spec.Name] {
			errs = append(errs, ValidationError{
				Chunk:    c.ID,
				Socket:   spec.Name,
				Message:  "duplicate socket name",
				Severity: SeverityError,
			})
		}
		seen[spec.Name] = true

		if !spec.Local.Orthonormal(frameTolerance) {
			errs = append(errs, ValidationError{
				Chunk:    c.ID,
				Socket:   spec.Name,
				Message:  fmt.Sprintf("forward %v and up %v must be orthogonal unit vectors", spec.Local.Forward, spec.Local.Up),
				Severity: SeverityError,
			})
		}

		if len(c.Blocks) > 0 && !nearAnyBlock(c, spec.Local.Position) {
			errs = append(errs, ValidationError{
				Chunk:    c.ID,
				Socket:   spec.Name,
				Message:  "socket is far from every block",
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// nearAnyBlock reports whether p lies within one block diagonal of some
// block's center.
func nearAnyBlock(c *chunk.Chunk, p r3.Vec) bool {
	for _, b := range c.Blocks {
		if r3.Norm(r3.Sub(p, b.Center())) <= r3.Norm(b.Size) {
			return true
		}
	}
	return false
}
