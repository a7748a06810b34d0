package scene

import (
	"testing"

	"github.com/chazu/snapjoin/pkg/chunk"
	"github.com/chazu/snapjoin/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestValidateCleanScene(t *testing.T) {
	if errs := Validate(buildScene()); len(errs) != 0 {
		t.Fatalf("expected no findings, got %v", errs)
	}
}

func TestValidateDuplicateChunkName(t *testing.T) {
	s := buildScene()
	s.Add(plate("base", geom.Translation(r3.Vec{Z: 4})))

	errs := Validate(s)
	if !hasFinding(errs, SeverityError, `duplicate chunk name "base"`) {
		t.Fatalf("expected duplicate name error, got %v", errs)
	}
	if !HasErrors(errs) {
		t.Fatal("HasErrors should be true")
	}
}

func TestValidateEmptyName(t *testing.T) {
	s := New()
	s.Add(&chunk.Chunk{})
	errs := Validate(s)
	if !hasFinding(errs, SeverityError, "has no name") {
		t.Fatalf("expected unnamed chunk error, got %v", errs)
	}
	if !hasFinding(errs, SeverityWarning, "no blocks") {
		t.Fatalf("expected no-blocks warning, got %v", errs)
	}
}

func TestValidateBlockSize(t *testing.T) {
	c := chunk.New("flat", geom.Transform{})
	c.AddBlock(chunk.Block{Size: r3.Vec{X: 1, Y: 0, Z: -2}})
	s := New()
	s.Add(c)

	errs := Validate(s)
	if !hasFinding(errs, SeverityError, "size Y is 0.0000") {
		t.Errorf("expected Y size error, got %v", errs)
	}
	if !hasFinding(errs, SeverityError, "size Z is -2.0000") {
		t.Errorf("expected Z size error, got %v", errs)
	}
	if hasFinding(errs, SeverityError, "size X") {
		t.Errorf("X is positive, got %v", errs)
	}
}

func TestValidateSockets(t *testing.T) {
	c := chunk.New("odd", geom.Transform{})
	c.AddBlock(chunk.Block{Size: r3.Vec{X: 1, Y: 1, Z: 1}})
	c.AddSocket("a", geom.Frame{Forward: fwd, Up: up})
	c.AddSocket("a", geom.Frame{Forward: fwd, Up: up})
	c.AddSocket("skew", geom.Frame{Forward: fwd, Up: r3.Vec{X: 1, Y: 1}})
	c.AddSocket("far", geom.Frame{Position: r3.Vec{X: 50}, Forward: fwd, Up: up})
	s := New()
	s.Add(c)

	errs := Validate(s)
	if !hasFinding(errs, SeverityError, "duplicate socket name") {
		t.Errorf("expected duplicate socket error, got %v", errs)
	}
	if !hasFinding(errs, SeverityError, "orthogonal unit vectors") {
		t.Errorf("expected frame error, got %v", errs)
	}
	if !hasFinding(errs, SeverityWarning, "far from every block") {
		t.Errorf("expected far socket warning, got %v", errs)
	}
}

func TestValidationErrorString(t *testing.T) {
	tests := []struct {
		err  ValidationError
		want string
	}{
		{ValidationError{Message: "m", Severity: SeverityError}, "[error] m"},
		{ValidationError{Chunk: "c", Message: "m", Severity: SeverityWarning}, "[warning] chunk c: m"},
		{ValidationError{Chunk: "c", Socket: "s", Message: "m"}, "[error] socket c.s: m"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
