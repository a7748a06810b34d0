package snap

import "fmt"

// ConnectionState classifies one snapshot of a drag for user feedback.
type ConnectionState int

const (
	// NoConnections: no candidate pairs within the candidate radius.
	NoConnections ConnectionState = iota
	// BlockingWithItself: every candidate pairs the chunk with itself.
	BlockingWithItself
	// SocketsTooFar: candidates exist but none within the commit radius.
	SocketsTooFar
	// OneSocketAligned: one independent pair, solved on the one-pair path.
	OneSocketAligned
	// Aligned: two or more independent pairs, solved on the two-pair path.
	Aligned
)

var stateNames = map[ConnectionState]string{
	NoConnections:      "NoConnections",
	BlockingWithItself: "BlockingWithItself",
	SocketsTooFar:      "SocketsTooFar",
	OneSocketAligned:   "OneSocketAligned",
	Aligned:            "Aligned",
}

func (s ConnectionState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ConnectionState(%d)", int(s))
}

// MarshalText encodes the state by name.
func (s ConnectionState) MarshalText() ([]byte, error) {
	if _, ok := stateNames[s]; !ok {
		return nil, fmt.Errorf("snap: unknown connection state %d", int(s))
	}
	return []byte(s.String()), nil
}

// Snappable reports whether the state carries a valid snapped transform.
func (s ConnectionState) Snappable() bool {
	switch s {
	case OneSocketAligned, Aligned:
		return true
	case NoConnections, BlockingWithItself, SocketsTooFar:
		return false
	}
	panic(fmt.Sprintf("snap: unhandled connection state %d", int(s)))
}

// Observation counts what each pipeline stage left behind.
type Observation struct {
	Candidates  int // pairs within the candidate radius, self-pairs included
	Foreign     int // candidates between different chunks
	Committable int // foreign candidates within the commit radius
	Independent int // committable pairs surviving the collinearity filter
}

// Classify maps an observation onto a ConnectionState. An observation no
// pipeline run can produce, such as committable pairs that all vanish in
// the collinearity filter, panics.
func Classify(o Observation) ConnectionState {
	switch {
	case o.Candidates == 0:
		return NoConnections
	case o.Foreign == 0:
		return BlockingWithItself
	case o.Committable == 0:
		return SocketsTooFar
	case o.Independent == 1:
		return OneSocketAligned
	case o.Independent >= 2:
		return Aligned
	}
	panic(fmt.Sprintf("snap: impossible observation %+v", o))
}
