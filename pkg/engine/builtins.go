package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/snapjoin/pkg/chunk"
	"github.com/chazu/snapjoin/pkg/geom"
	"github.com/chazu/snapjoin/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites scene source before it reaches zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal), so
//     keywords never collide with user-defined globals.
//
//  2. Kebab-case to underscore: studded-brick -> studded_brick. zygomys
//     reads a hyphen inside an identifier as subtraction.
//
//  3. Line comments: ; and ;; become //, the only comment form zygomys knows.
//
// String literals are left untouched. Newlines are preserved so that line
// numbers in zygomys errors still match the original source.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Double-quoted string literal.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Backtick string literal.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			// := is assignment, not a keyword.
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// A hyphen between identifier characters joins words; anywhere else
		// it is the minus operator or a negative literal.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a vector.
type sexpVec3 struct {
	vec r3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpRot wraps a rotation built by `rot`.
type sexpRot struct {
	rot geom.Rotation
}

func (r *sexpRot) SexpString(ps *zygo.PrintState) string {
	axis, angle := r.rot.AxisAngle()
	return fmt.Sprintf("(rot (vec3 %.3f %.3f %.3f) %.2f)", axis.X, axis.Y, axis.Z, angle*180/math.Pi)
}
func (r *sexpRot) Type() *zygo.RegisteredType { return nil }

// sexpBrick is a block waiting to be added to a chunk. Studded bricks also
// carry one socket pair per unit cell of their footprint.
type sexpBrick struct {
	block   chunk.Block
	studded bool
}

func (b *sexpBrick) SexpString(ps *zygo.PrintState) string {
	kind := "brick"
	if b.studded {
		kind = "studded-brick"
	}
	return fmt.Sprintf("(%s %gx%gx%g)", kind, b.block.Size.X, b.block.Size.Y, b.block.Size.Z)
}
func (b *sexpBrick) Type() *zygo.RegisteredType { return nil }

// sexpSocket is a socket declaration waiting to be added to a chunk.
type sexpSocket struct {
	name  string
	frame geom.Frame
}

func (s *sexpSocket) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(socket %q)", s.name)
}
func (s *sexpSocket) Type() *zygo.RegisteredType { return nil }

// sexpChunkRef refers to a chunk already added to the scene.
type sexpChunkRef struct {
	id   chunk.ChunkID
	name string
}

func (c *sexpChunkRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(chunk %q)", c.name)
}
func (c *sexpChunkRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// unknownKeywords returns an error naming the first keyword not in allowed.
func (a kwArgs) unknownKeywords(fn string, allowed ...string) error {
	for name := range a.kw {
		ok := false
		for _, want := range allowed {
			if name == want {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%s: unknown keyword :%s", fn, name)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (r3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return r3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toAxis accepts :x, :y, :z or a non-zero vec3.
func toAxis(s zygo.Sexp) (r3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		if r3.Norm(v.vec) == 0 {
			return r3.Vec{}, fmt.Errorf("axis must be non-zero")
		}
		return v.vec, nil
	}
	name, err := toKeywordString(s)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("expected axis keyword (:x, :y, :z) or vec3: %w", err)
	}
	switch name {
	case "x":
		return r3.Vec{X: 1}, nil
	case "y":
		return r3.Vec{Y: 1}, nil
	case "z":
		return r3.Vec{Z: 1}, nil
	}
	return r3.Vec{}, fmt.Errorf("invalid axis %q, expected x, y, or z", name)
}

// toRotation extracts a rotation from a sexpRot.
func toRotation(s zygo.Sexp) (geom.Rotation, error) {
	if r, ok := s.(*sexpRot); ok {
		return r.rot, nil
	}
	return geom.Rotation{}, fmt.Errorf("expected rot, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toPose reads the optional :at and :rotation keywords shared by brick,
// studded-brick and defchunk.
func toPose(fn string, pa kwArgs) (geom.Transform, error) {
	t := geom.Transform{Rotation: geom.Identity}
	if v, ok := pa.kw["at"]; ok {
		p, err := toVec3(v)
		if err != nil {
			return t, fmt.Errorf("%s: at: %w", fn, err)
		}
		t.Position = p
	}
	if v, ok := pa.kw["rotation"]; ok {
		r, err := toRotation(v)
		if err != nil {
			return t, fmt.Errorf("%s: rotation: %w", fn, err)
		}
		t.Rotation = r
	}
	return t, nil
}

// studSockets returns the top and bottom sockets of a studded block, one
// pair per unit cell of its X/Z footprint, in block order.
func studSockets(index int, b chunk.Block) []*sexpSocket {
	nx := int(math.Floor(b.Size.X + 1e-9))
	nz := int(math.Floor(b.Size.Z + 1e-9))
	var sockets []*sexpSocket
	for _, side := range []struct {
		name string
		y    float64
		up   r3.Vec
	}{
		{"top", b.Size.Y, r3.Vec{Y: 1}},
		{"bottom", 0, r3.Vec{Y: -1}},
	} {
		for ix := 0; ix < nx; ix++ {
			for iz := 0; iz < nz; iz++ {
				local := geom.Frame{
					Position: r3.Vec{X: float64(ix) + 0.5, Y: side.y, Z: float64(iz) + 0.5},
					Forward:  r3.Vec{X: 1},
					Up:       side.up,
				}
				sockets = append(sockets, &sexpSocket{
					name:  fmt.Sprintf("b%d-%s-%d-%d", index, side.name, ix, iz),
					frame: local.Transformed(b.Pose),
				})
			}
		}
	}
	return sockets
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene DSL into a zygomys environment. The
// builtins add chunks to s as the program runs.
//
// Source code must be preprocessed with preprocessSource() first so that
// :keyword tokens arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *scene.Scene) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: r3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (rot :y 90) or (rot (vec3 1 1 0) 45); degrees, right-hand rule
	// -----------------------------------------------------------------------
	env.AddFunction("rot", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("rot requires an axis and an angle in degrees, got %d arguments", len(args))
		}
		axis, err := toAxis(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rot: axis: %w", err)
		}
		deg, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rot: angle: %w", err)
		}
		return &sexpRot{rot: geom.AngleAxis(geom.Degrees(deg), axis)}, nil
	})

	// -----------------------------------------------------------------------
	// (brick :size (vec3 2 1 1) :at (vec3 0 0 0) :rotation (rot :y 90))
	// (studded-brick ...) takes the same arguments
	// -----------------------------------------------------------------------
	brick := func(studded bool) zygo.ZlispUserFunction {
		fn := "brick"
		if studded {
			fn = "studded-brick"
		}
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if err := pa.unknownKeywords(fn, "size", "at", "rotation"); err != nil {
				return zygo.SexpNull, err
			}
			v, ok := pa.kw["size"]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("%s requires :size", fn)
			}
			size, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: size: %w", fn, err)
			}
			pose, err := toPose(fn, pa)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpBrick{block: chunk.Block{Size: size, Pose: pose}, studded: studded}, nil
		}
	}
	env.AddFunction("brick", brick(false))
	env.AddFunction("studded_brick", brick(true))

	// -----------------------------------------------------------------------
	// (socket "top" :at (vec3 0.5 1 0.5) :forward (vec3 1 0 0) :up (vec3 0 1 0))
	// -----------------------------------------------------------------------
	env.AddFunction("socket", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknownKeywords("socket", "at", "forward", "up"); err != nil {
			return zygo.SexpNull, err
		}
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("socket requires a name argument")
		}
		sockName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("socket: name: %w", err)
		}

		frame := geom.Frame{Forward: r3.Vec{X: 1}, Up: r3.Vec{Y: 1}}
		for key, dst := range map[string]*r3.Vec{"at": &frame.Position, "forward": &frame.Forward, "up": &frame.Up} {
			v, ok := pa.kw[key]
			if !ok {
				continue
			}
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("socket %q: %s: %w", sockName, key, err)
			}
			*dst = vec
		}
		return &sexpSocket{name: sockName, frame: frame}, nil
	})

	// -----------------------------------------------------------------------
	// (defchunk "name" :at (vec3 0 0 0) :rotation (rot :y 0) items...)
	// Items are bricks, sockets, or lists of them.
	// -----------------------------------------------------------------------
	env.AddFunction("defchunk", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknownKeywords("defchunk", "at", "rotation"); err != nil {
			return zygo.SexpNull, err
		}
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("defchunk requires a name argument")
		}
		chunkName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defchunk: name: %w", err)
		}
		pose, err := toPose("defchunk", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		c := chunk.New(chunkName, pose)
		var add func(item zygo.Sexp) error
		add = func(item zygo.Sexp) error {
			switch v := item.(type) {
			case *sexpBrick:
				c.AddBlock(v.block)
				if v.studded {
					for _, sock := range studSockets(len(c.Blocks)-1, v.block) {
						c.AddSocket(sock.name, sock.frame)
					}
				}
			case *sexpSocket:
				c.AddSocket(v.name, v.frame)
			case *zygo.SexpPair, *zygo.SexpArray:
				items, err := sexpListToSlice(v)
				if err != nil {
					return err
				}
				for _, it := range items {
					if err := add(it); err != nil {
						return err
					}
				}
			default:
				return fmt.Errorf("expected brick or socket, got %T (%s)", item, item.SexpString(nil))
			}
			return nil
		}
		for i, item := range pa.positional[1:] {
			if err := add(item); err != nil {
				return zygo.SexpNull, fmt.Errorf("defchunk %q: item %d: %w", chunkName, i+1, err)
			}
		}

		s.Add(c)
		return &sexpChunkRef{id: c.ID, name: chunkName}, nil
	})

	// -----------------------------------------------------------------------
	// (chunk "name")
	// -----------------------------------------------------------------------
	env.AddFunction("chunk", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("chunk requires a name argument")
		}
		chunkName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("chunk: name: %w", err)
		}
		c := s.Lookup(chunkName)
		if c == nil {
			return zygo.SexpNull, fmt.Errorf("chunk: no chunk named %q", chunkName)
		}
		return &sexpChunkRef{id: c.ID, name: chunkName}, nil
	})
}
