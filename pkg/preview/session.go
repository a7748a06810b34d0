// Package preview drives the translucent ghost shown while a chunk is being
// dragged. A Session owns one drag at a time: Begin duplicates the dragged
// chunk, every Update resolves the duplicate at the held pose against the
// scene and publishes a Snapshot, and End either commits the snap through a
// Merger or releases the chunk where it was let go.
//
// Updates may arrive from more than one goroutine. Each published snapshot
// carries a generation number and a later query always supersedes an
// earlier one; nothing is locked or queued.
package preview

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sync/atomic"

	"github.com/chazu/snapjoin/pkg/chunk"
	"github.com/chazu/snapjoin/pkg/geom"
	"github.com/chazu/snapjoin/pkg/snap"
)

// ErrNoDrag is returned by End when no drag is in progress.
var ErrNoDrag = errors.New("preview: no drag in progress")

// Renderer displays the preview ghost.
type Renderer interface {
	SetVisible(visible bool)
	SetTint(c color.NRGBA)
	SetPose(t geom.Transform)
}

// Merger fuses a committed chunk with the chunks its pairs point at and
// returns the resulting chunk. Every pair's This socket belongs to moving.
type Merger interface {
	Merge(moving *chunk.Chunk, pairs []chunk.SocketPair) (*chunk.Chunk, error)
}

// Snapshot is the published result of one Update.
type Snapshot struct {
	Generation uint64               `json:"generation"`
	Chunk      chunk.ChunkID        `json:"chunk"`
	Held       geom.Transform       `json:"held"`
	State      snap.ConnectionState `json:"state"`
	Transform  geom.Transform       `json:"transform"`
	Valid      bool                 `json:"valid"`
	// Pairs and Anchors name the real chunk's sockets, posed at Transform.
	Pairs   []chunk.SocketPair `json:"pairs"`
	Anchors []chunk.SocketPair `json:"anchors"`
	Tint    color.NRGBA        `json:"tint"`
}

// HasPairs reports whether committing this snapshot would merge anything.
func (s Snapshot) HasPairs() bool {
	return s.Valid && len(s.Pairs) > 0
}

// OutcomeKind says how a drag ended.
type OutcomeKind int

const (
	// Released: no pairs, the chunk stays where it was let go.
	Released OutcomeKind = iota
	// Committed: the chunk snapped and was merged.
	Committed
)

func (k OutcomeKind) String() string {
	switch k {
	case Released:
		return "released"
	case Committed:
		return "committed"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome reports what End did.
type Outcome struct {
	Kind OutcomeKind
	// Moved is the real chunk at its final transform.
	Moved *chunk.Chunk
	// Merged is the merger's result; nil when released.
	Merged *chunk.Chunk
	Pairs  []chunk.SocketPair
}

// Options configures a Session. Renderer and Merger may be nil: without a
// renderer nothing is drawn, without a merger a commit only moves the chunk.
type Options struct {
	Config   snap.Config
	Renderer Renderer
	Merger   Merger
	Logger   *slog.Logger
}

// drag is everything owned by one Begin..End interaction. It is replaced
// wholesale and never mutated.
type drag struct {
	real      *chunk.Chunk
	preview   *chunk.Chunk
	socketMap map[chunk.SocketID]chunk.SocketID
	scene     []*chunk.Chunk
}

// Session is the preview controller.
type Session struct {
	cfg      snap.Config
	renderer Renderer
	merger   Merger
	log      *slog.Logger

	current    atomic.Pointer[drag]
	latest     atomic.Pointer[Snapshot]
	generation atomic.Uint64
	visible    visibility

	observers []func(Snapshot)
}

// NewSession creates an idle session.
func NewSession(opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		cfg:      opts.Config,
		renderer: opts.Renderer,
		merger:   opts.Merger,
		log:      log.With("component", "preview"),
	}
}

// OnSnap registers fn to receive every published snapshot. Register
// observers before the first Begin.
func (s *Session) OnSnap(fn func(Snapshot)) {
	s.observers = append(s.observers, fn)
}

// Begin starts a drag of real against scene and runs the first update with
// the chunk where it is. Scene should contain real itself at its resting
// pose; pairs onto it report BlockingWithItself. A drag already in progress
// is abandoned.
func (s *Session) Begin(real *chunk.Chunk, scene []*chunk.Chunk) Snapshot {
	preview, socketMap := chunk.Duplicate(real)
	d := &drag{
		real:      real,
		preview:   preview,
		socketMap: socketMap,
		scene:     scene,
	}
	if old := s.current.Swap(d); old != nil {
		s.log.Warn("drag abandoned", "chunk", old.real.Name)
	}
	s.latest.Store(nil)
	s.log.Debug("drag started", "chunk", real.Name, "sockets", len(real.Sockets), "scene", len(scene))
	return s.update(d, real.Transform)
}

// Active reports whether a drag is in progress.
func (s *Session) Active() bool {
	return s.current.Load() != nil
}

// Visibility returns the ghost's current display state.
func (s *Session) Visibility() Visibility {
	return s.visible.get()
}

// Update resolves the preview at held and publishes the result. It panics
// when no drag is in progress.
func (s *Session) Update(held geom.Transform) Snapshot {
	d := s.current.Load()
	if d == nil {
		panic("preview: Update called with no drag in progress")
	}
	return s.update(d, held)
}

func (s *Session) update(d *drag, held geom.Transform) Snapshot {
	res := snap.Resolve(d.preview.Moved(held), d.scene, s.cfg)

	snapshot := &Snapshot{
		Generation: s.generation.Add(1),
		Chunk:      d.real.ID,
		Held:       held,
		State:      res.State,
		Transform:  res.Transform,
		Valid:      res.Valid,
		Tint:       Tint(res.State),
	}
	posed := d.real.Moved(res.Transform)
	snapshot.Pairs = d.toReal(posed, res.Pairs)
	snapshot.Anchors = d.toReal(posed, res.Anchors)

	if !s.publish(snapshot) {
		s.log.Debug("snapshot superseded", "generation", snapshot.Generation)
		return *snapshot
	}

	if s.renderer != nil {
		if s.visible.set(Visible) {
			s.renderer.SetVisible(true)
		}
		s.renderer.SetTint(snapshot.Tint)
		s.renderer.SetPose(snapshot.Transform)
	} else {
		s.visible.set(Visible)
	}
	for _, fn := range s.observers {
		fn(*snapshot)
	}
	return *snapshot
}

// publish stores snap unless a newer generation is already published.
func (s *Session) publish(snapshot *Snapshot) bool {
	for {
		cur := s.latest.Load()
		if cur != nil && cur.Generation > snapshot.Generation {
			return false
		}
		if s.latest.CompareAndSwap(cur, snapshot) {
			return true
		}
	}
}

// toReal rewrites each pair's This socket from the preview duplicate to the
// real chunk posed at the snapped transform. Every preview socket must be in
// the map.
func (d *drag) toReal(posed *chunk.Chunk, pairs []chunk.SocketPair) []chunk.SocketPair {
	if len(pairs) == 0 {
		return nil
	}
	out := make([]chunk.SocketPair, len(pairs))
	for i, p := range pairs {
		realID, ok := d.socketMap[p.This.ID]
		if !ok {
			panic(fmt.Sprintf("preview: socket %s (%s) missing from preview map", p.This.ID.Short(), p.This))
		}
		out[i] = chunk.SocketPair{This: posed.MustSocket(realID), Other: p.Other}
	}
	return out
}

// Snapshot returns the latest published snapshot.
func (s *Session) Snapshot() (Snapshot, bool) {
	cur := s.latest.Load()
	if cur == nil {
		return Snapshot{}, false
	}
	return *cur, true
}

// End finishes the drag. With pairs in the latest snapshot the real chunk
// takes the snapped transform and is merged; otherwise it is released at
// the last held pose. The ghost is hidden either way.
func (s *Session) End() (Outcome, error) {
	d := s.current.Swap(nil)
	if d == nil {
		return Outcome{}, ErrNoDrag
	}
	defer s.hide()

	latest := s.latest.Load()
	if latest == nil || !latest.HasPairs() {
		held := d.real.Transform
		if latest != nil {
			held = latest.Held
		}
		s.log.Info("drag released", "chunk", d.real.Name, "pose", held.String())
		return Outcome{Kind: Released, Moved: d.real.Moved(held)}, nil
	}

	moved := d.real.Moved(latest.Transform)
	out := Outcome{Kind: Committed, Moved: moved, Pairs: latest.Pairs}
	if s.merger == nil {
		s.log.Info("drag committed", "chunk", d.real.Name, "state", latest.State.String(), "pairs", len(latest.Pairs))
		return out, nil
	}

	merged, err := s.merger.Merge(moved, latest.Pairs)
	if err != nil {
		return Outcome{}, fmt.Errorf("merge %s: %w", d.real.Name, err)
	}
	out.Merged = merged
	s.log.Info("drag committed", "chunk", d.real.Name, "state", latest.State.String(), "pairs", len(latest.Pairs), "merged", merged.Name)
	return out, nil
}

func (s *Session) hide() {
	if s.visible.set(Hidden) && s.renderer != nil {
		s.renderer.SetVisible(false)
	}
}
