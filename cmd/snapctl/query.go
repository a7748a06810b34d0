package main

import (
	"fmt"

	"github.com/chazu/snapjoin/pkg/chunk"
	"github.com/chazu/snapjoin/pkg/geom"
	"github.com/chazu/snapjoin/pkg/snap"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
)

type queryReport struct {
	Chunk     string               `json:"chunk"`
	State     snap.ConnectionState `json:"state"`
	Valid     bool                 `json:"valid"`
	Transform geom.Transform       `json:"transform"`
	Pairs     []string             `json:"pairs"`
	Anchors   []string             `json:"anchors"`
}

func newQueryCmd(opts *options) *cobra.Command {
	var (
		moving string
		at     []float64
		rot    []float64
	)
	cmd := &cobra.Command{
		Use:   "query SCRIPT",
		Short: "Resolve the snap for a chunk held at a pose",
		Long: `Resolve the snap for --moving held at --at with --rot, against every
other chunk in the script. The chunk itself stays in the scene at its
scripted pose, as it does during a drag.

--rot takes an axis and an angle in degrees: --rot 0,1,0,90`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			held, err := heldPose(at, rot)
			if err != nil {
				return err
			}
			s, _, err := loadScene(opts, args[0])
			if err != nil {
				return err
			}
			c := s.Lookup(moving)
			if c == nil {
				return fmt.Errorf("no chunk named %q", moving)
			}

			// Resolve a duplicate so pairs against the chunk's resting pose
			// count as self-pairs.
			ghost, _ := chunk.Duplicate(c)
			res := snap.Resolve(ghost.Moved(held), s.Chunks(), snap.DefaultConfig())

			report := queryReport{
				Chunk:     c.Name,
				State:     res.State,
				Valid:     res.Valid,
				Transform: res.Transform,
				Pairs:     []string{},
				Anchors:   []string{},
			}
			for _, p := range res.Pairs {
				report.Pairs = append(report.Pairs, p.String())
			}
			for _, p := range res.Anchors {
				report.Anchors = append(report.Anchors, p.String())
			}
			if opts.json {
				return opts.printJSON(report)
			}
			fmt.Fprintf(opts.out, "%s: %s\n", report.Chunk, report.State)
			if report.Valid {
				fmt.Fprintf(opts.out, "snapped: %s\n", report.Transform)
			}
			for _, p := range report.Pairs {
				fmt.Fprintf(opts.out, "  %s\n", p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&moving, "moving", "", "chunk to hold (required)")
	cmd.Flags().Float64SliceVar(&at, "at", []float64{0, 0, 0}, "held position x,y,z")
	cmd.Flags().Float64SliceVar(&rot, "rot", nil, "held rotation as axis and degrees: x,y,z,deg")
	_ = cmd.MarkFlagRequired("moving")
	return cmd
}

// heldPose builds the held transform from the --at and --rot flag values.
func heldPose(at, rot []float64) (geom.Transform, error) {
	if len(at) != 3 {
		return geom.Transform{}, fmt.Errorf("--at needs 3 values, got %d", len(at))
	}
	t := geom.Translation(r3.Vec{X: at[0], Y: at[1], Z: at[2]})
	switch len(rot) {
	case 0:
	case 4:
		axis := r3.Vec{X: rot[0], Y: rot[1], Z: rot[2]}
		if r3.Norm(axis) == 0 {
			return geom.Transform{}, fmt.Errorf("--rot axis must be non-zero")
		}
		t.Rotation = geom.AngleAxis(geom.Degrees(rot[3]), axis)
	default:
		return geom.Transform{}, fmt.Errorf("--rot needs 4 values (axis and degrees), got %d", len(rot))
	}
	return t, nil
}
