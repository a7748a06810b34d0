package main

import (
	"fmt"

	"github.com/chazu/snapjoin/pkg/chunk"
	"github.com/spf13/cobra"
)

func newSocketsCmd(opts *options) *cobra.Command {
	var only string
	cmd := &cobra.Command{
		Use:   "sockets SCRIPT",
		Short: "List chunk sockets in world space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := loadScene(opts, args[0])
			if err != nil {
				return err
			}
			chunks := s.Chunks()
			if only != "" {
				c := s.Lookup(only)
				if c == nil {
					return fmt.Errorf("no chunk named %q", only)
				}
				chunks = []*chunk.Chunk{c}
			}

			var all []chunk.Socket
			for _, c := range chunks {
				all = append(all, c.WorldSockets()...)
			}
			if opts.json {
				if all == nil {
					all = []chunk.Socket{}
				}
				return opts.printJSON(all)
			}
			for _, sock := range all {
				p, u := sock.Frame.Position, sock.Frame.Up
				fmt.Fprintf(opts.out, "%-24s at (%.3f, %.3f, %.3f) up (%.2f, %.2f, %.2f)\n",
					sock, p.X, p.Y, p.Z, u.X, u.Y, u.Z)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&only, "chunk", "", "only list sockets of this chunk")
	return cmd
}
