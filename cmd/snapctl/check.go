package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type checkReport struct {
	Chunks   int      `json:"chunks"`
	Sockets  int      `json:"sockets"`
	Warnings []string `json:"warnings"`
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check SCRIPT",
		Short: "Evaluate and validate a scene script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, warnings, err := loadScene(opts, args[0])
			if err != nil {
				return err
			}
			report := checkReport{Chunks: s.Len(), Sockets: s.SocketCount(), Warnings: []string{}}
			for _, w := range warnings {
				report.Warnings = append(report.Warnings, w.Message)
			}
			if opts.json {
				return opts.printJSON(report)
			}
			for _, w := range report.Warnings {
				fmt.Fprintln(opts.out, w)
			}
			fmt.Fprintf(opts.out, "ok: %d chunks, %d sockets\n", report.Chunks, report.Sockets)
			return nil
		},
	}
}
