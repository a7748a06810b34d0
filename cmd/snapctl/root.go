package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chazu/snapjoin/pkg/engine"
	"github.com/chazu/snapjoin/pkg/logging"
	"github.com/chazu/snapjoin/pkg/scene"
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	logLevel string
	json     bool
	out      io.Writer
}

func (o *options) logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(o.logLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Config{Level: level, Service: "snapctl"}), nil
}

// printJSON writes v indented.
func (o *options) printJSON(v any) error {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{out: out}
	root := &cobra.Command{
		Use:   "snapctl",
		Short: "Inspect snapjoin scene scripts and probe socket snapping",
		Long: `snapctl evaluates scene scripts outside the desktop app.

Subcommands:
  check    - evaluate and validate a script
  sockets  - list the sockets of every chunk
  query    - resolve a snap for one chunk held at a pose

Examples:
  snapctl check examples/stack.snap
  snapctl query examples/stack.snap --moving loose --at 0,1,0
  snapctl sockets examples/stack.snap --chunk base --json`,
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "print JSON instead of text")

	root.AddCommand(newCheckCmd(opts), newSocketsCmd(opts), newQueryCmd(opts))
	return root
}

// loadScene evaluates the script at path and fails on any evaluation or
// validation error. Warnings are returned for display.
func loadScene(opts *options, path string) (*scene.Scene, []engine.EvalWarning, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	logger, err := opts.logger()
	if err != nil {
		return nil, nil, err
	}
	res, err := engine.NewEngine(logger).EvaluateFull(string(src))
	if err != nil {
		return nil, nil, fmt.Errorf("evaluate %s: %w", path, err)
	}
	if len(res.Errors) > 0 {
		msgs := make([]string, 0, len(res.Errors))
		for _, e := range res.Errors {
			msgs = append(msgs, e.Error())
		}
		return nil, res.Warnings, fmt.Errorf("%s: %s", path, strings.Join(msgs, "; "))
	}
	return res.Scene, res.Warnings, nil
}
