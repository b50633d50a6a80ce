// Package cli implements the acquire command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"climate/internal/acquire"
	"climate/pkg/gazetteer"
)

// Engine is the acquisition service seen by the commands.
type Engine interface {
	Acquire(ctx context.Context, name string) (acquire.Result, error)
	Locations() []string
	Close() error
}

// Dependencies wires runtime services. Open is called lazily so that
// usage errors never touch the network.
type Dependencies struct {
	Open func(ctx context.Context) (Engine, error)
}

type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string, deps Dependencies, stdout, stderr io.Writer) int {
	cmd := NewRootCommand(deps)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	_, _ = fmt.Fprintln(stderr, err.Error())

	var controlled *exitError
	if errors.As(err, &controlled) {
		return controlled.code
	}
	return 1
}

// NewRootCommand builds the command tree.
func NewRootCommand(deps Dependencies) *cobra.Command {
	var annotate string

	root := &cobra.Command{
		Use:           "acquire <location words...>",
		Short:         "Resolve a location and fetch its thermal snapshot and weather grid.",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			if name == "" {
				_ = cmd.Usage()
				return &exitError{code: 2, msg: "a location is required"}
			}
			return runAcquire(cmd, deps, name, annotate)
		},
	}
	root.Flags().StringVar(&annotate, "annotate", "", "Write the correlated thermal snapshot to this PNG path.")
	root.SetHelpCommand(&cobra.Command{Hidden: true})

	root.AddCommand(newLocationsCommand(deps))
	return root
}

func runAcquire(cmd *cobra.Command, deps Dependencies, name, annotate string) error {
	engine, err := deps.Open(cmd.Context())
	if err != nil {
		return err
	}
	defer engine.Close()

	res, err := engine.Acquire(cmd.Context(), name)
	if errors.Is(err, gazetteer.ErrUnknownLocation) {
		return &exitError{code: 1, msg: fmt.Sprintf("Unknown location %q", name)}
	}
	if err != nil {
		return fmt.Errorf("acquisition failed: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s: %v (%s)\n", res.Location, res.Coordinates, res.Source)
	_, _ = fmt.Fprintf(out, "thermal: %v\n", res.ThermalTally)
	_, _ = fmt.Fprintf(out, "weather: %v over %d cells\n", res.WeatherTally, res.Grid.Len())
	if res.Weather.Count > 0 {
		_, _ = fmt.Fprintf(out, "temperature: min %.1f°C mean %.1f°C max %.1f°C (%d observations)\n",
			res.Weather.MinC, res.Weather.MeanC, res.Weather.MaxC, res.Weather.Count)
	}
	if res.ThermalErr != nil {
		_, _ = fmt.Fprintf(out, "thermal correlation unavailable: %v\n", res.ThermalErr)
		return nil
	}
	_, _ = fmt.Fprintf(out, "thermal pixels matched: %d\n", len(res.Matched))
	if annotate != "" {
		if err := res.Thermal.Save(annotate); err != nil {
			return fmt.Errorf("writing %s: %w", annotate, err)
		}
		_, _ = fmt.Fprintf(out, "annotated snapshot written to %s\n", annotate)
	}
	return nil
}

func newLocationsCommand(deps Dependencies) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "locations [prefix]",
		Short: "List gazetteer entries, optionally only those starting with prefix.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := deps.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer engine.Close()

			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			shown := 0
			for _, name := range engine.Locations() {
				if !strings.HasPrefix(name, prefix) {
					continue
				}
				if limit > 0 && shown == limit {
					break
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
				shown++
			}
			if shown == 0 {
				return &exitError{code: 1, msg: fmt.Sprintf("no locations start with %q", prefix)}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of names to print; 0 prints all.")
	return cmd
}
