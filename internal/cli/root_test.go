package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"climate/internal/acquire"
	"climate/models"
	"climate/pkg/gazetteer"
	"climate/pkg/geo"
	"climate/pkg/thermal"
	"climate/pkg/transfer"
)

type fakeEngine struct {
	names  []string
	result acquire.Result
	err    error
	closed bool
	asked  string
}

func (f *fakeEngine) Acquire(_ context.Context, name string) (acquire.Result, error) {
	f.asked = name
	r := f.result
	r.Location = name
	return r, f.err
}

func (f *fakeEngine) Locations() []string { return f.names }

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}

func run(t *testing.T, engine *fakeEngine, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	deps := Dependencies{Open: func(context.Context) (Engine, error) { return engine, nil }}
	code := Execute(context.Background(), args, deps, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestExecute_Acquire(t *testing.T) {
	engine := &fakeEngine{result: acquire.Result{
		Coordinates:  models.Coordinates{Lat: 43.4675, Lon: -79.6877},
		Source:       "gazetteer",
		Grid:         geo.NewGrid(models.Coordinates{Lat: 43.4675, Lon: -79.6877}, 400, 0.1),
		ThermalTally: transfer.Tally{Issued: 1, Ok: 1},
		WeatherTally: transfer.Tally{Issued: 400, Ok: 398, Failed: 2},
		ThermalErr:   thermal.ErrNoThermalData,
	}}

	code, out, errOut := run(t, engine, "Oakville", "Canada")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, errOut)
	}
	if engine.asked != "Oakville Canada" {
		t.Errorf("asked for %q; want words joined by spaces", engine.asked)
	}
	for _, want := range []string{
		"Oakville Canada: 43.4675,-79.6877 (gazetteer)",
		"weather: ok=398 failed=2 over 400 cells",
		"thermal correlation unavailable",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !engine.closed {
		t.Error("engine was not closed")
	}
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "missing location", args: nil, wantCode: 2, wantMsg: "a location is required"},
		{name: "unknown location", args: []string{"Atlantis"}, err: fmt.Errorf("%w: %q", gazetteer.ErrUnknownLocation, "Atlantis"), wantCode: 1, wantMsg: `Unknown location "Atlantis"`},
		{name: "other failure", args: []string{"Oakville"}, err: errors.New("disk full"), wantCode: 1, wantMsg: "acquisition failed: disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := run(t, &fakeEngine{err: tt.err}, tt.args...)
			if code != tt.wantCode {
				t.Errorf("exit code = %d; want %d", code, tt.wantCode)
			}
			if !strings.Contains(errOut, tt.wantMsg) {
				t.Errorf("stderr = %q; want it to contain %q", errOut, tt.wantMsg)
			}
		})
	}
}

func TestExecute_Locations(t *testing.T) {
	engine := &fakeEngine{names: []string{"Oakland", "Oakville", "Ottawa", "Toronto"}}

	code, out, _ := run(t, engine, "locations", "Oak")
	if code != 0 || out != "Oakland\nOakville\n" {
		t.Errorf("locations Oak = %d %q", code, out)
	}

	code, out, _ = run(t, engine, "locations", "--limit", "1")
	if code != 0 || out != "Oakland\n" {
		t.Errorf("locations --limit 1 = %d %q", code, out)
	}

	code, _, _ = run(t, engine, "locations", "Zz")
	if code != 1 {
		t.Errorf("no matches exit code = %d; want 1", code)
	}
}
