// Command metrics computes project metrics from a JSON project file without a server.
//
//	metrics -project aurora.json -inflation 0.004 -mode summary
//	cat aurora.json | metrics -project - -mode units
//	metrics -data '{"progress":100,"units":[...],"expenses":[...]}' -fetch-inflation
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"obra_tracker/pkg/core/cache"
	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/inflation"
	"obra_tracker/pkg/core/utils"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	utils.InitLogger("metrics")
	utils.Logger.SetOutput(os.Stderr)

	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	projectPath    string
	data           string
	inflation      float64
	fetchInflation bool
	daysPerMonth   float64
	mode           string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("metrics", flag.ContinueOnError)
	fs.StringVar(&o.projectPath, "project", "", "Project JSON file, or - for stdin")
	fs.StringVar(&o.data, "data", "", "Project JSON payload (instead of -project)")
	fs.Float64Var(&o.inflation, "inflation", 0.004, "Monthly inflation as a fraction (0.004 = 0.4%)")
	fs.BoolVar(&o.fetchInflation, "fetch-inflation", false, "Use the last monthly IPCA from the central bank, -inflation on failure")
	fs.Float64Var(&o.daysPerMonth, "days-per-month", finance.DefaultDaysPerMonth, "Month length used for holding periods")
	fs.StringVar(&o.mode, "mode", "summary", "Mode: summary, units or full")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if (o.projectPath == "") == (o.data == "") {
		return o, errors.New("exactly one of -project or -data is required")
	}
	if o.daysPerMonth <= 0 {
		return o, errors.New("-days-per-month must be positive")
	}
	switch o.mode {
	case "summary", "units", "full":
	default:
		return o, fmt.Errorf("unknown mode: %s", o.mode)
	}
	return o, nil
}

func readProject(o options, stdin io.Reader) (finance.Project, error) {
	var raw []byte
	var err error
	switch {
	case o.data != "":
		raw = []byte(o.data)
	case o.projectPath == "-":
		raw, err = io.ReadAll(stdin)
	default:
		raw, err = os.ReadFile(o.projectPath)
	}
	if err != nil {
		return finance.Project{}, fmt.Errorf("failed to read project: %w", err)
	}

	var p finance.Project
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("failed to parse project: %w", err)
	}
	return p, nil
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	p, err := readProject(o, stdin)
	if err != nil {
		return err
	}

	rate := o.inflation
	if o.fetchInflation {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		baseURL := os.Getenv("BCB_BASE_URL")
		if baseURL == "" {
			baseURL = inflation.DefaultBaseURL
		}
		rate = inflation.RateOrDefault(ctx, inflation.NewClient(baseURL, cache.NewMemoryCache()), o.inflation)
	}

	var out any
	switch o.mode {
	case "summary":
		out = finance.AggregateWithMonthLength(p.Units, p, rate, o.daysPerMonth)
	case "units":
		out = finance.UnitBreakdown(p, rate, o.daysPerMonth)
	case "full":
		out = finance.Analyze(p, rate, o.daysPerMonth)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
