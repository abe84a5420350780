package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	sim "github.com/fleet-sim/fleet-sim/sim"
	"github.com/fleet-sim/fleet-sim/sim/trace"
)

var (
	// CLI flags for the fleet
	trucks          int           // Number of trucks launched
	seed            int64         // Master seed for per-truck duration samplers
	loadingCapacity int           // Max trucks loading at once
	unloadDivisor   float64       // Unloading time = loading time / divisor
	admissionPolicy string        // Loading admission reclaim policy
	finalWait       string        // Final wait policy
	orderedLaunch   bool          // Queue trucks for loading in index order
	timeUnit        time.Duration // Wall-clock length of one simulated millisecond

	// CLI flags for inputs and output
	routesPath   string // Route list file, one route per line
	configPath   string // Fleet bundle YAML
	presetName   string // Named preset in defaults.yaml
	defaultsPath string // Path to defaults.yaml
	traceLevel   string // Stage trace verbosity
	logLevel     string // Log verbosity level
)

// envPrefix namespaces environment overrides: --loading-capacity is FLEET_LOADING_CAPACITY.
const envPrefix = "FLEET"

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "fleet-sim",
	Short: "Concurrent truck fleet pipeline simulator",
}

// runCmd executes one fleet run using presets, config files, environment and flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a fleet through loading, routing and arrival",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(viper.GetString("log"))
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", viper.GetString("log"))
		}
		logrus.SetLevel(level)

		cfg, routes, err := resolveFleetConfig(viper.GetViper())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		tl := viper.GetString("trace")
		if !trace.IsValidTraceLevel(tl) {
			logrus.Fatalf("Unknown trace level %q", tl)
		}

		logrus.Infof("Starting fleet: %d trucks, loading capacity %d, %d routes, seed %d",
			cfg.Trucks, cfg.Loading.Capacity, len(routes), cfg.Seed)

		res, err := runFleet(cfg, routes, trace.TraceLevel(tl))
		if err != nil {
			logrus.Fatalf("Fleet run failed: %v", err)
		}
		printFleetResult(os.Stdout, res)

		logrus.Info("Fleet run complete.")
	},
}

// runFleet runs cfg until every truck finishes or the process is interrupted.
func runFleet(cfg sim.FleetConfig, routes []string, level trace.TraceLevel) (*sim.FleetResult, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []sim.FleetOption
	if level == trace.TraceLevelStages {
		opts = append(opts, sim.WithTrace(trace.NewFleetTrace(trace.TraceConfig{Level: level})))
	}
	f, err := sim.NewFleet(cfg, routes, opts...)
	if err != nil {
		return nil, err
	}
	return f.Run(ctx)
}

// resolveFleetConfig layers, lowest to highest: built-in defaults, the --preset
// entry of defaults.yaml, the --config bundle, then every flag or FLEET_*
// variable set in v. Routes come from --routes, else the last bundle that
// listed any, else are generated from the seed.
func resolveFleetConfig(v *viper.Viper) (sim.FleetConfig, []string, error) {
	cfg := sim.DefaultFleetConfig()
	var routes []string

	if name := v.GetString("preset"); name != "" {
		preset, err := GetPreset(name, v.GetString("defaults"))
		if err != nil {
			return cfg, nil, err
		}
		preset.ApplyTo(&cfg)
		if len(preset.Routes) > 0 {
			routes = preset.Routes
		}
	}

	if path := v.GetString("config"); path != "" {
		bundle, err := sim.LoadFleetBundle(path)
		if err != nil {
			return cfg, nil, err
		}
		if err := bundle.Validate(); err != nil {
			return cfg, nil, fmt.Errorf("%s: %w", path, err)
		}
		bundle.ApplyTo(&cfg)
		if len(bundle.Routes) > 0 {
			routes = bundle.Routes
		}
	}

	// Only values set explicitly override the layers above; flag defaults do not.
	if v.IsSet("trucks") {
		cfg.Trucks = v.GetInt("trucks")
	}
	if v.IsSet("seed") {
		cfg.Seed = v.GetInt64("seed")
	}
	if v.IsSet("loading-capacity") {
		cfg.Loading.Capacity = v.GetInt("loading-capacity")
	}
	if v.IsSet("unload-divisor") {
		cfg.Arrival.UnloadDivisor = v.GetFloat64("unload-divisor")
	}
	if v.IsSet("admission-policy") {
		cfg.AdmissionPolicy = v.GetString("admission-policy")
	}
	if v.IsSet("final-wait") {
		cfg.Arrival.FinalWait = v.GetString("final-wait")
	}
	if v.IsSet("ordered") {
		cfg.OrderedLaunch = v.GetBool("ordered")
	}
	if v.IsSet("time-unit") {
		cfg.TimeUnit = v.GetDuration("time-unit")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	if path := v.GetString("routes"); path != "" {
		list, err := sim.LoadRouteList(path)
		if err != nil {
			return cfg, nil, err
		}
		routes = list
	}
	if routes == nil {
		if cfg.Trucks > sim.MaxGeneratedRoutes {
			return cfg, nil, fmt.Errorf("%d trucks need a route list (at most %d routes can be generated)",
				cfg.Trucks, sim.MaxGeneratedRoutes)
		}
		rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
		routes = sim.GenerateRoutes(rng.ForSubsystem(sim.SubsystemRoutes), cfg.Trucks)
	}
	return cfg, routes, nil
}

// printFleetResult writes one row per truck and, when a trace was recorded, its summary.
func printFleetResult(w io.Writer, res *sim.FleetResult) {
	_, _ = fmt.Fprintf(w, "=== Fleet Run %s ===\n", res.RunID)
	_, _ = fmt.Fprintf(w, "%-10s %6s %10s %8s %6s %10s %5s %9s %8s\n",
		"truck", "cohort", "loading_ms", "route", "order", "arrival_ms", "turn", "outcome", "wait_ms")
	for _, tr := range res.Trucks {
		_, _ = fmt.Fprintf(w, "%-10s %6d %10d %8s %6d %10d %5d %9s %8d\n",
			tr.Truck, tr.Cohort, tr.LoadingMs, tr.Route, tr.RouteOrder,
			tr.ArrivalMs, tr.ArrivalTurn, tr.Outcome, tr.FinalWaitMs)
	}
	if len(res.Cohorts) > 0 {
		_, _ = fmt.Fprintf(w, "Loading cohorts: %v\n", res.Cohorts)
	}
	_, _ = fmt.Fprintf(w, "Peak concurrent final waits: %d\n", res.PeakFinalWaits)
	_, _ = fmt.Fprintf(w, "Elapsed: %v\n", res.Elapsed.Round(time.Millisecond))

	if res.Trace == nil {
		return
	}
	s := trace.Summarize(res.Trace)
	_, _ = fmt.Fprintf(w, "=== Trace Summary ===\n")
	_, _ = fmt.Fprintf(w, "Returned: %d, Unloaded: %d, Unique routes: %d\n", s.ReturnedCount, s.UnloadedCount, s.UniqueRoutes)
	_, _ = fmt.Fprintf(w, "Loading ms: mean %.1f, max %d\n", s.MeanLoadingMs, s.MaxLoadingMs)
	_, _ = fmt.Fprintf(w, "Arrival ms: mean %.1f, max %d\n", s.MeanArrivalMs, s.MaxArrivalMs)
	_, _ = fmt.Fprintf(w, "Barrier respected: %t\n", s.BarrierRespected)
}

// initConfig loads .env and wires FLEET_* environment variables into viper.
func initConfig() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment")
	}
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	cobra.OnInitialize(initConfig)

	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for per-truck loading and arrival durations")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Fleet configs
	runCmd.Flags().IntVar(&trucks, "trucks", sim.DefaultTrucks, "Number of trucks")
	runCmd.Flags().IntVar(&loadingCapacity, "loading-capacity", sim.DefaultLoadingCapacity, "Max trucks loading at once")
	runCmd.Flags().Float64Var(&unloadDivisor, "unload-divisor", sim.DefaultUnloadDivisor, "Unloading time = loading time / divisor")
	runCmd.Flags().StringVar(&admissionPolicy, "admission-policy", sim.AdmissionCohort, "Loading admission policy (cohort, sliding)")
	runCmd.Flags().StringVar(&finalWait, "final-wait", sim.FinalWaitShared, "Final wait policy (shared, per-truck)")
	runCmd.Flags().BoolVar(&orderedLaunch, "ordered", false, "Queue trucks for loading in index order")
	runCmd.Flags().DurationVar(&timeUnit, "time-unit", time.Millisecond, "Wall-clock length of one simulated millisecond")

	// Inputs and output
	runCmd.Flags().StringVar(&routesPath, "routes", "", "Route list file, one route per line (default: generated from seed)")
	runCmd.Flags().StringVar(&configPath, "config", "", "Fleet config YAML")
	runCmd.Flags().StringVar(&presetName, "preset", "", "Named preset from the defaults file")
	runCmd.Flags().StringVar(&defaultsPath, "defaults", "defaults.yaml", "Path to the defaults file holding presets")
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Stage trace level (none, stages)")

	if err := viper.BindPFlags(runCmd.Flags()); err != nil {
		logrus.Fatalf("Failed to bind flags: %v", err)
	}

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
