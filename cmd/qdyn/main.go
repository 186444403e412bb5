package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/qdyn/internal/analysis"
	"github.com/san-kum/qdyn/internal/config"
	"github.com/san-kum/qdyn/internal/experiment"
	"github.com/san-kum/qdyn/internal/master"
	"github.com/san-kum/qdyn/internal/storage"
	"github.com/san-kum/qdyn/internal/traj"
)

var (
	dataDir    string
	configFile string
	preset     string
	solver     string
	method     string
	ntraj      int
	nsub       int
	seed       uint64
	duration   float64
	steps      int
	storeMeas  bool
	workers    int
	reference  bool
	verbose    bool
	channel    int
)

var log zerolog.Logger

func main() {
	rootCmd := &cobra.Command{
		Use:   "qdyn",
		Short: "stochastic quantum trajectory lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).With().Timestamp().Logger()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".qdyn", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a trajectory ensemble",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnsemble,
	}
	runCmd.Flags().StringVar(&solver, "solver", config.DefaultSolver, "integration scheme")
	runCmd.Flags().StringVar(&method, "method", config.DefaultMethod, "detection method")
	runCmd.Flags().IntVar(&ntraj, "ntraj", config.DefaultNTraj, "number of trajectories")
	runCmd.Flags().IntVar(&nsub, "nsub", config.DefaultNSub, "substeps per output interval")
	runCmd.Flags().Uint64Var(&seed, "seed", uint64(time.Now().UnixNano()), "master seed")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "output intervals")
	runCmd.Flags().BoolVar(&storeMeas, "measurement", false, "store measurement records")
	runCmd.Flags().IntVar(&workers, "workers", 0, "trajectory workers (0 = all cores)")
	runCmd.Flags().BoolVar(&reference, "reference", false, "compare against the master equation")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "replay a stored run from its recorded noise",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot expectation traces",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of an expectation trace",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&channel, "obs", 0, "observable index")

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := experiment.NewRegistry()
			tlist := config.DefaultConfig().Tlist()
			for _, name := range r.ListScenarios() {
				sc, err := r.GetScenario(name, tlist)
				if err != nil {
					return err
				}
				fmt.Printf("  %-18s %s\n", name, sc.Describe)
			}
			return nil
		},
	}

	solversCmd := &cobra.Command{
		Use:   "solvers",
		Short: "list integration schemes and detection methods",
		Run: func(cmd *cobra.Command, args []string) {
			r := experiment.NewRegistry()
			fmt.Println("schemes:")
			for _, name := range r.ListSolvers() {
				fmt.Printf("  %s\n", name)
			}
			fmt.Println("methods:")
			for _, name := range r.ListMethods() {
				fmt.Printf("  %s\n", name)
			}
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scenario]",
		Short: "list presets for a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for scenario: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range names {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, replayCmd, listCmd, plotCmd, analyzeCmd, scenariosCmd, solversCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildConfig resolves preset, config file, and flag overrides into one
// config; explicit flags win.
func buildConfig(cmd *cobra.Command, scenario string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(scenario, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(scenario))
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	cfg.Scenario = scenario

	if cmd.Flags().Changed("solver") || cfg.Solver == "" {
		cfg.Solver = solver
	}
	if cmd.Flags().Changed("method") || cfg.Method == "" {
		cfg.Method = method
	}
	if cmd.Flags().Changed("ntraj") {
		cfg.NTraj = ntraj
	}
	if cmd.Flags().Changed("nsub") {
		cfg.NSub = nsub
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("measurement") {
		cfg.StoreMeasurement = storeMeas
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	cfg.Seed = seed
	return cfg, cfg.Validate()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	tlist := cfg.Tlist()
	sc, err := registry.GetScenario(cfg.Scenario, tlist)
	if err != nil {
		return err
	}

	m, err := traj.ParseMethod(cfg.Method)
	if err != nil {
		return err
	}

	ens, err := traj.New(sc.H, sc.SC, sc.EOps)
	if err != nil {
		return err
	}
	ens = ens.WithLogger(log)

	log.Info().Str("scenario", cfg.Scenario).Str("method", cfg.Method).
		Int("ntraj", cfg.NTraj).Msg("running ensemble")
	start := time.Now()

	res, err := ens.Run(context.Background(), sc.Psi0, tlist, traj.Opts{
		Scheme:           cfg.Solver,
		Method:           m,
		NTraj:            cfg.NTraj,
		NSub:             cfg.NSub,
		Seed:             cfg.Seed,
		StoreMeasurement: cfg.StoreMeasurement,
		Workers:          cfg.Workers,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Scenario: cfg.Scenario,
		Solver:   cfg.Solver,
		Method:   cfg.Method,
		NTraj:    cfg.NTraj,
		NSub:     cfg.NSub,
		Seed:     cfg.Seed,
		Duration: cfg.Duration,
		Steps:    cfg.Steps,
		Labels:   sc.Labels,
	}, res)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	for o, label := range sc.Labels {
		final := res.Expect[o][len(res.Times)-1]
		fmt.Printf("  <%s>(T) = %.6f\n", label, real(final))
	}

	if reference {
		return compareReference(sc, tlist, cfg, res)
	}
	return nil
}

// compareReference solves the Lindblad master equation on the same grid and
// reports the largest deviation of the ensemble averages.
func compareReference(sc *experiment.Scenario, tlist []float64, cfg *config.Config, res *traj.Result) error {
	ref, err := master.SolveKet(sc.H, sc.SC, sc.Psi0, sc.Dims, tlist, cfg.NSub, sc.EOps)
	if err != nil {
		return err
	}
	fmt.Println("\nmaster equation deviation:")
	for o, label := range sc.Labels {
		maxDev := 0.0
		for i := range tlist {
			if d := realAbs(res.Expect[o][i] - ref.Expect[o][i]); d > maxDev {
				maxDev = d
			}
		}
		fmt.Printf("  %s: %.4f\n", label, maxDev)
	}
	return nil
}

func realAbs(z complex128) float64 {
	r := real(z)
	if r < 0 {
		return -r
	}
	return r
}

func replayRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	noise, err := st.LoadNoise(args[0])
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	tlist := (&config.Config{Duration: meta.Duration, Steps: meta.Steps}).Tlist()
	sc, err := registry.GetScenario(meta.Scenario, tlist)
	if err != nil {
		return err
	}
	m, err := traj.ParseMethod(meta.Method)
	if err != nil {
		return err
	}
	ens, err := traj.New(sc.H, sc.SC, sc.EOps)
	if err != nil {
		return err
	}
	ens = ens.WithLogger(log)

	res, err := ens.Run(context.Background(), sc.Psi0, tlist, traj.Opts{
		Scheme: meta.Solver,
		Method: m,
		NTraj:  meta.NTraj,
		NSub:   meta.NSub,
		Noise:  noise,
	})
	if err != nil {
		return err
	}

	// the stored traces must match the replay exactly
	_, cols, _, err := st.LoadExpect(args[0])
	if err != nil {
		return err
	}
	maxDev := 0.0
	for o := range cols {
		for i := range cols[o] {
			if d := realAbs(res.Expect[o][i] - complex(cols[o][i], 0)); d > maxDev {
				maxDev = d
			}
		}
	}
	fmt.Printf("replayed %s: %d trajectories, max deviation from stored traces %.2e\n",
		meta.ID, meta.NTraj, maxDev)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tMETHOD\tSOLVER\tNTRAJ\tDURATION")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%.2fs\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Method,
			run.Solver,
			run.NTraj,
			run.Duration,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, cols, labels, err := st.LoadExpect(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s (%s, %d trajectories)\n\n", meta.Scenario, meta.Method, meta.NTraj)

	for o, col := range cols {
		graph := asciigraph.Plot(col,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("<%s> vs time", labels[o])),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, cols, labels, err := st.LoadExpect(args[0])
	if err != nil {
		return err
	}
	if channel < 0 || channel >= len(cols) {
		return fmt.Errorf("observable %d out of range [0,%d)", channel, len(cols))
	}

	dt := meta.Duration / float64(meta.Steps)
	sp := analysis.NewSpectrum(cols[channel], dt)

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("observable: %s\n\n", labels[channel])

	plotData := sp.Power[:len(sp.Power)/2]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := sp.Dominant()
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}
