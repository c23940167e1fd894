package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/reachsim/internal/arena"
	"github.com/san-kum/reachsim/internal/config"
	"github.com/san-kum/reachsim/internal/experiment"
	"github.com/san-kum/reachsim/internal/logging"
	"github.com/san-kum/reachsim/internal/metrics"
	"github.com/san-kum/reachsim/internal/optim"
	"github.com/san-kum/reachsim/internal/sim"
	"github.com/san-kum/reachsim/internal/storage"
	"github.com/san-kum/reachsim/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logger   *log.Logger

	// Config sources
	preset     string
	configFile string
	saveConfig string

	// Environment
	dt            float64
	timeLimit     float64
	spawnRange    float64
	minSeparation float64
	maxSpeed      float64
	maxAngular    float64
	stepCost      float64
	divergence    float64
	actionSpace   string
	motionModel   string

	// Experiment
	policy   string
	collider string
	episodes int
	record   int
	seed     uint64
	kp       float64
	ki       float64
	kd       float64

	jsonOut    string
	numRuns    int
	stepsCSV   bool
	plotHeight int

	// Tuning grid
	kpRange   []float64
	kdRange   []float64
	gridSize  int
	objective string
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "reachsim:", err)
	}

	rootCmd := &cobra.Command{
		Use:   "reachsim",
		Short: "reach-the-target arena for policy experiments",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cmd.Flags().Changed("log-level") {
				logger, err = logging.New(os.Stderr, logLevel)
			} else {
				logger, err = logging.FromEnv(os.Stderr, logLevel)
			}
			return err
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DataDir(), "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run episodes with a scripted policy and store the results",
		RunE:  runEpisodes,
	}
	addEnvFlags(runCmd)
	addExperimentFlags(runCmd)
	runCmd.Flags().StringVar(&jsonOut, "json", "", "also export the full result as JSON (- for stdout)")
	runCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the resolved configuration to a yaml file")

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "drive the agent from the keyboard",
		RunE:  runPlay,
	}
	addEnvFlags(playCmd)
	playCmd.Flags().StringVar(&collider, "collider", config.DefaultCollider, "collider (none, proximity, box2d)")
	playCmd.Flags().Uint64Var(&seed, "seed", 0, "spawn seed (0 for random)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot returns and the recorded trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "print the episode log as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().BoolVar(&stepsCSV, "steps", false, "print the per-step log instead")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "print a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportRun(os.Stdout, args[0])
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure step throughput per preset and policy",
		RunE:  benchPresets,
	}
	benchCmd.Flags().IntVar(&episodes, "episodes", 20, "episodes per combination")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run independently seeded copies of an experiment in parallel",
		RunE:  runEnsemble,
	}
	addEnvFlags(ensembleCmd)
	addExperimentFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 4, "number of parallel runs")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search the seek policy's heading gains",
		RunE:  tuneGains,
	}
	addEnvFlags(tuneCmd)
	addExperimentFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&kpRange, "kp-range", []float64{0.5, 4}, "kp search interval")
	tuneCmd.Flags().Float64SliceVar(&kdRange, "kd-range", []float64{0, 0.5}, "kd search interval")
	tuneCmd.Flags().IntVar(&gridSize, "grid", 4, "points per gain")
	tuneCmd.Flags().StringVar(&objective, "objective", "mean_return", "metric to maximize")

	rootCmd.AddCommand(runCmd, playCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, presetsCmd, benchCmd, ensembleCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addEnvFlags(cmd *cobra.Command) {
	d := arena.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&preset, "preset", "", "start from a preset (see presets)")
	f.StringVar(&configFile, "config", "", "config file path (yaml), overrides the preset")
	f.Float64Var(&dt, "dt", d.Dt, "timestep in seconds")
	f.Float64Var(&timeLimit, "time", d.TimeLimit, "episode time limit in seconds")
	f.Float64Var(&spawnRange, "spawn-range", d.SpawnRange, "spawn half-width")
	f.Float64Var(&minSeparation, "min-sep", d.MinSeparation, "minimum spawn separation")
	f.Float64Var(&maxSpeed, "max-speed", d.MaxSpeed, "maximum speed")
	f.Float64Var(&maxAngular, "max-angular", d.MaxAngularSpeed, "maximum turn rate in deg/s")
	f.Float64Var(&stepCost, "step-cost", d.StepCost, "per-step penalty")
	f.Float64Var(&divergence, "divergence", d.DivergenceFactor, "failure once distance exceeds this multiple of the start")
	f.StringVar(&actionSpace, "action-space", d.ActionSpace.String(), "continuous or discrete")
	f.StringVar(&motionModel, "motion", d.MotionModel.String(), "holonomic or heading")
}

func addExperimentFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&policy, "policy", config.DefaultPolicy, "policy (zero, seek, flee, random)")
	f.StringVar(&collider, "collider", config.DefaultCollider, "collider (none, proximity, box2d)")
	f.IntVar(&episodes, "episodes", config.DefaultEpisodes, "episodes to run")
	f.IntVar(&record, "record", 1, "leading episodes whose steps are kept")
	f.Uint64Var(&seed, "seed", 0, "spawn seed (0 for random)")
	f.Float64Var(&kp, "kp", config.DefaultKp, "seek heading pid kp")
	f.Float64Var(&ki, "ki", config.DefaultKi, "seek heading pid ki")
	f.Float64Var(&kd, "kd", config.DefaultKd, "seek heading pid kd")
}

// resolveConfig applies preset, then config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
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

	changed := cmd.Flags().Changed
	if changed("dt") {
		cfg.Env.Dt = dt
	}
	if changed("time") {
		cfg.Env.TimeLimit = timeLimit
	}
	if changed("spawn-range") {
		cfg.Env.SpawnRange = spawnRange
	}
	if changed("min-sep") {
		cfg.Env.MinSeparation = minSeparation
	}
	if changed("max-speed") {
		cfg.Env.MaxSpeed = maxSpeed
	}
	if changed("max-angular") {
		cfg.Env.MaxAngularSpeed = maxAngular
	}
	if changed("step-cost") {
		cfg.Env.StepCost = stepCost
	}
	if changed("divergence") {
		cfg.Env.DivergenceFactor = divergence
	}
	if changed("action-space") {
		cfg.Env.ActionSpace = actionSpace
	}
	if changed("motion") {
		cfg.Env.MotionModel = motionModel
	}
	if changed("policy") {
		cfg.Policy = policy
	}
	if changed("collider") {
		cfg.Collider = collider
	}
	if changed("episodes") {
		cfg.Episodes = episodes
	}
	if changed("record") {
		cfg.Record = record
	}
	if changed("kp") {
		cfg.PolicyParams.Kp = kp
	}
	if changed("ki") {
		cfg.PolicyParams.Ki = ki
	}
	if changed("kd") {
		cfg.PolicyParams.Kd = kd
	}
	if changed("seed") {
		cfg.Seed = seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	return cfg, nil
}

func presetName() string {
	if preset != "" {
		return preset
	}
	if configFile != "" {
		return strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}
	return "custom"
}

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func setupExperiment(cmd *cobra.Command) (*config.Config, *experiment.Experiment, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	expCfg, err := experiment.FromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	exp := experiment.New(expCfg, experiment.NewRegistry(), logger)
	if err := exp.Setup(); err != nil {
		return nil, nil, err
	}
	return cfg, exp, nil
}

func metadataFor(cfg *config.Config) storage.RunMetadata {
	return storage.RunMetadata{
		Preset:      presetName(),
		Seed:        cfg.Seed,
		Policy:      cfg.Policy,
		Collider:    cfg.Collider,
		ActionSpace: cfg.Env.ActionSpace,
		MotionModel: cfg.Env.MotionModel,
		Dt:          cfg.Env.Dt,
		TimeLimit:   cfg.Env.TimeLimit,
		StepCost:    cfg.Env.StepCost,
	}
}

func runEpisodes(cmd *cobra.Command, args []string) error {
	cfg, exp, err := setupExperiment(cmd)
	if err != nil {
		return err
	}
	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return err
		}
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	meta := metadataFor(cfg)
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}
	meta.ID = runID

	if jsonOut != "" {
		if err := storage.ExportJSONFile(jsonOut, meta, result); err != nil {
			return err
		}
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("episodes: %d  steps: %d  wall: %v\n", len(result.Episodes), result.StepsTaken, elapsed.Round(time.Millisecond))
	return printMetrics(os.Stdout, result)
}

func printMetrics(out io.Writer, result *sim.Result) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, m := range metrics.Default() {
		if v, ok := result.Metrics[m.Name()]; ok {
			fmt.Fprintf(w, "%s\t%.4f\n", m.Name(), v)
		}
	}
	return w.Flush()
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	env, err := cfg.Arena()
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	c, err := registry.GetCollider(cfg.Collider, env)
	if err != nil {
		return err
	}

	anim := &sim.AnimationLog{}
	opts := []sim.Option{sim.WithAnimator(anim), sim.WithLogger(logger)}
	if c != nil {
		opts = append(opts, sim.WithCollider(c))
	}
	e, err := sim.NewEnv(env, opts...)
	if err != nil {
		return err
	}
	return viz.Run(e, anim)
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
	fmt.Fprintln(w, "ID\tTIME\tPOLICY\tMOTION\tACTIONS\tEPISODES\tSUCCESS\tMEAN RETURN")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%.4f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Policy,
			run.MotionModel,
			run.ActionSpace,
			run.Episodes,
			run.Outcomes[arena.Success.String()],
			run.Metrics["mean_return"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	episodes, err := st.LoadEpisodes(runID)
	if err != nil {
		return err
	}
	if len(episodes) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("policy: %s  motion: %s  actions: %s\n\n", meta.Policy, meta.MotionModel, meta.ActionSpace)

	returns := make([]float64, len(episodes))
	for i, ep := range episodes {
		returns[i] = ep.Return
	}
	if len(returns) > 1 {
		fmt.Println(asciigraph.Plot(returns, asciigraph.Height(plotHeight), asciigraph.Caption("return per episode")))
		fmt.Println()
	}

	steps, err := st.LoadSteps(runID)
	if err != nil {
		return err
	}
	first := steps[:0:0]
	for _, s := range steps {
		if s.Episode == steps[0].Episode {
			first = append(first, s)
		}
	}
	if len(first) < 2 {
		return nil
	}

	distance := make([]float64, len(first))
	rewards := make([]float64, 0, len(first)-1)
	for i, s := range first {
		distance[i] = s.Distance
		if i > 0 {
			rewards = append(rewards, s.Reward)
		}
	}
	fmt.Println(asciigraph.Plot(distance, asciigraph.Height(plotHeight), asciigraph.Width(70),
		asciigraph.Caption(fmt.Sprintf("distance, episode %d (%s)", first[0].Episode, episodes[0].Outcome))))
	fmt.Println()
	fmt.Println(asciigraph.Plot(rewards, asciigraph.Height(plotHeight/2+1), asciigraph.Width(70), asciigraph.Caption("step reward")))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("id:          %s\n", meta.ID)
	fmt.Printf("preset:      %s\n", meta.Preset)
	fmt.Printf("timestamp:   %s\n", meta.Timestamp.Format(time.RFC3339))
	fmt.Printf("seed:        %d\n", meta.Seed)
	fmt.Printf("policy:      %s\n", meta.Policy)
	fmt.Printf("collider:    %s\n", meta.Collider)
	fmt.Printf("motion:      %s\n", meta.MotionModel)
	fmt.Printf("actions:     %s\n", meta.ActionSpace)
	fmt.Printf("dt:          %g\n", meta.Dt)
	fmt.Printf("time limit:  %g\n", meta.TimeLimit)
	fmt.Printf("step cost:   %g\n", meta.StepCost)
	fmt.Printf("episodes:    %d\n", meta.Episodes)
	fmt.Printf("steps:       %d\n", meta.Steps)
	fmt.Println("outcomes:")
	for _, r := range []arena.Reason{arena.Success, arena.Failure, arena.Timeout} {
		fmt.Printf("  %-9s %d\n", r, meta.Outcomes[r.String()])
	}
	fmt.Println("metrics:")
	for _, m := range metrics.Default() {
		if v, ok := meta.Metrics[m.Name()]; ok {
			fmt.Printf("  %-14s %.6f\n", m.Name(), v)
		}
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	path := st.EpisodesPath(args[0])
	if stepsCSV {
		path = st.StepsPath(args[0])
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(os.Stdout, file)
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMOTION\tACTIONS\tMIN SEP\tSTEP COST\tPOLICY\tCOLLIDER")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%s\t%s\n",
			name, p.Env.MotionModel, p.Env.ActionSpace, p.Env.MinSeparation, p.Env.StepCost, p.Policy, p.Collider)
	}
	return w.Flush()
}

func benchPresets(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	policies := registry.ListPolicies()

	ctx, cancel := interruptible()
	defer cancel()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPOLICY\tSTEPS\tTIME\tSTEPS/SEC\tSUCCESS")

	for _, name := range config.ListPresets() {
		for _, pol := range policies {
			cfg := config.GetPreset(name)
			cfg.Policy = pol
			cfg.Episodes = episodes
			cfg.Record = 0
			cfg.Seed = 1

			expCfg, err := experiment.FromConfig(cfg)
			if err != nil {
				return err
			}
			exp := experiment.New(expCfg, registry, logger)
			if err := exp.Setup(); err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(ctx)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%.0f\t%.2f\n",
				name, pol, result.StepsTaken, elapsed.Round(time.Microsecond),
				float64(result.StepsTaken)/elapsed.Seconds(),
				result.Metrics["success_rate"])
		}
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, exp, err := setupExperiment(cmd)
	if err != nil {
		return err
	}
	if numRuns <= 0 {
		return fmt.Errorf("runs must be positive, got %d", numRuns)
	}

	ctx, cancel := interruptible()
	defer cancel()

	start := time.Now()
	ens := sim.NewEnsemble(exp.Factory(), numRuns, cfg.Seed)
	results, err := ens.Run(ctx, sim.RunConfig{Episodes: cfg.Episodes})
	if err != nil {
		return err
	}
	s := metrics.Summarize(results)

	fmt.Printf("runs: %d  episodes: %d  steps: %d  wall: %v\n\n", s.Runs, s.Episodes, s.Steps, time.Since(start).Round(time.Millisecond))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSUCCESS\tFAILURE\tTIMEOUT\tMEAN RETURN")
	for i, r := range results {
		out := r.Outcomes()
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.4f\n",
			cfg.Seed+uint64(i), out[arena.Success], out[arena.Failure], out[arena.Timeout], r.Metrics["mean_return"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nmean return %.4f ± %.4f  [%.4f, %.4f]  success rate %.2f\n",
		s.MeanReturn, s.StdReturn, s.MinReturn, s.MaxReturn, s.SuccessRate)
	return nil
}

func tuneGains(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(kpRange) != 2 || len(kdRange) != 2 {
		return fmt.Errorf("kp-range and kd-range take two values")
	}
	base, err := experiment.FromConfig(cfg)
	if err != nil {
		return err
	}
	base.Record = 0

	registry := experiment.NewRegistry()
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		c := base
		c.Params = map[string]float64{"Ki": cfg.PolicyParams.Ki}
		for k, v := range params {
			c.Params[k] = v
		}
		exp := experiment.New(c, registry, logger)
		return exp, exp.Setup()
	}

	g := optim.NewGridSearch([]string{"Kp", "Kd"}, [][]float64{
		optim.Linspace(kpRange[0], kpRange[1], gridSize),
		optim.Linspace(kdRange[0], kdRange[1], gridSize),
	})
	g.Maximize = true

	ctx, cancel := interruptible()
	defer cancel()

	best, all, err := g.Search(ctx, build, objective)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KP\tKD\t%s\n", strings.ToUpper(objective))
	for _, c := range all {
		fmt.Fprintf(w, "%.3f\t%.3f\t%.4f\n", c.Params["Kp"], c.Params["Kd"], c.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nbest: kp=%.3f kd=%.3f %s=%.4f\n", best.Params["Kp"], best.Params["Kd"], objective, best.Value)
	return nil
}
