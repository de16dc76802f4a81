package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/chaindyn/internal/automation"
	"github.com/san-kum/chaindyn/internal/config"
	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/export"
	"github.com/san-kum/chaindyn/internal/hybrid"
	"github.com/san-kum/chaindyn/internal/integrators"
	"github.com/san-kum/chaindyn/internal/kinematics"
	"github.com/san-kum/chaindyn/internal/metrics"
	"github.com/san-kum/chaindyn/internal/spatial"
	"github.com/san-kum/chaindyn/internal/storage"
	"github.com/san-kum/chaindyn/internal/sweep"
	"github.com/san-kum/chaindyn/internal/tui"
	"github.com/san-kum/chaindyn/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	solverName string
	// solve
	detail bool
	// sweep
	joint    int
	from, to float64
	steps    int
	// rollout
	dt         float64
	duration   float64
	integrator string
	// plot
	series string
	phase  bool
	// export
	outFile string
	svgFile string
	// bench
	iterations int
	// montecarlo
	trials  int
	perturb float64
	seed    int64
	// shared
	save bool

	logger = zap.NewNop()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chaindyn",
		Short: "hybrid dynamics of constrained serial chains",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(verbose)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".chaindyn", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	solveCmd := &cobra.Command{
		Use:   "solve [model]",
		Short: "solve joint accelerations and constraint torques once",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSolve,
	}
	addChainFlags(solveCmd)
	solveCmd.Flags().BoolVar(&detail, "detail", false, "show link table and acceleration contributions")
	solveCmd.Flags().StringVar(&svgFile, "svg", "", "write the posture to an SVG file")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "solve while moving one joint across a range",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addChainFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&joint, "joint", 0, "joint index to sweep")
	sweepCmd.Flags().Float64Var(&from, "from", -3.14159, "start value")
	sweepCmd.Flags().Float64Var(&to, "to", 3.14159, "end value")
	sweepCmd.Flags().IntVar(&steps, "steps", 200, "number of intervals")
	sweepCmd.Flags().BoolVar(&save, "save", true, "store the run")

	rolloutCmd := &cobra.Command{
		Use:   "rollout [model]",
		Short: "integrate the constrained motion in time",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRollout,
	}
	addChainFlags(rolloutCmd)
	rolloutCmd.Flags().Float64Var(&dt, "dt", 0.001, "timestep")
	rolloutCmd.Flags().Float64Var(&duration, "time", 2.0, "duration")
	rolloutCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator ("+strings.Join(integrators.Names(), ", ")+")")
	rolloutCmd.Flags().IntVar(&joint, "joint", 0, "joint whose oscillation frequency is reported")
	rolloutCmd.Flags().BoolVar(&save, "save", true, "store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&series, "series", "qdd", "column group to plot (q, qd, qdd, tau, nu)")
	plotCmd.Flags().BoolVar(&phase, "phase", false, "phase portrait of joint --joint (q against qd)")
	plotCmd.Flags().IntVar(&joint, "joint", 0, "joint for --phase")
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write the plot to an SVG file")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available models and presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	exploreCmd := &cobra.Command{
		Use:   "explore [model]",
		Short: "interactive posture explorer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(args)
			if err != nil {
				return err
			}
			return tui.Run(cfg, logger)
		},
	}
	addChainFlags(exploreCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "compare solver throughput",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchModel,
	}
	addChainFlags(benchCmd)
	benchCmd.Flags().IntVar(&iterations, "n", 20000, "solves per solver")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [model]",
		Short: "solve randomly perturbed copies of the configured state",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addChainFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 500, "number of perturbed states")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 0.1, "maximum perturbation of each q and qdot")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")
	monteCarloCmd.Flags().BoolVar(&save, "save", true, "store the run")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario]",
		Short: "run every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&save, "save", true, "store each run")

	rootCmd.AddCommand(solveCmd, sweepCmd, rolloutCmd, listCmd, plotCmd, exportCmd, presetsCmd, exploreCmd, benchCmd, monteCarloCmd, batchCmd)

	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func addChainFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "chain description (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset of the model")
	cmd.Flags().StringVar(&solverName, "solver", "", "solver override ("+config.SolverVereshchagin+", "+config.SolverDense+")")
}

// loadConfig resolves the chain from --config, or from a model argument and
// --preset (the model's first preset when unset).
func loadConfig(args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	case len(args) == 1:
		model := args[0]
		names := config.ListPresets(model)
		if len(names) == 0 {
			return nil, errors.Errorf("unknown model %q (available: %v)", model, config.ListModels())
		}
		p := preset
		if p == "" {
			p = names[0]
		}
		cfg = config.GetPreset(model, p)
		if cfg == nil {
			return nil, errors.Errorf("unknown preset %q (available: %v)", p, names)
		}
	default:
		cfg = config.DefaultConfig()
	}
	if solverName != "" {
		cfg.Solver = solverName
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func presetName() string {
	if configFile != "" {
		return configFile
	}
	return preset
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	c, err := cfg.Build()
	if err != nil {
		return err
	}
	solver, err := cfg.NewSolver(c, logger)
	if err != nil {
		return err
	}

	q, qdot, tau, fext := cfg.Inputs()
	qdd := dynamo.NewJntArray(c.NrOfJoints())
	start := time.Now()
	err = solver.CartToJnt(q, qdot, qdd, cfg.Alfa(), cfg.Beta(), fext, tau)
	elapsed := time.Since(start)
	code := dynamo.StatusCode(err)

	fmt.Printf("%s  %s  %s\n", viz.Title.Render(cfg.Name), viz.Subtle.Render(cfg.Solver),
		viz.Status(int(code), fmt.Sprintf("status %d (%s)", int(code), code)))
	if err != nil {
		return err
	}
	fmt.Printf("%s %v\n\n", viz.MetricLabel.Render("solved in"), elapsed)
	fmt.Println(viz.JointTable(c.JointNames(), q, qdot, qdd, tau))

	if svgFile != "" {
		frames := make([]spatial.Frame, c.NrOfSegments())
		if err := kinematics.NewSolver(c).LinkFrames(q, frames); err != nil {
			return err
		}
		if err := writeSVG(svgFile, export.PostureSVG(frames, viz.DefaultView(), 600, 600)); err != nil {
			return err
		}
	}

	if nc := cfg.NrOfConstraints(); nc > 0 {
		var nu []float64
		if v, ok := solver.(*hybrid.Vereshchagin); ok {
			nu = v.ConstraintMagnitudes()
		}
		fmt.Println(viz.ConstraintTable(cfg.Beta(), nu))
	}

	v, ok := solver.(*hybrid.Vereshchagin)
	if !detail || !ok {
		return nil
	}
	poses := make([]spatial.Frame, c.NrOfSegments())
	acc := make([]spatial.Twist, c.NrOfSegments()+1)
	if err := v.LinkCartesianPoses(poses); err != nil {
		return err
	}
	if err := v.TransformedLinkAccelerations(acc); err != nil {
		return err
	}
	names := make([]string, c.NrOfSegments())
	for i, s := range c.Segments() {
		names[i] = s.Name
	}
	fmt.Println(viz.LinkTable(names, poses, acc))
	fmt.Println(viz.ContributionTable(c.JointNames(), v.Contributions()))
	if locked := v.DegenerateJoints(); len(locked) > 0 {
		fmt.Println(viz.StatusWarn.Render(fmt.Sprintf("locked joints: %v", locked)))
	}
	return nil
}

func printResult(runID string, res *dynamo.Result, elapsed time.Duration) {
	fmt.Printf("completed in %v\n", elapsed)
	if runID != "" {
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Printf("samples: %d", len(res.Samples))
	if res.Failed > 0 {
		fmt.Printf(" (%s)", viz.StatusWarn.Render(fmt.Sprintf("%d failed", res.Failed)))
	}
	fmt.Println()
	fmt.Println(viz.MetricsTable(res.Metrics))
}

func store(kind string, cfg *config.Config, res *dynamo.Result, params map[string]string) (string, error) {
	return storeAs(presetName(), kind, cfg, res, params)
}

func storeAs(label, kind string, cfg *config.Config, res *dynamo.Result, params map[string]string) (string, error) {
	if !save {
		return "", nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	return st.Save(storage.RunMetadata{
		Model:       cfg.Name,
		Preset:      label,
		Kind:        kind,
		Solver:      cfg.Solver,
		Joints:      cfg.NrOfJoints(),
		Constraints: cfg.NrOfConstraints(),
		Params:      params,
	}, res)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	runner, err := sweep.New(cfg, logger)
	if err != nil {
		return err
	}
	runner.DefaultMetrics()

	fmt.Printf("sweeping joint %d of %s from %.3f to %.3f...\n", joint, cfg.Name, from, to)
	start := time.Now()
	res, err := runner.Joint(context.Background(), sweep.JointSweep{Joint: joint, From: from, To: to, Steps: steps})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := store("sweep", cfg, res, map[string]string{
		"joint": fmt.Sprint(joint), "from": fmt.Sprint(from), "to": fmt.Sprint(to), "steps": fmt.Sprint(steps),
	})
	if err != nil {
		return err
	}
	printResult(runID, res, elapsed)
	fmt.Println(viz.PlotSeries(columns(res.Samples, "qdd"), "qdd vs q"+fmt.Sprint(joint), 80, 12))
	return nil
}

func runRollout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	runner, err := sweep.New(cfg, logger)
	if err != nil {
		return err
	}
	runner.DefaultMetrics()
	if joint >= 0 && joint < cfg.NrOfJoints() {
		runner.AddMetric(metrics.NewDominantFrequency(joint))
	}

	fmt.Printf("integrating %s for %.2fs...\n", cfg.Name, duration)
	start := time.Now()
	res, err := runner.Rollout(context.Background(), sweep.Rollout{Dt: dt, Duration: duration, Integrator: integrator})
	if err != nil && res == nil {
		return err
	}
	if err != nil {
		logger.Warn("rollout stopped early", zap.Error(err), zap.Int("samples", len(res.Samples)))
	}
	elapsed := time.Since(start)

	runID, serr := store("rollout", cfg, res, map[string]string{
		"dt": fmt.Sprint(dt), "duration": fmt.Sprint(duration), "integrator": integrator,
	})
	if serr != nil {
		return serr
	}
	printResult(runID, res, elapsed)
	fmt.Println(viz.PlotSeries(columns(res.Samples, "q"), "q vs time", 80, 12))
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	runner, err := sweep.New(cfg, logger)
	if err != nil {
		return err
	}
	runner.DefaultMetrics()

	fmt.Printf("solving %d perturbed states of %s...\n", trials, cfg.Name)
	start := time.Now()
	mc := automation.MonteCarlo{Trials: trials, Perturbation: perturb, Seed: seed}
	res, err := automation.RunMonteCarlo(context.Background(), runner, cfg, mc)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := store(automation.KindMonteCarlo, cfg, res, map[string]string{
		"trials": fmt.Sprint(trials), "perturbation": fmt.Sprint(perturb), "seed": fmt.Sprint(seed),
	})
	if err != nil {
		return err
	}
	printResult(runID, res, elapsed)
	bounded, unbounded := automation.Stats(res, 1e3)
	fmt.Printf("bounded: %d  unbounded or failed: %d\n", bounded, unbounded)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	start := time.Now()
	results, err := automation.RunScenario(context.Background(), sc, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tKIND\tMODEL\tSAMPLES\tFAILED\tRESIDUAL\tRUN")
	for _, r := range results {
		runID, serr := storeAs(r.Step.Label(), r.Step.Kind, r.Config, r.Result, map[string]string{"scenario": sc.Name})
		if serr != nil {
			return serr
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.2e\t%s\n",
			r.Step.Label(), r.Step.Kind, r.Config.Name, len(r.Result.Samples), r.Result.Failed,
			r.Result.Metrics["constraint_residual"], runID)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	fmt.Printf("completed in %v\n", time.Since(start))
	return err
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
	fmt.Fprintln(w, "ID\tMODEL\tKIND\tTIME\tSOLVER\tNJ\tNC\tSAMPLES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Model,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Solver,
			run.Joints,
			run.Constraints,
			run.Samples,
		)
	}
	return w.Flush()
}

// columns extracts one column group from samples, one series per index.
func columns(samples []dynamo.Sample, group string) [][]float64 {
	if len(samples) == 0 {
		return nil
	}
	pick := func(s dynamo.Sample) []float64 {
		switch group {
		case "q":
			return s.Q
		case "qd":
			return s.QDot
		case "tau":
			return s.Torques
		case "nu":
			return s.Nu
		default:
			return s.QDDot
		}
	}
	n := len(pick(samples[0]))
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, len(samples))
		for k, s := range samples {
			if v := pick(s); i < len(v) {
				out[i][k] = v[i]
			}
		}
	}
	return out
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return errors.New("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s (%s)\n", meta.Model, meta.Kind)
	fmt.Printf("samples: %d\n\n", len(samples))

	if phase {
		if joint < 0 || joint >= meta.Joints {
			return errors.Errorf("joint %d out of range", joint)
		}
		q, qd := columns(samples, "q"), columns(samples, "qd")
		fmt.Printf("phase portrait of joint %d (q right, qd up)\n", joint)
		fmt.Println(viz.Panel.Render(viz.Scatter(q[joint], qd[joint], 60, 16).String()))
		return nil
	}

	data := columns(samples, series)
	if len(data) == 0 {
		return errors.Errorf("run has no %s columns", series)
	}
	axis := "param"
	if meta.Kind == "rollout" {
		axis = "time"
	}
	fmt.Println(viz.PlotSeries(data, fmt.Sprintf("%s vs %s", series, axis), 80, 15))
	if svgFile != "" {
		params := make([]float64, len(samples))
		for i, s := range samples {
			params[i] = s.Param
		}
		if err := writeSVG(svgFile, export.SeriesSVG(params, data, 800, 400)); err != nil {
			return err
		}
	}
	fmt.Println()
	for i, d := range data {
		fmt.Printf("%s%d %s\n", series, i, viz.Sparkline(d, 60))
	}
	return nil
}

func writeSVG(path, svg string) error {
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return errors.Wrap(err, "writing svg")
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if outFile == "" {
		return storage.ExportJSON(os.Stdout, *meta, samples)
	}
	if err := storage.ExportJSONFile(outFile, *meta, samples); err != nil {
		return err
	}
	fmt.Printf("exported %d samples to %s\n", len(samples), outFile)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	models := config.ListModels()
	if len(args) == 1 {
		models = args
	}
	for _, model := range models {
		presets := config.ListPresets(model)
		if len(presets) == 0 {
			fmt.Printf("no presets for model: %s\n", model)
			continue
		}
		fmt.Printf("presets for %s:\n", model)
		for _, p := range presets {
			cfg := config.GetPreset(model, p)
			fmt.Printf("  %-10s %d joints, %d constraints\n", p, cfg.NrOfJoints(), cfg.NrOfConstraints())
		}
	}
	return nil
}

func benchModel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	c, err := cfg.Build()
	if err != nil {
		return err
	}
	q, qdot, tau, fext := cfg.Inputs()
	alfa, beta := cfg.Alfa(), cfg.Beta()

	fmt.Printf("benchmarking %s (%d joints, %d constraints)\n\n", cfg.Name, c.NrOfJoints(), cfg.NrOfConstraints())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOLVER\tSOLVES\tTIME\tPER SOLVE\tSOLVES/SEC\tMAX |QDD-REF|")

	var ref dynamo.JntArray
	solvers := []string{config.SolverVereshchagin, config.SolverDense}
	sort.Strings(solvers)
	for _, name := range solvers {
		bc := cfg.Clone()
		bc.Solver = name
		solver, err := bc.NewSolver(c, logger)
		if err != nil {
			return err
		}
		qdd := dynamo.NewJntArray(c.NrOfJoints())
		out := tau.Clone()

		start := time.Now()
		for i := 0; i < iterations; i++ {
			copy(out, tau)
			if err := solver.CartToJnt(q, qdot, qdd, alfa, beta, fext, out); err != nil {
				return errors.Wrap(err, name)
			}
		}
		elapsed := time.Since(start)

		diff := 0.0
		if ref == nil {
			ref = qdd.Clone()
		} else {
			diff = qdd.Sub(ref).Norm()
		}
		per := elapsed / time.Duration(max(iterations, 1))
		fmt.Fprintf(w, "%s\t%d\t%v\t%v\t%.0f\t%.2e\n",
			name, iterations, elapsed, per, float64(iterations)/elapsed.Seconds(), diff)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	tip, err := kinematics.NewSolver(c).TipFrame(q)
	if err != nil {
		return err
	}
	fmt.Printf("\ntip pose: %v\n", tip)
	return nil
}
