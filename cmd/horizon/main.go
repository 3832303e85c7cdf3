package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/kmdra/horizon/internal/config"
	"github.com/kmdra/horizon/internal/controllers"
	"github.com/kmdra/horizon/internal/export"
	"github.com/kmdra/horizon/internal/integrators"
	"github.com/kmdra/horizon/internal/metrics"
	"github.com/kmdra/horizon/internal/models"
	"github.com/kmdra/horizon/internal/mpc"
	"github.com/kmdra/horizon/internal/ocp"
	"github.com/kmdra/horizon/internal/optim"
	"github.com/kmdra/horizon/internal/sim"
	"github.com/kmdra/horizon/internal/store"
	"github.com/kmdra/horizon/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir      string
	dt           float64
	duration     float64
	horizon      int
	mode         string
	controller   string
	backend      string
	solverPreset string
	plant        string
	kp           float64
	ki           float64
	kd           float64
	pidTarget    float64
	// Phase plot axes
	xAxis int
	yAxis int
	// Plot variable selection and SVG output
	plotVar int
	svgPath string
	outPath string
	// Config file
	configFile string
	// Preset name
	preset string
	// Tuning grid
	gridPoints int
	tuneMetric string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "horizon",
		Short: "receding-horizon control lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".horizon", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a closed-loop simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runClosedLoop,
	}
	addRunFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotVar, "var", 0, "state index for svg output")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "write selected series as svg")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase plane plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	phaseCmd.Flags().StringVar(&svgPath, "svg", "", "write phase plot as svg")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outPath, "out", "", "output path (default stdout)")

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "benchmark solve times across horizons",
		Args:  cobra.ExactArgs(1),
		RunE:  benchModel,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [model] [controller1] [controller2] ...",
		Short: "compare controllers on the same scenario",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareControllers,
	}
	compareCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "sampling interval")
	compareCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	compareCmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizon, "prediction horizon (stages)")

	tuneCmd := &cobra.Command{
		Use:   "tune [model]",
		Short: "grid-search pid gains",
		Args:  cobra.ExactArgs(1),
		RunE:  tunePID,
	}
	tuneCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "sampling interval")
	tuneCmd.Flags().Float64Var(&duration, "time", 3.0, "duration per candidate")
	tuneCmd.Flags().IntVar(&gridPoints, "points", 5, "grid points per gain")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "tracking_error", "metric to minimize")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list preset configurations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list available models",
		RunE:  listModels,
	}

	backendsCmd := &cobra.Command{
		Use:   "backends",
		Short: "list solver backends and option presets",
		RunE:  listBackends,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a starter config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, phaseCmd, exportCmd, benchCmd, compareCmd, tuneCmd, presetsCmd, modelsCmd, backendsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "sampling interval")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizon, "prediction horizon (stages)")
	cmd.Flags().StringVar(&mode, "mode", "rk4", "prediction dynamics: euler, heun, rk4, discrete")
	cmd.Flags().StringVar(&controller, "controller", "mpc", "controller: mpc, pid, lqr, none")
	cmd.Flags().StringVar(&backend, "backend", "slsqp", "solver backend")
	cmd.Flags().StringVar(&solverPreset, "solver-preset", "default", "solver options preset")
	cmd.Flags().StringVar(&plant, "plant", "", "plant stepper override (e.g. rk45)")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "pid kp")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "pid ki")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "pid kd")
	cmd.Flags().Float64Var(&pidTarget, "target", 0.0, "pid target")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// loadRunConfig resolves one run's configuration: defaults, then the
// named preset, then the config file, then explicitly set CLI flags.
func loadRunConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
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

	cfg.Model = model

	f := cmd.Flags()
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("time") {
		cfg.Duration = duration
	}
	if f.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if f.Changed("mode") {
		cfg.Mode = mode
	}
	if f.Changed("controller") {
		cfg.Controller = controller
	}
	if f.Changed("backend") {
		cfg.Solver.Backend = backend
	}
	if f.Changed("solver-preset") {
		cfg.Solver.Preset = solverPreset
	}
	if f.Changed("plant") {
		cfg.Plant = plant
	}
	if f.Changed("kp") {
		cfg.PID.Kp = kp
	}
	if f.Changed("ki") {
		cfg.PID.Ki = ki
	}
	if f.Changed("kd") {
		cfg.PID.Kd = kd
	}
	if f.Changed("target") {
		cfg.PID.Target = pidTarget
	}

	return cfg, nil
}

func buildScenario(cfg *config.Config) (*models.Scenario, ocp.State, ocp.State, error) {
	dynMode, err := ocp.ParseMode(cfg.Mode)
	if err != nil {
		return nil, nil, nil, err
	}

	sc, err := models.Build(cfg.Model, dynMode, cfg.Horizon, cfg.Dt)
	if err != nil {
		return nil, nil, nil, err
	}

	x0 := sc.Init
	if len(cfg.InitState) > 0 {
		if len(cfg.InitState) != sc.Problem.StateDim() {
			return nil, nil, nil, fmt.Errorf("init_state has %d components, model %s needs %d",
				len(cfg.InitState), cfg.Model, sc.Problem.StateDim())
		}
		x0 = cfg.InitState
	}

	target := sc.Target
	if len(cfg.Target) > 0 {
		if len(cfg.Target) != sc.Problem.StateDim() {
			return nil, nil, nil, fmt.Errorf("target has %d components, model %s needs %d",
				len(cfg.Target), cfg.Model, sc.Problem.StateDim())
		}
		target = cfg.Target
	}

	return sc, x0, target, nil
}

func buildController(cfg *config.Config, sc *models.Scenario) (sim.Controller, error) {
	switch cfg.Controller {
	case "mpc":
		opts, err := solverOptions(cfg.Solver)
		if err != nil {
			return nil, err
		}
		return mpc.New(sc.Problem, cfg.Solver.Backend, opts)
	case "pid":
		return controllers.NewPID(cfg.PID.Kp, cfg.PID.Ki, cfg.PID.Kd, cfg.PID.Target), nil
	case "lqr":
		if cfg.Model != "pendulum" {
			return nil, fmt.Errorf("no stock lqr gains for model: %s", cfg.Model)
		}
		return controllers.NewPendulumLQR(), nil
	case "none":
		return controllers.NewNone(sc.Problem.ControlDim()), nil
	default:
		return nil, fmt.Errorf("unknown controller: %s", cfg.Controller)
	}
}

func solverOptions(sc config.SolverConfig) (mpc.Options, error) {
	name := sc.Preset
	if name == "" {
		name = "default"
	}
	opts, err := mpc.PresetOptions(name)
	if err != nil {
		return nil, err
	}
	for k, v := range sc.Options {
		opts[k] = v
	}
	return opts, nil
}

// plantStepper picks the simulator-side integrator. It follows the
// prediction mode unless the config overrides it, so the plant can be
// stepped more accurately than the controller models it.
func plantStepper(cfg *config.Config) (integrators.Stepper, error) {
	name := cfg.Plant
	if name == "" {
		name = cfg.Mode
	}
	if name == "rk45" {
		return integrators.NewRK45(), nil
	}
	m, err := ocp.ParseMode(name)
	if err != nil {
		return nil, err
	}
	return integrators.ForMode(m)
}

func defaultMetrics(target ocp.State) []sim.Metric {
	return []sim.Metric{
		metrics.NewTrackingError(target),
		metrics.NewControlEffort(),
		metrics.NewStability(10.0),
	}
}

func runMeta(cfg *config.Config, target ocp.State) store.RunMetadata {
	meta := store.RunMetadata{
		Model:      cfg.Model,
		Controller: cfg.Controller,
		Mode:       cfg.Mode,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Target:     target,
	}
	if cfg.Controller == "mpc" {
		meta.Backend = cfg.Solver.Backend
		meta.Horizon = cfg.Horizon
	}
	return meta
}

func runClosedLoop(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd, args[0])
	if err != nil {
		return err
	}

	sc, x0, target, err := buildScenario(cfg)
	if err != nil {
		return err
	}

	ctrl, err := buildController(cfg, sc)
	if err != nil {
		return err
	}

	stepper, err := plantStepper(cfg)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	loop := sim.New(sc.Problem.Model(), stepper, ctrl)
	for _, m := range defaultMetrics(target) {
		loop.AddMetric(m)
	}

	fmt.Printf("running %s with %s controller...\n", cfg.Model, cfg.Controller)
	start := time.Now()

	result, err := loop.Run(context.Background(), x0, sim.Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		ValidateState: cfg.ValidateState,
	})
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(runMeta(cfg, target), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd, args[0])
	if err != nil {
		return err
	}

	sc, x0, target, err := buildScenario(cfg)
	if err != nil {
		return err
	}

	ctrl, err := buildController(cfg, sc)
	if err != nil {
		return err
	}

	stepper, err := plantStepper(cfg)
	if err != nil {
		return err
	}

	m := viz.NewLive(cfg.Model, sc.Problem.Model(), stepper, ctrl, x0, target, cfg.Dt, cfg.Duration)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tCTRL\tBACKEND\tHORIZON")

	for _, run := range runs {
		backendCol := run.Backend
		if backendCol == "" {
			backendCol = "-"
		}
		horizonCol := "-"
		if run.Horizon > 0 {
			horizonCol = strconv.Itoa(run.Horizon)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Controller,
			backendCol,
			horizonCol,
		)
	}

	return w.Flush()
}

var stateNames = map[string][]string{
	"pendulum":          {"theta (angle)", "omega (angular velocity)"},
	"cartpole":          {"cart position", "cart velocity", "pole angle", "pole angular velocity"},
	"double_integrator": {"position", "velocity"},
	"oscillator":        {"position", "velocity"},
	"drone":             {"x position", "y position", "tilt angle", "x velocity", "y velocity", "tilt rate"},
}

func stateCaption(model string, idx int) string {
	if names, ok := stateNames[model]; ok && idx < len(names) {
		return names[idx]
	}
	return fmt.Sprintf("x%d vs time", idx)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, controls, times, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(states))

	numVars := len(states[0])
	maxPlots := 6
	if numVars > maxPlots {
		numVars = maxPlots
	}

	for varIdx := 0; varIdx < numVars; varIdx++ {
		data := make([]float64, len(states))
		for i := range states {
			data[i] = states[i][varIdx]
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(stateCaption(meta.Model, varIdx)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if len(controls) > 0 && len(controls[0]) > 0 {
		numInputs := len(controls[0])
		if numInputs > 2 {
			numInputs = 2
		}
		for uIdx := 0; uIdx < numInputs; uIdx++ {
			data := make([]float64, len(controls))
			for i := range controls {
				if uIdx < len(controls[i]) {
					data[i] = controls[i][uIdx]
				}
			}

			graph := asciigraph.Plot(data,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("u%d (applied input)", uIdx)),
			)
			fmt.Println(graph)
			fmt.Println()
		}
	}

	if svgPath != "" {
		if plotVar >= len(states[0]) {
			return fmt.Errorf("state index %d out of range (have %d)", plotVar, len(states[0]))
		}
		pts := make([][2]float64, len(states))
		for i := range states {
			pts[i] = [2]float64{times[i], states[i][plotVar]}
		}
		svg := export.TrajectoryToSVG(pts, 800, 400, "#00ff00")
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, _, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	if len(states[0]) <= xAxis || len(states[0]) <= yAxis {
		return fmt.Errorf("state dimension too small for selected axes")
	}

	traj := make([][2]float64, len(states))
	for i := range states {
		traj[i] = [2]float64{states[i][xAxis], states[i][yAxis]}
	}

	var target [2]float64
	if xAxis < len(meta.Target) {
		target[0] = meta.Target[xAxis]
	}
	if yAxis < len(meta.Target) {
		target[1] = meta.Target[yAxis]
	}

	fmt.Printf("phase plot: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("x-axis: x%d, y-axis: x%d\n\n", xAxis, yAxis)

	canvas := viz.PhaseCanvas(traj, nil, target, 40, 16)
	fmt.Println(canvas.String())

	if svgPath != "" {
		svg := export.CanvasToSVG(canvas, 4)
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, controls, times, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	result := &sim.Result{
		States:   make([]ocp.State, len(states)),
		Controls: make([]ocp.Control, len(controls)),
		Times:    times,
		Metrics:  meta.Metrics,
	}
	for i, s := range states {
		result.States[i] = s
	}
	for i, c := range controls {
		result.Controls[i] = c
	}

	if outPath != "" {
		if err := store.ExportJSON(outPath, *meta, result); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outPath)
		return nil
	}
	return store.ExportJSONStdout(*meta, result)
}

func benchModel(cmd *cobra.Command, args []string) error {
	model := args[0]

	horizons := []int{10, 20, 40}
	dts := []float64{0.02, 0.05, 0.1}
	const benchWindow = 1.0

	fmt.Printf("benchmarking %s mpc\n\n", model)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HORIZON\tDT\tSOLVES\tTIME\tMS/SOLVE")

	for _, n := range horizons {
		for _, step := range dts {
			sc, err := models.Build(model, ocp.ContinuousRK4, n, step)
			if err != nil {
				return err
			}

			opts, err := mpc.PresetOptions("fast")
			if err != nil {
				return err
			}
			ctrl, err := mpc.New(sc.Problem, "slsqp", opts)
			if err != nil {
				return err
			}

			stepper, err := integrators.ForMode(sc.Problem.Mode())
			if err != nil {
				return err
			}

			loop := sim.New(sc.Problem.Model(), stepper, ctrl)

			start := time.Now()
			result, err := loop.Run(context.Background(), sc.Init, sim.Config{Dt: step, Duration: benchWindow})
			elapsed := time.Since(start)

			if err != nil {
				fmt.Fprintf(w, "%d\t%.3f\t-\terror: %v\t-\n", n, step, err)
				continue
			}

			solves := result.StepsTaken
			msPerSolve := float64(elapsed.Microseconds()) / 1000.0 / float64(solves)
			fmt.Fprintf(w, "%d\t%.3f\t%d\t%v\t%.2f\n",
				n, step, solves, elapsed.Round(time.Millisecond), msPerSolve)
		}
	}

	return w.Flush()
}

func compareControllers(cmd *cobra.Command, args []string) error {
	model := args[0]
	names := args[1:]

	cfg, err := loadRunConfig(cmd, model)
	if err != nil {
		return err
	}

	_, x0, target, err := buildScenario(cfg)
	if err != nil {
		return err
	}

	// Each run needs its own problem and controller: MPC instances
	// carry warm-start state between solves.
	batch := sim.NewBatch(len(names), func(run int) (*sim.Loop, error) {
		runCfg := cfg.Clone()
		runCfg.Controller = names[run]

		runSc, _, _, err := buildScenario(runCfg)
		if err != nil {
			return nil, err
		}
		ctrl, err := buildController(runCfg, runSc)
		if err != nil {
			return nil, err
		}
		stepper, err := plantStepper(runCfg)
		if err != nil {
			return nil, err
		}

		loop := sim.New(runSc.Problem.Model(), stepper, ctrl)
		for _, m := range defaultMetrics(target) {
			loop.AddMetric(m)
		}
		return loop, nil
	})

	fmt.Printf("comparing controllers on %s (dt=%.3f, time=%.1fs)\n\n", model, cfg.Dt, cfg.Duration)

	results, batchErr := batch.Run(context.Background(), x0, sim.Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		ValidateState: true,
	})

	wantSteps := int(math.Round(cfg.Duration / cfg.Dt))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CTRL\tTRACKING\tEFFORT\tSTEPS\tSTATUS")
	for i, name := range names {
		r := results[i]
		if r == nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\tfailed\n", name)
			continue
		}
		status := "ok"
		if r.StepsTaken < wantSteps {
			status = fmt.Sprintf("aborted @%d", r.StepsTaken)
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%d\t%s\n",
			name, r.Metrics["tracking_error"], r.Metrics["control_effort"], r.StepsTaken, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if batchErr != nil {
		fmt.Printf("\nsome runs failed: %v\n", batchErr)
	}
	return nil
}

func tunePID(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd, args[0])
	if err != nil {
		return err
	}
	cfg.Controller = "pid"

	sc, x0, target, err := buildScenario(cfg)
	if err != nil {
		return err
	}

	stepper, err := plantStepper(cfg)
	if err != nil {
		return err
	}

	setpoint := 0.0
	if len(target) > 0 {
		setpoint = target[0]
	}

	gs := optim.NewGridSearch(
		[]string{"kp", "ki", "kd"},
		[][]float64{
			optim.Linspace(1, 20, gridPoints),
			optim.Linspace(0, 1, 3),
			optim.Linspace(0, 8, gridPoints),
		},
	)

	total := gridPoints * 3 * gridPoints
	fmt.Printf("tuning pid on %s: %d candidates, minimizing %s\n", cfg.Model, total, tuneMetric)

	run := func(ctx context.Context, params map[string]float64) (*sim.Result, error) {
		pid := controllers.NewPID(params["kp"], params["ki"], params["kd"], setpoint)
		loop := sim.New(sc.Problem.Model(), stepper, pid)
		for _, m := range defaultMetrics(target) {
			loop.AddMetric(m)
		}
		return loop.Run(ctx, x0, sim.Config{Dt: cfg.Dt, Duration: cfg.Duration, ValidateState: true})
	}

	start := time.Now()
	best, bestVal, err := gs.Search(context.Background(), run, tuneMetric)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if best == nil {
		fmt.Println("no candidate survived")
		return nil
	}

	fmt.Printf("searched in %v\n\n", elapsed.Round(time.Millisecond))
	fmt.Printf("best %s: %.6f\n", tuneMetric, bestVal)
	fmt.Printf("  kp: %.3f\n", best["kp"])
	fmt.Printf("  ki: %.3f\n", best["ki"])
	fmt.Printf("  kd: %.3f\n", best["kd"])
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		for _, model := range config.Models() {
			fmt.Printf("%s:\n", model)
			for _, p := range config.ListPresets(model) {
				fmt.Printf("  %s\n", p)
			}
		}
		return nil
	}

	presets := config.ListPresets(args[0])
	if len(presets) == 0 {
		fmt.Printf("no presets for model: %s\n", args[0])
		return nil
	}
	fmt.Printf("presets for %s:\n", args[0])
	for _, p := range presets {
		fmt.Printf("  %s\n", p)
	}
	return nil
}

func listModels(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATES\tINPUTS")

	for _, name := range models.Names() {
		sc, err := models.Build(name, ocp.ContinuousRK4, config.DefaultHorizon, config.DefaultDt)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%d\n", name, sc.Problem.StateDim(), sc.Problem.ControlDim())
	}

	return w.Flush()
}

func listBackends(cmd *cobra.Command, args []string) error {
	fmt.Println("backends:")
	for _, b := range mpc.Backends() {
		fmt.Printf("  %s\n", b)
	}

	fmt.Println("\noption presets:")
	for _, p := range mpc.OptionPresets() {
		opts, err := mpc.PresetOptions(p)
		if err != nil {
			return err
		}
		fmt.Printf("  %s: %v\n", p, opts)
	}
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "horizon.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
