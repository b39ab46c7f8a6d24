package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/san-kum/beerslab/internal/analysis"
	"github.com/san-kum/beerslab/internal/automation"
	"github.com/san-kum/beerslab/internal/chem"
	"github.com/san-kum/beerslab/internal/concentration"
	"github.com/san-kum/beerslab/internal/config"
	"github.com/san-kum/beerslab/internal/export"
	"github.com/san-kum/beerslab/internal/feed"
	"github.com/san-kum/beerslab/internal/metrics"
	"github.com/san-kum/beerslab/internal/optim"
	"github.com/san-kum/beerslab/internal/sim"
	"github.com/san-kum/beerslab/internal/storage"
	"github.com/san-kum/beerslab/internal/tui"
)

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// sessionConfig builds the run configuration from, in increasing
// priority, the defaults, a preset, a config file and explicit flags.
func sessionConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("solute") {
		cfg.Solute = solute
	}
	if flags.Changed("form") {
		cfg.SoluteForm = soluteForm
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("volume") {
		cfg.InitState.Volume = volume
	}
	if flags.Changed("amount") {
		cfg.InitState.SoluteAmount = amount
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("target") {
		if cfg.Control == nil {
			cfg.Control = &config.ControlConfig{Kp: 1}
		}
		cfg.Control.Target = targetConc
	}
	if flags.Changed("kp") && cfg.Control != nil {
		cfg.Control.Kp = kp
	}
	if flags.Lookup("action") != nil {
		for _, s := range actions {
			a, err := parseAction(s)
			if err != nil {
				return nil, err
			}
			cfg.Actions = append(cfg.Actions, a)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseAction reads AT:TARGET or AT:TARGET=VALUE. A value that is not a
// number is taken as a solute key or form name.
func parseAction(s string) (config.Action, error) {
	at, rest, ok := strings.Cut(s, ":")
	if !ok {
		return config.Action{}, fmt.Errorf("action %q: expected AT:TARGET=VALUE", s)
	}
	t, err := strconv.ParseFloat(strings.TrimSpace(at), 64)
	if err != nil {
		return config.Action{}, fmt.Errorf("action %q: bad time: %w", s, err)
	}
	target, value, _ := strings.Cut(rest, "=")
	a := config.Action{At: t, Target: strings.TrimSpace(target)}
	if value = strings.TrimSpace(value); value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			a.Value = v
		} else {
			a.Name = value
		}
	}
	return a, nil
}

func newSimulator() *sim.Simulator {
	s := sim.New(chem.DefaultCatalog(), log)
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}
	return s
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := sessionConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	fmt.Printf("running %s session...\n", cfg.Solute)
	start := time.Now()
	s := newSimulator()
	m, err := s.NewModel(cfg)
	if err != nil {
		return err
	}
	result, err := s.RunModel(ctx, m, cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if svgFile != "" {
		svg := export.CanvasSVG(tui.RenderScene(m, 60, 20), 4, m.Snapshot().Color)
		if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("scene written to %s\n", svgFile)
	}

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	final := result.Final()
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("final: %.4f mol/L in %.4f L, saturated: %v\n", final.Concentration, final.Volume, final.Saturated)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOLUTE\tFORM\tTIME\tDURATION\tDT\tSTEPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4fs\t%d\n",
			run.ID,
			run.Solute,
			run.SoluteForm,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Steps,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}
	if len(result.Samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("solute: %s (%s)\n", meta.Solute, meta.SoluteForm)
	fmt.Printf("samples: %d\n\n", len(result.Samples))

	series := []struct {
		caption string
		field   func(concentration.Snapshot) float64
	}{
		{"concentration (mol/L)", func(s concentration.Snapshot) float64 { return s.Concentration }},
		{"volume (L)", func(s concentration.Snapshot) float64 { return s.Volume }},
		{"solute amount (mol)", func(s concentration.Snapshot) float64 { return s.SoluteAmount }},
		{"precipitate (mol)", func(s concentration.Snapshot) float64 { return s.PrecipitateAmount }},
	}
	if svgFile != "" {
		svg, err := export.ConcentrationSVG(result, 800, 300)
		if err != nil {
			return err
		}
		if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("chart written to %s\n\n", svgFile)
	}

	for _, sr := range series {
		graph := asciigraph.Plot(result.Series(sr.field),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}
	if len(result.Samples) == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("solute: %s\n\n", meta.Solute)

	conc := result.Series(func(s concentration.Snapshot) float64 { return s.Concentration })
	vol := result.Series(func(s concentration.Snapshot) float64 { return s.Volume })
	fmt.Printf("concentration: %s\n", analysis.Summarize(conc))
	fmt.Printf("volume:        %s\n", analysis.Summarize(vol))

	if at, ok := analysis.TimeToSaturation(result); ok {
		fmt.Printf("\nsaturated after %.3f s\n", at)
		for _, iv := range analysis.SaturationIntervals(result) {
			fmt.Printf("  %.3f s - %.3f s (%.3f s)\n", iv.Start, iv.End, iv.Duration())
		}
	} else {
		fmt.Println("\nnever saturated")
	}

	if f := analysis.DominantFrequency(conc, meta.Dt); f > 0 {
		fmt.Printf("\ndominant concentration frequency: %.3f hz\n", f)
	}

	fmt.Println("\ndissolved solute (mol) vs volume (L), ▲ saturated:")
	fmt.Print(analysis.TrajectoryToASCII(analysis.Trajectory(result), 60, 16))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}
	return storage.WriteSamplesCSV(os.Stdout, result)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	_, result, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}
	return storage.WriteJSON(os.Stdout, result)
}

func deleteRun(cmd *cobra.Command, args []string) error {
	if err := storage.New(dataDir).Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSOLUTE\tFORM\tDURATION\tACTIONS")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		steps := make([]string, len(p.Actions))
		for i, a := range p.Actions {
			steps[i] = a.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1fs\t%s\n", name, p.Solute, p.SoluteForm, p.Duration, strings.Join(steps, ", "))
	}
	return w.Flush()
}

func listSolutes(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME\tFORMULA\tSATURATED (mol/L)\tSTOCK (mol/L)\tMOLAR MASS (g/mol)")
	for _, s := range chem.DefaultCatalog().All() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%.3f\n",
			s.Key, s.Name, s.Formula, s.SaturatedConcentration, s.StockSolutionConcentration, s.MolarMass)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := sessionConfig(cmd)
	if err != nil {
		return err
	}

	// the terminal belongs to the UI, so logs go to a file
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(filepath.Join(dataDir, "live.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	m, err := newSimulator().NewModel(cfg)
	if err != nil {
		return err
	}
	for _, a := range cfg.Actions {
		if a.At == 0 {
			if err := sim.Apply(m, a); err != nil {
				return err
			}
		}
	}

	lab := tui.NewLab(m, cfg.Dt, log)
	if cmd.Flags().Lookup("theme") != nil {
		lab = lab.WithTheme(theme)
	}
	_, err = tea.NewProgram(lab, tea.WithAltScreen()).Run()
	return err
}

func serveLab(cmd *cobra.Command, args []string) error {
	cfg, err := sessionConfig(cmd)
	if err != nil {
		return err
	}
	m, err := newSimulator().NewModel(cfg)
	if err != nil {
		return err
	}

	session := feed.NewSession(m, cfg.Dt, log)
	hub := feed.NewHub(func(c feed.Command) { _ = session.Handle(c) }, log)
	defer hub.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/snapshot", func(w http.ResponseWriter, r *http.Request) {
		snap, t := session.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(feed.Event{Type: feed.EventSnapshot, Time: t, Snapshot: &snap})
	})
	srv := &http.Server{Addr: addr, Handler: mux}

	ctx, cancel := interruptContext()
	defer cancel()

	errc := make(chan error, 2)
	go func() {
		errc <- session.Run(ctx, hub, time.Duration(cfg.Dt*float64(time.Second)))
	}()
	go func() {
		log.WithField("addr", addr).Info("serving lab feed")
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err = <-errc:
		cancel()
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		return serr
	}
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	results, err := automation.RunScenario(ctx, sc, newSimulator(), st, log)
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	for i, r := range results {
		final := r.Result.Final()
		fmt.Printf("\nstep %d: %s, final %.4f mol/L, saturated: %v", i+1, final.Solute, final.Concentration, final.Saturated)
		if r.RunID != "" {
			fmt.Printf(" (run id %s)", r.RunID)
		}
		fmt.Println()
		printMetrics(r.Result.Metrics)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := sessionConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	sweep := &automation.ParameterSweep{
		Base:     base,
		Param:    sweepParam,
		ParamMin: sweepMin,
		ParamMax: sweepMax,
		NumSteps: sweepSteps,
	}
	batch := sim.NewBatch(chem.DefaultCatalog(), metrics.Default, workers, log)
	results, err := automation.RunSweep(ctx, sweep, batch)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSATURATES AT\tSATURATED FOR\tFINAL (mol/L)\tMEAN (mol/L)\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		at := "never"
		if r.TimeToSaturation >= 0 {
			at = fmt.Sprintf("%.3fs", r.TimeToSaturation)
		}
		fmt.Fprintf(w, "%.4f\t%s\t%.3fs\t%.4f\t%.4f\n",
			r.ParamValue, at, r.SaturatedFor, r.FinalConcentration, r.Concentration.Mean)
	}
	return w.Flush()
}

func runTune(cmd *cobra.Command, args []string) error {
	base, err := sessionConfig(cmd)
	if err != nil {
		return err
	}

	g, err := optim.NewGridSearch(
		[]string{optim.GainKp, optim.GainKi, optim.GainKd},
		[][]float64{kpGrid, kiGrid, kdGrid},
	)
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	batch := sim.NewBatch(chem.DefaultCatalog(), nil, workers, log)
	best, all, err := g.Search(ctx, base, batch)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KP\tKI\tKD\tMEAN ERROR (mol/L)")
	for _, c := range all {
		fmt.Fprintf(w, "%.3f\t%.3f\t%.3f\t%.5f\n", c.Params[optim.GainKp], c.Params[optim.GainKi], c.Params[optim.GainKd], c.Cost)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nbest: kp=%.3f ki=%.3f kd=%.3f (mean error %.5f mol/L)\n",
		best.Params[optim.GainKp], best.Params[optim.GainKi], best.Params[optim.GainKd], best.Cost)
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	base, err := sessionConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	mc := &automation.MonteCarloConfig{
		Base:         base,
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         base.Seed,
	}
	batch := sim.NewBatch(chem.DefaultCatalog(), nil, workers, log)
	results, err := automation.RunMonteCarlo(ctx, mc, batch)
	if err != nil {
		return err
	}

	final := make([]float64, len(results))
	for i, r := range results {
		final[i] = r.Concentration
	}
	fmt.Printf("trials: %d\n", len(results))
	fmt.Printf("saturated: %.1f%%\n", 100*automation.SaturatedFraction(results))
	fmt.Printf("final concentration: %s\n", analysis.Summarize(final))
	return nil
}

func benchModel(cmd *cobra.Command, args []string) error {
	switch profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(dataDir)).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(dataDir)).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q (cpu, mem)", profileMode)
	}

	s := sim.New(chem.DefaultCatalog(), log)
	durations := []float64{10, 30}
	dts := []float64{0.001, 0.01, 0.1}

	fmt.Println("benchmarking saturate preset")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, step := range dts {
			cfg := config.GetPreset("saturate")
			cfg.Duration = dur
			cfg.Dt = step
			cfg.Seed = 42

			var total time.Duration
			var steps int
			for i := 0; i < benchRuns; i++ {
				start := time.Now()
				result, err := s.Run(context.Background(), cfg)
				if err != nil {
					return err
				}
				total += time.Since(start)
				steps += result.StepsTaken
			}

			fmt.Fprintf(w, "%.1fs\t%.4fs\t%d\t%v\t%.0f\n",
				dur, step, steps/max(benchRuns, 1), total/time.Duration(max(benchRuns, 1)), float64(steps)/total.Seconds())
		}
	}
	return w.Flush()
}
