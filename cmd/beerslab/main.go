package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/beerslab/internal/config"
)

var (
	dataDir    string
	logLevel   string
	dt         float64
	duration   float64
	volume     float64
	amount     float64
	solute     string
	soluteForm string
	seed       int64
	configFile string
	preset     string
	actions    []string
	targetConc float64
	kp         float64
	svgFile    string
	// tune
	kpGrid []float64
	kiGrid []float64
	kdGrid []float64
	// live and serve
	addr  string
	theme string
	// sweep and montecarlo
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	trials     int
	perturb    float64
	workers    int
	// bench
	profileMode string
	benchRuns   int
)

var log = logrus.New()

func main() {
	rootCmd := &cobra.Command{
		Use:          "beerslab",
		Short:        "solution concentration lab",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			log.SetOutput(os.Stderr)
			log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

			if dataDir, err = homedir.Expand(dataDir); err != nil {
				return fmt.Errorf("data directory: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "~/.beerslab", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scripted lab session and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSessionFlags(runCmd)
	runCmd.Flags().StringArrayVar(&actions, "action", nil, "scripted action AT:TARGET=VALUE, repeatable (e.g. 2:evaporator=0.1)")
	runCmd.Flags().Float64Var(&targetConc, "target", 0, "regulate toward this concentration (mol/L)")
	runCmd.Flags().Float64Var(&kp, "kp", 1, "proportional gain of the regulator")
	runCmd.Flags().StringVar(&svgFile, "svg", "", "write the final lab scene as SVG")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write the concentration chart as SVG")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summarize concentration and saturation of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	solutesCmd := &cobra.Command{
		Use:   "solutes",
		Short: "list available solutes",
		Args:  cobra.NoArgs,
		RunE:  listSolutes,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive lab in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSessionFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "lab", "color theme")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream a live lab over WebSocket",
		Args:  cobra.NoArgs,
		RunE:  serveLab,
	}
	addSessionFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario of lab sessions",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "time to saturation across a parameter range",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSessionFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "evaporation", "parameter (evaporation, solvent, drain, shaker, dropper, volume, solute_amount)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.05, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.25, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = all CPUs)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "share of perturbed sessions that end saturated",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addSessionFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturbation", 0.1, "relative perturbation of volume and solute")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = all CPUs)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search regulator gains for a target concentration",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	addSessionFlags(tuneCmd)
	tuneCmd.Flags().Float64Var(&targetConc, "target", 0, "target concentration (mol/L)")
	tuneCmd.Flags().Float64SliceVar(&kpGrid, "kp-grid", []float64{0.25, 0.5, 1, 2, 4}, "proportional gains to try")
	tuneCmd.Flags().Float64SliceVar(&kiGrid, "ki-grid", []float64{0, 0.05, 0.1}, "integral gains to try")
	tuneCmd.Flags().Float64SliceVar(&kdGrid, "kd-grid", []float64{0}, "derivative gains to try")
	tuneCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = all CPUs)")
	_ = tuneCmd.MarkFlagRequired("target")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark model stepping",
		Args:  cobra.NoArgs,
		RunE:  benchModel,
	}
	benchCmd.Flags().StringVar(&profileMode, "profile", "", "write a profile (cpu, mem)")
	benchCmd.Flags().IntVar(&benchRuns, "runs", 3, "repetitions per configuration")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, exportCmd, exportCSVCmd, exportJSONCmd,
		deleteCmd, presetsCmd, solutesCmd, liveCmd, serveCmd, scenarioCmd, sweepCmd, monteCarloCmd, tuneCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addSessionFlags registers the flags that describe one lab session.
func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&solute, "solute", config.DefaultSolute, "solute key")
	cmd.Flags().StringVar(&soluteForm, "form", config.DefaultSoluteForm, "solute form (solid, liquid)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (s)")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration (s)")
	cmd.Flags().Float64Var(&volume, "volume", config.DefaultVolume, "initial solution volume (L)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "initial solute amount (mol)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for precipitate placement")
}
