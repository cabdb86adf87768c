package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/san-kum/dynobj/internal/config"
	"github.com/san-kum/dynobj/internal/experiment"
	"github.com/san-kum/dynobj/internal/models"
	"github.com/san-kum/dynobj/internal/object"
	"github.com/san-kum/dynobj/internal/storage"
	"github.com/san-kum/dynobj/internal/viz"
)

var log = commonlog.GetLogger("dynobj")

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	capacity   int
	tickMs     int
	theme      string
	verbose    int
	noSave     bool
	reindex    bool
	runs       int
	glider     map[string]string
	snapshots  bool
	writeTo    string
)

// main registers the dynobj commands and exits with status 1 when the
// selected command fails. Without a subcommand it opens the scenario
// picker.
func main() {
	rootCmd := &cobra.Command{
		Use:           "dynobj",
		Short:         "class registry and dynamic dispatch lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbose, nil)
		},
		RunE: pickLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "log verbosity (repeat for more)")

	experimentFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
		cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed for sensor sources")
		cmd.Flags().IntVar(&capacity, "capacity", 0, "instance arena capacity (0 for unbounded)")
		cmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "color theme")
		cmd.Flags().StringToStringVar(&glider, "glider", nil, "glider parameters, e.g. mass=2,glide_ratio=12")
	}

	runCmd := &cobra.Command{
		Use:   "run [scenario|file]",
		Short: "run a scenario and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	experimentFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not save the run")
	runCmd.Flags().IntVar(&runs, "runs", 1, "run an ensemble over consecutive seeds")

	liveCmd := &cobra.Command{
		Use:   "live [scenario|file]",
		Short: "step a scenario in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	experimentFlags(liveCmd)
	liveCmd.Flags().IntVar(&tickMs, "tick", config.DefaultTickMs, "milliseconds per step")
	liveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not save the run")

	classesCmd := &cobra.Command{
		Use:   "classes",
		Short: "show the class hierarchy and resolved method tables",
		Args:  cobra.NoArgs,
		RunE:  showClasses,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	listCmd.Flags().BoolVar(&reindex, "reindex", false, "rebuild the run index from disk first")

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print a run's transcript",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&snapshots, "snapshots", false, "also print the payload snapshots")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id] [instance.metric]",
		Short: "plot a recorded metric across steps",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and steps as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list built-in scenarios",
		Args:  cobra.NoArgs,
		RunE:  listScenarios,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scenario]",
		Short: "list presets for a scenario, or payload presets per class",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config [scenario]",
		Short: "print the resolved configuration, or write it to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showConfig,
	}
	experimentFlags(configCmd)
	configCmd.Flags().IntVar(&tickMs, "tick", config.DefaultTickMs, "milliseconds per step")
	configCmd.Flags().StringVarP(&writeTo, "write", "w", "", "write the configuration to this yaml or toml file")

	rootCmd.AddCommand(runCmd, liveCmd, classesCmd, listCmd, showCmd, plotCmd, exportCmd, scenariosCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// resolveConfig layers defaults, the config file, the preset and finally
// any flags set on the command line.
func resolveConfig(cmd *cobra.Command, scenario string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if scenario != "" {
		cfg.Scenario = scenario
	}

	if preset != "" {
		p := config.GetPreset(cfg.Scenario, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Scenario))
		}
		cfg.Apply(p)
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("capacity") {
		cfg.Capacity = capacity
	}
	if flags.Changed("theme") {
		cfg.Theme = theme
	}
	if flags.Changed("tick") {
		cfg.TickMs = tickMs
	}
	for name, raw := range glider {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("glider %s: %w", name, err)
		}
		if cfg.Glider == nil {
			cfg.Glider = make(map[string]float64)
		}
		cfg.Glider[name] = v
	}
	if flags.Changed("data") || configFile == "" {
		cfg.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	viz.SetTheme(cfg.Theme)
	return cfg, nil
}

// loadScenario accepts a built-in scenario name or a YAML/TOML file.
func loadScenario(arg string) (*experiment.Scenario, error) {
	switch strings.ToLower(filepath.Ext(arg)) {
	case ".yaml", ".yml", ".toml":
		return experiment.LoadScenario(arg)
	}
	return experiment.NewRegistry().Get(arg)
}

func setup(cmd *cobra.Command, args []string) (*config.Config, *experiment.Experiment, error) {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	cfg, err := resolveConfig(cmd, name)
	if err != nil {
		return nil, nil, err
	}

	s, err := loadScenario(cfg.Scenario)
	if err != nil {
		return nil, nil, err
	}

	exp := experiment.New(runConfig(cfg))
	if err := exp.Setup(s); err != nil {
		return nil, nil, err
	}
	return cfg, exp, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	if runs > 1 {
		return runEnsemble(cmd, args)
	}

	cfg, exp, err := setup(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	result, runErr := exp.RunEach(ctx, func(rec experiment.Record) {
		fmt.Println(viz.RecordLine(rec))
	})
	// An interrupted run is still summarized and saved.
	if result == nil || (runErr != nil && !errors.Is(runErr, context.Canceled)) {
		return runErr
	}

	fmt.Printf("\ncompleted in %v\n\n", time.Since(start))
	fmt.Print(viz.Summary(result))

	if err := save(cfg, result); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	return checkResult(result)
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, exp, err := setup(cmd, args)
	if err != nil {
		return err
	}
	// The first experiment only validated the setup.
	if _, err := exp.Close(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	ens := experiment.NewEnsemble(exp.Scenario(), runConfig(cfg), runs)
	results, err := ens.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d runs completed in %v\n\n", len(results), time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tFAILURES\tLEAKED")
	var errs []error
	for _, res := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", res.Seed, len(res.Records), res.Failures, res.Leaked)
		if err := checkResult(res); err != nil {
			errs = append(errs, fmt.Errorf("seed %d: %w", res.Seed, err))
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, res := range results {
		if err := save(cfg, res); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, exp, err := setup(cmd, args)
	if err != nil {
		return err
	}

	result, err := viz.RunLive(exp, time.Duration(cfg.TickMs)*time.Millisecond)
	if err != nil {
		return err
	}
	if err := save(cfg, result); err != nil {
		return err
	}
	return checkResult(result)
}

func pickLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, "")
	if err != nil {
		return err
	}

	result, err := viz.RunPicker(experiment.NewRegistry(), viz.Options{
		Seed:     cfg.Seed,
		Capacity: cfg.Capacity,
		Glider:   cfg.Glider,
		Tick:     time.Duration(cfg.TickMs) * time.Millisecond,
	})
	if err != nil || result == nil {
		return err
	}
	return save(cfg, result)
}

func runConfig(cfg *config.Config) experiment.Config {
	return experiment.Config{Seed: cfg.Seed, Capacity: cfg.Capacity, Glider: cfg.Glider}
}

func save(cfg *config.Config, result *experiment.Result) error {
	if noSave || result == nil {
		return nil
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	defer st.Close()

	runID, err := st.Save(result, cfg.Capacity)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func checkResult(result *experiment.Result) error {
	var errs []error
	if result.Failures > 0 {
		errs = append(errs, fmt.Errorf("%d failed steps", result.Failures))
	}
	if result.Leaked > 0 {
		errs = append(errs, fmt.Errorf("%d instances leaked", result.Leaked))
	}
	return errors.Join(errs...)
}

func showClasses(cmd *cobra.Command, args []string) error {
	reg := object.NewRegistry(object.Options{})
	if _, err := models.Install(reg); err != nil {
		return err
	}
	fmt.Print(viz.ClassTree(reg))
	return nil
}

// openStore opens the data directory named by --data, or by the config
// file when the flag is not given.
func openStore(cmd *cobra.Command) (*storage.Store, error) {
	dir := dataDir
	if configFile != "" && !cmd.Flags().Changed("data") {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		dir = cfg.DataDir
	}

	st := storage.New(dir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if reindex {
		n, err := st.Reindex()
		if err != nil {
			return err
		}
		log.Infof("reindexed %d runs", n)
	}

	runs, err := st.List()
	if err != nil {
		return err
	}
	fmt.Print(viz.RunTable(runs))
	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	records, err := st.LoadSteps(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s  %s  seed %d\n\n", meta.ID, meta.Timestamp.Format(time.RFC3339), meta.Seed)
	fmt.Print(viz.Transcript(records))
	fmt.Println()
	fmt.Print(viz.Summary(&experiment.Result{
		Scenario: meta.Scenario,
		Seed:     meta.Seed,
		Records:  records,
		Failures: meta.Failures,
		Leaked:   meta.Leaked,
		Metrics:  meta.Metrics,
	}))

	if !snapshots {
		return nil
	}
	snaps, err := st.LoadSnapshots(args[0])
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(viz.Snapshots(snaps))
	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	cfg, err := resolveConfig(cmd, name)
	if err != nil {
		return err
	}

	if writeTo != "" {
		if err := config.Save(writeTo, cfg); err != nil {
			return err
		}
		log.Infof("wrote %s", writeTo)
		return nil
	}
	data, err := config.Encode("config.yaml", cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if len(args) == 1 {
		fields, err := st.Fields(args[0])
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "available fields:")
		for _, f := range fields {
			fmt.Fprintf(w, "  %s\n", f)
		}
		return w.Flush()
	}

	steps, values, err := st.Series(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Println(viz.Plot(args[1], steps, values, 15, 70))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.Export(args[0], os.Stdout)
}

func listScenarios(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tINSTANCES\tSTEPS\tDESCRIPTION")
	for _, name := range reg.List() {
		s, err := reg.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", s.Name, len(s.Instances), s.Len(), s.Description)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		presets := config.ListPresets(args[0])
		if len(presets) == 0 {
			fmt.Printf("no presets for scenario: %s\n", args[0])
			return nil
		}
		fmt.Printf("presets for %s:\n", args[0])
		for _, p := range presets {
			fmt.Printf("  %s\n", p)
		}
		return nil
	}

	reg := object.NewRegistry(object.Options{})
	catalog, err := models.Install(reg)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CLASS\tPAYLOAD PRESETS")
	for _, name := range catalog.Names() {
		fmt.Fprintf(w, "%s\t%s\n", name, strings.Join(models.Presets(name), ", "))
	}
	return w.Flush()
}
