package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/michael-kerscher/run-evaluator/internal/config"
	"github.com/michael-kerscher/run-evaluator/internal/evaluator"
	"github.com/michael-kerscher/run-evaluator/internal/logger"
	"github.com/michael-kerscher/run-evaluator/internal/webdriver"
)

// invocation carries the fully resolved parameters for one evaluator run.
// Values are resolved once from flags and the config file and never mutated.
type invocation struct {
	BookDir        string
	ViolationsFile string
	ExtraOptions   []string
	Port           int
	Driver         string
	Evaluator      string
	CacheDir       string
	StartupTimeout time.Duration
}

// orchestrate is replaced in tests to observe the resolved invocation
// without launching any subprocess.
var orchestrate = runOrchestration

// configPath is empty for the default location; overridden in tests.
var configPath = ""

func runRoot(cmd *cobra.Command, args []string) error {
	logger.SetVerbose(flagVerbose)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	inv := invocation{
		BookDir:        args[0],
		ViolationsFile: args[1],
		ExtraOptions:   args[2:],
		Port:           cfg.Port,
		Driver:         cfg.Driver,
		Evaluator:      cfg.Evaluator,
		CacheDir:       cfg.CacheDir,
		StartupTimeout: cfg.StartupDuration(),
	}
	// Explicit flags win over config file values.
	if cmd.Flags().Changed("port") {
		inv.Port = flagPort
	}
	if cmd.Flags().Changed("driver") {
		inv.Driver = flagDriver
	}
	if cmd.Flags().Changed("startup-timeout") {
		inv.StartupTimeout = flagStartupTimeout
	}

	logger.Debug("using extra options: %v", inv.ExtraOptions)

	// Arguments are valid from here on, do not show usage on runtime errors.
	cmd.SilenceUsage = true

	return orchestrate(cmd, inv)
}

func runOrchestration(cmd *cobra.Command, inv invocation) error {
	driverPath, err := webdriver.Provision(inv.Driver, inv.CacheDir)
	if err != nil {
		return fmt.Errorf("provision chromedriver: %w", err)
	}

	driver := webdriver.NewDriver(driverPath, inv.Port)
	driver.StartTimeout = inv.StartupTimeout
	if err := driver.Start(); err != nil {
		return fmt.Errorf("start chromedriver: %w", err)
	}
	defer driver.Stop()

	session, err := driver.NewSession()
	if err != nil {
		return fmt.Errorf("create browser session: %w", err)
	}
	defer session.Delete()

	argv, err := evaluator.BuildCommand(inv.Evaluator, driver.URL(), inv.ViolationsFile, inv.ExtraOptions, inv.BookDir)
	if err != nil {
		return err
	}
	return evaluator.Run(cmd.Context(), argv)
}
