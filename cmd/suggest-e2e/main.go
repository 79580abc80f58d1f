package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/integrail/suggest-e2e/internal/build"
	"github.com/integrail/suggest-e2e/internal/config"
	"github.com/integrail/suggest-e2e/internal/logging"
	"github.com/integrail/suggest-e2e/internal/tui"
	"github.com/integrail/suggest-e2e/pkg/browser"
	"github.com/integrail/suggest-e2e/pkg/browser/local"
	"github.com/integrail/suggest-e2e/pkg/browser/remote"
	"github.com/integrail/suggest-e2e/pkg/scenario"
	"github.com/integrail/suggest-e2e/pkg/util"
	"github.com/integrail/suggest-e2e/pkg/wiki"
)

type flags struct {
	configPath string
	backend    string
	baseURL    string
	screenshot string
	scenarios  []string
	selectors  []string
	verbose    bool
	interact   bool
}

func main() {
	var (
		f   flags
		cfg config.Config
	)

	rootCmd := &cobra.Command{
		Use:           "suggest-e2e",
		Version:       build.Version,
		Short:         "Search suggestion checks for the ru.wikipedia.org home page",
		Long:          "Drives a browser through the search suggestion scenarios of the encyclopedia home page",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(f.configPath)
			if err != nil {
				return err
			}
			// flags override the file and the environment only when given
			overlay(cmd, &loaded, cfg, f)
			overrides, err := util.SliceToMap(f.selectors)
			if err != nil {
				return errors.Wrapf(err, "invalid --selector")
			}
			if err := loaded.OverrideSelectors(overrides); err != nil {
				return err
			}
			cfg = loaded
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, f)
		},
	}
	defaults := config.Defaults()
	cfg = defaults
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "Config file (default: "+config.DefaultPath+" when present)")
	pf.StringVarP(&f.backend, "backend", "b", defaults.Backend, "Browser backend: local or remote")
	pf.StringVarP(&f.baseURL, "url", "u", defaults.BaseURL, "Home page URL")
	pf.DurationVarP(&cfg.WaitTimeout, "timeout", "t", defaults.WaitTimeout, "Max time to wait for each element")
	pf.BoolVar(&cfg.Local.Headless, "headless", defaults.Local.Headless, "Run the local browser headless")
	pf.StringVar(&cfg.Local.ExecPath, "chrome", "", "Path to the Chrome executable")
	pf.StringVar(&cfg.Remote.URL, "baas-url", defaults.Remote.URL, "BaaS backend URL")
	pf.StringVarP(&cfg.Remote.APIKey, "key", "k", defaults.Remote.APIKey, "BaaS API Key")
	pf.BoolVarP(&cfg.Remote.UseProxy, "proxy", "p", false, "Use proxy for the remote browser")
	pf.StringVar(&cfg.Remote.MessageTimeout, "message-timeout", defaults.Remote.MessageTimeout, "Max time to wait for each remote command")
	pf.StringVarP(&f.screenshot, "screenshots", "o", defaults.ScreenshotDir, "Directory for screenshots of failed scenarios, empty to disable")
	pf.StringSliceVarP(&f.scenarios, "scenario", "s", []string{}, "Scenarios to run (default: all)")
	pf.StringSliceVarP(&f.selectors, "selector", "S", []string{}, "Selector overrides as name=selector")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "Log browser driver output")
	pf.BoolVar(&f.interact, "tui", false, "Render an interactive run view")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the scenarios",
		Run: func(cmd *cobra.Command, args []string) {
			for _, s := range scenario.Suggests() {
				status := "automated"
				if s.NotAutomated != "" {
					status = "not automated: " + s.NotAutomated
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-34s %s (%s)\n", s.Name, s.Title, status)
			}
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// overlay copies the values of the flags the user set onto loaded.
func overlay(cmd *cobra.Command, loaded *config.Config, fromFlags config.Config, f flags) {
	changed := func(name string) bool { return cmd.Flags().Changed(name) }
	if changed("backend") {
		loaded.Backend = f.backend
	}
	if changed("url") {
		loaded.BaseURL = f.baseURL
	}
	if changed("timeout") {
		loaded.WaitTimeout = fromFlags.WaitTimeout
	}
	if changed("headless") {
		loaded.Local.Headless = fromFlags.Local.Headless
		loaded.Remote.Headful = !fromFlags.Local.Headless
	}
	if changed("chrome") {
		loaded.Local.ExecPath = fromFlags.Local.ExecPath
	}
	if changed("baas-url") {
		loaded.Remote.URL = fromFlags.Remote.URL
	}
	if changed("key") {
		loaded.Remote.APIKey = fromFlags.Remote.APIKey
	}
	if changed("proxy") {
		loaded.Remote.UseProxy = fromFlags.Remote.UseProxy
	}
	if changed("message-timeout") {
		loaded.Remote.MessageTimeout = fromFlags.Remote.MessageTimeout
	}
	if changed("screenshots") {
		loaded.ScreenshotDir = f.screenshot
	}
}

func run(ctx context.Context, cfg config.Config, f flags) error {
	scenarios, err := scenario.Select(scenario.Suggests(), f.scenarios...)
	if err != nil {
		return err
	}
	log, err := logging.New(f.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if f.interact && !f.verbose {
		// keep the run view readable
		log = zap.NewNop()
	}

	newRunner := func(opts ...scenario.RunnerOption) *scenario.Runner {
		return scenario.NewRunner(sessions(cfg, log), cfg.BaseURL, append([]scenario.RunnerOption{
			scenario.WithReporter(logging.NewReporter(log)),
			scenario.WithScreenshotDir(cfg.ScreenshotDir),
			scenario.WithPageOptions(wiki.WithTimeout(cfg.WaitTimeout), wiki.WithSelectors(cfg.Selectors)),
		}, opts...)...)
	}

	var results []scenario.Result
	if f.interact {
		if results, err = tui.Run(ctx, scenarios, newRunner); err != nil {
			return err
		}
	} else {
		results = newRunner().Run(ctx, scenarios)
	}

	failed := scenario.Failures(results)
	log.Info("run finished",
		zap.Int("scenarios", len(results)),
		zap.Int("failed", failed),
		zap.String("backend", cfg.Backend),
	)
	if failed > 0 {
		return errors.Errorf("%d of %d scenario(s) failed", failed, len(results))
	}
	return nil
}

func sessions(cfg config.Config, log *zap.Logger) browser.Factory {
	if cfg.Backend == config.BackendRemote {
		return func(ctx context.Context) (browser.Session, error) {
			return remote.NewSession(ctx, cfg.Remote, remote.WithReporter(logging.NewReporter(log.Named("baas"))))
		}
	}
	return func(ctx context.Context) (browser.Session, error) {
		return local.NewSession(ctx, cfg.Local, local.WithLogf(logging.Logf(log.Named("chrome"))))
	}
}
