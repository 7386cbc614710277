package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/moodqueue/internal/app"
	"github.com/ewilliams-labs/moodqueue/internal/config"
	"github.com/ewilliams-labs/moodqueue/internal/logging"
)

type cli struct {
	cfg     *config.Config
	app     *app.App
	log     *zap.Logger
	json    bool
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "moodctl",
		Short:         "Build and inspect mood-based play queues",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var (
		configPath string
		dbPath     string
		logLevel   string
		noColor    bool
	)

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a moodqueue.yaml file")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite file holding the saved queue")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")
	root.PersistentFlags().BoolVarP(&c.json, "json", "j", false, "output json")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable color")
	root.PersistentFlags().DurationVarP(&c.timeout, "timeout", "t", 60*time.Second, "command timeout")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if noColor {
			pterm.DisableColor()
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		// the CLI always keeps its queue in a local file
		cfg.Storage.Driver = config.StorageSQLite
		if dbPath != "" {
			cfg.Storage.Path = dbPath
		}
		if s, _ := cmd.Flags().GetString("strategy"); s != "" {
			cfg.Builder.Strategy = strings.ToLower(strings.TrimSpace(s))
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		c.cfg = cfg

		log, err := logging.New(logLevel, "console")
		if err != nil {
			return err
		}
		c.log = log

		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		c.app = a
		return nil
	}

	root.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if c.app != nil {
			return c.app.Close()
		}
		return nil
	}

	root.AddCommand(
		buildCmd(c),
		showCmd(c),
		clearCmd(c),
		defaultsCmd(c),
	)
	return root
}

func (c *cli) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, c.timeout)
}
