package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/qrv0/devarray/internal/array"
	"github.com/qrv0/devarray/internal/config"
	"github.com/qrv0/devarray/internal/launch"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg config.Config
	log *slog.Logger
	dev *launch.Device
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "devarray",
		Short:         "devarray - array views and data-parallel kernel launches",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: text|json (overrides config)")

	cmd.AddCommand(newVecAddCommand(a))
	cmd.AddCommand(newGridCommand(a))
	cmd.AddCommand(newInteropCommand(a))
	cmd.AddCommand(newDeviceCommand(a))
	cmd.AddCommand(newInspectCommand(a))
	cmd.AddCommand(newVerifyCommand(a))
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger
	a.dev = launch.HostDevice(cfg.Workers)
	a.log.Debug("host device", "name", a.dev.Name, "workers", a.dev.Workers, "checked", array.Checked())
	return nil
}
