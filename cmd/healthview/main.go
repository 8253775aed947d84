package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/openmined/healthview/internal/config"
	"github.com/openmined/healthview/internal/healthsdk"
	"github.com/openmined/healthview/internal/logging"
	"github.com/openmined/healthview/internal/version"
	"github.com/openmined/healthview/internal/viewer"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "healthview",
		Short:   "Show the health status reported by the backend API",
		Version: version.Detailed(),
		Args:    cobra.NoArgs,
		RunE:    runViewer,
	}

	rootCmd.Flags().Bool("plain", false, "print the status once instead of starting the terminal view")

	rootCmd.PersistentFlags().SortFlags = false
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "healthview config file")
	rootCmd.PersistentFlags().String("api-url", config.DefaultAPIURL, "backend base address (env "+config.EnvAPIURL+")")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Duration("timeout", 0, "request timeout, 0 waits for the transport")
	rootCmd.PersistentFlags().String("log-file", config.DefaultLogFilePath, "log file, empty to disable")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func runViewer(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	plain, _ := cmd.Flags().GetBool("plain")
	interactive := !plain && isTerminal(out)

	// the terminal view owns the screen, so it only logs to file
	var console io.Writer
	if !interactive {
		console = cmd.ErrOrStderr()
	}
	logger, closeLog, err := setupLogging(cmd, cfg, console)
	if err != nil {
		return err
	}
	defer closeLog()

	logger.Debug("healthview", "version", version.Short(), "target", cfg.HealthURL())

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	v := viewer.New(client, viewer.WithLogger(logger))

	if !interactive {
		v.Load(cmd.Context())
		return v.Render(out)
	}

	_, err = tea.NewProgram(
		viewer.NewModel(cmd.Context(), v),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := ""
	if f := cmd.Flag("config"); f != nil && f.Changed {
		path = f.Value.String()
	} else if envPath := os.Getenv("HEALTHVIEW_CONFIG_PATH"); envPath != "" {
		path = envPath
	}

	return config.Load(config.LoadOptions{
		ConfigPath: path,
		Flags:      cmd.Flags(),
	})
}

func newClient(cfg *config.Config) (*healthsdk.Client, error) {
	var opts []healthsdk.Option
	if cfg.Timeout > 0 {
		opts = append(opts, healthsdk.WithTimeout(cfg.Timeout))
	}
	return healthsdk.New(cfg.APIURL, opts...)
}

// setupLogging installs the default logger. The returned func flushes the log file.
func setupLogging(cmd *cobra.Command, cfg *config.Config, console io.Writer) (*slog.Logger, func(), error) {
	opts := logging.Options{
		Level:   logging.ParseLevel(cfg.LogLevel),
		Console: console,
	}

	closeFn := func() {}
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		w, closeFile, err := logging.OpenFile(path)
		if err != nil {
			return nil, nil, err
		}
		opts.File = w
		closeFn = func() { _ = closeFile() }
	}

	logger := logging.New(opts)
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
