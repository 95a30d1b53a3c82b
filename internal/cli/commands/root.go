package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/m-kr/cms-nano/internal/config"
	"github.com/m-kr/cms-nano/internal/logging"
	"github.com/m-kr/cms-nano/internal/prompt"
	"github.com/m-kr/cms-nano/pkg/client"
	"github.com/m-kr/cms-nano/pkg/listing"
	"github.com/m-kr/cms-nano/pkg/remotesync"
	"github.com/m-kr/cms-nano/pkg/schema"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App carries the state shared by every command. Zero fields are filled in
// from configuration before a command runs.
type App struct {
	ConfigFile string
	BaseURL    string
	LogLevel   string

	Config   *config.Config
	Logger   *zap.Logger
	Registry *schema.Registry
	// Driver answers interactive prompts; the survey driver when nil.
	Driver prompt.Driver
	// NewAPI builds the remote API; the HTTP client when nil.
	NewAPI func(cfg *config.Config, logger *zap.Logger) (remotesync.API, error)
}

// NewRootCommand creates the root command
func NewRootCommand(app *App) *cobra.Command {
	if app == nil {
		app = &App{}
	}
	rootCmd := &cobra.Command{
		Use:   "cms-nano",
		Short: "Author component patterns for the nano CMS",
		Long: color.CyanString(`cms-nano - component pattern authoring

Browse, create, edit and remove the component patterns of a nano CMS
server, inspect the forms used to edit them, and run an in-memory copy of
the API for local work.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.ConfigFile, "config", "", "config file (default ./cms-nano.yaml or $HOME/.config/cms-nano/cms-nano.yaml)")
	flags.StringVar(&app.BaseURL, "base-url", "", "remote API base URL")
	flags.StringVar(&app.LogLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewPatternsCommand(app))
	rootCmd.AddCommand(NewFormsCommand(app))
	rootCmd.AddCommand(NewOpenAPICommand(app))
	rootCmd.AddCommand(NewMockServerCommand(app))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			titleColor := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()

			titleColor.Fprint(out, "cms-nano version: ")
			fmt.Fprintln(out, Version)
			titleColor.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)
			titleColor.Fprint(out, "Build date: ")
			fmt.Fprintln(out, BuildDate)
			titleColor.Fprint(out, "Go version: ")
			fmt.Fprintln(out, runtime.Version())
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand(&App{})
	if err := rootCmd.Execute(); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			errorColor := color.New(color.FgRed, color.Bold)
			errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}

func (a *App) setup(cmd *cobra.Command) error {
	if a.Config == nil {
		cfg, err := config.Load(a.ConfigFile)
		if err != nil {
			return err
		}
		a.Config = cfg
	}
	if a.BaseURL != "" {
		a.Config.API.BaseURL = a.BaseURL
	}
	if a.LogLevel != "" {
		a.Config.Log.Level = a.LogLevel
	}
	if a.Logger == nil {
		logger, err := logging.New(a.Config.Log.Level)
		if err != nil {
			return err
		}
		a.Logger = logger
	}
	if a.Registry == nil {
		registry, err := loadRegistry(cmd.Context(), a.Config.Schema.Models)
		if err != nil {
			return err
		}
		a.Registry = registry
	}
	if a.Driver == nil {
		a.Driver = prompt.NewSurveyDriver(cmd.OutOrStdout())
	}
	return nil
}

// loadRegistry reads the configured model declarations, falling back to the
// bundled ones.
func loadRegistry(ctx context.Context, location string) (*schema.Registry, error) {
	if location == "" {
		return schema.Default(), nil
	}
	src, err := schema.ParseSource(location)
	if err != nil {
		return nil, err
	}
	registry, err := schema.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load schema.models: %w", err)
	}
	return registry, nil
}

func (a *App) api() (remotesync.API, error) {
	if a.NewAPI != nil {
		return a.NewAPI(a.Config, a.Logger)
	}
	return client.New(a.Config.API.BaseURL,
		client.WithTimeout(a.Config.API.Timeout),
		client.WithLogger(a.Logger),
	)
}

// session builds a remotesync session reporting to out. A nil confirmer
// answers every confirmation with yes.
func (a *App) session(out, errOut io.Writer, confirm listing.Confirmer) (*remotesync.Session, error) {
	api, err := a.api()
	if err != nil {
		return nil, err
	}
	if confirm == nil {
		confirm = listing.ConfirmFunc(func(_ context.Context, _ string) (bool, error) { return true, nil })
	}
	return remotesync.New(api,
		remotesync.WithLogger(a.Logger),
		remotesync.WithRegistry(a.Registry),
		remotesync.WithConfirmer(confirm),
		remotesync.WithNotifier(consoleNotifier(out, errOut)),
		remotesync.WithListingOptions(
			listing.WithItemsPerPage(a.Config.Listing.ItemsPerPage),
			listing.WithSort(a.Config.Listing.Sort),
		),
	), nil
}

// reportedError marks a failure the notifier already showed.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }

func (e reportedError) Unwrap() error { return e.err }

func check[T any](result remotesync.Result[T]) error {
	if result.OK() {
		return nil
	}
	return reportedError{err: result.Err}
}

func consoleNotifier(out, errOut io.Writer) remotesync.Notifier {
	successColor := color.New(color.FgGreen, color.Bold)
	errorColor := color.New(color.FgRed, color.Bold)
	return remotesync.NotifierFunc(func(n remotesync.Notice) {
		if n.Kind == remotesync.KindError {
			errorColor.Fprintf(errOut, "✗ %s\n", n.Message)
			return
		}
		successColor.Fprintf(out, "✓ %s\n", n.Message)
	})
}
