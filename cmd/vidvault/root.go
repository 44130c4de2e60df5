// Package cmd is the vidvault command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NamanBalaji/vidvault/internal/app"
	"github.com/NamanBalaji/vidvault/internal/config"
	"github.com/NamanBalaji/vidvault/internal/logger"
	"github.com/NamanBalaji/vidvault/internal/ui"
)

type appKey struct{}

type rootOptions struct {
	configPath string
	debug      bool
	yes        bool
	appOpts    []app.Option
}

// NewRootCmd builds the command tree. appOpts are passed to app.New.
func NewRootCmd(appOpts ...app.Option) *cobra.Command {
	opts := &rootOptions{appOpts: appOpts}

	root := &cobra.Command{
		Use:           "vidvault",
		Short:         "Browse, stream and download videos for offline viewing",
		Long:          "vidvault keeps a catalog of videos in sync and manages offline downloads with pause, resume and cancel.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.open(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/vidvault/config.yaml)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&opts.yes, "yes", "y", false, "answer yes to every confirmation")

	root.AddCommand(
		newCatalogCmd(),
		newDownloadsCmd(),
		newDownloadCmd(opts),
		newDeleteCmd(opts),
		newPlayCmd(),
		newPruneCmd(opts),
		newStorageCmd(),
	)

	return root
}

func (o *rootOptions) open(cmd *cobra.Command) error {
	path := o.configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if o.debug {
		cfg.Debug = true
	}

	if err := logger.InitLogging(cfg.Debug, cfg.LogFile); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.WarningStyle.Render(fmt.Sprintf("logging disabled: %v", err)))
	}

	a, err := app.New(cfg, o.appOpts...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.SetContext(context.WithValue(ctx, appKey{}, a))

	return nil
}

func appFrom(cmd *cobra.Command) *app.App {
	a, _ := cmd.Context().Value(appKey{}).(*app.App)
	return a
}

func closeApp(cmd *cobra.Command) error {
	defer logger.Close()

	if a := appFrom(cmd); a != nil {
		return a.Close()
	}

	return nil
}

// Run executes root and closes the app opened for the chosen command, also
// when the command fails.
func Run(ctx context.Context, root *cobra.Command) error {
	c, err := root.ExecuteContextC(ctx)
	if c != nil && c.Context() != nil {
		if cerr := closeApp(c); cerr != nil && err == nil {
			err = cerr
		}
	}

	return err
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	root := NewRootCmd()

	if err := Run(context.Background(), root); err != nil {
		printError(root.ErrOrStderr(), err)
		os.Exit(1)
	}
}
