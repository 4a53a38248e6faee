package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"taskmanager/app/auth"
	"taskmanager/app/config"
	"taskmanager/app/logs"
	"taskmanager/app/server"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "taskmanager",
		Short:         "Task manager API with AI subtask suggestions",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("TASKMGR_CONFIG"), "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(suggestCmd(opts))
	rootCmd.AddCommand(tokenCmd(opts))
	rootCmd.AddCommand(migrateCmd(opts))
	rootCmd.AddCommand(configCmd(opts))

	return rootCmd
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

func (o *rootOptions) logger(cfg *config.Config, w io.Writer) (*slog.Logger, io.Closer, error) {
	logger, closer, err := logs.New(cfg.Log, w)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, closer, nil
}

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger, closer, err := opts.logger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := server.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close(context.Background())

			return app.Run(ctx)
		},
	}
}

func suggestCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "suggest [task title]",
		Short: "Ask the language model for subtask suggestions",
		Long: `Generate 5-7 subtask suggestions for a task title, the same way the
generate-subtasks endpoint does.

Examples:
  taskmanager suggest "Plan a birthday party"
  taskmanager suggest "Write quarterly report" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger, closer, err := opts.logger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()

			svc, err := server.NewSuggestionService(cfg.LLM, logger)
			if err != nil {
				return err
			}
			result, err := svc.Suggest(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string][]string{"subtasks": result.Items})
			}
			if result.Fallback {
				fmt.Fprintln(out, "Model reply was not a JSON list, showing it verbatim:")
			}
			for i, s := range result.Items {
				fmt.Fprintf(out, "%d. %s\n", i+1, s)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "print the response body the API would return")
	return cmd
}

func tokenCmd(opts *rootOptions) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			authn, err := auth.New(cfg.Auth)
			if err != nil {
				return err
			}
			token, err := authn.Issue(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id to put in the token subject")
	cmd.MarkFlagRequired("user")
	return cmd
}

func migrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the store schema, constraints and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := server.OpenStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.Close(context.Background())

			if err := s.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate %s store: %w", cfg.Store.Driver, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s store is up to date\n", cfg.Store.Driver)
			return nil
		},
	}
}

func configCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg.Redacted()); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
