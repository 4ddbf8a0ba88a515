package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/spf13/cobra"

	"github.com/tendant/simple-share/pkg/simpleshare/client"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Config holds client settings read from the environment
type Config struct {
	ShareURL       string        `env:"SHARE_URL" env-default:"http://127.0.0.1:8080" env-description:"Base URL of the simple-share server"`
	UploadPassword string        `env:"UPLOAD_PASSWORD" env-description:"Upload bearer secret"`
	Timeout        time.Duration `env:"SHARE_TIMEOUT" env-default:"10m" env-description:"Request timeout"`
}

func main() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "sharectl",
		Short: "Upload and delete files on a simple-share server",
		Long: `sharectl talks to a simple-share server.

Settings come from SHARE_URL and UPLOAD_PASSWORD and can be overridden with flags.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var env Config
			if err := cleanenv.ReadEnv(&env); err != nil {
				return fmt.Errorf("failed to read environment: %w", err)
			}
			if !cmd.Flags().Changed("url") {
				cfg.ShareURL = env.ShareURL
			}
			if !cmd.Flags().Changed("password") {
				cfg.UploadPassword = env.UploadPassword
			}
			if !cmd.Flags().Changed("timeout") {
				cfg.Timeout = env.Timeout
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ShareURL, "url", "", "server base URL (env SHARE_URL)")
	rootCmd.PersistentFlags().StringVar(&cfg.UploadPassword, "password", "", "upload secret (env UPLOAD_PASSWORD)")
	rootCmd.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", 0, "request timeout (env SHARE_TIMEOUT)")

	rootCmd.AddCommand(NewUploadCommand(&cfg))
	rootCmd.AddCommand(NewDeleteCommand(&cfg))
	rootCmd.AddCommand(NewHealthCommand(&cfg))

	return rootCmd
}

func newClient(cfg *Config) *client.Client {
	return client.New(cfg.ShareURL, client.WithUploadSecret(cfg.UploadPassword))
}

func commandContext(cmd *cobra.Command, cfg *Config) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	if cfg.Timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// NewUploadCommand creates the upload command
func NewUploadCommand(cfg *Config) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload files and print their links",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.UploadPassword == "" {
				return fmt.Errorf("upload password is required (set UPLOAD_PASSWORD or --password)")
			}

			ctx, cancel := commandContext(cmd, cfg)
			defer cancel()

			c := newClient(cfg)
			out := cmd.OutOrStdout()
			for _, path := range args {
				resp, err := c.UploadFile(ctx, path)
				if err != nil {
					return fmt.Errorf("upload %s failed: %w", path, err)
				}

				if quiet {
					fmt.Fprintln(out, resp.URL)
					continue
				}
				fmt.Fprintf(out, "File:       %s\n", path)
				fmt.Fprintf(out, "URL:        %s\n", resp.URL)
				fmt.Fprintf(out, "Info URL:   %s\n", resp.InfoURL)
				fmt.Fprintf(out, "Delete URL: %s\n", resp.DeleteURL)
				fmt.Fprintf(out, "Size:       %d bytes\n", resp.Size)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the file URL")

	return cmd
}

// NewDeleteCommand creates the delete command
func NewDeleteCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <delete-url>",
		Short: "Delete a file using the delete URL returned by upload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd, cfg)
			defer cancel()

			if err := newClient(cfg).Delete(ctx, args[0]); err != nil {
				return fmt.Errorf("delete failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "File deleted successfully")
			return nil
		},
	}
}

// NewHealthCommand creates the health command
func NewHealthCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd, cfg)
			defer cancel()

			if err := newClient(cfg).Health(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}
