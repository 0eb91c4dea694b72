package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbar/internal/config"
	"github.com/matzehuels/stackbar/internal/server"
)

// serveOpts are flag overrides applied on top of the environment.
type serveOpts struct {
	envFile string
	addr    string
	cache   string
	url     string
}

func (c *CLI) serveCommand() *cobra.Command {
	var so serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP widget service",
		Long: `Run the HTTP widget service.

Configuration is read from STACKBAR_* environment variables, after loading
a .env file when present. Flags override the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), so)
		},
	}

	cmd.Flags().StringVar(&so.envFile, "env-file", "", "load variables from this file instead of .env")
	cmd.Flags().StringVar(&so.addr, "addr", "", "listen address (overrides STACKBAR_ADDR)")
	cmd.Flags().StringVar(&so.cache, "cache", "", "cache backend: memory, redis, none (overrides STACKBAR_CACHE)")
	cmd.Flags().StringVar(&so.url, "public-url", "", "base URL used in widget links (overrides STACKBAR_PUBLIC_URL)")

	return cmd
}

// loadServeConfig merges environment and flag settings.
func loadServeConfig(so serveOpts) (*config.Config, error) {
	var files []string
	if so.envFile != "" {
		files = append(files, so.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	if so.addr != "" {
		cfg.Server.Addr = so.addr
	}
	if so.cache != "" {
		cfg.Cache.Backend = so.cache
	}
	if so.url != "" {
		cfg.Server.PublicURL = strings.TrimRight(so.url, "/")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *CLI) runServe(ctx context.Context, so serveOpts) error {
	cfg, err := loadServeConfig(so)
	if err != nil {
		return err
	}
	if !c.levelFromFlags {
		c.Logger.SetLevel(cfg.LogLevel())
	}
	c.Logger.Debug("configuration", "config", cfg.String())

	srv, err := server.Open(ctx, cfg, log.FromContext(ctx))
	if err != nil {
		return fmt.Errorf("open server: %w", err)
	}
	defer srv.Close()

	printInfo("Serving on %s", StyleLink.Render(cfg.Server.Addr))
	printDetail("cache: %s · rate limit: %v", cfg.Cache.Backend, cfg.RateLimit.Enabled)
	return srv.Run(ctx)
}
