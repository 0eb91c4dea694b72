// Package cli implements the stackbar command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbar/pkg/cache"
	"github.com/matzehuels/stackbar/pkg/pipeline"
)

const appName = "stackbar"

// Levels accepted by [New].
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// CLI is the state shared by every subcommand.
type CLI struct {
	Logger *log.Logger

	// levelFromFlags is set when -v or -q chose the log level.
	levelFromFlags bool
}

// New returns a CLI that logs to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

func (c *CLI) SetLogLevel(level log.Level) { c.Logger.SetLevel(level) }

// newRunner returns a runner over the user's file cache, or over no cache
// when noCache is set or no cache directory can be found.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir is $XDG_CACHE_HOME/stackbar, falling back to ~/.cache/stackbar.
func cacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// basePath derives the output path stem: the output flag without a known
// format extension, or the input path without its extension.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return "stdin"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// parseFormats splits the -f flag. An empty flag means SVG.
func parseFormats(s string) []string {
	if f := splitList(s); len(f) > 0 {
		return f
	}
	return []string{pipeline.FormatSVG}
}

// parsePalette splits the --palette flag.
func parsePalette(s string) []string { return splitList(s) }

// splitList splits a comma-separated flag, dropping blank items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// sourceName is how records are named in exported layouts.
func sourceName(input string) string {
	if input == "-" {
		return "stdin"
	}
	return filepath.Base(input)
}
