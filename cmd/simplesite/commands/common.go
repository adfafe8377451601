package commands

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
)

// Global carries process-wide dependencies into every command.
type Global struct {
	Logger *slog.Logger
	// Out receives the user-facing progress lines; stdout by default.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"simplesite.yaml"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text|json)" enum:"text,json" default:"text"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Render the site once into the output directory"`
	List  ListCmd  `cmd:"" help:"List discovered templates and where they render to"`
	Watch WatchCmd `cmd:"" help:"Build, then rebuild whenever sources change"`
	Init  InitCmd  `cmd:"" help:"Scaffold a starter site"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if c.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// parseLogLevel honours SIMPLESITE_LOG_LEVEL, falling back to the verbose flag.
func parseLogLevel(verbose bool) slog.Level {
	switch strings.ToLower(os.Getenv("SIMPLESITE_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
