package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/simplesite/internal/site"
	"git.home.luguber.info/inful/simplesite/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	SiteFlags `embed:""`
	Every     time.Duration `help:"Also rebuild on this interval, e.g. 10m (0 disables)" default:"0s"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return RunWatch(ctx, g, root, w)
}

// RunWatch builds and rebuilds until ctx is canceled.
func RunWatch(ctx context.Context, g *Global, root *CLI, w *WatchCmd) error {
	logger := g.logger()
	settings, err := w.resolve(root, logger)
	if err != nil {
		return err
	}
	builder := site.NewBuilder(settings.Options)

	watcher := watch.New(func(ctx context.Context) error {
		report, err := builder.Build(ctx)
		settings.flushMetrics(logger)
		if err != nil {
			return err
		}
		if !report.Skipped {
			printReport(g, report, settings.Options.OutputDir)
		}
		return nil
	}, watch.Options{
		SourceDir: settings.Options.SourceDir,
		Files:     settings.watchedFiles(root.Config),
		Every:     w.Every,
		Logger:    logger,
	})

	_, _ = fmt.Fprintf(g.out(), "Watching %s (Ctrl+C to stop)\n", settings.Options.SourceDir)
	return watcher.Run(ctx)
}
