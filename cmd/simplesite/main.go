package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/simplesite/cmd/simplesite/commands"
	ferrors "git.home.luguber.info/inful/simplesite/internal/foundation/errors"
	"git.home.luguber.info/inful/simplesite/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("simplesite"),
		kong.Description("Render templates into a static site, once per locale, with cross-page autolinks."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)

	global := &commands.Global{Logger: slog.Default(), Out: os.Stdout}
	if err := parser.Run(global, cli); err != nil {
		adapter := ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger)
		os.Exit(adapter.HandleError(err))
	}
}
