package main

import (
	"github.com/alecthomas/kong"

	"github.com/nbarraud/blogbuilder/cmd/blogbuilder/commands"
	"github.com/nbarraud/blogbuilder/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("blogbuilder"),
		kong.Description("Static blog generator: Markdown posts in, published site out."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)
	ctx.FatalIfErrorf(ctx.Run(&commands.Global{}))
}
