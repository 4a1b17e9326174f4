package main

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
)

type CLI struct {
	Verbose bool `help:"Enable debug logging." short:"v"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     GenCmd     `cmd:"" help:"Generate Go bindings from assembly descriptors."`
	Check   CheckCmd   `cmd:"" help:"Load and validate descriptors without generating files."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("crossbind"),
		kong.Description("Crossbind CLI for cross-language binding generation."),
		kong.UsageOnError(),
	)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if cli.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
