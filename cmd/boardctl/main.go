package main

import (
	"time"

	"github.com/alecthomas/kong"

	"github.com/hoopsight/hoopsight/pkg/logger"
)

type globalCmd struct {
	Upstream string        `help:"Predictions API base URL." env:"UPSTREAM_BASE_URL" default:"http://localhost:8000"`
	Season   string        `help:"Season slug." default:"current"`
	Timeout  time.Duration `help:"Upstream request timeout." default:"10s"`
}

var CLI struct {
	globalCmd

	Rankings rankingsCmd `cmd:"" help:"Render the rankings list for a season."`
	Grid     gridCmd     `cmd:"" help:"Render the users-as-columns comparison grid."`
	Seasons  seasonsCmd  `cmd:"" help:"List participated seasons."`
}

func main() {
	logger.InitLogger("warn", false)
	ctx := kong.Parse(&CLI)
	err := ctx.Run(&CLI.globalCmd)
	ctx.FatalIfErrorf(err)
}
