// Command mediasweep deletes stale engine output out of band. It is not
// part of the request hot path; run it from cron or by hand.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"reel/internal/config"
	"reel/internal/mediasweep"
	"reel/internal/pkg/logger"
)

func main() {
	all := flag.Bool("all", false, "delete the entire media tree instead of only stale entries")
	maxAge := flag.Duration("max-age", mediasweep.DefaultMaxAge, "delete request directories older than this")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "reel-mediasweep",
		AddSource:   cfg.Logging.AddSource,
	})

	sweeper := mediasweep.New(filepath.Join(cfg.Render.WorkDir, "media"), *maxAge, log)

	if *all {
		if err := sweeper.PurgeAll(); err != nil {
			log.Error("purge failed", "error", err.Error())
			os.Exit(1)
		}
		return
	}

	sweeper.Sweep()
}
