package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/stemsi/cybertest-backend/internal/config"
	"github.com/stemsi/cybertest-backend/internal/database"
	"github.com/stemsi/cybertest-backend/internal/logger"
	"github.com/stemsi/cybertest-backend/internal/repository"
	"github.com/stemsi/cybertest-backend/internal/service"
)

// import-questions loads a CSV of questions into ACTIVE_VERSION.
//
//	import-questions [--replace] [--version V] questions.csv
func main() {
	var replace bool
	var version string
	flag.BoolVar(&replace, "replace", false, "Delete every question of the version before importing")
	flag.StringVar(&version, "version", "", "Target version (defaults to ACTIVE_VERSION)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: import-questions [--replace] [--version V] <file.csv>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg := config.Load()
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if version == "" {
		version = cfg.ActiveVersion
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to open CSV")
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	importer := service.NewQuestionImporter(repository.NewQuestionRepository(pool), version, log)
	res, err := importer.Import(ctx, f, replace)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Import failed")
	}

	if res.Replaced > 0 {
		fmt.Printf("Removed %d existing questions for version %s\n", res.Replaced, res.Version)
	}
	fmt.Printf("Imported %d questions into version %s (%d skipped as duplicates)\n", res.Inserted, res.Version, res.Skipped)
}
