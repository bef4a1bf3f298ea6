// Command indextest loads an index file and saves it again under a new
// name, for checking that the index format round-trips.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/logger"
)

const usage = "usage: indextest [-config file] oldIndexFilename newIndexFilename"

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, nil)

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "indextest: %v\n", err)
		os.Exit(apperrors.ExitCode(err))
	}
}

func run(args []string) error {
	if len(args) != 2 {
		return apperrors.New(apperrors.ErrUsage, 1, usage)
	}
	oldPath, newPath := args[0], args[1]

	in, err := os.Open(oldPath)
	if err != nil {
		return apperrors.Newf(apperrors.ErrIndexFile, 2, "%v", err)
	}
	defer in.Close()

	x := index.New(0)
	stats, err := x.Load(in)
	if err != nil {
		return apperrors.Newf(apperrors.ErrIndexLoad, 3, "%s: %v", oldPath, err)
	}
	if stats.Malformed > 0 {
		slog.Warn("malformed index lines skipped", "path", oldPath, "malformed", stats.Malformed)
	}
	if err := index.WriteFile(newPath, x); err != nil {
		return apperrors.Newf(apperrors.ErrIndexSave, 4, "%s: %v", newPath, err)
	}
	slog.Info("index copied", "from", oldPath, "to", newPath, "words", x.Len(), "postings", stats.Postings)
	return nil
}
