package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/stockchat/internal/logger"
	"github.com/guttosm/stockchat/internal/storage"
)

const (
	fileDateLayout   = "2006-01-02" // YYYY-MM-DD
	defaultBatchSize = 5000
	maxParallelCap   = 8
)

// fileNamePattern matches daily trade files: YYYY-MM-DD_trades.csv
var fileNamePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})_trades\.csv$`)

// repoCtor is an indirection for creating the repository; tests can override this.
var repoCtor = func(db *sql.DB) storage.TradesRepository {
	return storage.NewTradesRepository(db)
}

// ProcessDirectory loads every daily trade file found in dir.
//
// Parameters:
//   - dir: directory containing .csv input files.
//   - db:  open *sql.DB (PostgreSQL).
//   - parallel: how many files to process concurrently (0 = auto up to CPU, capped).
//   - force: reprocess days even if already ingested (deletes existing trades for that day).
//
// Behavior:
//   - Scans dir for files named "YYYY-MM-DD_trades.csv"; other files are ignored.
//   - An empty directory is a valid state (nothing ingested yet), not an error.
//   - For each file, parses & inserts trades in batches via the repository.
//   - Days already present in the ingestion log are skipped unless force is set.
//   - If any file returns an error, cancels the rest and returns that error.
//
// Returns:
//   - error: first error encountered (if any).
func ProcessDirectory(ctx context.Context, dir string, db *sql.DB, parallel int, force bool) error {
	// use indirection to allow tests to swap repository constructor
	repo := repoCtor(db)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if fileNamePattern.MatchString(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		logger.L().Warn().Str("dir", dir).Msg("no trade files found, nothing to ingest")
		return nil
	}

	logger.L().Info().Int("files", len(files)).Str("dir", dir).Msg("ingestion start")

	// Concurrency: default to min(cap, NumCPU), or use provided clamp(1..cap)
	maxParallel := maxParallelCap
	if parallel > 0 {
		if parallel > maxParallelCap {
			parallel = maxParallelCap
		}
		maxParallel = parallel
	} else if c := runtime.NumCPU(); c < maxParallel {
		maxParallel = c
	}

	logger.L().Info().Int("max_parallel", maxParallel).Msg("ingestion configured")

	// errgroup will cancel siblings on first error.
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxParallel)

	for i, file := range files {
		idx := i
		f := file
		sem <- struct{}{}

		g.Go(func() error {
			defer func() { <-sem }()
			start := time.Now()
			base := filepath.Base(f)
			logger.L().Info().Int("idx", idx+1).Int("total", len(files)).Str("file", base).Msg("file start")

			// Determine the trading day from the filename (YYYY-MM-DD_...)
			m := fileNamePattern.FindStringSubmatch(base)
			d, err := time.Parse(fileDateLayout, m[1])
			if err != nil {
				logger.L().Error().Str("file", base).Err(err).Msg("invalid date in filename")
				return fmt.Errorf("file %s: parse date from filename: %w", f, err)
			}

			// Idempotency: skip if already ingested, unless force
			exists, err := repo.HasIngestionForDate(d)
			if err != nil {
				logger.L().Error().Str("file", base).Err(err).Msg("check ingestion log failed")
				return fmt.Errorf("file %s: check ingestion log: %w", f, err)
			}
			if exists && !force {
				logger.L().Info().Int("idx", idx+1).Int("total", len(files)).Str("file", base).Bool("skipped", true).Msg("already ingested")
				return nil
			}
			if exists && force {
				// Delete existing data for that date and reprocess
				if err := repo.DeleteTradesByDate(d); err != nil {
					logger.L().Error().Str("file", base).Err(err).Msg("delete existing failed")
					return fmt.Errorf("file %s: delete existing: %w", f, err)
				}
			}

			// Process each file; this function:
			// - validates header/order/columns strictly
			// - parses rows tolerantly (empty cells allowed)
			// - inserts in batches (defaultBatchSize)
			total, err := parseAndPersistFile(gctx, f, d, repo, defaultBatchSize)
			if err != nil {
				logger.L().Error().Str("file", base).Dur("elapsed", time.Since(start)).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", f, err)
			}
			if err := repo.UpsertIngestionLog(d, base, total); err != nil {
				logger.L().Error().Str("file", base).Err(err).Msg("update ingestion log failed")
				return fmt.Errorf("file %s: upsert ingestion log: %w", f, err)
			}
			logger.L().Info().Int("idx", idx+1).Int("total", len(files)).Str("file", base).Int("rows", total).Dur("elapsed", time.Since(start)).Bool("force", force).Msg("file done")
			return nil
		})
	}

	return g.Wait()
}
