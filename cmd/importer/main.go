package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"trip_hotel/internal/adapters/observability"
	redisad "trip_hotel/internal/adapters/redis"
	"trip_hotel/internal/app"
	"trip_hotel/internal/shared"
	mysqlrepo "trip_hotel/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	path := cfg.ImportFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		log.Fatal().Msg("no input: set IMPORT_FILE or pass a path (- for stdin)")
	}

	log.Info().
		Str("file", path).
		Int("workers", cfg.ImportWorkers).
		Msg("importer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, cache will not be invalidated")
	}
	imp := app.NewImportService(repo, cache)

	in, closeIn, err := openInput(path)
	if err != nil {
		log.Fatal().Err(err).Msg("open input failed")
	}
	defer closeIn()

	sem := semaphore.NewWeighted(int64(cfg.ImportWorkers))
	var wg sync.WaitGroup
	var ok, skipped, failed atomic.Int64

	err = eachPayload(in, func(payload map[string]any) error {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			id, err := imp.ImportHotel(ctx, payload)
			switch {
			case errors.Is(err, app.ErrSkipped):
				skipped.Add(1)
				log.Warn().Int64("id", id).Err(err).Msg("import skipped")
			case err != nil:
				failed.Add(1)
				log.Warn().Int64("id", id).Err(err).Msg("import failed")
			default:
				ok.Add(1)
				log.Debug().Int64("id", id).Msg("import ok")
			}
		}()
		return nil
	})
	wg.Wait()
	if err != nil {
		log.Error().Err(err).Msg("reading input stopped early")
	}

	log.Info().
		Int64("ok", ok.Load()).
		Int64("skipped", skipped.Load()).
		Int64("failed", failed.Load()).
		Msg("import completed")
	if err != nil || failed.Load() > 0 {
		os.Exit(1)
	}
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// eachPayload streams a top-level JSON array of objects, calling fn per element.
func eachPayload(r io.Reader, fn func(map[string]any) error) error {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read array start: %w", err)
	}
	if d, isDelim := tok.(json.Delim); !isDelim || d != '[' {
		return fmt.Errorf("input must be a JSON array, got %v", tok)
	}
	for i := 0; dec.More(); i++ {
		var payload map[string]any
		if err := dec.Decode(&payload); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		if err := fn(payload); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
