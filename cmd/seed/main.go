// Command seed loads reference specimen records from a JSON file into the
// catalog index. Intended for bootstrapping a fresh environment.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/herbadex/internal/config"
	dbRedis "github.com/kailas-cloud/herbadex/internal/db/redis"
	domspec "github.com/kailas-cloud/herbadex/internal/domain/specimen"
	logpkg "github.com/kailas-cloud/herbadex/internal/logger"
	specimenrepo "github.com/kailas-cloud/herbadex/internal/repository/specimen"
)

type specimenRow struct {
	ID            string `json:"id"`
	FullName      string `json:"fullName"`
	Collectors    string `json:"collectors"`
	Country       string `json:"country"`
	Family        string `json:"family"`
	Genus         string `json:"genus"`
	Species       string `json:"species"`
	Locality      string `json:"locality"`
	CatalogNumber string `json:"catalogNumber"`
	ImageURL      string `json:"imageUrl"`
}

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "specimens.json", "path to the specimen JSON file")
	flag.Parse()

	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	data, err := os.ReadFile(filePath)
	if err != nil {
		logger.Fatal("Failed to read specimen file", zap.String("file", filePath), zap.Error(err))
	}

	var rows []specimenRow
	if err := json.Unmarshal(data, &rows); err != nil {
		logger.Fatal("Failed to parse specimen file", zap.String("file", filePath), zap.Error(err))
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	if err := specimenrepo.EnsureIndex(ctx, store); err != nil {
		logger.Fatal("Failed to ensure specimen index", zap.Error(err))
	}

	repo := specimenrepo.New(store)

	seeded := 0
	for _, row := range rows {
		if row.ID == "" {
			logger.Warn("Skipping row without id", zap.String("full_name", row.FullName))
			continue
		}
		rec := domspec.Reconstruct(
			row.ID, row.FullName, row.Collectors, row.Country,
			row.Family, row.Genus, row.Species,
			row.Locality, row.CatalogNumber, row.ImageURL,
		)
		if err := repo.Upsert(ctx, &rec); err != nil {
			logger.Fatal("Failed to upsert specimen", zap.String("id", row.ID), zap.Error(err))
		}
		seeded++
	}

	logger.Info("Seed complete",
		zap.Int("seeded", seeded),
		zap.Int("total_rows", len(rows)),
	)
}
