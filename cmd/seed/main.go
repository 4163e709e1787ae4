// Command seed loads a game catalog from JSON into the games collection.
// Existing games with the same id are replaced.
package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fjod/gamestore/internal/config"
	"github.com/fjod/gamestore/internal/domain"
	"github.com/fjod/gamestore/internal/logger"
	"github.com/fjod/gamestore/internal/repository"
	"github.com/fjod/gamestore/internal/service"
	"go.uber.org/zap"
)

//go:embed games.json
var defaultCatalog []byte

func main() {
	file := flag.String("file", "", "catalog JSON file (defaults to the embedded catalog)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	games, err := loadCatalog(*file)
	if err != nil {
		log.Fatal("failed to read catalog", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	catalog := service.NewCatalogService(repository.NewGameRepository(db))
	now := time.Now().UTC()
	for _, g := range games {
		if g.CreatedAt.IsZero() {
			g.CreatedAt = now
		}
		if err := catalog.UpsertGame(ctx, g); err != nil {
			log.Fatal("failed to upsert game", zap.String("id", g.ID), zap.Error(err))
		}
	}
	log.Info("catalog seeded", zap.Int("games", len(games)))
}

func loadCatalog(path string) ([]*domain.Game, error) {
	raw := defaultCatalog
	if path != "" {
		var err error
		if raw, err = os.ReadFile(path); err != nil {
			return nil, err
		}
	}
	var games []*domain.Game
	if err := json.Unmarshal(raw, &games); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return games, nil
}
