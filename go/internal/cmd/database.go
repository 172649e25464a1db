package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/toondeboer/pokerkit/go/internal/config"
	"github.com/toondeboer/pokerkit/go/internal/kvstore"
)

func setupStore(cfg config.Config) (kvstore.Store, error) {
	store, err := kvstore.Open(cfg.StorageBackend, cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StorageBackend, err)
	}

	log.Info().
		Str("backend", cfg.StorageBackend).
		Str("path", cfg.StoragePath).
		Msg("opened state store")
	return store, nil
}
