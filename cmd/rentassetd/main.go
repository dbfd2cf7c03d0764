package main

import (
	"context"
	"log"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/config"
	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"
	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/infra/db"
	httpinfra "github.com/caroline-findley315n/Rent-Asset-FHE/internal/infra/http"
)

func main() {
	cfg := config.FromEnv()

	store, err := db.NewStore(cfg)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	if err := store.Migrate(); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	if err := bootstrap(cfg, store); err != nil {
		log.Fatalf("failed to bootstrap instance config: %v", err)
	}

	srv := httpinfra.NewServer(cfg, store)
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// bootstrap seeds the instance config row on first start. Once the row
// exists the environment values are ignored; ownership and cooldown changes
// go through the admin API.
func bootstrap(cfg config.Config, store *db.Store) error {
	owner, err := domain.ParseAddress(cfg.OwnerAddress)
	if err != nil {
		return err
	}
	instance, err := domain.ParseAddress(cfg.InstanceAddress)
	if err != nil {
		return err
	}
	repo := db.NewConfigRepository(store.DB)
	return repo.Bootstrap(context.Background(), owner, instance, cfg.DefaultCooldownSeconds)
}
