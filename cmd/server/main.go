package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nullforge/chunkworld/pkg/config"
	"github.com/nullforge/chunkworld/pkg/server"
	"github.com/nullforge/chunkworld/pkg/service"
	"github.com/nullforge/chunkworld/pkg/storage"
	"github.com/nullforge/chunkworld/pkg/world"
)

const spawnWarmupRadius = 2
const shutdownDrain = 5 * time.Second

func main() {
	configPath := "server.properties"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("chunkworld: load config %s: %v", configPath, err)
	}

	seed := cfg.WorldSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
		log.Printf("world.seed not set, using random seed %d", seed)
	}

	regionDir := filepath.Join("worlds", cfg.WorldName, "regions")
	engine := storage.NewEngine(regionDir)
	cache := world.NewCache()
	generator := world.NewGenerator(seed)
	svc := service.New(cache, engine, generator)

	log.Printf("world %q seed %d", cfg.WorldName, seed)
	svc.SpawnWarmup(spawnWarmupRadius)

	autosaveStop := make(chan struct{})
	go svc.AutoLoop(cfg.AutosaveIntervalSeconds, autosaveStop)

	srv := server.New(cfg, svc)
	if err := srv.Start(); err != nil {
		log.Fatalf("chunkworld: start server: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("shutting down (received signal: %v)...", sig)

	srv.Stop(shutdownDrain)
	close(autosaveStop)

	saved := svc.SaveAll()
	log.Printf("saved %d chunks on shutdown", saved)

	if err := engine.CloseAll(); err != nil {
		log.Printf("chunkworld: error closing region files: %v", err)
	}

	log.Println("server stopped")
}
