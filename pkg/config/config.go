// Package config loads the server.properties key/value file: port, world
// name and seed, coordinate and memory ceilings, and rate limits.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the record the rest of the server consumes.
type Config struct {
	Port                    int
	MaxRequestsPerSecond    int
	WorldName               string
	WorldSeed               int64
	MaxCoordinate           int32
	ServerMaxChunks         int
	EmergencyThreshold      float64
	AutosaveIntervalSeconds int
}

// Default returns the configuration used when a key is missing or the
// file doesn't exist yet.
func Default() Config {
	return Config{
		Port:                    25577,
		MaxRequestsPerSecond:    20,
		WorldName:               "world",
		WorldSeed:               0,
		MaxCoordinate:           1_000_000,
		ServerMaxChunks:         4096,
		EmergencyThreshold:      0.9,
		AutosaveIntervalSeconds: 300,
	}
}

// Load reads path, applying recognized keys over the defaults. If path
// does not exist, a default file is written there and the defaults are
// returned.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		if werr := writeDefault(path, cfg); werr != nil {
			return cfg, fmt.Errorf("config: create default %s: %w", path, werr)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if err := cfg.apply(key, value); err != nil {
			return cfg, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) apply(key, value string) error {
	switch key {
	case "server.port":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("server.port: %w", err)
		}
		c.Port = v
	case "server.max_requests_per_second":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("server.max_requests_per_second: %w", err)
		}
		c.MaxRequestsPerSecond = v
	case "world.name":
		c.WorldName = value
	case "world.seed":
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("world.seed: %w", err)
		}
		c.WorldSeed = v
	case "world.max_coordinate":
		v, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return fmt.Errorf("world.max_coordinate: %w", err)
		}
		c.MaxCoordinate = int32(v)
	case "memory.server_max_chunks":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("memory.server_max_chunks: %w", err)
		}
		c.ServerMaxChunks = v
	case "memory.emergency_threshold":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("memory.emergency_threshold: %w", err)
		}
		c.EmergencyThreshold = v
	case "persistence.autosave_interval_seconds":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("persistence.autosave_interval_seconds: %w", err)
		}
		c.AutosaveIntervalSeconds = v
	}
	// Unrecognized keys are ignored rather than rejected, so older config
	// files stay usable across additions.
	return nil
}

func writeDefault(path string, cfg Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "server.port=%d\n", cfg.Port)
	fmt.Fprintf(w, "server.max_requests_per_second=%d\n", cfg.MaxRequestsPerSecond)
	fmt.Fprintf(w, "world.name=%s\n", cfg.WorldName)
	fmt.Fprintf(w, "world.seed=%d\n", cfg.WorldSeed)
	fmt.Fprintf(w, "world.max_coordinate=%d\n", cfg.MaxCoordinate)
	fmt.Fprintf(w, "memory.server_max_chunks=%d\n", cfg.ServerMaxChunks)
	fmt.Fprintf(w, "memory.emergency_threshold=%g\n", cfg.EmergencyThreshold)
	fmt.Fprintf(w, "persistence.autosave_interval_seconds=%d\n", cfg.AutosaveIntervalSeconds)
	return w.Flush()
}
