package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pelletier/go-toml"
	"github.com/voxelforge/terragen"
)

func main() {
	path := flag.String("config", "config.toml", "path of the configuration file")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	lvl := slog.LevelInfo
	if *verbose {
		lvl = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

	uc, err := readConfig(*path, log)
	if err != nil {
		log.Error("read config: " + err.Error())
		os.Exit(1)
	}
	conf, err := uc.Config(log)
	if err != nil {
		log.Error("parse config: " + err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := conf.Generate(ctx)
	for _, res := range sum.Results {
		if res.Err != nil {
			log.Error("region failed",
				"regionX", res.Region[0], "regionZ", res.Region[1],
				"kind", string(res.Kind), "err", res.Err)
		}
	}
	fmt.Printf("run %v: %d regions generated, %d failed, %d skipped in %v\n",
		sum.Run, sum.Generated, sum.Failed, sum.Skipped, sum.Duration)
	if err != nil {
		log.Error("generate: " + err.Error())
		os.Exit(1)
	}
	if sum.Failed > 0 {
		os.Exit(1)
	}
}

// readConfig reads the configuration from the path passed, creating it with
// default values if it does not yet exist.
func readConfig(path string, log *slog.Logger) (terragen.UserConfig, error) {
	c := terragen.DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		data, err := toml.Marshal(c)
		if err != nil {
			return c, fmt.Errorf("encode default config: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return c, fmt.Errorf("create default config: %w", err)
		}
		log.Info("created default config", "path", path)
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}
