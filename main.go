package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-board/session"
	"github.com/sheikhrachel/go-gol-board/utils"
)

const defaultSessionID = "local"

func main() {
	var (
		configPath string
		headless   bool
	)
	flag.StringVar(&configPath, "config", "config.json", "path to a JSON config file")
	flag.BoolVar(&headless, "headless", false, "auto-play to stdout instead of the interactive board")
	flag.Parse()

	// Load configuration - fallback to defaults if file doesn't exist
	config, err := utils.LoadConfig(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatal(err)
		}
		fmt.Printf("Using default configuration (%s not found)\n", configPath)
		config = utils.DefaultConfig()
	}
	if headless {
		config.Interactive = false
	}

	if err = run(config); err != nil {
		log.Fatal(err)
	}
}

func run(config utils.Config) (err error) {
	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := session.NewStore(config)
	defer func() {
		if closeErr := store.CloseAll(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	sess, err := store.Create(defaultSessionID)
	if err != nil {
		return errors.Wrap(err, "[run] failed to create session")
	}

	if config.Interactive {
		return runInteractive(ctx, sess)
	}
	return runHeadless(ctx, sess)
}
