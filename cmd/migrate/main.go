package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/AlibekovAA/linkmark/internal/common/config"
	"github.com/AlibekovAA/linkmark/internal/common/logger"
	"github.com/AlibekovAA/linkmark/migrations"
)

func main() {
	direction := flag.String("direction", "up", "up, down or version")
	flag.Parse()

	log, err := logger.New("", "migrate", "info")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	databaseURL, err := config.LoadDatabaseURL()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	m, err := migrations.New(databaseURL, log)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warnf("%v", err)
		}
	}()

	switch *direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		var (
			version uint
			dirty   bool
		)
		version, dirty, err = m.Version()
		if err == nil {
			log.Infof("schema version %d (dirty=%t)", version, dirty)
		}
	default:
		err = fmt.Errorf("unknown direction %q", *direction)
	}

	if err != nil {
		log.Errorf("migration failed: %v", err)
		os.Exit(1)
	}
}
