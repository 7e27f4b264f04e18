// cmd/migrate/main.go
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"meter-print-service/internal/config"
	"meter-print-service/internal/database"
	"meter-print-service/internal/utils"
)

const usage = "usage: migrate up|down|version"

func main() {
	if len(os.Args) != 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	if err := run(os.Args[1]); err != nil {
		fmt.Printf("migrate %s failed: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func run(command string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer utils.CloseLogger(logger)

	db, err := database.NewConnection(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)

	switch command {
	case "up":
		return migrator.Up()
	case "down":
		return migrator.Down()
	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			return err
		}
		logger.Info("Schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown command %q; %s", command, usage)
	}
}
