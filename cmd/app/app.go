package app

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/swapnest/swapnest-api/internal/api"
	"github.com/swapnest/swapnest-api/internal/config"
	"github.com/swapnest/swapnest-api/internal/db"
	"github.com/swapnest/swapnest-api/internal/logger"
)

const configPath = "./cmd/app/config.yml"

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	// DATABASE_URL wins over the config file when the hosting environment
	// supplies a full connection string.
	var postgresDB *gorm.DB
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	s := api.NewServer(conf, postgresDB)

	addr := ":" + s.Config.API.Port
	zap.L().Info("starting ledger engine",
		zap.String("addr", addr),
		zap.Int("delivery_token_ttl_hours", conf.Engine.DeliveryTokenTTLHours),
		zap.Int("surprise_box_cost", conf.Engine.SurpriseBoxCost))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}
