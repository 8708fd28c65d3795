package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/example/waterline/internal/config"
	"github.com/example/waterline/internal/database"
	"github.com/example/waterline/internal/logger"
	"github.com/example/waterline/internal/routes"
)

func main() {
	cfg := config.Load()
	log := logger.New(os.Getenv("LOG_LEVEL"))

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	app := routes.NewApp(db, cfg, log)

	go func() {
		log.Infof("starting server on :%s", cfg.AppPort)
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			log.Fatalf("fiber.Listen error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		log.Errorf("server shutdown error: %v", err)
	}
	if err := database.Close(db); err != nil {
		log.Errorf("database close error: %v", err)
	}
}
