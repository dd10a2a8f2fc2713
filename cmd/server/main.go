package main

import (
	"github.com/joho/godotenv"

	app "admob-switch/internal/app/server"
	"admob-switch/internal/config"
)

func main() {
	_ = godotenv.Load() // optional .env for local development

	cfg := config.Load()
	config.SetupLogging(cfg.Server.LogLevel)

	app.Run(cfg)
}
