// migrate aplica o revierte las migraciones embebidas del esquema de costo en destino.
//
// Uso: go run ./cmd/migrate [up|down [pasos]]
// Sin argumentos aplica las pendientes (up). down sin pasos revierte todas.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/LandedCost-api/internal/infrastructure/postgres"
	"github.com/jhoicas/LandedCost-api/pkg/config"
	"github.com/jhoicas/LandedCost-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("migrate")

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	dsn := cfg.DB.ConnectionString()

	switch cmd {
	case "up":
		if err := postgres.MigrateUp(dsn); err != nil {
			log.Fatal().Err(err).Msg("migrate up")
		}
	case "down":
		steps := 0
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil || steps < 0 {
				fmt.Fprintf(os.Stderr, "Pasos inválidos: %q\n", os.Args[2])
				os.Exit(2)
			}
		}
		if err := postgres.MigrateDown(dsn, steps); err != nil {
			log.Fatal().Err(err).Msg("migrate down")
		}
	default:
		fmt.Fprintf(os.Stderr, "Uso: migrate [up|down [pasos]]\n")
		os.Exit(2)
	}
	log.Info().Str("command", cmd).Msg("migraciones completadas")
}
