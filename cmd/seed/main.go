// seed carga las categorías de gasto por defecto (flete, seguro, arancel, manejo, cargos
// bancarios) y, opcionalmente, imprime un token de desarrollo.
//
// Uso: go run ./cmd/seed [rol]
// Con rol (admin|analyst|viewer) imprime un Bearer token firmado con JWT_SECRET.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/LandedCost-api/internal/domain/entity"
	"github.com/jhoicas/LandedCost-api/internal/infrastructure/postgres"
	"github.com/jhoicas/LandedCost-api/pkg/config"
	"github.com/jhoicas/LandedCost-api/pkg/jwt"
	"github.com/jhoicas/LandedCost-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("seed")
	ctx := context.Background()

	if err := postgres.MigrateUp(cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	repo := postgres.NewExpenseCategoryRepository(pool)
	for _, c := range entity.DefaultExpenseCategories() {
		if err := repo.Upsert(ctx, c); err != nil {
			log.Fatal().Err(err).Str("category", c.ID).Msg("guardar categoría")
		}
	}
	log.Info().Int("categories", len(entity.DefaultExpenseCategories())).Msg("categorías de gasto cargadas")

	if len(os.Args) > 1 {
		role := os.Args[1]
		switch role {
		case jwt.RoleAdmin, jwt.RoleAnalyst, jwt.RoleViewer:
		default:
			fmt.Fprintf(os.Stderr, "Rol desconocido: %q (admin|analyst|viewer)\n", role)
			os.Exit(2)
		}
		tok, err := jwt.Generate(cfg.JWT.Secret, "seed-"+role, role, cfg.JWT.Issuer, cfg.JWT.Expiration)
		if err != nil {
			log.Fatal().Err(err).Msg("generar token")
		}
		fmt.Printf("Bearer %s\n", tok)
	}
}
