package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"goanova/adapters/excel"
	"goanova/adapters/gonumdist"
	"goanova/adapters/postgres"
	"goanova/adapters/projection"
	"goanova/app"
	"goanova/internal/config"
	"goanova/internal/report"
	"goanova/ports"
	"goanova/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var repo ports.ResultRepository
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		resultRepo := postgres.NewResultRepository(db)
		if err := resultRepo.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to ensure database schema: %v", err)
		}
		repo = resultRepo
		log.Println("Result persistence enabled")
	}

	service := app.NewAnalysisService(gonumdist.NewF(), projection.NewPCA(), repo)

	if cfg.Data.File != "" {
		tbl, err := excel.NewDataReader(cfg.Data.File).WithSheet(cfg.Data.Sheet).ReadTable()
		if err != nil {
			log.Fatalf("Failed to read data file: %v", err)
		}

		run, err := service.Run(ctx, app.RunRequest{
			Dataset:       cfg.Data.File,
			Table:         tbl,
			GroupColumn:   cfg.Analysis.GroupColumn,
			Dependent:     cfg.Analysis.DependentColumns,
			NFactors:      cfg.Analysis.NFactors,
			WithFactorial: cfg.Analysis.WithFactorial,
			WithManova:    cfg.Analysis.WithManova,
		})
		if err != nil {
			log.Fatalf("Analysis failed: %v", err)
		}
		fmt.Print(report.Markdown(run))
	}

	if cfg.Server.Enabled {
		server := ui.NewServer(service)
		log.Fatal(server.Start(":" + cfg.Server.Port))
	}
}
