package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bmenergia/document-organizer/internal/config"
	"github.com/bmenergia/document-organizer/internal/infrastructure/registry/excel"
	"github.com/bmenergia/document-organizer/internal/infrastructure/repository/postgres"
	"github.com/bmenergia/document-organizer/internal/infrastructure/scaffold"
	"github.com/bmenergia/document-organizer/internal/observability/logging"
)

func main() {
	var (
		file        = flag.String("file", "", "path to the client units workbook (.xlsx)")
		sheet       = flag.String("sheet", excel.DefaultSheet, "worksheet holding the unit rows")
		scaffoldDir = flag.Bool("scaffold", true, "create the folder tree for each imported unit")
	)
	flag.Parse()

	if *file == "" {
		log.Fatal("missing required flag: -file")
	}

	cfg := config.Load()
	logger := logging.NewJSONLogger("importer", cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	defer db.Close()

	registry := postgres.NewUnitRepository(db, cfg.UnitBaseDir)
	if err := registry.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure registry schema: %v", err)
	}

	companies, units, err := excel.ReadUnits(*file, *sheet)
	if err != nil {
		log.Fatalf("read workbook: %v", err)
	}

	for i := range companies {
		if err := registry.UpsertCompany(ctx, &companies[i]); err != nil {
			log.Fatalf("import company %q: %v", companies[i].Name, err)
		}
	}
	for i := range units {
		if err := registry.UpsertUnit(ctx, &units[i]); err != nil {
			log.Fatalf("import unit %q: %v", units[i].Name, err)
		}
	}
	logger.Info("registry imported", "companies", len(companies), "units", len(units))

	if !*scaffoldDir {
		return
	}
	for i := range units {
		basePath, err := registry.UnitBasePath(ctx, units[i].ID)
		if err != nil {
			log.Fatalf("resolve base path for %q: %v", units[i].Name, err)
		}
		if err := scaffold.CreateUnitTree(basePath); err != nil {
			log.Fatalf("scaffold %q: %v", units[i].Name, err)
		}
		logger.Info("unit tree created", "unit", units[i].Name, "path", basePath)
	}
}
