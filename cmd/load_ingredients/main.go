package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/database"
	"github.com/platefeed/backend/internal/service"
)

// Seeds the ingredient catalog from a JSON file of
// {"name": ..., "measurement_unit": ...} records. Safe to re-run: records
// that already exist are skipped.
func main() {
	path := flag.String("file", "data/ingredients.json", "Path to the ingredients JSON file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	content, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *path, err)
	}

	var seeds []service.IngredientSeed
	if err := json.Unmarshal(content, &seeds); err != nil {
		log.Fatalf("Failed to parse %s: %v", *path, err)
	}

	log.Printf("Loading %d ingredients from %s", len(seeds), *path)
	inserted, err := service.NewCatalogService(db).ImportIngredients(context.Background(), seeds)
	if err != nil {
		log.Fatalf("Import failed after %d inserts: %v", inserted, err)
	}
	log.Printf("Done: %d inserted, %d already present", inserted, len(seeds)-inserted)
}
