// Command seed fills the database with demo marketplace data.
package main

import (
	"context"
	"flag"
	"log"

	"talents/internal/bootstrap"
	"talents/internal/config"
	"talents/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	talents := flag.Int("talents", defaults.Talents, "Number of talents to create")
	professionals := flag.Int("professionals", defaults.Professionals, "Number of professional accounts to create")
	companies := flag.Int("companies", defaults.Companies, "Number of company accounts to create")
	messages := flag.Int("messages", defaults.MessagesPerConversation, "Messages per seeded conversation")
	randSeed := flag.Int64("rand-seed", 0, "Fixed random seed for reproducible data (0 picks one)")
	clean := flag.Bool("clean", false, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing it")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{
		ServiceName: "talents-seed",
		ApplySchema: true,
	})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() { _ = rt.Close(ctx) }()

	summary, err := seed.Seed(ctx, rt.DB, seed.Options{
		Talents:                 *talents,
		Professionals:           *professionals,
		Companies:               *companies,
		MessagesPerConversation: *messages,
		RandSeed:                *randSeed,
		Clean:                   *clean,
		DryRun:                  *dryRun,
	})
	if err != nil {
		log.Printf("Seeding failed: %v", err)
		return
	}

	log.Printf("Seeding complete: %s", summary)
}
