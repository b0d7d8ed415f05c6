// Command seed fills the database with demo profiles.
package main

import (
	"context"
	"flag"
	"log"

	"biolink/internal/config"
	"biolink/internal/database"
	"biolink/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	maxLinks := flag.Int("links", 4, "Maximum custom links per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	seedValue := flag.Int64("seed", 0, "Random seed (0 for random)")
	flag.Parse()

	log.Printf("Seeding %d users (max %d links each, clean=%v)", *numUsers, *maxLinks, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{
		NumUsers:    *numUsers,
		MaxLinks:    *maxLinks,
		ShouldClean: *shouldClean,
		Seed:        *seedValue,
	})
	users, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed after %d users: %v", len(users), err)
	}

	log.Printf("Created %d users. All accounts use the password: %s", len(users), seed.DefaultPassword)
	for _, u := range users {
		log.Printf("  /u/%s", u.Username)
	}
}
