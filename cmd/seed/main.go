// Command seed runs the database seeder for Snapfeed.
package main

import (
	"flag"
	"log"

	"snapfeed/internal/config"
	"snapfeed/internal/database"
	"snapfeed/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	maxDays := flag.Int("max-days", 90, "Spread post timestamps over this many days")
	distribution := flag.String("distribution", "default", "Media-kind distribution preset (default, text-heavy, gallery, single-shots)")
	dryRun := flag.Bool("dry-run", false, "Build entities without writing to the database")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d users, %d posts, clean=%v, distribution=%s\n",
		*numUsers, *numPosts, *shouldClean, *distribution)

	dist, ok := seed.Distributions[*distribution]
	if !ok {
		log.Fatalf("Unknown distribution preset %q", *distribution)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
		MaxDays:     *maxDays,
		DryRun:      *dryRun,
	}
	if err := seed.SeedWithDistribution(db, opts, dist); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with test data.")
	log.Println("All test users have the password: password123")
}
