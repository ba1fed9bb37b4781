// Command main runs the database seeder for Business In Rwanda.
package main

import (
	"context"
	"flag"
	"log"

	"bizrwanda/internal/config"
	"bizrwanda/internal/database"
	"bizrwanda/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()

	employers := flag.Int("employers", defaults.Employers, "Number of employer accounts (one company each)")
	seekers := flag.Int("seekers", defaults.JobSeekers, "Number of job seeker accounts")
	perType := flag.Int("listings", defaults.ListingsPerType, "Listings to create per post type")
	applications := flag.Int("applications", defaults.ApplicationsPerSeeker, "Applications per job seeker")
	randomSeed := flag.Int64("rand", 0, "Random seed for reproducible data (0 = time based)")
	catalogOnly := flag.Bool("catalog-only", false, "Only load categories and landing page sections")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing it")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	if *dryRun {
		opts := defaults
		opts.Employers, opts.JobSeekers = *employers, *seekers
		opts.ListingsPerType, opts.ApplicationsPerSeeker = *perType, *applications
		opts.RandomSeed, opts.DryRun = *randomSeed, true
		if _, err := seed.Seed(ctx, nil, opts); err != nil {
			log.Fatalf("Dry run failed: %v", err)
		}
		return
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *catalogOnly {
		if err := seed.Defaults(ctx, db); err != nil {
			log.Fatalf("Catalog seeding failed: %v", err)
		}
		log.Println("Categories and featured sections are in place.")
		return
	}

	opts := defaults
	opts.Employers = *employers
	opts.JobSeekers = *seekers
	opts.ListingsPerType = *perType
	opts.ApplicationsPerSeeker = *applications
	opts.RandomSeed = *randomSeed

	summary, err := seed.Seed(ctx, db, opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d companies, %d applications", summary.Users, summary.Companies, summary.Applications)
	for postType, n := range summary.Listings {
		log.Printf("  %s: %d listings", postType, n)
	}
	log.Printf("All demo accounts use the password: %s", seed.DemoPassword)
}
