// Command seed fills the database with demo users, posts, follows and likes.
package main

import (
	"flag"
	"os"

	"kumatter/internal/config"
	"kumatter/internal/database"
	"kumatter/internal/middleware"
	"kumatter/internal/seed"
)

func main() {
	opts := seed.Options{}
	flag.IntVar(&opts.NumUsers, "users", 50, "Number of users to create")
	flag.IntVar(&opts.NumPosts, "posts", 200, "Number of posts to create")
	flag.Float64Var(&opts.FollowRatio, "follow-ratio", 0.15, "Chance that a user follows another")
	flag.Float64Var(&opts.LikeRatio, "like-ratio", 0.05, "Chance that a user likes a post")
	flag.IntVar(&opts.MaxDays, "days", 30, "Spread post timestamps over this many days")
	flag.BoolVar(&opts.ShouldClean, "clean", true, "Clean database before seeding")
	flag.BoolVar(&opts.DryRun, "dry-run", false, "Generate data without writing it")
	flag.Int64Var(&opts.RandSeed, "rand-seed", 0, "Random seed (0 = time based)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		middleware.Logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.IsProduction() {
		middleware.Logger.Error("refusing to seed a production database")
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		middleware.Logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if _, err := seed.NewSeeder(db, opts).Seed(); err != nil {
		middleware.Logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	middleware.Logger.Info("seeding done", "password", seed.DefaultPassword)
}
