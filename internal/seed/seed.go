package seed

import (
	"fmt"

	"kumatter/internal/middleware"
	"kumatter/internal/models"

	"gorm.io/gorm"
)

// Result summarizes what a seeding run created.
type Result struct {
	Users   []*models.User
	Posts   []*models.Post
	Follows int
	Likes   int
}

// Seeder populates a database with demo users and their activity.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a Seeder.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	opts = opts.withDefaults()
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// Seed creates users, posts, follow edges and likes.
func (s *Seeder) Seed() (*Result, error) {
	middleware.Logger.Info("seeding database", "users", s.opts.NumUsers, "posts", s.opts.NumPosts)

	if s.opts.ShouldClean && !s.opts.DryRun {
		if err := s.ClearAll(); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	res := &Result{}
	for i := 0; i < s.opts.NumUsers; i++ {
		u, err := s.factory.CreateUser(i)
		if err != nil {
			return nil, fmt.Errorf("failed to create user %d: %w", i, err)
		}
		res.Users = append(res.Users, u)
	}
	if len(res.Users) == 0 {
		return res, nil
	}

	rng := s.factory.rng
	for i := 0; i < s.opts.NumPosts; i++ {
		author := res.Users[rng.Intn(len(res.Users))]
		res.Posts = append(res.Posts, s.factory.BuildPost(author))
	}
	if err := s.factory.CreatePostsBatch(res.Posts); err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}

	for _, follower := range res.Users {
		for _, followee := range res.Users {
			if follower.ID == followee.ID || rng.Float64() >= s.opts.FollowRatio {
				continue
			}
			if err := s.factory.CreateFollow(follower, followee); err != nil {
				return nil, fmt.Errorf("failed to create follow: %w", err)
			}
			res.Follows++
		}
	}

	for _, user := range res.Users {
		for _, post := range res.Posts {
			if rng.Float64() >= s.opts.LikeRatio {
				continue
			}
			if err := s.factory.CreateLike(user, post); err != nil {
				return nil, fmt.Errorf("failed to create like: %w", err)
			}
			res.Likes++
		}
	}

	middleware.Logger.Info("seeding complete",
		"users", len(res.Users), "posts", len(res.Posts), "follows", res.Follows, "likes", res.Likes)
	return res, nil
}

// ClearAll removes every row the seeder can create, children first.
func (s *Seeder) ClearAll() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Like{}, &models.Follow{}, &models.Post{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
