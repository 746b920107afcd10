// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"kumatter/internal/middleware"
	"kumatter/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password every seeded account logs in with.
const DefaultPassword = "password123"

// Options control how much data is generated and how.
type Options struct {
	NumUsers    int
	NumPosts    int
	FollowRatio float64 // chance that any ordered pair of users is a follow edge
	LikeRatio   float64 // chance that a user likes any given post
	MaxDays     int     // posts are spread over this many days back from now
	ShouldClean bool
	SkipBcrypt  bool
	DryRun      bool
	RandSeed    int64 // zero picks a time-based seed
	BatchSize   int
}

func (o Options) withDefaults() Options {
	if o.MaxDays <= 0 {
		o.MaxDays = 30
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	if o.RandSeed == 0 {
		o.RandSeed = time.Now().UnixNano()
	}
	return o
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	now  time.Time
	// synthetic ID counter when running in DryRun mode
	nextID uint
	hash   string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	opts = opts.withDefaults()
	gofakeit.Seed(opts.RandSeed)
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(opts.RandSeed)), now: time.Now(), nextID: 1000}
}

func (f *Factory) passwordHash() string {
	if f.hash != "" {
		return f.hash
	}
	if f.opts.SkipBcrypt {
		f.hash = DefaultPassword
		return f.hash
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		f.hash = DefaultPassword
		return f.hash
	}
	f.hash = string(hashed)
	return f.hash
}

// BuildUser constructs a user without persisting it. The login id is made
// unique with the sequence number n.
func (f *Factory) BuildUser(n int) *models.User {
	first := gofakeit.FirstName()
	loginID := fmt.Sprintf("%s_%d", strings.ToLower(gofakeit.Username()), n)
	loginID = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return -1
	}, loginID)
	if len(loginID) > 30 {
		loginID = loginID[len(loginID)-30:]
	}

	userName := first + " " + gofakeit.LastName()
	if len([]rune(userName)) > 20 {
		userName = string([]rune(userName)[:20])
	}

	created := f.pastTime()
	return models.NewUser(userName, loginID, loginID+"@example.com", f.passwordHash(), gofakeit.Sentence(8), created)
}

// CreateUser constructs and persists a sample user.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(n int, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(n)
	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post by author without persisting it. Timestamps are
// spread over the configured number of days.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	content := gofakeit.Sentence(f.rng.Intn(20) + 3)
	if len([]rune(content)) > 280 {
		content = string([]rune(content)[:280])
	}
	created := f.pastTime()
	if created.Before(author.CreatedAt) {
		created = author.CreatedAt
	}
	post := models.NewPost(author.ID, content, created)
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in batches.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		middleware.Logger.Info("dry-run: skipped post insert", "count", len(posts))
		return nil
	}
	if len(posts) == 0 {
		return nil
	}
	return f.db.Omit(clause.Associations).CreateInBatches(posts, f.opts.BatchSize).Error
}

// CreateLike persists a like from user on post. Existing likes are kept.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	like := &models.Like{UserID: user.ID, PostID: post.ID, CreatedAt: f.now}
	return f.db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

// CreateFollow persists a follow edge. Self-follows are skipped.
func (f *Factory) CreateFollow(follower, followee *models.User) error {
	if f.opts.DryRun || follower.ID == followee.ID {
		return nil
	}
	follow := &models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID, CreatedAt: f.now}
	return f.db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(follow).Error
}

func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.rng.Int63n(int64(f.opts.MaxDays) * int64(24*time.Hour)))
	return f.now.Add(-back).Truncate(time.Second)
}
