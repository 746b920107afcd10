// Package service holds the business logic between HTTP handlers and repositories.
package service

import (
	"context"
	"time"

	"kumatter/internal/models"
	"kumatter/internal/observability"
	"kumatter/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Scope selects which authors contribute to a timeline.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeFollowed Scope = "followed"
)

// ParseScope maps a query value to a Scope. An empty value means ScopeFollowed.
func ParseScope(raw string) (Scope, error) {
	switch Scope(raw) {
	case "", ScopeFollowed:
		return ScopeFollowed, nil
	case ScopeAll:
		return ScopeAll, nil
	default:
		return "", models.NewValidationError("scope must be 'all' or 'followed'")
	}
}

// TimelineProjector builds post views enriched with author and like data.
// It never writes and keeps no state between calls; store errors are returned as-is.
type TimelineProjector struct {
	posts   repository.PostRepository
	likes   repository.LikeRepository
	follows repository.FollowRepository
	users   repository.UserRepository
	now     func() time.Time
}

// NewTimelineProjector returns a projector that labels post ages against the wall clock.
func NewTimelineProjector(
	posts repository.PostRepository,
	likes repository.LikeRepository,
	follows repository.FollowRepository,
	users repository.UserRepository,
) *TimelineProjector {
	return &TimelineProjector{
		posts:   posts,
		likes:   likes,
		follows: follows,
		users:   users,
		now:     time.Now,
	}
}

// WithClock replaces the clock used for relative-age labels.
func (p *TimelineProjector) WithClock(now func() time.Time) *TimelineProjector {
	p.now = now
	return p
}

// ProjectTimeline returns the viewer's timeline for scope, newest post first.
// viewer may be nil for anonymous access; an anonymous followed timeline is empty.
func (p *TimelineProjector) ProjectTimeline(ctx context.Context, viewer *models.User, scope Scope) ([]models.PostView, error) {
	start := time.Now()
	span, ctx := observability.NewSpan(ctx, "timeline.project")
	defer span.End()
	span.AddAttributes(
		attribute.String("timeline.scope", string(scope)),
		attribute.Bool("timeline.anonymous", viewer == nil),
	)
	if viewer != nil {
		span.AddAttributes(observability.AttrViewerID.Int64(int64(viewer.ID)))
	}

	authorIDs, err := p.authorIDs(ctx, viewer, scope)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	views, err := p.project(ctx, viewer, authorIDs)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	span.AddAttributes(observability.AttrRowsCount.Int(len(views)))
	observability.ObserveTimeline(string(scope), start, len(views))
	return views, nil
}

// ProjectUserPosts returns one author's posts with the same enrichment as a timeline.
func (p *TimelineProjector) ProjectUserPosts(ctx context.Context, viewer *models.User, authorID uint) ([]models.PostView, error) {
	start := time.Now()
	span, ctx := observability.NewSpan(ctx, "timeline.project_user")
	defer span.End()
	span.AddAttributes(attribute.Int64("timeline.author_id", int64(authorID)))

	if _, err := p.users.GetByID(ctx, authorID); err != nil {
		span.SetError(err)
		return nil, err
	}

	views, err := p.project(ctx, viewer, []uint{authorID})
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	observability.ObserveTimeline("user", start, len(views))
	return views, nil
}

func (p *TimelineProjector) authorIDs(ctx context.Context, viewer *models.User, scope Scope) ([]uint, error) {
	switch scope {
	case ScopeAll:
		return observability.TraceStoreRead(ctx, "posts", "all_author_ids", p.posts.AllAuthorIDs)
	case ScopeFollowed:
		if viewer == nil {
			return nil, nil
		}
		followees, err := observability.TraceStoreRead(ctx, "follows", "followee_ids",
			func(ctx context.Context) ([]uint, error) { return p.follows.FolloweeIDs(ctx, viewer.ID) })
		if err != nil {
			return nil, err
		}
		ids := make([]uint, 0, len(followees)+1)
		ids = append(ids, viewer.ID)
		for _, id := range followees {
			if id != viewer.ID {
				ids = append(ids, id)
			}
		}
		return ids, nil
	default:
		return nil, models.NewValidationError("unknown timeline scope")
	}
}

func (p *TimelineProjector) project(ctx context.Context, viewer *models.User, authorIDs []uint) ([]models.PostView, error) {
	views := []models.PostView{}
	if len(authorIDs) == 0 {
		return views, nil
	}

	posts, err := observability.TraceStoreRead(ctx, "posts", "by_authors",
		func(ctx context.Context) ([]*models.Post, error) { return p.posts.PostsByAuthors(ctx, authorIDs) })
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return views, nil
	}

	postIDs := make([]uint, len(posts))
	for i, post := range posts {
		postIDs[i] = post.ID
	}

	var (
		counts map[uint]int64
		liked  repository.IDSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = observability.TraceStoreRead(gctx, "likes", "counts_by_posts",
			func(ctx context.Context) (map[uint]int64, error) { return p.likes.CountsByPosts(ctx, postIDs) })
		return err
	})
	if viewer != nil {
		g.Go(func() error {
			var err error
			liked, err = observability.TraceStoreRead(gctx, "likes", "liked_post_ids",
				func(ctx context.Context) (repository.IDSet, error) { return p.likes.LikedPostIDs(ctx, viewer.ID) })
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := p.now()
	views = make([]models.PostView, 0, len(posts))
	for _, post := range posts {
		views = append(views, models.PostView{
			PostID:           post.ID,
			Content:          post.Content,
			RelativeAge:      RelativeAge(post.CreatedAt, now),
			AuthorID:         post.UserID,
			AuthorName:       post.User.UserName,
			AuthorLoginID:    post.User.LoginID,
			LikeCount:        counts[post.ID],
			LikedByLoginUser: liked.Has(post.ID),
		})
	}
	return views, nil
}
