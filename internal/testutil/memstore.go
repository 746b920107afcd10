// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"kumatter/internal/models"
	"kumatter/internal/repository"
)

type pair [2]uint

// MemDB is an in-memory backing store shared by the repository fakes it hands out.
// Posts keep insertion order so equal timestamps sort the same way the SQL stores do.
type MemDB struct {
	mu       sync.Mutex
	users    map[uint]*models.User
	posts    []*models.Post
	likes    map[pair]time.Time
	follows  map[pair]time.Time
	nextUser uint
	nextPost uint
}

// NewMemDB returns an empty store.
func NewMemDB() *MemDB {
	return &MemDB{
		users:   make(map[uint]*models.User),
		likes:   make(map[pair]time.Time),
		follows: make(map[pair]time.Time),
	}
}

func (db *MemDB) Users() repository.UserRepository     { return &memUsers{db} }
func (db *MemDB) Posts() repository.PostRepository     { return &memPosts{db} }
func (db *MemDB) Likes() repository.LikeRepository     { return &memLikes{db} }
func (db *MemDB) Follows() repository.FollowRepository { return &memFollows{db} }

// AddUser inserts a user fixture with a derived email and display name.
func (db *MemDB) AddUser(loginID string) *models.User {
	u := models.NewUser(strings.ToUpper(loginID[:1])+loginID[1:], loginID, loginID+"@example.com", "", "", time.Unix(0, 0).UTC())
	_ = db.Users().Create(context.Background(), u)
	return u
}

// AddPost inserts a post fixture created at at.
func (db *MemDB) AddPost(userID uint, content string, at time.Time) *models.Post {
	p := models.NewPost(userID, content, at)
	if err := db.Posts().Create(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}

func (db *MemDB) userExists(id uint) bool {
	_, ok := db.users[id]
	return ok
}

func (db *MemDB) findPost(id uint) *models.Post {
	for _, p := range db.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

type memUsers struct{ db *MemDB }

func (r *memUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	cp := *u
	cp.Password = ""
	return &cp, nil
}

func (r *memUsers) GetByLoginIDOrEmail(_ context.Context, identifier string) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ident := strings.ToLower(strings.TrimSpace(identifier))
	for _, u := range r.db.users {
		if u.LoginID == ident || strings.ToLower(u.Email) == ident {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUsers) ExistsByLoginID(_ context.Context, loginID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.LoginID == loginID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUsers) Create(_ context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.LoginID == user.LoginID || strings.EqualFold(u.Email, user.Email) {
			return models.NewConflictError("User already exists")
		}
	}
	r.db.nextUser++
	user.ID = r.db.nextUser
	cp := *user
	r.db.users[user.ID] = &cp
	return nil
}

func (r *memUsers) UpdateProfile(_ context.Context, id uint, userName, bio string, now time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	u.UserName = userName
	u.Bio = bio
	u.Touch(now)
	return nil
}

func (r *memUsers) SearchByLoginIDOrName(_ context.Context, query string) ([]models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	q := strings.ToLower(query)
	out := []models.User{}
	for _, u := range r.db.users {
		if strings.Contains(strings.ToLower(u.LoginID), q) || strings.Contains(strings.ToLower(u.UserName), q) {
			cp := *u
			cp.Password = ""
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoginID < out[j].LoginID })
	if len(out) > repository.SearchLimit {
		out = out[:repository.SearchLimit]
	}
	return out, nil
}

type memPosts struct{ db *MemDB }

func (r *memPosts) Create(_ context.Context, post *models.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if !r.db.userExists(post.UserID) {
		return models.NewNotFoundError("User", post.UserID)
	}
	r.db.nextPost++
	post.ID = r.db.nextPost
	cp := *post
	cp.User = models.User{}
	r.db.posts = append(r.db.posts, &cp)
	return nil
}

func (r *memPosts) withAuthor(p *models.Post) *models.Post {
	cp := *p
	if u, ok := r.db.users[p.UserID]; ok {
		cp.User = *u
		cp.User.Password = ""
	}
	return &cp
}

func (r *memPosts) GetByID(_ context.Context, id uint) (*models.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p := r.db.findPost(id)
	if p == nil {
		return nil, models.NewNotFoundError("Post", id)
	}
	return r.withAuthor(p), nil
}

func (r *memPosts) PostsByAuthors(_ context.Context, authorIDs []uint) ([]*models.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	authors := repository.NewIDSet(authorIDs)
	out := []*models.Post{}
	for _, p := range r.db.posts {
		if authors.Has(p.UserID) {
			out = append(out, r.withAuthor(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memPosts) AllAuthorIDs(_ context.Context) ([]uint, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	seen := repository.IDSet{}
	ids := []uint{}
	for _, p := range r.db.posts {
		if !seen.Has(p.UserID) {
			seen[p.UserID] = struct{}{}
			ids = append(ids, p.UserID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *memPosts) CountByAuthor(_ context.Context, userID uint) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, p := range r.db.posts {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

type memLikes struct{ db *MemDB }

func (r *memLikes) CountsByPosts(_ context.Context, postIDs []uint) (map[uint]int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	want := repository.NewIDSet(postIDs)
	counts := make(map[uint]int64)
	for k := range r.db.likes {
		if want.Has(k[1]) {
			counts[k[1]]++
		}
	}
	return counts, nil
}

func (r *memLikes) LikedPostIDs(_ context.Context, userID uint) (repository.IDSet, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	set := repository.IDSet{}
	for k := range r.db.likes {
		if k[0] == userID {
			set[k[1]] = struct{}{}
		}
	}
	return set, nil
}

func (r *memLikes) Add(_ context.Context, userID, postID uint) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if !r.db.userExists(userID) {
		return false, models.NewNotFoundError("User", userID)
	}
	if r.db.findPost(postID) == nil {
		return false, models.NewNotFoundError("Post", postID)
	}
	k := pair{userID, postID}
	if _, ok := r.db.likes[k]; ok {
		return false, nil
	}
	r.db.likes[k] = time.Now()
	return true, nil
}

func (r *memLikes) Remove(_ context.Context, userID, postID uint) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	k := pair{userID, postID}
	if _, ok := r.db.likes[k]; !ok {
		return false, nil
	}
	delete(r.db.likes, k)
	return true, nil
}

func (r *memLikes) Count(_ context.Context, postID uint) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for k := range r.db.likes {
		if k[1] == postID {
			n++
		}
	}
	return n, nil
}

func (r *memLikes) Exists(_ context.Context, userID, postID uint) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.likes[pair{userID, postID}]
	return ok, nil
}

func (r *memLikes) CountByUser(_ context.Context, userID uint) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for k := range r.db.likes {
		if k[0] == userID {
			n++
		}
	}
	return n, nil
}

type memFollows struct{ db *MemDB }

func (r *memFollows) neighbours(match func(pair) (uint, bool)) []uint {
	ids := []uint{}
	for k := range r.db.follows {
		if id, ok := match(k); ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *memFollows) FolloweeIDs(_ context.Context, followerID uint) ([]uint, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.neighbours(func(k pair) (uint, bool) { return k[1], k[0] == followerID }), nil
}

func (r *memFollows) FollowerIDs(_ context.Context, followeeID uint) ([]uint, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.neighbours(func(k pair) (uint, bool) { return k[0], k[1] == followeeID }), nil
}

func (r *memFollows) IsFollowing(_ context.Context, followerID, followeeID uint) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.follows[pair{followerID, followeeID}]
	return ok, nil
}

func (r *memFollows) Follow(_ context.Context, followerID, followeeID uint) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range []uint{followerID, followeeID} {
		if !r.db.userExists(id) {
			return false, models.NewNotFoundError("User", id)
		}
	}
	k := pair{followerID, followeeID}
	if _, ok := r.db.follows[k]; ok {
		return false, nil
	}
	r.db.follows[k] = time.Now()
	return true, nil
}

func (r *memFollows) Unfollow(_ context.Context, followerID, followeeID uint) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	k := pair{followerID, followeeID}
	if _, ok := r.db.follows[k]; !ok {
		return false, nil
	}
	delete(r.db.follows, k)
	return true, nil
}

func (r *memFollows) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	ids, err := r.FolloweeIDs(ctx, userID)
	return int64(len(ids)), err
}

func (r *memFollows) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	ids, err := r.FollowerIDs(ctx, userID)
	return int64(len(ids)), err
}
