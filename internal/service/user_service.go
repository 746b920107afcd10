package service

import (
	"context"
	"strings"
	"time"

	"kumatter/internal/models"
	"kumatter/internal/repository"
	"kumatter/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

type UserService struct {
	userRepo   repository.UserRepository
	postRepo   repository.PostRepository
	likeRepo   repository.LikeRepository
	followRepo repository.FollowRepository
	hashCost   int
	now        func() time.Time
}

type RegisterInput struct {
	Email           string
	LoginID         string
	UserName        string
	Password        string
	PasswordConfirm string
	Bio             string
}

type UpdateProfileInput struct {
	UserID   uint
	UserName string
	Bio      string
}

func NewUserService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	likeRepo repository.LikeRepository,
	followRepo repository.FollowRepository,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		postRepo:   postRepo,
		likeRepo:   likeRepo,
		followRepo: followRepo,
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// WithHashCost sets the bcrypt cost for new passwords.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.hashCost = cost
	return s
}

// WithClock replaces the clock used for account timestamps.
func (s *UserService) WithClock(now func() time.Time) *UserService {
	s.now = now
	return s
}

// Register creates an account. When no login id is given it is derived from
// the email address.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.TrimSpace(in.Email)
	userName := strings.TrimSpace(in.UserName)

	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateUserName(userName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password, in.PasswordConfirm); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateBio(in.Bio); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	loginID := strings.ToLower(strings.TrimSpace(in.LoginID))
	if loginID == "" {
		derived, err := validation.LoginIDFromEmail(email)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		loginID = derived
	} else if err := validation.ValidateLoginID(loginID); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	taken, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError("This email address is already registered")
	}
	taken, err = s.userRepo.ExistsByLoginID(ctx, loginID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError("This login id is already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := models.NewUser(userName, loginID, strings.ToLower(email), string(hash), in.Bio, s.now())
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks a login id or email against the stored password hash.
// Unknown accounts and wrong passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, loginIDOrEmail, password string) (*models.User, error) {
	if strings.TrimSpace(loginIDOrEmail) == "" || password == "" {
		return nil, models.NewValidationError("Login id or email and password are required")
	}
	user, err := s.userRepo.GetByLoginIDOrEmail(ctx, loginIDOrEmail)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// SuggestUsers searches by login id or display name. Queries shorter than
// two characters return no suggestions.
func (s *UserService) SuggestUsers(ctx context.Context, query string, viewer *models.User) ([]models.UserSuggestion, error) {
	suggestions := []models.UserSuggestion{}
	query = strings.TrimSpace(query)
	if len([]rune(query)) < validation.MinSuggestQuery {
		return suggestions, nil
	}

	users, err := s.userRepo.SearchByLoginIDOrName(ctx, query)
	if err != nil {
		return nil, err
	}

	var followees, followers repository.IDSet
	if viewer != nil {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			ids, err := s.followRepo.FolloweeIDs(gctx, viewer.ID)
			followees = repository.NewIDSet(ids)
			return err
		})
		g.Go(func() error {
			ids, err := s.followRepo.FollowerIDs(gctx, viewer.ID)
			followers = repository.NewIDSet(ids)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	for _, u := range users {
		suggestions = append(suggestions, models.UserSuggestion{
			UserID:              u.ID,
			UserName:            u.UserName,
			LoginID:             u.LoginID,
			FollowedByLoginUser: followees.Has(u.ID),
			IsSelf:              viewer != nil && viewer.ID == u.ID,
			FollowingLoginUser:  followers.Has(u.ID),
		})
	}
	return suggestions, nil
}

// GetProfile aggregates a user's counters. viewer may be nil.
func (s *UserService) GetProfile(ctx context.Context, userID uint, viewer *models.User) (*models.UserProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &models.UserProfile{
		UserID:   user.ID,
		UserName: user.UserName,
		LoginID:  user.LoginID,
		Bio:      user.Bio,
		IsSelf:   viewer != nil && viewer.ID == user.ID,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profile.PostCount, err = s.postRepo.CountByAuthor(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		profile.FollowingCount, err = s.followRepo.CountFollowing(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		profile.FollowerCount, err = s.followRepo.CountFollowers(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		profile.LikedPostCount, err = s.likeRepo.CountByUser(gctx, userID)
		return err
	})
	if viewer != nil && !profile.IsSelf {
		g.Go(func() (err error) {
			profile.FollowedByLoginUser, err = s.followRepo.IsFollowing(gctx, viewer.ID, userID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile changes the display name and bio. An empty name keeps the current one.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	userName := strings.TrimSpace(in.UserName)
	if userName == "" {
		userName = user.UserName
	}
	if err := validation.ValidateUserName(userName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateBio(in.Bio); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	now := s.now()
	if err := s.userRepo.UpdateProfile(ctx, user.ID, userName, in.Bio, now); err != nil {
		return nil, err
	}
	user.UserName = userName
	user.Bio = in.Bio
	user.Touch(now)
	return user, nil
}
