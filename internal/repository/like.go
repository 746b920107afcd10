package repository

import (
	"context"
	"errors"
	"time"

	"kumatter/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository is the like store. A (user, post) pair is recorded at most once.
type LikeRepository interface {
	CountsByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error)
	LikedPostIDs(ctx context.Context, userID uint) (IDSet, error)
	Add(ctx context.Context, userID, postID uint) (bool, error)
	Remove(ctx context.Context, userID, postID uint) (bool, error)
	Count(ctx context.Context, postID uint) (int64, error)
	Exists(ctx context.Context, userID, postID uint) (bool, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type likeRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db, now: time.Now}
}

type postLikeCount struct {
	PostID uint
	Count  int64
}

// CountsByPosts returns like counts keyed by post id. Posts without likes are absent.
func (r *likeRepository) CountsByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []postLikeCount
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.Like{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		counts[row.PostID] = row.Count
	}
	return counts, nil
}

func (r *likeRepository) LikedPostIDs(ctx context.Context, userID uint) (IDSet, error) {
	var ids []uint
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ?", userID).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return NewIDSet(ids), nil
}

// Add records the like and reports whether a new row was written.
// Liking an already-liked post is a no-op.
func (r *likeRepository) Add(ctx context.Context, userID, postID uint) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.User{}, "User", userID); err != nil {
			return err
		}
		if err := requireRow(tx, &models.Post{}, "Post", postID); err != nil {
			return err
		}

		like := models.Like{UserID: userID, PostID: postID, CreatedAt: r.now()}
		res := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&like)
		if res.Error != nil {
			if isUniqueConstraintError(res.Error) {
				return errAlreadyExists
			}
			return res.Error
		}
		created = res.RowsAffected > 0
		return nil
	})
	return created, wrapWriteError(err)
}

// Remove deletes the like and reports whether a row was removed.
func (r *likeRepository) Remove(ctx context.Context, userID, postID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *likeRepository) Count(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *likeRepository) Exists(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// CountByUser counts the posts userID has liked.
func (r *likeRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// wrapWriteError maps transaction results onto AppErrors; a concurrent insert
// of the same pair counts as success.
func wrapWriteError(err error) error {
	if err == nil || errors.Is(err, errAlreadyExists) {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if isForeignKeyError(err) {
		return models.NewNotFoundError("Referenced entity", "")
	}
	return models.NewInternalError(err)
}
