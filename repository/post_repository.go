package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"threads-server/models"
)

// PostStore is the persistence contract for posts, likes and replies.
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id string) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]models.Post, error)
	ListFeed(ctx context.Context, authorIDs []string) ([]models.Post, error)

	AddLike(ctx context.Context, postID, userID string) error
	RemoveLike(ctx context.Context, postID, userID string) error
	HasLike(ctx context.Context, postID, userID string) (bool, error)

	AddReply(ctx context.Context, reply *models.PostReply) error
	// UpdateReplyAuthor refreshes the denormalized author fields on every
	// reply the user has written.
	UpdateReplyAuthor(ctx context.Context, userID, username, profilePicture string) error
}

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Likes").
		Preload("Replies").
		Where("id = ?", id).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostReply{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Post{}).Error
	})
}

func (r *PostRepository) ListByUser(ctx context.Context, userID string) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Likes").
		Preload("Replies").
		Where("posted_by = ?", userID).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) ListFeed(ctx context.Context, authorIDs []string) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}

	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Likes").
		Preload("Replies").
		Where("posted_by IN ?", authorIDs).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) AddLike(ctx context.Context, postID, userID string) error {
	like := models.PostLike{PostID: postID, UserID: userID}
	return r.db.WithContext(ctx).Create(&like).Error
}

func (r *PostRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	return r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostLike{}).Error
}

func (r *PostRepository) HasLike(ctx context.Context, postID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PostLike{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostRepository) AddReply(ctx context.Context, reply *models.PostReply) error {
	return r.db.WithContext(ctx).Create(reply).Error
}

func (r *PostRepository) UpdateReplyAuthor(ctx context.Context, userID, username, profilePicture string) error {
	return r.db.WithContext(ctx).
		Model(&models.PostReply{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"username":        username,
			"profile_picture": profilePicture,
		}).Error
}
