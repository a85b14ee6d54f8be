package store

import (
	"context"

	"blogicum/internal/models"

	"gorm.io/gorm"
)

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, id).Error; err != nil {
		return nil, translate("get user", err)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate("get user", err)
	}
	return &user, nil
}

// UsernameTaken reports whether another user (not exceptID) has username.
func (s *Store) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	var count int64
	err := s.conn(ctx).Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&count).Error
	return count > 0, translate("check username", err)
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.create(ctx, "create user", user)
}

func (s *Store) SaveUser(ctx context.Context, user *models.User) error {
	return s.save(ctx, "save user", user)
}

// DeleteUser deletes a user with their posts, the comments on those posts
// and every comment they wrote.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("author_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return translate("list user posts", err)
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
				return translate("delete comments on user posts", err)
			}
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return translate("delete user comments", err)
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return translate("delete user posts", err)
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return translate("delete user", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
