package store

import (
	"context"

	"blogicum/internal/models"

	"gorm.io/gorm"
)

// GetCategoryBySlug finds a category by slug. With publishedOnly an
// unpublished category is reported as ErrNotFound.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Category, error) {
	tx := s.conn(ctx).Where("slug = ?", slug)
	if publishedOnly {
		tx = tx.Where("is_published = ?", true)
	}
	var category models.Category
	if err := tx.First(&category).Error; err != nil {
		return nil, translate("get category", err)
	}
	return &category, nil
}

func (s *Store) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := s.conn(ctx).First(&category, id).Error; err != nil {
		return nil, translate("get category", err)
	}
	return &category, nil
}

// ListCategories returns categories ordered by title.
func (s *Store) ListCategories(ctx context.Context, publishedOnly bool) ([]models.Category, error) {
	tx := s.conn(ctx).Order("title ASC")
	if publishedOnly {
		tx = tx.Where("is_published = ?", true)
	}
	var categories []models.Category
	err := tx.Find(&categories).Error
	return categories, translate("list categories", err)
}

func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	return s.create(ctx, "create category", category)
}

func (s *Store) SaveCategory(ctx context.Context, category *models.Category) error {
	return s.save(ctx, "save category", category)
}

// DeleteCategory deletes a category; its posts stay, uncategorized.
func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Post{}).Where("category_id = ?", id).Update("category_id", nil).Error
		if err != nil {
			return translate("detach category", err)
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return translate("delete category", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Store) GetLocation(ctx context.Context, id uint) (*models.Location, error) {
	var location models.Location
	if err := s.conn(ctx).First(&location, id).Error; err != nil {
		return nil, translate("get location", err)
	}
	return &location, nil
}

// ListLocations returns locations ordered by name.
func (s *Store) ListLocations(ctx context.Context, publishedOnly bool) ([]models.Location, error) {
	tx := s.conn(ctx).Order("name ASC")
	if publishedOnly {
		tx = tx.Where("is_published = ?", true)
	}
	var locations []models.Location
	err := tx.Find(&locations).Error
	return locations, translate("list locations", err)
}

func (s *Store) CreateLocation(ctx context.Context, location *models.Location) error {
	return s.create(ctx, "create location", location)
}

// DeleteLocation deletes a location; its posts stay, without a location.
func (s *Store) DeleteLocation(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Post{}).Where("location_id = ?", id).Update("location_id", nil).Error
		if err != nil {
			return translate("detach location", err)
		}
		res := tx.Delete(&models.Location{}, id)
		if res.Error != nil {
			return translate("delete location", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
