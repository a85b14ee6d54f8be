// Package seed fills the taxonomy tables (categories and locations) that
// authors pick from when writing posts.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/store"
	"blogicum/internal/utils"

	"gopkg.in/yaml.v3"
)

type CategorySeed struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Slug        string `yaml:"slug"` // 为空时由标题生成
	IsPublished *bool  `yaml:"is_published"`
}

type LocationSeed struct {
	Name        string `yaml:"name"`
	IsPublished *bool  `yaml:"is_published"`
}

// Data is the content of a seed file.
type Data struct {
	Categories []CategorySeed `yaml:"categories"`
	Locations  []LocationSeed `yaml:"locations"`
}

// Result counts what Apply created and skipped.
type Result struct {
	CategoriesCreated int
	CategoriesSkipped int
	LocationsCreated  int
	LocationsSkipped  int
}

func Default() *Data {
	return &Data{
		Categories: []CategorySeed{
			{Title: "Travel", Description: "Trips near and far."},
			{Title: "Food", Description: "What we ate and where."},
			{Title: "City life", Description: "Streets, parks and people."},
		},
		Locations: []LocationSeed{
			{Name: "Moscow"},
			{Name: "Saint Petersburg"},
			{Name: "Somewhere in the mountains"},
		},
	}
}

// Load reads a YAML seed file.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &data, nil
}

// Apply creates the categories and locations that do not exist yet.
// Categories are matched by slug, locations by name.
func Apply(ctx context.Context, st *store.Store, data *Data, now time.Time) (Result, error) {
	var res Result

	for _, c := range data.Categories {
		slug := c.Slug
		if slug == "" {
			slug = utils.Slugify(c.Title)
		}
		if !utils.IsValidSlug(slug) {
			return res, fmt.Errorf("category %q: invalid slug %q", c.Title, slug)
		}

		_, err := st.GetCategoryBySlug(ctx, slug, false)
		if err == nil {
			res.CategoriesSkipped++
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return res, err
		}

		category := &models.Category{
			Title:       c.Title,
			Description: c.Description,
			Slug:        slug,
			IsPublished: published(c.IsPublished),
			CreatedAt:   now,
		}
		if err := st.CreateCategory(ctx, category); err != nil {
			return res, err
		}
		slog.InfoContext(ctx, "category created", "slug", slug, "id", category.ID)
		res.CategoriesCreated++
	}

	existing, err := st.ListLocations(ctx, false)
	if err != nil {
		return res, err
	}
	names := make(map[string]bool, len(existing))
	for _, l := range existing {
		names[l.Name] = true
	}

	for _, l := range data.Locations {
		if names[l.Name] {
			res.LocationsSkipped++
			continue
		}
		location := &models.Location{
			Name:        l.Name,
			IsPublished: published(l.IsPublished),
			CreatedAt:   now,
		}
		if err := st.CreateLocation(ctx, location); err != nil {
			return res, err
		}
		names[l.Name] = true
		slog.InfoContext(ctx, "location created", "name", l.Name, "id", location.ID)
		res.LocationsCreated++
	}

	return res, nil
}

// 未指定时默认发布
func published(v *bool) bool {
	return v == nil || *v
}
