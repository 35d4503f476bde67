package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"muselib/model"

	"gorm.io/gorm"
)

// ErrDuplicateSlug reports a uniqueness violation on the slug column.
var ErrDuplicateSlug = errors.New("duplicate slug")

// TrackRepository defines the interface for track data operations. Lookups
// return (nil, nil) when no track matches.
type TrackRepository interface {
	List(ctx context.Context, q model.ListQuery) ([]model.Track, int64, error)
	GetByID(ctx context.Context, id string) (*model.Track, error)
	GetBySlug(ctx context.Context, slug string) (*model.Track, error)
	Create(ctx context.Context, track *model.Track) error
	Update(ctx context.Context, track *model.Track) error
	Delete(ctx context.Context, id string) (bool, error)
	ListGenres(ctx context.Context) ([]string, error)
}

// gormTrackRepository implements TrackRepository on GORM/MySQL.
type gormTrackRepository struct {
	db *gorm.DB
}

// NewGormTrackRepository creates a new instance of gormTrackRepository.
func NewGormTrackRepository(db *gorm.DB) TrackRepository {
	return &gormTrackRepository{db: db}
}

// sortColumn maps an API sort field to its storage column. Unknown fields map
// to created_at, matching the decoder's default.
func sortColumn(field string) string {
	switch field {
	case model.SortTitle:
		return "title"
	case model.SortArtist:
		return "artist"
	case model.SortAlbum:
		return "album"
	default:
		return "created_at"
	}
}

// List returns one page of tracks plus the total match count. Search is a
// case-insensitive substring match across title, artist and album; genre is an
// exact membership test on the genres column. q is expected to be resolved:
// page and limit positive, sort and order within their enums.
func (r *gormTrackRepository) List(ctx context.Context, q model.ListQuery) ([]model.Track, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Track{})

	if q.Search != "" {
		pattern := "%" + strings.ToLower(q.Search) + "%"
		tx = tx.Where(
			"LOWER(title) LIKE ? OR LOWER(artist) LIKE ? OR LOWER(album) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if q.Genre != "" && q.Genre != model.GenreAll {
		tx = tx.Where("JSON_CONTAINS(genres, JSON_QUOTE(?))", q.Genre)
	}
	if q.Artist != "" {
		tx = tx.Where("artist = ?", q.Artist)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tracks: %w", err)
	}

	direction := "DESC"
	if q.Order == model.OrderAsc {
		direction = "ASC"
	}

	var tracks []model.Track
	err := tx.Order(sortColumn(q.Sort) + " " + direction).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&tracks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query tracks: %w", err)
	}

	return tracks, total, nil
}

// GetByID retrieves a track by its ID.
func (r *gormTrackRepository) GetByID(ctx context.Context, id string) (*model.Track, error) {
	var track model.Track
	err := r.db.WithContext(ctx).First(&track, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query track by id %s: %w", id, err)
	}
	return &track, nil
}

// GetBySlug retrieves a track by its slug.
func (r *gormTrackRepository) GetBySlug(ctx context.Context, slug string) (*model.Track, error) {
	var track model.Track
	err := r.db.WithContext(ctx).First(&track, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query track by slug %s: %w", slug, err)
	}
	return &track, nil
}

// Create inserts a new track. A slug collision that races past the handler's
// lookup surfaces as ErrDuplicateSlug via the unique index.
func (r *gormTrackRepository) Create(ctx context.Context, track *model.Track) error {
	if err := r.db.WithContext(ctx).Create(track).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to create track: %w", err)
	}
	return nil
}

// Update saves the full entity. GORM bumps updated_at.
func (r *gormTrackRepository) Update(ctx context.Context, track *model.Track) error {
	if err := r.db.WithContext(ctx).Save(track).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to update track %s: %w", track.ID, err)
	}
	return nil
}

// Delete removes a track by ID and reports whether a row was removed.
func (r *gormTrackRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Track{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete track %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListGenres returns the distinct genres referenced by any track, sorted.
func (r *gormTrackRepository) ListGenres(ctx context.Context) ([]string, error) {
	var rows []model.Track
	if err := r.db.WithContext(ctx).Select("genres").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}

	seen := make(map[string]struct{})
	var genres []string
	for _, row := range rows {
		for _, g := range row.Genres {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			genres = append(genres, g)
		}
	}
	sort.Strings(genres)
	return genres, nil
}
