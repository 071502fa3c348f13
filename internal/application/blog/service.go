package blog

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"dwello-backend/internal/application/events"
	"dwello-backend/internal/application/query"
	"dwello-backend/internal/domain"
	"dwello-backend/internal/infrastructure/database"
	"dwello-backend/internal/pkg/apperrors"
	"dwello-backend/internal/pkg/constants"
	"dwello-backend/internal/pkg/response"
	"dwello-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const notFound = "Blog post not found"

type Service struct {
	DB     *gorm.DB
	Events *events.Dispatcher
}

type Input struct {
	Title            *string
	Slug             *string
	Content          *string
	Excerpt          *string
	Author           *string
	Category         *string
	FeaturedImageURL *string
	Tags             *[]string
	Status           *string
	AgentID          *uuid.UUID
}

func filtered(db *gorm.DB, q url.Values) *gorm.DB {
	if category := q.Get("category"); category != "" {
		db = db.Where("category = ?", category)
	}
	return db
}

// ListPublished returns one page of published posts, newest first.
func (s *Service) ListPublished(ctx context.Context, q url.Values) ([]domain.BlogPost, response.Meta, error) {
	base := filtered(s.DB.WithContext(ctx).Model(&domain.BlogPost{}), q).Where("status = ?", constants.BlogPublished)
	posts := []domain.BlogPost{}
	meta, err := query.Paginate(base, query.PageFrom(q), "created_at DESC", &posts)
	if err != nil {
		return nil, response.Meta{}, apperrors.Internal("Failed to fetch blog posts", err)
	}
	return posts, meta, nil
}

// AdminList returns one page of posts in any status.
func (s *Service) AdminList(ctx context.Context, q url.Values) ([]domain.BlogPost, response.Meta, error) {
	base := filtered(s.DB.WithContext(ctx).Model(&domain.BlogPost{}), q)
	if status := q.Get("status"); status != "" {
		base = base.Where("status = ?", status)
	}
	posts := []domain.BlogPost{}
	meta, err := query.Paginate(base, query.PageFrom(q), "created_at DESC", &posts, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Agent", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email", "slug") })
	})
	if err != nil {
		return nil, response.Meta{}, apperrors.Internal("Failed to fetch blog posts", err)
	}
	return posts, meta, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	var post domain.BlogPost
	if err := s.DB.WithContext(ctx).
		Where("slug = ? AND status = ?", slug, constants.BlogPublished).
		First(&post).Error; err != nil {
		return nil, apperrors.FromDB(err, notFound, "")
	}
	return &post, nil
}

// Create derives a unique slug from the title and an excerpt from the content when
// none is given. Posts are published unless another status is set.
func (s *Service) Create(ctx context.Context, in Input) (*domain.BlogPost, error) {
	if in.Title == nil || *in.Title == "" {
		return nil, apperrors.Validation("title is required")
	}
	post := &domain.BlogPost{Status: constants.BlogPublished}
	apply(post, in)
	if !constants.IsValidBlogStatus(post.Status) {
		return nil, apperrors.Validation("Invalid status")
	}
	if post.Excerpt == "" && post.Content != "" {
		post.Excerpt = Excerpt(post.Content, excerptLength)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		base := post.Title
		if in.Slug != nil && *in.Slug != "" {
			base = *in.Slug
		}
		slug, err := database.UniqueSlug(tx, &domain.BlogPost{}, validation.Slugify(base), nil)
		if err != nil {
			return err
		}
		post.Slug = slug
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return apperrors.FromDB(err, "", "A post with this slug already exists")
		}
		return events.Record(tx, constants.EventBlogPostCreated, idString(post.ID), post)
	})
	if err != nil {
		return nil, wrap(err, "Failed to create blog post")
	}
	s.Events.Notify()
	return post, nil
}

// Update changes the provided fields. The slug only changes when one is given.
func (s *Service) Update(ctx context.Context, id uint, in Input) (*domain.BlogPost, error) {
	if in.Title != nil && *in.Title == "" {
		return nil, apperrors.Validation("title cannot be empty")
	}
	if in.Status != nil && !constants.IsValidBlogStatus(*in.Status) {
		return nil, apperrors.Validation("Invalid status")
	}
	var post domain.BlogPost
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, id).Error; err != nil {
			return apperrors.FromDB(err, notFound, "")
		}
		apply(&post, in)
		if in.Content != nil && in.Excerpt == nil && post.Content != "" {
			post.Excerpt = Excerpt(post.Content, excerptLength)
		}
		if in.Slug != nil && *in.Slug != "" {
			slug, err := database.UniqueSlug(tx, &domain.BlogPost{}, validation.Slugify(*in.Slug), id)
			if err != nil {
				return err
			}
			post.Slug = slug
		}
		if err := tx.Omit(clause.Associations).Save(&post).Error; err != nil {
			return apperrors.FromDB(err, "", "A post with this slug already exists")
		}
		return events.Record(tx, constants.EventBlogPostUpdated, idString(post.ID), post)
	})
	if err != nil {
		return nil, wrap(err, "Failed to update blog post")
	}
	s.Events.Notify()
	return &post, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.BlogPost{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound(notFound)
		}
		return events.Record(tx, constants.EventBlogPostDeleted, idString(id), events.Deleted(id))
	})
	if err != nil {
		return wrap(err, "Failed to delete blog post")
	}
	s.Events.Notify()
	return nil
}

func apply(p *domain.BlogPost, in Input) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Excerpt != nil {
		p.Excerpt = *in.Excerpt
	}
	if in.Author != nil {
		p.Author = *in.Author
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.FeaturedImageURL != nil {
		p.FeaturedImageURL = *in.FeaturedImageURL
	}
	if in.Tags != nil {
		p.Tags = domain.StringList(*in.Tags)
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.AgentID != nil {
		id := *in.AgentID
		p.AgentID = &id
	}
}

func wrap(err error, msg string) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Internal(msg, err)
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
