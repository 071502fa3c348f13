package amenities

import (
	"context"
	"errors"
	"strings"

	"dwello-backend/internal/domain"
	"dwello-backend/internal/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	notFound  = "Amenity not found"
	duplicate = "Amenity already exists"
)

type Service struct {
	DB *gorm.DB
}

type Input struct {
	Name     *string
	Icon     *string
	Category *string
}

func (s *Service) List(ctx context.Context) ([]domain.Amenity, error) {
	out := []domain.Amenity{}
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, apperrors.Internal("Failed to fetch amenities", err)
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Amenity, error) {
	name := ""
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
	}
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	a := &domain.Amenity{Name: name}
	if in.Icon != nil {
		a.Icon = *in.Icon
	}
	if in.Category != nil {
		a.Category = *in.Category
	}
	if err := s.DB.WithContext(ctx).Create(a).Error; err != nil {
		return nil, apperrors.FromDB(err, "", duplicate)
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, id uint, in Input) (*domain.Amenity, error) {
	var a domain.Amenity
	db := s.DB.WithContext(ctx)
	if err := db.First(&a, id).Error; err != nil {
		return nil, apperrors.FromDB(err, notFound, "")
	}
	cols := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.Validation("name cannot be empty")
		}
		cols["name"] = name
	}
	if in.Icon != nil {
		cols["icon"] = *in.Icon
	}
	if in.Category != nil {
		cols["category"] = *in.Category
	}
	if len(cols) > 0 {
		if err := db.Model(&a).Updates(cols).Error; err != nil {
			return nil, apperrors.FromDB(err, "", duplicate)
		}
	}
	if err := db.First(&a, id).Error; err != nil {
		return nil, apperrors.FromDB(err, notFound, "")
	}
	return &a, nil
}

// Delete removes the amenity and its property links.
func (s *Service) Delete(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("amenity_id = ?", id).Delete(&domain.PropertyAmenity{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Amenity{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound(notFound)
		}
		return nil
	})
	var appErr *apperrors.Error
	if err != nil && !errors.As(err, &appErr) {
		return apperrors.Internal("Failed to delete amenity", err)
	}
	return err
}
