package users

import (
	"context"
	"errors"

	"dwello-backend/internal/application/events"
	"dwello-backend/internal/application/properties"
	"dwello-backend/internal/domain"
	"dwello-backend/internal/pkg/apperrors"
	"dwello-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultActivityLimit = 10
	maxActivityLimit     = 100
)

// Service serves the signed-in user's own account. Every operation resolves the caller
// by identity subject and creates the account on first sight.
type Service struct {
	DB     *gorm.DB
	Events *events.Dispatcher
}

type ProfileInput struct {
	Name  *string
	Phone *string
}

type AlertInput struct {
	Name      *string
	Criteria  datatypes.JSON
	Frequency *string
	IsActive  *bool
}

// ensure returns the caller's user row, creating it (and its userCreated event) if absent.
func ensure(tx *gorm.DB, actor domain.Actor) (*domain.User, bool, error) {
	var u domain.User
	err := tx.Where("firebase_uid = ?", actor.UID).First(&u).Error
	if err == nil {
		return &u, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	u = domain.User{
		FirebaseUID: actor.UID,
		Name:        actor.Name,
		Email:       actor.Email,
		Role:        constants.RoleUser,
		Status:      constants.UserActive,
	}
	if actor.IsAdmin {
		u.Role = constants.RoleAdmin
	}
	// Savepoint: losing the firebase_uid race to a concurrent first request must leave tx
	// usable for the re-read.
	err = tx.Transaction(func(sp *gorm.DB) error {
		if err := sp.Omit(clause.Associations).Create(&u).Error; err != nil {
			return err
		}
		return events.Record(sp, constants.EventUserCreated, u.ID.String(), u)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		var existing domain.User
		if err := tx.Where("firebase_uid = ?", actor.UID).First(&existing).Error; err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &u, true, nil
}

// withUser runs fn in a transaction with the caller's account.
func (s *Service) withUser(ctx context.Context, actor domain.Actor, fn func(tx *gorm.DB, u *domain.User) error) error {
	created := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, isNew, err := ensure(tx, actor)
		if err != nil {
			return err
		}
		created = isNew
		return fn(tx, u)
	})
	if err == nil && created {
		s.Events.Notify()
	}
	return err
}

func (s *Service) Profile(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	var out *domain.User
	err := s.withUser(ctx, actor, func(_ *gorm.DB, u *domain.User) error {
		out = u
		return nil
	})
	if err != nil {
		return nil, wrap(err, "Failed to load profile")
	}
	return out, nil
}

func (s *Service) UpdateProfile(ctx context.Context, actor domain.Actor, in ProfileInput) (*domain.User, error) {
	var out *domain.User
	err := s.withUser(ctx, actor, func(tx *gorm.DB, u *domain.User) error {
		cols := map[string]interface{}{}
		if in.Name != nil {
			cols["name"] = *in.Name
		}
		if in.Phone != nil {
			cols["phone"] = *in.Phone
		}
		if len(cols) == 0 {
			return apperrors.Validation("Nothing to update")
		}
		if err := tx.Model(&domain.User{}).Where("id = ?", u.ID).Updates(cols).Error; err != nil {
			return err
		}
		if err := tx.First(u, "id = ?", u.ID).Error; err != nil {
			return err
		}
		out = u
		return events.Record(tx, constants.EventUserUpdated, u.ID.String(), u)
	})
	if err != nil {
		return nil, wrap(err, "Failed to update profile")
	}
	s.Events.Notify()
	return out, nil
}

// SavedProperties returns the caller's saved properties, most recently saved first.
func (s *Service) SavedProperties(ctx context.Context, actor domain.Actor) ([]domain.Property, error) {
	out := []domain.Property{}
	err := s.withUser(ctx, actor, func(tx *gorm.DB, u *domain.User) error {
		var saved []domain.SavedProperty
		if err := tx.Where("user_id = ?", u.ID).
			Preload("Property", properties.WithDetails).
			Order("created_at DESC").
			Find(&saved).Error; err != nil {
			return err
		}
		for _, sp := range saved {
			if sp.Property != nil {
				out = append(out, *sp.Property)
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrap(err, "Failed to fetch saved properties")
	}
	return out, nil
}

// SaveProperty bookmarks a property. Saving the same property twice is a conflict.
func (s *Service) SaveProperty(ctx context.Context, actor domain.Actor, propertyID uuid.UUID) (*domain.SavedProperty, error) {
	var out *domain.SavedProperty
	err := s.withUser(ctx, actor, func(tx *gorm.DB, u *domain.User) error {
		var n int64
		if err := tx.Model(&domain.Property{}).Where("id = ?", propertyID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return apperrors.NotFound("Property not found")
		}
		if err := tx.Model(&domain.SavedProperty{}).
			Where("user_id = ? AND property_id = ?", u.ID, propertyID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperrors.Conflict("Property already saved")
		}
		sp := &domain.SavedProperty{UserID: u.ID, PropertyID: propertyID}
		if err := tx.Omit(clause.Associations).Create(sp).Error; err != nil {
			return apperrors.FromDB(err, "", "Property already saved")
		}
		out = sp
		return nil
	})
	if err != nil {
		return nil, wrap(err, "Failed to save property")
	}
	return out, nil
}

func (s *Service) RemoveSavedProperty(ctx context.Context, actor domain.Actor, propertyID uuid.UUID) error {
	err := s.withUser(ctx, actor, func(tx *gorm.DB, u *domain.User) error {
		res := tx.Where("user_id = ? AND property_id = ?", u.ID, propertyID).Delete(&domain.SavedProperty{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("Saved property not found")
		}
		return nil
	})
	return wrap(err, "Failed to remove saved property")
}

// Activity returns the caller's latest activity, limit entries at most.
func (s *Service) Activity(ctx context.Context, actor domain.Actor, limit int) ([]domain.UserActivity, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	out := []domain.UserActivity{}
	err := s.withUser(ctx, actor, func(tx *gorm.DB, u *domain.User) error {
		return tx.Where("user_id = ?", u.ID).
			Preload("Property", properties.WithDetails).
			Order("created_at DESC").
			Limit(limit).
			Find(&out).Error
	})
	if err != nil {
		return nil, wrap(err, "Failed to fetch activity")
	}
	return out, nil
}

func (s *Service) RecordActivity(ctx context.Context, actor domain.Actor, propertyID *uuid.UUID, action string) (*domain.UserActivity, error) {
	if !constants.IsValidActivityAction(action) {
		return nil, apperrors.Validation("Invalid action")
	}
	var out *domain.UserActivity
	err := s.withUser(ctx, actor, func(tx *gorm.DB, u *domain.User) error {
		if propertyID != nil {
			var n int64
			if err := tx.Model(&domain.Property{}).Where("id = ?", *propertyID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return apperrors.NotFound("Property not found")
			}
		}
		a := &domain.UserActivity{UserID: u.ID, PropertyID: propertyID, Action: action}
		if err := tx.Omit(clause.Associations).Create(a).Error; err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, wrap(err, "Failed to record activity")
	}
	return out, nil
}

func (s *Service) Alerts(ctx context.Context, actor domain.Actor) ([]domain.UserAlert, error) {
	out := []domain.UserAlert{}
	err := s.withUser(ctx, actor, func(tx *gorm.DB, u *domain.User) error {
		return tx.Where("user_id = ?", u.ID).Order("created_at DESC").Find(&out).Error
	})
	if err != nil {
		return nil, wrap(err, "Failed to fetch alerts")
	}
	return out, nil
}

func (s *Service) CreateAlert(ctx context.Context, actor domain.Actor, in AlertInput) (*domain.UserAlert, error) {
	if in.Name == nil || *in.Name == "" {
		return nil, apperrors.Validation("name is required")
	}
	frequency := "daily"
	if in.Frequency != nil {
		frequency = *in.Frequency
	}
	if !constants.IsValidAlertFrequency(frequency) {
		return nil, apperrors.Validation("Invalid frequency")
	}
	criteria := in.Criteria
	if len(criteria) == 0 {
		criteria = datatypes.JSON("{}")
	}
	var out *domain.UserAlert
	err := s.withUser(ctx, actor, func(tx *gorm.DB, u *domain.User) error {
		a := &domain.UserAlert{UserID: u.ID, Name: *in.Name, Criteria: criteria, Frequency: frequency, IsActive: true}
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		if in.IsActive != nil && !*in.IsActive {
			if err := tx.Model(a).Update("is_active", false).Error; err != nil {
				return err
			}
			a.IsActive = false
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, wrap(err, "Failed to create alert")
	}
	return out, nil
}

func (s *Service) UpdateAlert(ctx context.Context, actor domain.Actor, id uuid.UUID, in AlertInput) (*domain.UserAlert, error) {
	if in.Name != nil && *in.Name == "" {
		return nil, apperrors.Validation("name cannot be empty")
	}
	if in.Frequency != nil && !constants.IsValidAlertFrequency(*in.Frequency) {
		return nil, apperrors.Validation("Invalid frequency")
	}
	var out domain.UserAlert
	err := s.withUser(ctx, actor, func(tx *gorm.DB, u *domain.User) error {
		if err := tx.Where("id = ? AND user_id = ?", id, u.ID).First(&out).Error; err != nil {
			return apperrors.FromDB(err, "Alert not found", "")
		}
		cols := map[string]interface{}{}
		if in.Name != nil {
			cols["name"] = *in.Name
		}
		if len(in.Criteria) > 0 {
			cols["criteria"] = in.Criteria
		}
		if in.Frequency != nil {
			cols["frequency"] = *in.Frequency
		}
		if in.IsActive != nil {
			cols["is_active"] = *in.IsActive
		}
		if len(cols) > 0 {
			if err := tx.Model(&domain.UserAlert{}).Where("id = ?", id).Updates(cols).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).First(&out).Error
	})
	if err != nil {
		return nil, wrap(err, "Failed to update alert")
	}
	return &out, nil
}

func (s *Service) DeleteAlert(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	err := s.withUser(ctx, actor, func(tx *gorm.DB, u *domain.User) error {
		res := tx.Where("id = ? AND user_id = ?", id, u.ID).Delete(&domain.UserAlert{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("Alert not found")
		}
		return nil
	})
	return wrap(err, "Failed to delete alert")
}

func wrap(err error, msg string) error {
	if err == nil || apperrors.KindOf(err) != apperrors.KindUnexpected {
		return err
	}
	return apperrors.Internal(msg, err)
}
