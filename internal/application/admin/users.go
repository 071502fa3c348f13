package admin

import (
	"context"
	"net/url"

	"dwello-backend/internal/application/events"
	"dwello-backend/internal/application/query"
	"dwello-backend/internal/domain"
	"dwello-backend/internal/pkg/apperrors"
	"dwello-backend/internal/pkg/constants"
	"dwello-backend/internal/pkg/response"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	userNotFound     = "User not found"
	userDetailLimit  = 10
	defaultUserLimit = 20
)

// Service is the admin-only surface that has no owning module of its own:
// user management and the dashboard.
type Service struct {
	DB     *gorm.DB
	Events *events.Dispatcher
}

// ListUsers returns one page of users, optionally narrowed by role and status.
func (s *Service) ListUsers(ctx context.Context, q url.Values) ([]domain.User, response.Meta, error) {
	base := s.DB.WithContext(ctx).Model(&domain.User{})
	if role := q.Get("role"); role != "" {
		if !constants.IsValidRole(role) {
			return nil, response.Meta{}, apperrors.Validation("Invalid role")
		}
		base = base.Where("role = ?", role)
	}
	if status := q.Get("status"); status != "" {
		if !constants.IsValidUserStatus(status) {
			return nil, response.Meta{}, apperrors.Validation("Invalid status")
		}
		base = base.Where("status = ?", status)
	}
	users := []domain.User{}
	meta, err := query.Paginate(base, query.PageWithDefault(q, defaultUserLimit), "created_at DESC", &users)
	if err != nil {
		return nil, response.Meta{}, apperrors.Internal("Failed to fetch users", err)
	}
	return users, meta, nil
}

// GetUser loads a user with saved properties and the latest activity and alerts.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := s.DB.WithContext(ctx).
		Preload("SavedProperties", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("SavedProperties.Property").
		Preload("Activity", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC").Limit(userDetailLimit) }).
		Preload("Alerts", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC").Limit(userDetailLimit) }).
		Where("id = ?", id).
		First(&u).Error
	if err != nil {
		return nil, wrap(apperrors.FromDB(err, userNotFound, ""), "Failed to fetch user")
	}
	return &u, nil
}

// UpdateUserStatus sets a user's account status on behalf of actor.
func (s *Service) UpdateUserStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, status string) (*domain.User, error) {
	if !constants.IsValidUserStatus(status) {
		return nil, apperrors.Validation("Invalid status")
	}
	return s.setUserColumn(ctx, actor, id, "status", status, accountChange{Status: status}, "Failed to update user status")
}

// UpdateUserRole sets a user's role on behalf of actor.
func (s *Service) UpdateUserRole(ctx context.Context, actor domain.Actor, id uuid.UUID, role string) (*domain.User, error) {
	if !constants.IsValidRole(role) {
		return nil, apperrors.Validation("Invalid role")
	}
	return s.setUserColumn(ctx, actor, id, "role", role, accountChange{Role: role}, "Failed to update user role")
}

func (s *Service) setUserColumn(ctx context.Context, actor domain.Actor, id uuid.UUID, column, value string, change accountChange, failMsg string) (*domain.User, error) {
	var u domain.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&u).Error; err != nil {
			return apperrors.FromDB(err, userNotFound, "")
		}
		if err := checkAccountChange(tx, actor, &u, change); err != nil {
			return err
		}
		if err := tx.Model(&u).Update(column, value).Error; err != nil {
			return err
		}
		return events.Record(tx, constants.EventUserUpdated, id.String(), &u)
	})
	if err != nil {
		return nil, wrap(err, failMsg)
	}
	s.Events.Notify()
	return &u, nil
}

// DeleteUser removes the user together with saved properties, activity and alerts.
func (s *Service) DeleteUser(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u domain.User
		if err := tx.Where("id = ?", id).First(&u).Error; err != nil {
			return apperrors.FromDB(err, userNotFound, "")
		}
		if err := checkAccountChange(tx, actor, &u, accountChange{Delete: true}); err != nil {
			return err
		}
		for _, model := range []interface{}{&domain.SavedProperty{}, &domain.UserActivity{}, &domain.UserAlert{}} {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&domain.User{}, "id = ?", id).Error; err != nil {
			return err
		}
		return events.Record(tx, constants.EventUserDeleted, id.String(), events.Deleted(id))
	})
	if err != nil {
		return wrap(err, "Failed to delete user")
	}
	s.Events.Notify()
	return nil
}

func wrap(err error, msg string) error {
	if apperrors.KindOf(err) != apperrors.KindUnexpected {
		return err
	}
	return apperrors.Internal(msg, err)
}
