package admin

import (
	"dwello-backend/internal/domain"
	"dwello-backend/internal/pkg/apperrors"
	"dwello-backend/internal/pkg/constants"

	"gorm.io/gorm"
)

var (
	ErrOwnAccount = apperrors.Forbidden("Admins cannot modify their own account")
	ErrLastAdmin  = apperrors.Conflict("At least one active admin is required")
)

// accountChange is what an admin is about to do to target. Empty fields are unchanged.
type accountChange struct {
	Role   string
	Status string
	Delete bool
}

// removesAdmin reports whether the change takes an active admin out of the admin pool.
func (c accountChange) removesAdmin(target *domain.User) bool {
	if target.Role != constants.RoleAdmin || target.Status != constants.UserActive {
		return false
	}
	return c.Delete ||
		(c.Role != "" && c.Role != constants.RoleAdmin) ||
		(c.Status != "" && c.Status != constants.UserActive)
}

// checkAccountChange guards admin user management: nobody changes their own account
// through it and the last active admin stays.
func checkAccountChange(tx *gorm.DB, actor domain.Actor, target *domain.User, change accountChange) error {
	if actor.UID != "" && target.FirebaseUID == actor.UID {
		return ErrOwnAccount
	}
	if !change.removesAdmin(target) {
		return nil
	}
	var n int64
	if err := tx.Model(&domain.User{}).
		Where("role = ? AND status = ?", constants.RoleAdmin, constants.UserActive).
		Count(&n).Error; err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastAdmin
	}
	return nil
}
