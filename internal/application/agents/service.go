package agents

import (
	"context"
	"errors"
	"net/url"

	"dwello-backend/internal/application/events"
	"dwello-backend/internal/application/moderation"
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

const notFound = "Agent not found"

type Service struct {
	DB     *gorm.DB
	Events *events.Dispatcher
}

// RegisterInput is the initial profile; Slug defaults to the slugified name.
type RegisterInput struct {
	Profile domain.AgentProfile
	Slug    string
}

// visible selects agents shown publicly: approved, or approved with edits awaiting review.
func visible(db *gorm.DB) *gorm.DB {
	return db.Where("agents.status = ? OR agents.pending_profile_edits IS NOT NULL", constants.AgentApproved)
}

func availableProperties(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", constants.PropertyAvailable).Order("created_at DESC")
}

// List returns one page of publicly visible agents.
func (s *Service) List(ctx context.Context, q url.Values) ([]domain.Agent, response.Meta, error) {
	agents := []domain.Agent{}
	base := visible(s.DB.WithContext(ctx).Model(&domain.Agent{}))
	meta, err := query.Paginate(base, query.PageFrom(q), "agents.name ASC", &agents)
	if err != nil {
		return nil, response.Meta{}, apperrors.Internal("Failed to fetch agents", err)
	}
	return agents, meta, nil
}

// AdminList returns one page of agents, optionally narrowed by status, newest first.
func (s *Service) AdminList(ctx context.Context, q url.Values) ([]domain.Agent, response.Meta, error) {
	base := s.DB.WithContext(ctx).Model(&domain.Agent{})
	if status := q.Get("status"); status != "" {
		base = base.Where("status = ?", status)
	}
	agents := []domain.Agent{}
	meta, err := query.Paginate(base, query.PageFrom(q), "agents.created_at DESC", &agents, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Properties", func(db *gorm.DB) *gorm.DB { return db.Select("id", "agent_id", "title", "status") })
	})
	if err != nil {
		return nil, response.Meta{}, apperrors.Internal("Failed to fetch agents", err)
	}
	return agents, meta, nil
}

// GetPublic finds a visible agent by id or slug, with its available properties.
func (s *Service) GetPublic(ctx context.Context, idOrSlug string) (*domain.Agent, error) {
	q := visible(s.DB.WithContext(ctx)).Preload("Properties", availableProperties)
	if id, err := uuid.Parse(idOrSlug); err == nil {
		q = q.Where("agents.id = ?", id)
	} else {
		q = q.Where("agents.slug = ?", idOrSlug)
	}
	var a domain.Agent
	if err := q.First(&a).Error; err != nil {
		return nil, apperrors.FromDB(err, notFound, "")
	}
	return &a, nil
}

// Me returns the caller's own agent record, including staged edits.
func (s *Service) Me(ctx context.Context, uid string) (*domain.Agent, error) {
	var a domain.Agent
	if err := s.DB.WithContext(ctx).Where("firebase_uid = ?", uid).First(&a).Error; err != nil {
		return nil, apperrors.FromDB(err, notFound, "")
	}
	return &a, nil
}

// Register creates the caller's agent profile in pending status and marks their user
// account as an agent.
func (s *Service) Register(ctx context.Context, actor domain.Actor, in RegisterInput) (*domain.Agent, error) {
	if in.Profile.Name == nil || *in.Profile.Name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if in.Profile.Email != nil && *in.Profile.Email != "" && !validation.IsValidEmail(*in.Profile.Email) {
		return nil, apperrors.Validation("Invalid email")
	}

	a := &domain.Agent{FirebaseUID: actor.UID, Email: actor.Email, Status: constants.AgentPending}
	in.Profile.ApplyTo(a)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Agent{}).Where("firebase_uid = ?", actor.UID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperrors.Conflict("Agent already registered")
		}
		base := validation.Slugify(in.Slug)
		if base == "" {
			base = validation.Slugify(a.Name)
		}
		slug, err := database.UniqueSlug(tx, &domain.Agent{}, base, nil)
		if err != nil {
			return err
		}
		a.Slug = slug
		if err := tx.Omit(clause.Associations).Create(a).Error; err != nil {
			return apperrors.FromDB(err, "", "Agent already registered")
		}
		if err := tx.Model(&domain.User{}).
			Where("firebase_uid = ? AND role = ?", actor.UID, constants.RoleUser).
			Update("role", constants.RoleAgent).Error; err != nil {
			return err
		}
		return events.Record(tx, constants.EventAgentCreated, a.ID.String(), a)
	})
	if err != nil {
		return nil, wrap(err, "Failed to register agent")
	}
	s.Events.Notify()
	return a, nil
}

// UpdateMe applies or stages the caller's profile edit. staged is true when the edit
// awaits admin review.
func (s *Service) UpdateMe(ctx context.Context, uid string, patch domain.AgentProfile) (*domain.Agent, bool, error) {
	if patch.Email != nil && *patch.Email != "" && !validation.IsValidEmail(*patch.Email) {
		return nil, false, apperrors.Validation("Invalid email")
	}
	var (
		out    domain.Agent
		staged bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("firebase_uid = ?", uid).First(&out).Error; err != nil {
			return apperrors.FromDB(err, notFound, "")
		}
		var err error
		staged, err = moderation.SubmitEdit(&out, patch)
		if err != nil {
			return err
		}
		return persist(tx, &out, constants.EventAgentUpdated)
	})
	if err != nil {
		return nil, false, wrap(err, "Failed to update agent")
	}
	s.Events.Notify()
	return &out, staged, nil
}

// Approve and Reject are the admin moderation decisions on the whole profile.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	return s.decide(ctx, id, moderation.ApproveAgent)
}

func (s *Service) Reject(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	return s.decide(ctx, id, moderation.RejectAgent)
}

// ApproveEdits merges staged edits; RejectEdits discards them. Both fail with NotFound
// when nothing is staged.
func (s *Service) ApproveEdits(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	return s.decide(ctx, id, alwaysChanged(moderation.ApproveEdits))
}

func (s *Service) RejectEdits(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	return s.decide(ctx, id, alwaysChanged(moderation.RejectEdits))
}

func alwaysChanged(fn func(*domain.Agent) error) func(*domain.Agent) (bool, error) {
	return func(a *domain.Agent) (bool, error) {
		return true, fn(a)
	}
}

func (s *Service) decide(ctx context.Context, id uuid.UUID, fn func(*domain.Agent) (bool, error)) (*domain.Agent, error) {
	var (
		out     domain.Agent
		changed bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&out).Error; err != nil {
			return apperrors.FromDB(err, notFound, "")
		}
		var err error
		changed, err = fn(&out)
		if err != nil || !changed {
			return err
		}
		return persist(tx, &out, constants.EventAgentUpdated)
	})
	if err != nil {
		return nil, wrap(err, "Failed to update agent")
	}
	if changed {
		s.Events.Notify()
	}
	return &out, nil
}

// Delete removes the agent; its properties and blog posts stay, unassigned.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a domain.Agent
		if err := tx.Where("id = ?", id).First(&a).Error; err != nil {
			return apperrors.FromDB(err, notFound, "")
		}
		if err := tx.Model(&domain.Property{}).Where("agent_id = ?", id).Update("agent_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.BlogPost{}).Where("agent_id = ?", id).Update("agent_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.Agent{}, "id = ?", id).Error; err != nil {
			return err
		}
		return events.Record(tx, constants.EventAgentDeleted, id.String(), events.Deleted(id))
	})
	if err != nil {
		return wrap(err, "Failed to delete agent")
	}
	s.Events.Notify()
	return nil
}

// persist writes the moderated and editable columns of a and records event.
func persist(tx *gorm.DB, a *domain.Agent, event string) error {
	cols := map[string]interface{}{
		"name":                  a.Name,
		"email":                 a.Email,
		"phone_call":            a.PhoneCall,
		"phone_whatsapp":        a.PhoneWhatsapp,
		"bio":                   a.Bio,
		"title":                 a.Title,
		"profile_picture":       a.ProfilePicture,
		"experience":            a.Experience,
		"areas_served":          a.AreasServed,
		"specializations":       a.Specializations,
		"status":                a.Status,
		"pending_profile_edits": a.PendingProfileEdits,
	}
	if err := tx.Model(&domain.Agent{}).Where("id = ?", a.ID).Updates(cols).Error; err != nil {
		return err
	}
	if err := tx.Where("id = ?", a.ID).First(a).Error; err != nil {
		return err
	}
	return events.Record(tx, event, a.ID.String(), a)
}

func wrap(err error, msg string) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Internal(msg, err)
}
