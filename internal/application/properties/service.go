package properties

import (
	"context"
	"net/url"

	"dwello-backend/internal/application/events"
	"dwello-backend/internal/application/moderation"
	"dwello-backend/internal/application/query"
	"dwello-backend/internal/domain"
	"dwello-backend/internal/pkg/apperrors"
	"dwello-backend/internal/pkg/constants"
	"dwello-backend/internal/pkg/response"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const notFound = "Property not found"

type Service struct {
	DB     *gorm.DB
	Events *events.Dispatcher
}

// Input carries the writable fields of a property; nil means "not provided".
type Input struct {
	Title         *string
	Description   *string
	Price         *int64
	Currency      *string
	Region        *string
	Address       *string
	PropertyType  *string
	ListingType   *string
	Status        *string
	IsFeatured    *bool
	Bedrooms      *int
	Bathrooms     *int
	Area          *float64
	Images        *[]string
	RemovedImages []string
	AgentID       *uuid.UUID
	Amenities     *[]uint
}

// WithDetails preloads the agent summary and amenities.
func WithDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Agent", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email", "phone_call", "phone_whatsapp", "profile_picture", "slug", "title", "status")
		}).
		Preload("Amenities", func(db *gorm.DB) *gorm.DB { return db.Order("amenities.name") })
}

// List returns one page of properties matching the query filters, newest first.
func (s *Service) List(ctx context.Context, q url.Values) ([]domain.Property, response.Meta, error) {
	base, err := query.PropertySpec(q).Apply(s.DB.WithContext(ctx).Model(&domain.Property{}))
	if err != nil {
		return nil, response.Meta{}, apperrors.Internal("Failed to fetch properties", err)
	}
	props := []domain.Property{}
	meta, err := query.Paginate(base, query.PageFrom(q), "properties.created_at DESC", &props, WithDetails)
	if err != nil {
		return nil, response.Meta{}, apperrors.Internal("Failed to fetch properties", err)
	}
	return props, meta, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	return load(WithDetails(s.DB.WithContext(ctx)), id)
}

func load(db *gorm.DB, id uuid.UUID) (*domain.Property, error) {
	var p domain.Property
	if err := db.Where("properties.id = ?", id).First(&p).Error; err != nil {
		return nil, apperrors.FromDB(err, notFound, "")
	}
	return &p, nil
}

// Create inserts a property with its amenity links. Agents create pending listings bound
// to themselves; admins may pick the agent and the initial status.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in Input) (*domain.Property, error) {
	if in.Title == nil || *in.Title == "" {
		return nil, apperrors.Validation("title is required")
	}
	if in.Price == nil {
		return nil, apperrors.Validation("price is required")
	}
	if err := validateNumbers(in); err != nil {
		return nil, err
	}

	p := &domain.Property{Status: constants.PropertyAvailable}
	apply(p, in)
	p.Images = domain.StringList(removeImages(p.Images, in.RemovedImages))

	tx := s.DB.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if actor.IsAdmin {
		if in.Status != nil && !constants.IsValidPropertyStatus(*in.Status) {
			tx.Rollback()
			return nil, apperrors.Validation("Invalid status")
		}
		if in.AgentID != nil {
			if err := requireAgent(tx, *in.AgentID); err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	} else {
		agent, err := agentFor(tx, actor.UID)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		p.AgentID = &agent.ID
		p.Status = constants.PropertyPending
		p.IsFeatured = false
	}

	var amenityIDs []uint
	if in.Amenities != nil {
		amenityIDs = dedupe(*in.Amenities)
		if err := requireAmenities(tx, amenityIDs); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Internal("Failed to create property", err)
	}
	if err := linkAmenities(tx, p.ID, amenityIDs); err != nil {
		tx.Rollback()
		return nil, apperrors.Internal("Failed to create property", err)
	}
	created, err := load(WithDetails(tx), p.ID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := events.Record(tx, constants.EventPropertyCreated, created.ID.String(), created); err != nil {
		tx.Rollback()
		return nil, apperrors.Internal("Failed to create property", err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Internal("Failed to create property", err)
	}
	s.Events.Notify()
	return created, nil
}

// Update changes the provided fields and, when Amenities is set, replaces the amenity
// links, all in one transaction. Only admins may change status, featured flag or agent.
func (s *Service) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, in Input) (*domain.Property, error) {
	if in.Title != nil && *in.Title == "" {
		return nil, apperrors.Validation("title cannot be empty")
	}
	if err := validateNumbers(in); err != nil {
		return nil, err
	}
	if !actor.IsAdmin && (in.Status != nil || in.IsFeatured != nil || in.AgentID != nil) {
		return nil, apperrors.Forbidden("Only admins can change status, featured flag or agent")
	}

	var updated *domain.Property
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := load(tx, id)
		if err != nil {
			return err
		}
		if err := authorize(tx, actor, current); err != nil {
			return err
		}
		if in.Status != nil {
			if _, err := moderation.PropertyTransition(current.Status, *in.Status); err != nil {
				return err
			}
		}
		if in.AgentID != nil {
			if err := requireAgent(tx, *in.AgentID); err != nil {
				return err
			}
		}

		next := *current
		apply(&next, in)
		next.Images = domain.StringList(removeImages(next.Images, in.RemovedImages))
		cols := columns(in)
		if in.Images != nil || len(in.RemovedImages) > 0 {
			cols["images"] = next.Images
		}
		if len(cols) > 0 {
			if err := tx.Model(&domain.Property{}).Where("id = ?", id).Updates(cols).Error; err != nil {
				return apperrors.Internal("Failed to update property", err)
			}
		}

		if in.Amenities != nil {
			ids := dedupe(*in.Amenities)
			if err := requireAmenities(tx, ids); err != nil {
				return err
			}
			if err := tx.Where("property_id = ?", id).Delete(&domain.PropertyAmenity{}).Error; err != nil {
				return apperrors.Internal("Failed to update property", err)
			}
			if err := linkAmenities(tx, id, ids); err != nil {
				return apperrors.Internal("Failed to update property", err)
			}
		}

		updated, err = load(WithDetails(tx), id)
		if err != nil {
			return err
		}
		return events.Record(tx, constants.EventPropertyUpdated, id.String(), updated)
	})
	if err != nil {
		return nil, wrap(err, "Failed to update property")
	}
	s.Events.Notify()
	return updated, nil
}

// Delete removes the property and every row that references it.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := load(tx, id)
		if err != nil {
			return err
		}
		if err := authorize(tx, actor, current); err != nil {
			return err
		}
		for _, model := range []interface{}{&domain.PropertyAmenity{}, &domain.SavedProperty{}, &domain.UserActivity{}} {
			if err := tx.Where("property_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&domain.Property{}, "id = ?", id).Error; err != nil {
			return err
		}
		return events.Record(tx, constants.EventPropertyDeleted, id.String(), events.Deleted(id))
	})
	if err != nil {
		return wrap(err, "Failed to delete property")
	}
	s.Events.Notify()
	return nil
}

// SetStatus moves a property through the moderation lifecycle. Setting the current status
// again succeeds without writing or notifying.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Property, error) {
	var out *domain.Property
	changed := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := load(tx, id)
		if err != nil {
			return err
		}
		changed, err = moderation.PropertyTransition(current.Status, status)
		if err != nil {
			return err
		}
		if changed {
			if err := tx.Model(&domain.Property{}).Where("id = ?", id).Update("status", status).Error; err != nil {
				return err
			}
		}
		out, err = load(WithDetails(tx), id)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return events.Record(tx, constants.EventPropertyUpdated, id.String(), out)
	})
	if err != nil {
		return nil, wrap(err, "Failed to update property status")
	}
	if changed {
		s.Events.Notify()
	}
	return out, nil
}

// ToggleFeatured reads the current flag and stores its negation.
func (s *Service) ToggleFeatured(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	var out *domain.Property
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := load(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(&domain.Property{}).Where("id = ?", id).Update("is_featured", !current.IsFeatured).Error; err != nil {
			return err
		}
		out, err = load(WithDetails(tx), id)
		if err != nil {
			return err
		}
		return events.Record(tx, constants.EventPropertyUpdated, id.String(), out)
	})
	if err != nil {
		return nil, wrap(err, "Failed to update property")
	}
	s.Events.Notify()
	return out, nil
}

func wrap(err error, msg string) error {
	if apperrors.KindOf(err) != apperrors.KindUnexpected {
		return err
	}
	return apperrors.Internal(msg, err)
}
