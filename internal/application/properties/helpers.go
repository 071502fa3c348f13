package properties

import (
	"errors"

	"dwello-backend/internal/domain"
	"dwello-backend/internal/pkg/apperrors"
	"dwello-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func validateNumbers(in Input) error {
	switch {
	case in.Price != nil && *in.Price < 0:
		return apperrors.Validation("price cannot be negative")
	case in.Bedrooms != nil && *in.Bedrooms < 0:
		return apperrors.Validation("bedrooms cannot be negative")
	case in.Bathrooms != nil && *in.Bathrooms < 0:
		return apperrors.Validation("bathrooms cannot be negative")
	case in.Area != nil && *in.Area < 0:
		return apperrors.Validation("area cannot be negative")
	}
	return nil
}

func apply(p *domain.Property, in Input) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Currency != nil {
		p.Currency = *in.Currency
	}
	if in.Region != nil {
		p.Region = *in.Region
	}
	if in.Address != nil {
		p.Address = *in.Address
	}
	if in.PropertyType != nil {
		p.PropertyType = *in.PropertyType
	}
	if in.ListingType != nil {
		p.ListingType = *in.ListingType
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	if in.Bedrooms != nil {
		p.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		p.Bathrooms = *in.Bathrooms
	}
	if in.Area != nil {
		p.Area = *in.Area
	}
	if in.Images != nil {
		p.Images = domain.StringList(*in.Images)
	}
	if in.AgentID != nil {
		id := *in.AgentID
		p.AgentID = &id
	}
}

// columns maps the provided scalar fields to column updates. Images are handled by the
// caller because removed_images also affects them.
func columns(in Input) map[string]interface{} {
	cols := map[string]interface{}{}
	if in.Title != nil {
		cols["title"] = *in.Title
	}
	if in.Description != nil {
		cols["description"] = *in.Description
	}
	if in.Price != nil {
		cols["price"] = *in.Price
	}
	if in.Currency != nil {
		cols["currency"] = *in.Currency
	}
	if in.Region != nil {
		cols["region"] = *in.Region
	}
	if in.Address != nil {
		cols["address"] = *in.Address
	}
	if in.PropertyType != nil {
		cols["property_type"] = *in.PropertyType
	}
	if in.ListingType != nil {
		cols["listing_type"] = *in.ListingType
	}
	if in.Status != nil {
		cols["status"] = *in.Status
	}
	if in.IsFeatured != nil {
		cols["is_featured"] = *in.IsFeatured
	}
	if in.Bedrooms != nil {
		cols["bedrooms"] = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		cols["bathrooms"] = *in.Bathrooms
	}
	if in.Area != nil {
		cols["area"] = *in.Area
	}
	if in.AgentID != nil {
		cols["agent_id"] = *in.AgentID
	}
	return cols
}

func removeImages(images []string, removed []string) []string {
	if len(removed) == 0 {
		return images
	}
	drop := make(map[string]bool, len(removed))
	for _, r := range removed {
		drop[r] = true
	}
	out := make([]string, 0, len(images))
	for _, img := range images {
		if !drop[img] {
			out = append(out, img)
		}
	}
	return out
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func requireAmenities(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	var n int64
	if err := tx.Model(&domain.Amenity{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
		return apperrors.Internal("Failed to verify amenities", err)
	}
	if n != int64(len(ids)) {
		return apperrors.Validation("Unknown amenity id")
	}
	return nil
}

func linkAmenities(tx *gorm.DB, propertyID uuid.UUID, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	rows := make([]domain.PropertyAmenity, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, domain.PropertyAmenity{PropertyID: propertyID, AmenityID: id})
	}
	return tx.Create(&rows).Error
}

func requireAgent(tx *gorm.DB, id uuid.UUID) error {
	var n int64
	if err := tx.Model(&domain.Agent{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return apperrors.Internal("Failed to verify agent", err)
	}
	if n == 0 {
		return apperrors.Validation("Unknown agent_id")
	}
	return nil
}

// agentFor returns the caller's agent record. Rejected agents cannot list properties.
func agentFor(tx *gorm.DB, uid string) (*domain.Agent, error) {
	var a domain.Agent
	if err := tx.Where("firebase_uid = ?", uid).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Forbidden("An agent profile is required to manage properties")
		}
		return nil, apperrors.Internal("Failed to load agent", err)
	}
	if a.Status == constants.AgentRejected {
		return nil, apperrors.Forbidden("Agent profile was rejected")
	}
	return &a, nil
}

// authorize allows admins and the owning agent.
func authorize(tx *gorm.DB, actor domain.Actor, p *domain.Property) error {
	if actor.IsAdmin {
		return nil
	}
	agent, err := agentFor(tx, actor.UID)
	if err != nil {
		return err
	}
	if p.AgentID == nil || *p.AgentID != agent.ID {
		return apperrors.Forbidden("You can only manage your own properties")
	}
	return nil
}
