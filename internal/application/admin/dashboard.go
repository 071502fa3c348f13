package admin

import (
	"context"
	"math"
	"sort"
	"time"

	"dwello-backend/internal/application/properties"
	"dwello-backend/internal/domain"
	"dwello-backend/internal/pkg/apperrors"
	"dwello-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	growthWindow      = 30 * 24 * time.Hour
	recentActivityMax = 10
	latestPropertyMax = 5
	topAgentMax       = 5
)

type Stats struct {
	TotalUsers       int64   `json:"total_users"`
	TotalAgents      int64   `json:"total_agents"`
	TotalProperties  int64   `json:"total_properties"`
	TotalBlogPosts   int64   `json:"total_blog_posts"`
	ActiveListings   int64   `json:"active_listings"`
	PendingApprovals int64   `json:"pending_approvals"`
	TotalViews       int64   `json:"total_views"`
	TotalSaves       int64   `json:"total_saves"`
	TotalInquiries   int64   `json:"total_inquiries"`
	UserGrowth       float64 `json:"user_growth"`
	PropertyGrowth   float64 `json:"property_growth"`
}

type TopAgent struct {
	domain.Agent
	PropertyCount int64 `json:"property_count"`
}

type Dashboard struct {
	Stats          Stats                 `json:"stats"`
	RecentActivity []domain.UserActivity `json:"recentActivity"`
	TopProperties  []domain.Property     `json:"topProperties"`
	TopAgents      []TopAgent            `json:"topAgents"`
}

// Dashboard aggregates the admin overview. Growth compares the last 30 days with the 30 before.
func (s *Service) Dashboard(ctx context.Context, now time.Time) (*Dashboard, error) {
	db := s.DB.WithContext(ctx)
	out := &Dashboard{}

	counts := []struct {
		dest  *int64
		model interface{}
		where []interface{}
	}{
		{&out.Stats.TotalUsers, &domain.User{}, nil},
		{&out.Stats.TotalAgents, &domain.Agent{}, nil},
		{&out.Stats.TotalProperties, &domain.Property{}, nil},
		{&out.Stats.TotalBlogPosts, &domain.BlogPost{}, nil},
		{&out.Stats.ActiveListings, &domain.Property{}, []interface{}{"status = ?", constants.PropertyAvailable}},
		{&out.Stats.PendingApprovals, &domain.Property{}, []interface{}{"status = ?", constants.PropertyPending}},
		{&out.Stats.TotalViews, &domain.UserActivity{}, []interface{}{"action = ?", "view"}},
		{&out.Stats.TotalSaves, &domain.SavedProperty{}, nil},
		{&out.Stats.TotalInquiries, &domain.UserActivity{}, []interface{}{"action = ?", "inquiry"}},
	}
	for _, c := range counts {
		tx := db.Model(c.model)
		if len(c.where) > 0 {
			tx = tx.Where(c.where[0], c.where[1:]...)
		}
		if err := tx.Count(c.dest).Error; err != nil {
			return nil, apperrors.Internal("Failed to fetch dashboard data", err)
		}
	}

	var err error
	if out.Stats.UserGrowth, err = growth(db, &domain.User{}, now); err != nil {
		return nil, apperrors.Internal("Failed to fetch dashboard data", err)
	}
	if out.Stats.PropertyGrowth, err = growth(db, &domain.Property{}, now); err != nil {
		return nil, apperrors.Internal("Failed to fetch dashboard data", err)
	}

	out.RecentActivity = []domain.UserActivity{}
	if err := db.Preload("User", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "name", "email") }).
		Order("created_at DESC").Limit(recentActivityMax).
		Find(&out.RecentActivity).Error; err != nil {
		return nil, apperrors.Internal("Failed to fetch dashboard data", err)
	}

	out.TopProperties = []domain.Property{}
	if err := properties.WithDetails(db).Order("created_at DESC").Limit(latestPropertyMax).
		Find(&out.TopProperties).Error; err != nil {
		return nil, apperrors.Internal("Failed to fetch dashboard data", err)
	}

	if out.TopAgents, err = topAgents(db); err != nil {
		return nil, apperrors.Internal("Failed to fetch dashboard data", err)
	}
	return out, nil
}

// growth is the percentage change of rows created in the window ending at now versus the
// window before it, rounded to one decimal. With no baseline any new row counts as 100%.
func growth(db *gorm.DB, model interface{}, now time.Time) (float64, error) {
	start := now.Add(-growthWindow)
	var current, previous int64
	if err := db.Model(model).Where("created_at > ? AND created_at <= ?", start, now).Count(&current).Error; err != nil {
		return 0, err
	}
	if err := db.Model(model).Where("created_at > ? AND created_at <= ?", start.Add(-growthWindow), start).Count(&previous).Error; err != nil {
		return 0, err
	}
	if previous == 0 {
		if current > 0 {
			return 100, nil
		}
		return 0, nil
	}
	pct := float64(current-previous) / float64(previous) * 100
	return math.Round(pct*10) / 10, nil
}

type agentCount struct {
	AgentID uuid.UUID
	N       int64
}

// topAgents ranks agents by number of assigned properties, ties broken by name.
func topAgents(db *gorm.DB) ([]TopAgent, error) {
	var ranked []agentCount
	if err := db.Model(&domain.Property{}).
		Select("agent_id, COUNT(*) AS n").
		Where("agent_id IS NOT NULL").
		Group("agent_id").
		Order("n DESC").
		Limit(topAgentMax).
		Scan(&ranked).Error; err != nil {
		return nil, err
	}
	out := []TopAgent{}
	if len(ranked) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(ranked))
	byID := make(map[uuid.UUID]int64, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.AgentID)
		byID[r.AgentID] = r.N
	}
	var agents []domain.Agent
	if err := db.Where("id IN ?", ids).Find(&agents).Error; err != nil {
		return nil, err
	}
	for _, a := range agents {
		out = append(out, TopAgent{Agent: a, PropertyCount: byID[a.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PropertyCount != out[j].PropertyCount {
			return out[i].PropertyCount > out[j].PropertyCount
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
