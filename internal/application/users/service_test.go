package users

import (
	"context"
	"testing"
	"time"

	"dwello-backend/internal/domain"
	"dwello-backend/internal/pkg/apperrors"
	"dwello-backend/internal/pkg/constants"
	"dwello-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var buyer = domain.Actor{UID: "buyer-uid", Email: "buyer@dwello.test", Name: "Ama Buyer"}

func setupUsersTest(t *testing.T) (*Service, *gorm.DB) {
	db := testutil.NewDB(t)
	return &Service{DB: db}, db
}

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func TestProfile_CreatesOnFirstSight(t *testing.T) {
	svc, db := setupUsersTest(t)

	u, err := svc.Profile(context.Background(), buyer)
	require.NoError(t, err)
	assert.Equal(t, "buyer-uid", u.FirebaseUID)
	assert.Equal(t, "Ama Buyer", u.Name)
	assert.Equal(t, constants.RoleUser, u.Role)
	assert.Equal(t, constants.UserActive, u.Status)

	again, err := svc.Profile(context.Background(), buyer)
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&domain.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&domain.OutboxEvent{}).Where("name = ?", constants.EventUserCreated).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProfile_ConcurrentFirstSightReusesRow(t *testing.T) {
	svc, db := setupUsersTest(t)

	// Another request inserts the same subject between the lookup and the create.
	raced := false
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:first_sight_race", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "users" {
			return
		}
		raced = true
		now := time.Now()
		_, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"INSERT INTO users (id, firebase_uid, name, email, role, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			uuid.NewString(), buyer.UID, "Other Tab", buyer.Email, constants.RoleUser, constants.UserActive, now, now)
		require.NoError(t, err)
	}))

	u, err := svc.Profile(context.Background(), buyer)
	require.NoError(t, err)
	assert.True(t, raced)
	assert.Equal(t, "Other Tab", u.Name)

	var n int64
	require.NoError(t, db.Model(&domain.User{}).Where("firebase_uid = ?", buyer.UID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	var recorded int64
	require.NoError(t, db.Model(&domain.OutboxEvent{}).Where("name = ?", constants.EventUserCreated).Count(&recorded).Error)
	assert.Zero(t, recorded)
}

func TestUpdateProfile(t *testing.T) {
	svc, db := setupUsersTest(t)

	u, err := svc.UpdateProfile(context.Background(), buyer, ProfileInput{Name: strp("Ama B."), Phone: strp("+233201234567")})
	require.NoError(t, err)
	assert.Equal(t, "Ama B.", u.Name)
	assert.Equal(t, "+233201234567", u.Phone)

	var names []string
	require.NoError(t, db.Model(&domain.OutboxEvent{}).Order("id").Pluck("name", &names).Error)
	assert.Equal(t, []string{constants.EventUserCreated, constants.EventUserUpdated}, names)

	_, err = svc.UpdateProfile(context.Background(), buyer, ProfileInput{})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestSavedProperties(t *testing.T) {
	svc, db := setupUsersTest(t)
	ctx := context.Background()
	agent := testutil.Agent(t, db, "agent-uid", constants.AgentApproved)
	first := testutil.Property(t, db, func(p *domain.Property) { p.AgentID = &agent.ID })
	second := testutil.Property(t, db, nil)

	_, err := svc.SaveProperty(ctx, buyer, first.ID)
	require.NoError(t, err)
	_, err = svc.SaveProperty(ctx, buyer, second.ID)
	require.NoError(t, err)

	_, err = svc.SaveProperty(ctx, buyer, first.ID)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Equal(t, "Property already saved", apperrors.PublicMessage(err))

	_, err = svc.SaveProperty(ctx, buyer, uuid.New())
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	saved, err := svc.SavedProperties(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	ids := []uuid.UUID{saved[0].ID, saved[1].ID}
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, ids)
	for _, p := range saved {
		if p.ID == first.ID {
			require.NotNil(t, p.Agent)
			assert.Equal(t, agent.Name, p.Agent.Name)
		}
	}

	require.NoError(t, svc.RemoveSavedProperty(ctx, buyer, first.ID))
	err = svc.RemoveSavedProperty(ctx, buyer, first.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	saved, err = svc.SavedProperties(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, second.ID, saved[0].ID)
}

func TestSavedProperties_ScopedToCaller(t *testing.T) {
	svc, db := setupUsersTest(t)
	ctx := context.Background()
	p := testutil.Property(t, db, nil)

	_, err := svc.SaveProperty(ctx, buyer, p.ID)
	require.NoError(t, err)

	other := domain.Actor{UID: "other-uid"}
	saved, err := svc.SavedProperties(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, saved)
	_, err = svc.SaveProperty(ctx, other, p.ID)
	assert.NoError(t, err)
}

func TestActivity(t *testing.T) {
	svc, db := setupUsersTest(t)
	ctx := context.Background()
	p := testutil.Property(t, db, nil)

	_, err := svc.RecordActivity(ctx, buyer, &p.ID, "teleport")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	missing := uuid.New()
	_, err = svc.RecordActivity(ctx, buyer, &missing, "view")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	for i := 0; i < 12; i++ {
		_, err := svc.RecordActivity(ctx, buyer, &p.ID, "view")
		require.NoError(t, err)
	}
	a, err := svc.RecordActivity(ctx, buyer, nil, "share")
	require.NoError(t, err)
	assert.Nil(t, a.PropertyID)

	list, err := svc.Activity(ctx, buyer, 0)
	require.NoError(t, err)
	assert.Len(t, list, DefaultActivityLimit)

	list, err = svc.Activity(ctx, buyer, 3)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, entry := range list {
		if entry.PropertyID != nil {
			require.NotNil(t, entry.Property)
			assert.Equal(t, p.ID, entry.Property.ID)
		}
	}
}

func TestAlerts(t *testing.T) {
	svc, _ := setupUsersTest(t)
	ctx := context.Background()

	_, err := svc.CreateAlert(ctx, buyer, AlertInput{})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	_, err = svc.CreateAlert(ctx, buyer, AlertInput{Name: strp("x"), Frequency: strp("hourly")})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	a, err := svc.CreateAlert(ctx, buyer, AlertInput{
		Name:     strp("East Legon rentals"),
		Criteria: datatypes.JSON(`{"region":"Greater Accra","maxPrice":5000}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "daily", a.Frequency)
	assert.True(t, a.IsActive)

	paused, err := svc.CreateAlert(ctx, buyer, AlertInput{Name: strp("Paused"), IsActive: boolp(false)})
	require.NoError(t, err)
	assert.False(t, paused.IsActive)
	assert.JSONEq(t, `{}`, string(paused.Criteria))

	updated, err := svc.UpdateAlert(ctx, buyer, a.ID, AlertInput{Frequency: strp("weekly"), IsActive: boolp(false)})
	require.NoError(t, err)
	assert.Equal(t, "weekly", updated.Frequency)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "East Legon rentals", updated.Name)

	stranger := domain.Actor{UID: "stranger"}
	_, err = svc.UpdateAlert(ctx, stranger, a.ID, AlertInput{Name: strp("mine now")})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	err = svc.DeleteAlert(ctx, stranger, a.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	list, err := svc.Alerts(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.DeleteAlert(ctx, buyer, a.ID))
	list, err = svc.Alerts(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, paused.ID, list[0].ID)
}
