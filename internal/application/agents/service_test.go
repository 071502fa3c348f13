package agents

import (
	"context"
	"net/url"
	"testing"

	"dwello-backend/internal/application/moderation"
	"dwello-backend/internal/domain"
	"dwello-backend/internal/pkg/apperrors"
	"dwello-backend/internal/pkg/constants"
	"dwello-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAgentsTest(t *testing.T) (*Service, *gorm.DB) {
	db := testutil.NewDB(t)
	return &Service{DB: db}, db
}

func strp(s string) *string { return &s }

func reload(t *testing.T, db *gorm.DB, id uuid.UUID) domain.Agent {
	t.Helper()
	var a domain.Agent
	require.NoError(t, db.Where("id = ?", id).First(&a).Error)
	return a
}

func TestRegister(t *testing.T) {
	svc, db := setupAgentsTest(t)
	user := testutil.User(t, db, "uid-1", constants.RoleUser)
	actor := domain.Actor{UID: "uid-1", Email: "ama@dwello.test"}

	a, err := svc.Register(context.Background(), actor, RegisterInput{Profile: domain.AgentProfile{Name: strp("Ama Mensah")}})
	require.NoError(t, err)
	assert.Equal(t, constants.AgentPending, a.Status)
	assert.Equal(t, "ama-mensah", a.Slug)
	assert.Equal(t, "ama@dwello.test", a.Email)
	assert.Equal(t, "uid-1", a.FirebaseUID)

	var u domain.User
	require.NoError(t, db.First(&u, "id = ?", user.ID).Error)
	assert.Equal(t, constants.RoleAgent, u.Role)

	_, err = svc.Register(context.Background(), actor, RegisterInput{Profile: domain.AgentProfile{Name: strp("Again")}})
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	// same name, different identity: slug gets a suffix
	b, err := svc.Register(context.Background(), domain.Actor{UID: "uid-2"}, RegisterInput{Profile: domain.AgentProfile{Name: strp("Ama Mensah")}})
	require.NoError(t, err)
	assert.Equal(t, "ama-mensah-2", b.Slug)

	_, err = svc.Register(context.Background(), domain.Actor{UID: "uid-3"}, RegisterInput{})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestUpdateMe_StagesForApprovedAgent(t *testing.T) {
	svc, db := setupAgentsTest(t)
	a := testutil.Agent(t, db, "uid-1", constants.AgentApproved)

	out, staged, err := svc.UpdateMe(context.Background(), "uid-1", domain.AgentProfile{Bio: strp("Ten years in Accra")})
	require.NoError(t, err)
	assert.True(t, staged)
	assert.Equal(t, constants.AgentPending, out.Status)

	stored := reload(t, db, a.ID)
	assert.Equal(t, "", stored.Bio)
	require.NotNil(t, stored.PendingProfileEdits)
	assert.Equal(t, "Ten years in Accra", *stored.PendingProfileEdits.Bio)
	assert.Equal(t, constants.AgentPending, stored.Status)
}

func TestApproveEdits_MergesAndClears(t *testing.T) {
	svc, db := setupAgentsTest(t)
	a := testutil.Agent(t, db, "uid-1", constants.AgentApproved)
	_, _, err := svc.UpdateMe(context.Background(), "uid-1", domain.AgentProfile{Bio: strp("new"), Title: strp("Broker")})
	require.NoError(t, err)

	_, err = svc.ApproveEdits(context.Background(), a.ID)
	require.NoError(t, err)

	stored := reload(t, db, a.ID)
	assert.Equal(t, "new", stored.Bio)
	assert.Equal(t, "Broker", stored.Title)
	assert.Equal(t, a.Name, stored.Name)
	assert.Nil(t, stored.PendingProfileEdits)
	assert.Equal(t, constants.AgentApproved, stored.Status)
}

func TestRejectEdits_KeepsLiveFields(t *testing.T) {
	svc, db := setupAgentsTest(t)
	a := testutil.Agent(t, db, "uid-1", constants.AgentApproved)
	_, _, err := svc.UpdateMe(context.Background(), "uid-1", domain.AgentProfile{Name: strp("Someone Else")})
	require.NoError(t, err)

	_, err = svc.RejectEdits(context.Background(), a.ID)
	require.NoError(t, err)

	stored := reload(t, db, a.ID)
	assert.Equal(t, a.Name, stored.Name)
	assert.Nil(t, stored.PendingProfileEdits)
	assert.Equal(t, constants.AgentApproved, stored.Status)
}

func TestApproveEdits_NothingStaged(t *testing.T) {
	svc, db := setupAgentsTest(t)
	a := testutil.Agent(t, db, "uid-1", constants.AgentApproved)
	before := reload(t, db, a.ID)

	_, err := svc.ApproveEdits(context.Background(), a.ID)
	assert.ErrorIs(t, err, moderation.ErrNoPendingEdits)
	_, err = svc.RejectEdits(context.Background(), a.ID)
	assert.ErrorIs(t, err, moderation.ErrNoPendingEdits)

	after := reload(t, db, a.ID)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.UpdatedAt.Unix(), after.UpdatedAt.Unix())

	_, err = svc.ApproveEdits(context.Background(), uuid.New())
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestApproveReject(t *testing.T) {
	svc, db := setupAgentsTest(t)
	a := testutil.Agent(t, db, "uid-1", constants.AgentPending)

	out, err := svc.Approve(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.AgentApproved, out.Status)

	out, err = svc.Reject(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.AgentRejected, out.Status)

	var n int64
	require.NoError(t, db.Model(&domain.OutboxEvent{}).Where("name = ?", constants.EventAgentUpdated).Count(&n).Error)
	assert.Equal(t, int64(2), n)

	// repeated decision is a no-op
	_, err = svc.Reject(context.Background(), a.ID)
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.OutboxEvent{}).Where("name = ?", constants.EventAgentUpdated).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestPublicVisibility(t *testing.T) {
	svc, db := setupAgentsTest(t)
	approved := testutil.Agent(t, db, "uid-a", constants.AgentApproved)
	testutil.Agent(t, db, "uid-p", constants.AgentPending)
	testutil.Agent(t, db, "uid-r", constants.AgentRejected)
	staged := testutil.Agent(t, db, "uid-s", constants.AgentApproved)
	_, _, err := svc.UpdateMe(context.Background(), "uid-s", domain.AgentProfile{Bio: strp("pending review")})
	require.NoError(t, err)

	testutil.Property(t, db, func(p *domain.Property) { p.AgentID = &approved.ID })
	testutil.Property(t, db, func(p *domain.Property) { p.AgentID = &approved.ID; p.Status = constants.PropertyPending })

	list, meta, err := svc.List(context.Background(), url.Values{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), meta.Total)
	ids := []uuid.UUID{list[0].ID, list[1].ID}
	assert.ElementsMatch(t, []uuid.UUID{approved.ID, staged.ID}, ids)

	got, err := svc.GetPublic(context.Background(), approved.Slug)
	require.NoError(t, err)
	assert.Len(t, got.Properties, 1)

	got, err = svc.GetPublic(context.Background(), approved.ID.String())
	require.NoError(t, err)
	assert.Equal(t, approved.ID, got.ID)

	_, err = svc.GetPublic(context.Background(), "agent-uid-p")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	all, meta, err := svc.AdminList(context.Background(), url.Values{"status": {constants.AgentPending}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), meta.Total)
	assert.Len(t, all, 2)
}

func TestDelete_UnassignsProperties(t *testing.T) {
	svc, db := setupAgentsTest(t)
	a := testutil.Agent(t, db, "uid-1", constants.AgentApproved)
	p := testutil.Property(t, db, func(p *domain.Property) { p.AgentID = &a.ID })
	post := &domain.BlogPost{Title: "Tips", Slug: "tips", AgentID: &a.ID}
	require.NoError(t, db.Create(post).Error)

	require.NoError(t, svc.Delete(context.Background(), a.ID))

	var prop domain.Property
	require.NoError(t, db.First(&prop, "id = ?", p.ID).Error)
	assert.Nil(t, prop.AgentID)
	var stored domain.BlogPost
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Nil(t, stored.AgentID)

	err := svc.Delete(context.Background(), a.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
