// Package testutil builds in-memory databases and fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"dwello-backend/internal/domain"
	"dwello-backend/internal/infrastructure/database"
	"dwello-backend/internal/infrastructure/identity"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database. The pool is pinned to one
// connection because every new :memory: connection is a fresh empty database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// Agent inserts an agent with the given identity subject and status.
func Agent(t *testing.T, db *gorm.DB, uid, status string) *domain.Agent {
	t.Helper()
	a := &domain.Agent{
		FirebaseUID: uid,
		Name:        "Agent " + uid,
		Email:       uid + "@dwello.test",
		Slug:        "agent-" + uid,
		Status:      status,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

// Property inserts a property; mutate adjusts fields before insert.
func Property(t *testing.T, db *gorm.DB, mutate func(p *domain.Property)) *domain.Property {
	t.Helper()
	p := &domain.Property{
		Title:        "House " + uuid.NewString()[:8],
		Price:        1000,
		Region:       "Greater Accra",
		PropertyType: "house",
		ListingType:  "sale",
		Status:       "available",
	}
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Amenity inserts an amenity by name.
func Amenity(t *testing.T, db *gorm.DB, name string) *domain.Amenity {
	t.Helper()
	a := &domain.Amenity{Name: name}
	require.NoError(t, db.Create(a).Error)
	return a
}

// Attach links amenities to a property.
func Attach(t *testing.T, db *gorm.DB, propertyID uuid.UUID, amenityIDs ...uint) {
	t.Helper()
	for _, id := range amenityIDs {
		require.NoError(t, db.Create(&domain.PropertyAmenity{PropertyID: propertyID, AmenityID: id}).Error)
	}
}

// User inserts a user with the given identity subject and role.
func User(t *testing.T, db *gorm.DB, uid, role string) *domain.User {
	t.Helper()
	u := &domain.User{FirebaseUID: uid, Name: "User " + uid, Email: uid + "@dwello.test", Role: role, Status: "active"}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Verifier signs and verifies test tokens.
var Verifier = &identity.HMACVerifier{Secret: []byte("dwello-test-secret"), Issuer: "dwello"}

// Token issues a one-hour bearer token for uid. role may be empty.
func Token(t *testing.T, uid, role string) string {
	t.Helper()
	tok, err := Verifier.Issue(uid, uid+"@dwello.test", role, time.Hour)
	require.NoError(t, err)
	return tok
}
