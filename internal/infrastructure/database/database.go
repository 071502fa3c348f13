package database

import (
	"dwello-backend/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from a Postgres DSN.
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") behind connection poolers (PgBouncer, Supabase).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{TranslateError: true})
}

// Models lists every persisted type in dependency order.
func Models() []interface{} {
	return []interface{}{
		&domain.Agent{},
		&domain.Amenity{},
		&domain.Property{},
		&domain.PropertyAmenity{},
		&domain.BlogPost{},
		&domain.User{},
		&domain.SavedProperty{},
		&domain.UserActivity{},
		&domain.UserAlert{},
		&domain.OutboxEvent{},
		&domain.Setting{},
	}
}

// AutoMigrate registers the property/amenity join model and migrates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&domain.Property{}, "Amenities", &domain.PropertyAmenity{}); err != nil {
		return err
	}
	return db.AutoMigrate(Models()...)
}
