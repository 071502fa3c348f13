package settings

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"dwello-backend/internal/domain"
	"dwello-backend/internal/pkg/apperrors"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Sections are the top-level settings groups an admin may change.
var Sections = []string{"system", "security"}

// Settings maps section name to its key/value pairs.
type Settings map[string]map[string]interface{}

type Service struct {
	DB       *gorm.DB
	defaults Settings
}

func NewService(db *gorm.DB) (*Service, error) {
	defaults, err := parseDefaults(defaultsYAML)
	if err != nil {
		return nil, err
	}
	return &Service{DB: db, defaults: defaults}, nil
}

func parseDefaults(raw []byte) (Settings, error) {
	var out Settings
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse settings defaults: %w", err)
	}
	for _, name := range Sections {
		if out[name] == nil {
			out[name] = map[string]interface{}{}
		}
	}
	return out, nil
}

// Get returns the defaults with stored values laid over them key by key.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	var rows []domain.Setting
	if err := s.DB.WithContext(ctx).Where("key IN ?", Sections).Find(&rows).Error; err != nil {
		return nil, apperrors.Internal("Failed to fetch settings", err)
	}
	out := make(Settings, len(s.defaults))
	for name, values := range s.defaults {
		out[name] = copyMap(values)
	}
	for _, row := range rows {
		var stored map[string]interface{}
		if err := json.Unmarshal(row.Value, &stored); err != nil {
			return nil, apperrors.Internal("Failed to fetch settings", err)
		}
		for k, v := range stored {
			out[row.Key][k] = v
		}
	}
	return out, nil
}

// Update stores the supplied sections. Keys not present in the defaults are rejected.
func (s *Service) Update(ctx context.Context, in Settings) (Settings, error) {
	if len(in) == 0 {
		return nil, apperrors.Validation("No settings supplied")
	}
	for name, values := range in {
		known, ok := s.defaults[name]
		if !ok {
			return nil, apperrors.Validation("Unknown settings section: " + name)
		}
		for k := range values {
			if _, ok := known[k]; !ok {
				return nil, apperrors.Validation("Unknown setting: " + name + "." + k)
			}
		}
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for name, values := range in {
			var current domain.Setting
			merged := map[string]interface{}{}
			err := tx.Where("key = ?", name).Take(&current).Error
			switch {
			case err == nil:
				if err := json.Unmarshal(current.Value, &merged); err != nil {
					return err
				}
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
			for k, v := range values {
				merged[k] = v
			}
			raw, err := json.Marshal(merged)
			if err != nil {
				return err
			}
			row := domain.Setting{Key: name, Value: datatypes.JSON(raw)}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Internal("Failed to update settings", err)
	}
	return s.Get(ctx)
}

func copyMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
