package catalog

import (
	"context"
	"errors"
	"fmt"

	"layer-manager/core/database"
	"layer-manager/core/layer"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSchemaMismatch is returned by Verify when the table lacks columns.
var ErrSchemaMismatch = errors.New("catalog table is missing columns")

// Store persists the active layer set in a database table, ordered top first.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a store over db.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Migrate creates or updates the catalog table.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("failed to migrate catalog: %w", err)
	}
	return nil
}

// Verify checks that the catalog table has every expected column.
func (s *Store) Verify() ([]string, error) {
	missing, err := database.MissingColumns(s.db, Record{}.TableName(), Columns)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return missing, fmt.Errorf("%w: %v", ErrSchemaMismatch, missing)
	}
	return nil, nil
}

// Replace stores layers as the whole catalog. Records of layers not in the list
// are deleted.
func (s *Store) Replace(ctx context.Context, layers []layer.Layer) error {
	records, err := toRecords(layers)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Model(&Record{})
		if len(ids) > 0 {
			stale = stale.Where("id NOT IN ?", ids)
		} else {
			stale = stale.Where("1 = 1")
		}
		if err := stale.Delete(&Record{}).Error; err != nil {
			return fmt.Errorf("failed to delete stale layers: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&records).Error; err != nil {
			return fmt.Errorf("failed to store layers: %w", err)
		}
		return nil
	})
}

// Save stores a single layer at position, inserting or updating it.
func (s *Store) Save(ctx context.Context, l layer.Layer, position int) error {
	r, err := toRecord(l, position)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&r).Error; err != nil {
		return fmt.Errorf("failed to store layer %s: %w", r.ID, err)
	}
	return nil
}

// Delete removes a stored layer. Deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&Record{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete layer %s: %w", id, err)
	}
	return nil
}

// List returns the stored layers, top first. Records that no longer decode are
// skipped and logged.
func (s *Store) List(ctx context.Context) ([]layer.Layer, error) {
	var records []Record
	if err := s.db.WithContext(ctx).Order("position ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list layers: %w", err)
	}
	layers := make([]layer.Layer, 0, len(records))
	for _, r := range records {
		l, err := layer.UnmarshalJSON([]byte(r.Payload))
		if err != nil {
			s.logger.Warn("Skipping undecodable catalog record", zap.String("layer_id", r.ID), zap.Error(err))
			continue
		}
		layers = append(layers, l)
	}
	return layers, nil
}

func toRecords(layers []layer.Layer) ([]Record, error) {
	records := make([]Record, 0, len(layers))
	for i, l := range layers {
		r, err := toRecord(l, i)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func toRecord(l layer.Layer, position int) (Record, error) {
	payload, err := layer.MarshalJSON(l)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode layer %s: %w", l.Common().ID, err)
	}
	return Record{
		ID:       l.Common().ID,
		Type:     string(l.Type()),
		Position: position,
		Payload:  string(payload),
	}, nil
}
