package postgres

import (
	"context"

	"aiInsider/business/experiment"
	"aiInsider/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExperimentOverrideRepository struct {
	DB *gorm.DB
}

var _ experiment.OverrideRepository = (*ExperimentOverrideRepository)(nil)

func NewExperimentOverrideRepository(db *gorm.DB) *ExperimentOverrideRepository {
	return &ExperimentOverrideRepository{DB: db}
}

func (r *ExperimentOverrideRepository) ListOverrides(ctx context.Context) ([]domain.ExperimentOverride, error) {
	var rows []domain.ExperimentOverride

	if err := r.DB.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ExperimentOverrideRepository) UpsertOverride(ctx context.Context, o domain.ExperimentOverride) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"enabled",
				"variants",
				"weights",
				"conversion_goal",
				"updated_at",
			}),
		}).
		Create(&o).Error
}
