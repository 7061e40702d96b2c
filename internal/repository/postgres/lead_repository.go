package postgres

import (
	"context"

	"aiInsider/domain"

	"gorm.io/gorm"
)

type LeadRepository struct {
	DB *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{
		DB: db,
	}
}

func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	if err := r.DB.WithContext(ctx).Create(lead).Error; err != nil {
		return err
	}

	return nil
}
