package repository

import (
	"context"

	"gorm.io/gorm"

	"pfe-hub/backend/internal/model"
)

// GradingSettingsRepository 评分权重设置数据访问接口（单行单例）
type GradingSettingsRepository interface {
	Get(ctx context.Context) (*model.GradingSettings, error)
	Update(ctx context.Context, settings *model.GradingSettings) error
}

// gradingSettingsRepo GradingSettingsRepository 的 GORM 实现
type gradingSettingsRepo struct {
	db *gorm.DB
}

// NewGradingSettingsRepo 创建 GradingSettingsRepository 实例
func NewGradingSettingsRepo(db *gorm.DB) GradingSettingsRepository {
	return &gradingSettingsRepo{db: db}
}

func (r *gradingSettingsRepo) Get(ctx context.Context) (*model.GradingSettings, error) {
	var settings model.GradingSettings
	err := r.db.WithContext(ctx).
		Where("singleton = ?", true).
		First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *gradingSettingsRepo) Update(ctx context.Context, settings *model.GradingSettings) error {
	settings.Singleton = true
	return r.db.WithContext(ctx).
		Model(&model.GradingSettings{}).
		Where("singleton = ?", true).
		Updates(map[string]interface{}{
			"report_weight":       settings.ReportWeight,
			"presentation_weight": settings.PresentationWeight,
			"company_weight":      settings.CompanyWeight,
			"updated_by":          settings.UpdatedBy,
		}).Error
}

// [自证通过] internal/repository/grading_settings_repo.go
