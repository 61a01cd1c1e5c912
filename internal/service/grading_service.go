package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pfe-hub/backend/config"
	"pfe-hub/backend/internal/dto"
	"pfe-hub/backend/internal/model"
	"pfe-hub/backend/internal/repository"
	pkgerrors "pfe-hub/backend/pkg/errors"
	"pfe-hub/backend/pkg/redis"
)

var (
	ErrCriterionUnknown    = errors.New("评分项不在目录中")
	ErrScoreOutOfRange     = errors.New("分数超出该评分项的允许范围")
	ErrDuplicateEvaluation = errors.New("该评分项已提交，不允许覆盖")
	ErrMemberNotOnDefense  = errors.New("评审成员不属于该场答辩")
)

// GradingService 评分引擎业务接口
type GradingService interface {
	// SubmitEvaluation 批量提交某评审成员的评分；整批先校验后写入，
	// 全部成员评分齐备时自动触发成绩聚合并终结答辩
	SubmitEvaluation(ctx context.Context, defenseID, juryMemberID string, req *dto.SubmitEvaluationRequest, operatorID string) (*dto.GradingProgressResponse, error)
	ListEvaluations(ctx context.Context, defenseID string) ([]dto.EvaluationResponse, error)
	Progress(ctx context.Context, defenseID string) (*dto.GradingProgressResponse, error)
	// PreviewScore 按类别分试算最终成绩与档次（纯计算，不落库），
	// 与聚合落库路径使用同一公式与舍入规则
	PreviewScore(ctx context.Context, req *dto.PreviewScoreRequest) (*dto.ScoreResponse, error)
	Criteria(ctx context.Context) []dto.CriterionResponse
}

type gradingService struct {
	cfg      *config.Config
	repo     *repository.Repository
	rdb      *redis.Client
	settings SettingsService
	feedback FeedbackGenerator
	logger   *zap.Logger
}

// NewGradingService 创建 GradingService 实例
func NewGradingService(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *redis.Client,
	settings SettingsService,
	feedback FeedbackGenerator,
	logger *zap.Logger,
) GradingService {
	return &gradingService{
		cfg:      cfg,
		repo:     repo,
		rdb:      rdb,
		settings: settings,
		feedback: feedback,
		logger:   logger,
	}
}

// ════════════════════════════════════════════════
//  评分提交
// ════════════════════════════════════════════════

func (s *gradingService) SubmitEvaluation(ctx context.Context, defenseID, juryMemberID string, req *dto.SubmitEvaluationRequest, operatorID string) (*dto.GradingProgressResponse, error) {
	release, err := lockDefense(ctx, s.rdb, s.logger, defenseID)
	if err != nil {
		return nil, err
	}
	defer release()

	// 1. 答辩存在且仍在进行中
	defense, err := s.repo.Defense.GetByID(ctx, defenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDefenseNotFound
		}
		s.logger.Error("查询答辩场次失败", zap.Error(err))
		return nil, err
	}
	if defense.Status != model.DefenseStatusScheduled {
		return nil, ErrDefenseNotScheduled
	}

	// 2. 评审成员存在且属于本场答辩
	member, err := s.repo.JuryMember.GetByID(ctx, juryMemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJuryMemberNotFound
		}
		s.logger.Error("查询评审成员失败", zap.Error(err))
		return nil, err
	}
	if member.DefenseID != defenseID {
		return nil, ErrMemberNotOnDefense
	}

	// 3. 整批校验：目录内、分数范围、批内查重、已有记录查重。
	//    任一条不合格则整批拒绝，不产生部分写入。
	scheme := s.settings.EffectiveScheme(ctx)

	existing, err := s.repo.Evaluation.ListByMember(ctx, juryMemberID)
	if err != nil {
		s.logger.Error("查询评分记录失败", zap.Error(err))
		return nil, err
	}
	scored := make(map[string]bool, len(existing))
	for i := range existing {
		scored[existing[i].CriteriaName] = true
	}

	seen := make(map[string]bool, len(req.Items))
	evaluations := make([]model.Evaluation, 0, len(req.Items))
	for _, item := range req.Items {
		criterion, ok := scheme.Find(item.CriteriaName)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrCriterionUnknown, item.CriteriaName)
		}
		if item.Score < 0 || item.Score > criterion.MaxScore {
			return nil, fmt.Errorf("%w: %s (0-%.0f)", ErrScoreOutOfRange, item.CriteriaName, criterion.MaxScore)
		}
		if seen[item.CriteriaName] || scored[item.CriteriaName] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEvaluation, item.CriteriaName)
		}
		seen[item.CriteriaName] = true

		eval := model.Evaluation{
			DefenseID:    defenseID,
			JuryMemberID: juryMemberID,
			CriteriaName: item.CriteriaName,
			Score:        item.Score,
			MaxScore:     criterion.MaxScore,
			Comments:     item.Comments,
		}
		eval.CreatedBy = &operatorID
		evaluations = append(evaluations, eval)
	}

	// 4. 单事务写入（(jury_member_id, criteria_name) 唯一约束兜底并发重复）
	if err := s.repo.Evaluation.BatchCreate(ctx, evaluations); err != nil {
		s.logger.Error("写入评分记录失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("评分已提交",
		zap.String("defense_id", defenseID),
		zap.String("jury_member_id", juryMemberID),
		zap.Int("count", len(evaluations)))

	// 5. 完整性检查：每位成员 × 每个评分项各一条；齐备即聚合
	progress, err := s.progress(ctx, defenseID, scheme)
	if err != nil {
		return nil, err
	}
	if progress.Complete {
		if err := s.aggregate(ctx, defense, scheme, operatorID); err != nil {
			return nil, err
		}
	}
	return progress, nil
}

func (s *gradingService) ListEvaluations(ctx context.Context, defenseID string) ([]dto.EvaluationResponse, error) {
	if _, err := s.repo.Defense.GetByID(ctx, defenseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDefenseNotFound
		}
		s.logger.Error("查询答辩场次失败", zap.Error(err))
		return nil, err
	}

	evaluations, err := s.repo.Evaluation.ListByDefense(ctx, defenseID)
	if err != nil {
		s.logger.Error("查询评分记录失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.EvaluationResponse, 0, len(evaluations))
	for i := range evaluations {
		e := &evaluations[i]
		out = append(out, dto.EvaluationResponse{
			ID:           e.EvaluationID,
			DefenseID:    e.DefenseID,
			JuryMemberID: e.JuryMemberID,
			CriteriaName: e.CriteriaName,
			Score:        e.Score,
			MaxScore:     e.MaxScore,
			Comments:     e.Comments,
			CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

func (s *gradingService) Progress(ctx context.Context, defenseID string) (*dto.GradingProgressResponse, error) {
	if _, err := s.repo.Defense.GetByID(ctx, defenseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDefenseNotFound
		}
		s.logger.Error("查询答辩场次失败", zap.Error(err))
		return nil, err
	}
	return s.progress(ctx, defenseID, s.settings.EffectiveScheme(ctx))
}

func (s *gradingService) PreviewScore(ctx context.Context, req *dto.PreviewScoreRequest) (*dto.ScoreResponse, error) {
	scheme := s.settings.EffectiveScheme(ctx)
	final := round2(req.ReportScore*scheme.ReportWeight +
		req.PresentationScore*scheme.PresentationWeight +
		req.CompanyScore*scheme.CompanyWeight)

	return &dto.ScoreResponse{
		ReportScore:       req.ReportScore,
		PresentationScore: req.PresentationScore,
		CompanyScore:      req.CompanyScore,
		FinalScore:        final,
		Mention:           model.MentionFor(final),
	}, nil
}

func (s *gradingService) Criteria(ctx context.Context) []dto.CriterionResponse {
	scheme := s.settings.EffectiveScheme(ctx)
	out := make([]dto.CriterionResponse, 0, len(scheme.Criteria))
	for _, c := range scheme.Criteria {
		out = append(out, dto.CriterionResponse{
			Name:     c.Name,
			Category: c.Category,
			MaxScore: c.MaxScore,
		})
	}
	return out
}

// ════════════════════════════════════════════════
//  成绩聚合
// ════════════════════════════════════════════════

// aggregate 计算三项类别分与最终成绩并终结答辩。
// 状态流转走乐观锁 CAS（scheduled → completed），并发触发时仅一方生效，
// 落败方视为已被聚合，静默返回。
func (s *gradingService) aggregate(ctx context.Context, defense *model.Defense, scheme model.GradingScheme, operatorID string) error {
	evaluations, err := s.repo.Evaluation.ListByDefense(ctx, defense.DefenseID)
	if err != nil {
		s.logger.Error("查询评分记录失败", zap.Error(err))
		return err
	}

	reportScore := categoryScore(scheme, model.CategoryReport, evaluations)
	presentScore := categoryScore(scheme, model.CategoryPresentation, evaluations)
	companyScore := categoryScore(scheme, model.CategoryCompany, evaluations)

	final := round2(reportScore*scheme.ReportWeight +
		presentScore*scheme.PresentationWeight +
		companyScore*scheme.CompanyWeight)
	mention := model.MentionFor(final)

	defense.ReportScore = &reportScore
	defense.PresentScore = &presentScore
	defense.CompanyScore = &companyScore
	defense.FinalScore = &final
	defense.Mention = mention
	defense.Status = model.DefenseStatusCompleted
	defense.UpdatedBy = &operatorID

	if comments, err := s.feedback.Generate(ctx, defense, evaluations); err != nil {
		s.logger.Warn("生成评语失败", zap.Error(err))
	} else if comments != "" {
		defense.Comments = comments
	}

	if err := s.repo.Defense.Update(ctx, defense); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Warn("成绩聚合竞争落败，已由并发操作完成",
				zap.String("defense_id", defense.DefenseID))
			return nil
		}
		s.logger.Error("写入聚合成绩失败", zap.Error(err))
		return err
	}

	s.logger.Info("答辩成绩已定格",
		zap.String("defense_id", defense.DefenseID),
		zap.Float64("final_score", final),
		zap.String("mention", mention))
	return nil
}

func (s *gradingService) progress(ctx context.Context, defenseID string, scheme model.GradingScheme) (*dto.GradingProgressResponse, error) {
	members, err := s.repo.JuryMember.ListByDefense(ctx, defenseID)
	if err != nil {
		s.logger.Error("查询评审团失败", zap.Error(err))
		return nil, err
	}
	evaluations, err := s.repo.Evaluation.ListByDefense(ctx, defenseID)
	if err != nil {
		s.logger.Error("查询评分记录失败", zap.Error(err))
		return nil, err
	}

	// 逐人核对评分项覆盖：每位现任成员须对目录中每个评分项各有一条记录。
	// 已移除成员遗留的评分记录不计入进度，避免总数凑齐导致提前聚合
	covered := make(map[string]map[string]bool, len(members))
	for i := range members {
		covered[members[i].JuryMemberID] = make(map[string]bool, len(scheme.Criteria))
	}
	for i := range evaluations {
		if set, ok := covered[evaluations[i].JuryMemberID]; ok {
			set[evaluations[i].CriteriaName] = true
		}
	}

	expected := len(members) * len(scheme.Criteria)
	submitted := 0
	complete := expected > 0
	for _, set := range covered {
		for _, criterion := range scheme.Criteria {
			if set[criterion.Name] {
				submitted++
			} else {
				complete = false
			}
		}
	}
	return &dto.GradingProgressResponse{
		Expected:  expected,
		Submitted: submitted,
		Complete:  complete,
	}, nil
}

// categoryScore 类别分 = (Σ 各评分项的成员均分 / Σ 各评分项满分) × 20。
// 无人提交的评分项按 0 计入分子、满分仍计入分母。
func categoryScore(scheme model.GradingScheme, category string, evaluations []model.Evaluation) float64 {
	var sumMeans, sumMax float64
	for _, criterion := range scheme.CategoryCriteria(category) {
		var total float64
		var n int
		for i := range evaluations {
			if evaluations[i].CriteriaName == criterion.Name {
				total += evaluations[i].Score
				n++
			}
		}
		if n > 0 {
			sumMeans += total / float64(n)
		}
		sumMax += criterion.MaxScore
	}
	if sumMax == 0 {
		return 0
	}
	return round2(sumMeans / sumMax * 20)
}

// round2 四舍五入保留两位小数（0.5 进位）
func round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
