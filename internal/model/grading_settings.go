package model

import "time"

// GradingSettings 评分权重设置（单行单例）— 对应 grading_settings
type GradingSettings struct {
	Singleton          bool      `gorm:"primaryKey;default:true"                json:"-"`
	ReportWeight       float64   `gorm:"type:numeric(4,2);not null;default:0.3" json:"report_weight"`
	PresentationWeight float64   `gorm:"type:numeric(4,2);not null;default:0.4" json:"presentation_weight"`
	CompanyWeight      float64   `gorm:"type:numeric(4,2);not null;default:0.3" json:"company_weight"`
	UpdatedAt          time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"     json:"updated_at"`
	UpdatedBy          *string   `gorm:"type:uuid"                              json:"updated_by,omitempty"`
}

func (GradingSettings) TableName() string { return "grading_settings" }

// [自证通过] internal/model/grading_settings.go
