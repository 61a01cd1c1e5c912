package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"pfe-hub/backend/internal/model"
	"pfe-hub/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoDefenses   = errors.New("所选时间范围内没有答辩安排")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// exportPageSize 导出查询单页上限（答辩规模远小于该值，一页取全）
const exportPageSize = 1000

// ExportService 导出业务接口
//
// 设计说明：
//   - 答辩安排表导出为 Excel (.xlsx)，供教务打印分发
//   - 日程导出为 iCalendar (.ics)，供评审教师订阅到个人日历
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportPlanning 导出指定时间范围内的答辩安排表为 Excel
	ExportPlanning(ctx context.Context, from, to *time.Time) (*bytes.Buffer, string, error)
	// ExportCalendar 导出指定时间范围内的待进行答辩为 iCalendar
	ExportCalendar(ctx context.Context, from, to *time.Time) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportPlanning — 导出答辩安排表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：单 Sheet，按答辩时间升序
// 表头: | 日期 | 时间 | 时长(分钟) | 教室 | 课题 | 学生 | 状态 | 最终成绩 | 档次 |

func (s *exportService) ExportPlanning(ctx context.Context, from, to *time.Time) (*bytes.Buffer, string, error) {
	defenses, err := s.listDefenses(ctx, from, to)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "答辩安排"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 列宽
	widths := map[string]float64{"A": 12, "B": 8, "C": 10, "D": 12, "E": 36, "F": 16, "G": 10, "H": 10, "I": 12}
	for col, w := range widths {
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"日期", "时间", "时长(分钟)", "教室", "课题", "学生", "状态", "最终成绩", "档次"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
		f.SetCellStyle(sheetName, cell(colName(i), 1), cell(colName(i), 1), headerStyle)
	}

	row := 2
	for i := range defenses {
		d := &defenses[i]
		f.SetCellValue(sheetName, cell("A", row), d.ScheduledAt.Format("2006-01-02"))
		f.SetCellValue(sheetName, cell("B", row), d.ScheduledAt.Format("15:04"))
		f.SetCellValue(sheetName, cell("C", row), d.DurationMinutes)
		if d.Room != nil {
			f.SetCellValue(sheetName, cell("D", row), d.Room.Name)
		}
		if d.Proposal != nil {
			f.SetCellValue(sheetName, cell("E", row), d.Proposal.Title)
			if d.Proposal.Student != nil {
				f.SetCellValue(sheetName, cell("F", row), d.Proposal.Student.Name)
			}
		}
		f.SetCellValue(sheetName, cell("G", row), d.Status)
		if d.FinalScore != nil {
			f.SetCellValue(sheetName, cell("H", row), *d.FinalScore)
		} else {
			f.SetCellValue(sheetName, cell("H", row), "-")
		}
		if d.Mention != "" {
			f.SetCellValue(sheetName, cell("I", row), d.Mention)
		} else {
			f.SetCellValue(sheetName, cell("I", row), "-")
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("答辩安排_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportCalendar — 导出答辩日程为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportCalendar(ctx context.Context, from, to *time.Time) (*bytes.Buffer, string, error) {
	defenses, err := s.listDefenses(ctx, from, to)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//pfe-hub//defense-calendar//FR")

	for i := range defenses {
		d := &defenses[i]
		// 仅导出待进行场次，取消/已完成的不进日历
		if d.Status != model.DefenseStatusScheduled {
			continue
		}

		event := cal.AddEvent(d.DefenseID + "@pfe-hub")
		event.SetCreatedTime(time.Now())
		event.SetDtStampTime(time.Now())
		event.SetStartAt(d.ScheduledAt)
		event.SetEndAt(d.EndsAt())

		summary := "Soutenance PFE"
		if d.Proposal != nil {
			summary = fmt.Sprintf("Soutenance PFE — %s", d.Proposal.Title)
			if d.Proposal.Student != nil {
				event.SetDescription(fmt.Sprintf("Étudiant: %s", d.Proposal.Student.Name))
			}
		}
		event.SetSummary(summary)
		if d.Room != nil {
			event.SetLocation(d.Room.Name)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("soutenances_%s.ics", time.Now().Format("20060102"))
	return buf, filename, nil
}

func (s *exportService) listDefenses(ctx context.Context, from, to *time.Time) ([]model.Defense, error) {
	filter := repository.DefenseFilter{From: from, To: to}
	defenses, _, err := s.repo.Defense.List(ctx, filter, 0, exportPageSize)
	if err != nil {
		s.logger.Error("查询答辩列表失败", zap.Error(err))
		return nil, err
	}
	if len(defenses) == 0 {
		return nil, ErrExportNoDefenses
	}
	return defenses, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
