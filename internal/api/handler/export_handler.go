package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"pfe-hub/backend/internal/service"
	"pfe-hub/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportPlanning 导出答辩安排表（Excel）
// GET /api/v1/export/planning?from=xxx&to=xxx
func (h *ExportHandler) ExportPlanning(c *gin.Context) {
	from, to, ok := h.parseRange(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportPlanning(c.Request.Context(), from, to)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportCalendar 导出答辩日历（iCalendar）
// GET /api/v1/export/calendar?from=xxx&to=xxx
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	from, to, ok := h.parseRange(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportCalendar(c.Request.Context(), from, to)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

// parseRange 解析可选的 from/to 查询参数（RFC3339）
func (h *ExportHandler) parseRange(c *gin.Context) (from, to *time.Time, ok bool) {
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			response.BadRequest(c, 18001, "from 时间格式无效，应为 RFC3339")
			return nil, nil, false
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			response.BadRequest(c, 18001, "to 时间格式无效，应为 RFC3339")
			return nil, nil, false
		}
		to = &t
	}
	return from, to, true
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoDefenses):
		response.NotFound(c, 18101, "所选时间范围内没有答辩安排")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
