package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"pfe-hub/backend/internal/dto"
	"pfe-hub/backend/internal/service"
	"pfe-hub/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	registerErr   error
	refreshResult *dto.TokenResponse
	refreshErr    error
	logoutErr     error
	meResult      *dto.UserResponse
	meErr         error
	changePassErr error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest, _ string) (*dto.UserResponse, error) {
	return nil, m.registerErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ string) error {
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.meResult, m.meErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock DefenseService ──

type mockDefenseService struct {
	createResult     *dto.DefenseResponse
	createErr        error
	rescheduleResult *dto.DefenseResponse
	rescheduleErr    error
	cancelResult     *dto.DefenseResponse
	cancelErr        error
	getResult        *dto.DefenseResponse
	getErr           error
	listResult       *dto.DefenseListResponse
	listErr          error
	available        bool
	availableErr     error
}

func (m *mockDefenseService) Create(_ context.Context, _ *dto.CreateDefenseRequest, _ string) (*dto.DefenseResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockDefenseService) Reschedule(_ context.Context, _ string, _ *dto.RescheduleDefenseRequest, _ string) (*dto.DefenseResponse, error) {
	return m.rescheduleResult, m.rescheduleErr
}
func (m *mockDefenseService) Cancel(_ context.Context, _ string, _ *dto.CancelDefenseRequest, _ string) (*dto.DefenseResponse, error) {
	return m.cancelResult, m.cancelErr
}
func (m *mockDefenseService) GetByID(_ context.Context, _ string) (*dto.DefenseResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockDefenseService) List(_ context.Context, _ *dto.DefenseListRequest) (*dto.DefenseListResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockDefenseService) IsRoomAvailable(_ context.Context, _ string, _ time.Time, _ int, _ string) (bool, error) {
	return m.available, m.availableErr
}

// ── Mock JuryService ──

type mockJuryService struct {
	addResult      *dto.JuryMemberResponse
	addErr         error
	removeErr      error
	listResult     []dto.JuryMemberResponse
	listErr        error
	validateResult *dto.JuryCompositionResponse
	validateErr    error
}

func (m *mockJuryService) AddMember(_ context.Context, _ string, _ *dto.AddJuryMemberRequest, _ string) (*dto.JuryMemberResponse, error) {
	return m.addResult, m.addErr
}
func (m *mockJuryService) RemoveMember(_ context.Context, _ string) error {
	return m.removeErr
}
func (m *mockJuryService) ListMembers(_ context.Context, _ string) ([]dto.JuryMemberResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockJuryService) ValidateComposition(_ context.Context, _ string) (*dto.JuryCompositionResponse, error) {
	return m.validateResult, m.validateErr
}

// ── Mock GradingService ──

type mockGradingService struct {
	submitResult   *dto.GradingProgressResponse
	submitErr      error
	listResult     []dto.EvaluationResponse
	listErr        error
	progressResult *dto.GradingProgressResponse
	progressErr    error
	previewResult  *dto.ScoreResponse
	previewErr     error
	criteriaResult []dto.CriterionResponse
}

func (m *mockGradingService) SubmitEvaluation(_ context.Context, _, _ string, _ *dto.SubmitEvaluationRequest, _ string) (*dto.GradingProgressResponse, error) {
	return m.submitResult, m.submitErr
}
func (m *mockGradingService) ListEvaluations(_ context.Context, _ string) ([]dto.EvaluationResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockGradingService) Progress(_ context.Context, _ string) (*dto.GradingProgressResponse, error) {
	return m.progressResult, m.progressErr
}
func (m *mockGradingService) PreviewScore(_ context.Context, _ *dto.PreviewScoreRequest) (*dto.ScoreResponse, error) {
	return m.previewResult, m.previewErr
}
func (m *mockGradingService) Criteria(_ context.Context) []dto.CriterionResponse {
	return m.criteriaResult
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportPlanning(_ context.Context, _, _ *time.Time) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportCalendar(_ context.Context, _, _ *time.Time) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", "admin")
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "alice@univ.fr",
		Password: "Test1234",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mock := &mockAuthService{loginErr: service.ErrInvalidCredentials}
	h := NewAuthHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "alice@univ.fr",
		Password: "wrong",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10101 {
		t.Errorf("expected error code 10101, got %d", resp.Code)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", h.Me)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_ChangePassword_WrongOldPassword(t *testing.T) {
	mock := &mockAuthService{changePassErr: service.ErrWrongOldPassword}
	h := NewAuthHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("PUT", "/auth/password", jsonBody(dto.ChangePasswordRequest{
		OldPassword: "Old12345",
		NewPassword: "New12345",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/auth/password", func(c *gin.Context) {
		setAuth(c)
		h.ChangePassword(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10105 {
		t.Errorf("expected error code 10105, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// DefenseHandler Tests
// ═══════════════════════════════════════════════════════════

func TestDefenseHandler_Create_Success(t *testing.T) {
	mock := &mockDefenseService{
		createResult: &dto.DefenseResponse{
			ID:     "def-1",
			Status: "scheduled",
		},
	}
	h := NewDefenseHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/defenses", jsonBody(dto.CreateDefenseRequest{
		ProposalID:  "11111111-1111-1111-1111-111111111111",
		RoomID:      "22222222-2222-2222-2222-222222222222",
		ScheduledAt: "2030-06-10T09:00:00Z",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/defenses", func(c *gin.Context) {
		setAuth(c)
		h.CreateDefense(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestDefenseHandler_Create_BadJSON(t *testing.T) {
	mock := &mockDefenseService{}
	h := NewDefenseHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/defenses", bytes.NewReader([]byte("bad")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/defenses", func(c *gin.Context) {
		setAuth(c)
		h.CreateDefense(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestDefenseHandler_Availability_Success(t *testing.T) {
	mock := &mockDefenseService{available: true}
	h := NewDefenseHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET",
		"/defenses/availability?room_id=22222222-2222-2222-2222-222222222222&scheduled_at=2030-06-10T09%3A00%3A00Z", nil)

	r := gin.New()
	r.GET("/defenses/availability", h.CheckRoomAvailability)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestDefenseHandler_Availability_BadTime(t *testing.T) {
	mock := &mockDefenseService{}
	h := NewDefenseHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET",
		"/defenses/availability?room_id=22222222-2222-2222-2222-222222222222&scheduled_at=demain", nil)

	r := gin.New()
	r.GET("/defenses/availability", h.CheckRoomAvailability)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14002 {
		t.Errorf("expected error code 14002, got %d", resp.Code)
	}
}

func TestDefenseHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrDefenseNotFound, 404, 14101},
		{"ProposalNotFound", service.ErrProposalNotFound, 404, 14102},
		{"RoomNotFound", service.ErrRoomNotFound, 404, 14103},
		{"InvalidTime", service.ErrInvalidTimeFormat, 400, 14104},
		{"TimeInPast", service.ErrDefenseTimeInPast, 400, 14105},
		{"ProposalNotValidated", service.ErrProposalNotValidated, 400, 14106},
		{"RoomInactive", service.ErrRoomInactive, 400, 14107},
		{"RoomUnavailable", service.ErrRoomUnavailable, 409, 14108},
		{"NotScheduled", service.ErrDefenseNotScheduled, 400, 14109},
		{"Busy", service.ErrDefenseBusy, 409, 14110},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockDefenseService{getErr: tt.err}
			h := NewDefenseHandler(mock)

			w := setupRecorder()
			req := httptest.NewRequest("GET", "/defenses/def-1", nil)

			r := gin.New()
			r.GET("/defenses/:id", h.GetDefense)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// JuryHandler Tests
// ═══════════════════════════════════════════════════════════

func TestJuryHandler_AddMember_Success(t *testing.T) {
	mock := &mockJuryService{
		addResult: &dto.JuryMemberResponse{
			ID:        "jm-1",
			DefenseID: "def-1",
			Role:      "president",
		},
	}
	h := NewJuryHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/defenses/def-1/jury", jsonBody(dto.AddJuryMemberRequest{
		UserID: "33333333-3333-3333-3333-333333333333",
		Role:   "president",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/defenses/:id/jury", func(c *gin.Context) {
		setAuth(c)
		h.AddJuryMember(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestJuryHandler_AddMember_InvalidRole(t *testing.T) {
	mock := &mockJuryService{}
	h := NewJuryHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/defenses/def-1/jury", jsonBody(dto.AddJuryMemberRequest{
		UserID: "33333333-3333-3333-3333-333333333333",
		Role:   "observer",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/defenses/:id/jury", func(c *gin.Context) {
		setAuth(c)
		h.AddJuryMember(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestJuryHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"DefenseNotFound", service.ErrDefenseNotFound, 404, 15101},
		{"UserNotFound", service.ErrUserNotFound, 404, 15102},
		{"StudentConflict", service.ErrJuryStudentConflict, 403, 15105},
		{"SupervisorSeat", service.ErrSupervisorGradingSeat, 403, 15106},
		{"DuplicateSeat", service.ErrJuryDuplicateSeat, 409, 15107},
		{"WorkloadLimit", service.ErrWeeklyWorkloadLimit, 409, 15108},
		{"Frozen", service.ErrJuryFrozen, 400, 15109},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockJuryService{validateErr: tt.err}
			h := NewJuryHandler(mock)

			w := setupRecorder()
			req := httptest.NewRequest("GET", "/defenses/def-1/jury/validate", nil)

			r := gin.New()
			r.GET("/defenses/:id/jury/validate", h.ValidateJuryComposition)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// GradingHandler Tests
// ═══════════════════════════════════════════════════════════

func TestGradingHandler_Submit_Success(t *testing.T) {
	mock := &mockGradingService{
		submitResult: &dto.GradingProgressResponse{
			Expected:  24,
			Submitted: 8,
		},
	}
	h := NewGradingHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/defenses/def-1/jury/jm-1/evaluations", jsonBody(dto.SubmitEvaluationRequest{
		Items: []dto.EvaluationItem{
			{CriteriaName: "content_quality", Score: 6},
		},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/defenses/:id/jury/:memberId/evaluations", func(c *gin.Context) {
		setAuth(c)
		h.SubmitEvaluation(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestGradingHandler_Submit_EmptyItems(t *testing.T) {
	mock := &mockGradingService{}
	h := NewGradingHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/defenses/def-1/jury/jm-1/evaluations", jsonBody(dto.SubmitEvaluationRequest{
		Items: []dto.EvaluationItem{},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/defenses/:id/jury/:memberId/evaluations", func(c *gin.Context) {
		setAuth(c)
		h.SubmitEvaluation(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGradingHandler_Preview_Success(t *testing.T) {
	mock := &mockGradingService{
		previewResult: &dto.ScoreResponse{
			ReportScore:       14,
			PresentationScore: 10,
			CompanyScore:      10,
			FinalScore:        11.2,
			Mention:           "Assez Bien",
		},
	}
	h := NewGradingHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/grading/preview", jsonBody(dto.PreviewScoreRequest{
		ReportScore:       14,
		PresentationScore: 10,
		CompanyScore:      10,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/grading/preview", h.PreviewScore)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestGradingHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"DefenseNotFound", service.ErrDefenseNotFound, 404, 16101},
		{"MemberNotFound", service.ErrJuryMemberNotFound, 404, 16102},
		{"MemberNotOnDefense", service.ErrMemberNotOnDefense, 403, 16103},
		{"NotScheduled", service.ErrDefenseNotScheduled, 400, 16104},
		{"UnknownCriterion", service.ErrCriterionUnknown, 400, 16105},
		{"OutOfRange", service.ErrScoreOutOfRange, 400, 16106},
		{"Duplicate", service.ErrDuplicateEvaluation, 409, 16107},
		{"Busy", service.ErrDefenseBusy, 409, 16108},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockGradingService{submitErr: tt.err}
			h := NewGradingHandler(mock)

			w := setupRecorder()
			req := httptest.NewRequest("POST", "/defenses/def-1/jury/jm-1/evaluations", jsonBody(dto.SubmitEvaluationRequest{
				Items: []dto.EvaluationItem{
					{CriteriaName: "content_quality", Score: 6},
				},
			}))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/defenses/:id/jury/:memberId/evaluations", func(c *gin.Context) {
				setAuth(c)
				h.SubmitEvaluation(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_Planning_Success(t *testing.T) {
	buf := bytes.NewBufferString("excel content")
	mock := &mockExportService{
		buf:      buf,
		filename: "答辩安排_20300610.xlsx",
	}
	h := NewExportHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/export/planning", nil)

	r := gin.New()
	r.GET("/export/planning", h.ExportPlanning)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type: %s", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if cd == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestExportHandler_Planning_BadFrom(t *testing.T) {
	mock := &mockExportService{}
	h := NewExportHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/export/planning?from=hier", nil)

	r := gin.New()
	r.GET("/export/planning", h.ExportPlanning)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestExportHandler_Planning_NoDefenses(t *testing.T) {
	mock := &mockExportService{err: service.ErrExportNoDefenses}
	h := NewExportHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/export/planning", nil)

	r := gin.New()
	r.GET("/export/planning", h.ExportPlanning)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestExportHandler_Calendar_Success(t *testing.T) {
	buf := bytes.NewBufferString("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
	mock := &mockExportService{
		buf:      buf,
		filename: "soutenances.ics",
	}
	h := NewExportHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/export/calendar", nil)

	r := gin.New()
	r.GET("/export/calendar", h.ExportCalendar)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "text/calendar; charset=utf-8" {
		t.Errorf("unexpected content type: %s", ct)
	}
}
