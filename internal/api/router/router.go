package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pfe-hub/backend/config"
	"pfe-hub/backend/internal/api/handler"
	"pfe-hub/backend/internal/api/middleware"
	"pfe-hub/backend/pkg/jwt"
	"pfe-hub/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/register", middleware.RoleAuth("admin"), h.Auth.Register)
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth("admin", "teacher"), h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.PUT("/:id", middleware.RoleAuth("admin"), h.User.UpdateUser)
			}

			// 课题模块
			proposals := authorized.Group("/proposals")
			{
				proposals.GET("", h.Proposal.ListProposals)
				proposals.GET("/:id", h.Proposal.GetProposal)
				proposals.POST("", middleware.RoleAuth("student", "admin"), h.Proposal.CreateProposal)
				proposals.PUT("/:id", middleware.RoleAuth("student", "admin"), h.Proposal.UpdateProposal)
				proposals.POST("/:id/submit", middleware.RoleAuth("student", "admin"), h.Proposal.SubmitProposal)
				proposals.POST("/:id/review", middleware.RoleAuth("admin"), h.Proposal.ReviewProposal)
			}

			// 教室模块
			rooms := authorized.Group("/rooms")
			{
				rooms.GET("", h.Room.ListRooms)
				rooms.GET("/:id", h.Room.GetRoom)
				rooms.POST("", middleware.RoleAuth("admin"), h.Room.CreateRoom)
				rooms.PUT("/:id", middleware.RoleAuth("admin"), h.Room.UpdateRoom)
				rooms.DELETE("/:id", middleware.RoleAuth("admin"), h.Room.DeleteRoom)
			}

			// 答辩排期模块
			defenses := authorized.Group("/defenses")
			{
				defenses.GET("", h.Defense.ListDefenses)
				defenses.GET("/availability", h.Defense.CheckRoomAvailability)
				defenses.GET("/:id", h.Defense.GetDefense)
				defenses.POST("", middleware.RoleAuth("admin"), h.Defense.CreateDefense)
				defenses.PUT("/:id", middleware.RoleAuth("admin"), h.Defense.RescheduleDefense)
				defenses.POST("/:id/cancel", middleware.RoleAuth("admin"), h.Defense.CancelDefense)

				// 评审团子资源
				defenses.GET("/:id/jury", h.Jury.ListJuryMembers)
				defenses.GET("/:id/jury/validate", h.Jury.ValidateJuryComposition)
				defenses.POST("/:id/jury", middleware.RoleAuth("admin"), h.Jury.AddJuryMember)

				// 评分子资源
				defenses.POST("/:id/jury/:memberId/evaluations", middleware.RoleAuth("teacher", "admin"), h.Grading.SubmitEvaluation)
				defenses.GET("/:id/evaluations", middleware.RoleAuth("teacher", "admin"), h.Grading.ListEvaluations)
				defenses.GET("/:id/grading-progress", h.Grading.GetProgress)
			}

			// 评审成员（顶层资源，便于按 ID 删除）
			authorized.DELETE("/jury-members/:id", middleware.RoleAuth("admin"), h.Jury.RemoveJuryMember)

			// 评分工具
			grading := authorized.Group("/grading")
			{
				grading.GET("/criteria", h.Grading.ListCriteria)
				grading.POST("/preview", middleware.RoleAuth("teacher", "admin"), h.Grading.PreviewScore)
			}

			// 评分设置模块
			settings := authorized.Group("/settings")
			{
				settings.GET("/grading", h.Settings.GetSettings)
				settings.PUT("/grading", middleware.RoleAuth("admin"), h.Settings.UpdateSettings)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/planning", middleware.RoleAuth("admin", "teacher"), h.Export.ExportPlanning)
				export.GET("/calendar", h.Export.ExportCalendar)
			}
		}
	}

	return r
}
