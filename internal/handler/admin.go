package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/bingewatch/internal/middleware"
	"github.com/user/bingewatch/internal/model"
	"github.com/user/bingewatch/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

// ==================== 认证 ====================

// Login 管理员登录，返回 JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	// 未配置密码哈希时禁止登录
	if h.Config.AdminPasswordHash == "" || req.Username != h.Config.AdminUsername {
		utils.Unauthorized(c, "用户名或密码错误")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.Config.AdminPasswordHash), []byte(req.Password)); err != nil {
		h.Log.Warn("管理员登录失败", "username", req.Username, "ip", c.ClientIP())
		utils.Unauthorized(c, "用户名或密码错误")
		return
	}

	token, err := middleware.GenerateToken(req.Username, middleware.RoleAdmin, h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Log.Info("管理员登录", "username", req.Username)
	utils.Success(c, gin.H{
		"token":      token,
		"expires_in": int(h.Config.JWTExpiry.Seconds()),
	})
}

// ==================== 管理后台 ====================

// AdminRunPipeline 重新运行数据流水线；并发请求共享同一次运行
func (h *Handler) AdminRunPipeline(c *gin.Context) {
	if h.Runner == nil {
		utils.ServiceUnavailable(c, "流水线未启用")
		return
	}

	report, shared, err := h.Runner.Run(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		h.Log.Error("流水线运行失败", "operator", middleware.GetUsername(c), "error", err)

		var sm *model.SchemaMismatchError
		var pe *model.PersistenceError
		switch {
		case errors.As(err, &sm):
			utils.Error(c, http.StatusUnprocessableEntity, err.Error())
		case errors.As(err, &pe):
			utils.InternalServerError(c, err.Error())
		default:
			utils.InternalServerError(c, "流水线运行失败: "+err.Error())
		}
		return
	}

	h.Log.Info("流水线运行完成", "operator", middleware.GetUsername(c), "rows", report.Persisted, "shared", shared)
	utils.SuccessWithMessage(c, "流水线运行完成", gin.H{
		"report": report,
		"shared": shared,
	})
}
