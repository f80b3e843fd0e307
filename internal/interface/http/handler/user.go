package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/meatshop/internal/application/user"
	"github.com/xiebiao/meatshop/internal/interface/http/dto"
	"github.com/xiebiao/meatshop/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/meatshop/pkg/errors"
	"github.com/xiebiao/meatshop/pkg/response"
)

// UserHandler 会话相关接口
// Handler只负责解析请求、调用应用层、返回响应
type UserHandler struct {
	startSession *appuser.StartSessionUseCase
	refreshToken *appuser.RefreshTokenUseCase
	logout       *appuser.LogoutUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	startSession *appuser.StartSessionUseCase,
	refreshToken *appuser.RefreshTokenUseCase,
	logout *appuser.LogoutUseCase,
) *UserHandler {
	return &UserHandler{
		startSession: startSession,
		refreshToken: refreshToken,
		logout:       logout,
	}
}

// StartSession 开启会话（机器人调用）
// @Summary      开启会话
// @Description  按Telegram ID查找或注册用户，返回Token对。需要X-Bot-Secret
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        X-Bot-Secret header string true "机器人共享密钥"
// @Param        request body dto.StartSessionRequest true "Telegram资料"
// @Success      200 {object} response.Response{data=appuser.SessionResponse}
// @Router       /api/v1/sessions [post]
func (h *UserHandler) StartSession(c *gin.Context) {
	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.WithCause(apperrors.ErrBindError, err))
		return
	}

	result, err := h.startSession.Execute(c.Request.Context(), appuser.StartSessionRequest{
		TelegramID:   req.TelegramID,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		LanguageCode: req.LanguageCode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RefreshToken 刷新Access Token
// @Summary      刷新Token
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshTokenRequest true "Refresh Token"
// @Success      200 {object} response.Response{data=dto.RefreshTokenResponse}
// @Router       /api/v1/sessions/refresh [post]
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.WithCause(apperrors.ErrBindError, err))
		return
	}

	token, err := h.refreshToken.Execute(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.RefreshTokenResponse{AccessToken: token})
}

// Logout 登出
// @Summary      登出
// @Tags         用户
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/sessions [delete]
func (h *UserHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}
	if err := h.logout.Execute(c.Request.Context(), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
