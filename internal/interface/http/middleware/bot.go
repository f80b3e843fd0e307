package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/meatshop/pkg/errors"
	"github.com/xiebiao/meatshop/pkg/response"
)

// BotSecretHeader 机器人调用会话接口时携带的共享密钥
const BotSecretHeader = "X-Bot-Secret"

// RequireBotSecret 只允许持有共享密钥的机器人访问
// secret为空时拒绝所有请求
func RequireBotSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(BotSecretHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			response.Abort(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}
