package auth

import (
	"net/http"
	"strings"

	"friendlink/internal/constants"

	"github.com/gin-gonic/gin"
)

// JWT 中间件验证 access token，并把用户ID写入上下文
func JWT(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从请求头获取 token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": constants.ErrAuthHeaderMissing})
			return
		}

		// 验证 token 格式
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": constants.ErrAuthHeaderMalformed})
			return
		}

		claims, err := issuer.ParseAccess(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": constants.ErrTokenInvalid})
			return
		}

		c.Set(constants.ContextUserID, claims.UserID)
		c.Next()
	}
}

// CurrentUserID 取出 JWT 中间件写入的用户ID
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(constants.ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
