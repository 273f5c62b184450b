package middleware

import (
	"net/http"
	"strings"

	"Vibe_Tribe/internal/pkg"
	"Vibe_Tribe/internal/repository/redis"

	"github.com/gin-gonic/gin"
)

const ContextUserIDKey = "user_id"

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "invalid authorization format"})
			c.Abort()
			return
		}

		tokenStr := parts[1]
		userRep := &redis.UserRepository{}

		claims, err := pkg.ParseAccess(tokenStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "invalid or expired token"})
			c.Abort()
			return
		}

		// redis校验是否是正确的token
		originToken, err := userRep.GetUserToken(claims.UserID)
		if err != nil || originToken != tokenStr {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "account has been logged in elsewhere"})
			c.Abort()
			return
		}

		// 校验通过后更新过期时间
		if err = userRep.ExtendUserToken(claims.UserID); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"msg": err.Error()})
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuth 公开接口用：带合法 token 则识别身份，否则按匿名(0)处理。
// feed 与 scope 接口对匿名访客有独立的 public 语义，不能直接拒绝。
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextUserIDKey, uint64(0))

		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		claims, err := pkg.ParseAccess(parts[1])
		if err != nil {
			c.Next()
			return
		}

		userRep := &redis.UserRepository{}
		originToken, err := userRep.GetUserToken(claims.UserID)
		if err != nil || originToken != parts[1] {
			c.Next()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}
