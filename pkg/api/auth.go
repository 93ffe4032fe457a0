package api

import (
	"net/http"
	"strings"

	"github.com/dewei/MarketDiary/pkg/model"
	"github.com/gin-gonic/gin"
)

// 请求上下文中的当前用户键
const contextUserKey = "currentUser"

// AuthRequired 持有者凭证中间件
// 令牌签发属于外部认证服务；参考实现解析 "<用户ID>:<角色>" 形式的
// 开发令牌，生产部署应替换成对认证服务的校验调用
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("x-auth-token")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "No token, authorization denied",
			})
			return
		}

		user, ok := resolveToken(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Token is not valid",
			})
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// resolveToken 解析开发令牌
func resolveToken(token string) (model.User, bool) {
	parts := strings.SplitN(token, ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return model.User{}, false
	}

	role := model.Role(parts[1])
	if role != model.RoleUser && role != model.RoleAdmin {
		return model.User{}, false
	}

	return model.User{ID: parts[0], Role: role}, true
}

// currentUser 取出中间件写入的当前用户
func currentUser(c *gin.Context) model.User {
	value, _ := c.Get(contextUserKey)
	user, _ := value.(model.User)
	return user
}
