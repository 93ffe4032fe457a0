package model

import (
	"regexp"
)

// Role 用户角色
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User 已认证用户
// 令牌签发由外部认证服务负责，这里只消费用户身份
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin 判断是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// 绝对 HTTP(S) 链接校验，和分享标题时的表单校验保持一致
var absoluteURLPattern = regexp.MustCompile(`^(https?://)[\w.-]+(\.[\w.-]+)+[\w\-._~:?#\[\]@!$&'()*+,;=./]*$`)

// IsAbsoluteHTTPURL 判断是否为合法的绝对 HTTP(S) 链接
func IsAbsoluteHTTPURL(url string) bool {
	return absoluteURLPattern.MatchString(url)
}
