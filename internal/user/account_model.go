package user

import "friendlink/internal/model"

// SignUpRequest 注册请求
type SignUpRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,max=72"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest 刷新/注销请求
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// Brief 用户列表项 {id, email}
type Brief struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// Briefs 转换为列表响应，保证空列表序列化为 []
func Briefs(users []model.User) []Brief {
	out := make([]Brief, 0, len(users))
	for _, u := range users {
		out = append(out, Brief{ID: u.ID, Email: u.Email})
	}
	return out
}
