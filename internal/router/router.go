package router

import (
	"net/http"
	"time"

	"friendlink/internal/auth"
	"friendlink/internal/config"
	"friendlink/internal/constants"
	"friendlink/internal/friend"
	"friendlink/internal/service"
	"friendlink/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// requestLogger 为每个请求分配 ID 并记录耗时。请求体含密码，不记录。
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(constants.ContextRequestID, requestID)
		c.Header(constants.HeaderRequestID, requestID)

		startTime := time.Now()
		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"requestID": requestID,
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(startTime).String(),
			"clientIP":  c.ClientIP(),
		})
		if userID, ok := auth.CurrentUserID(c); ok {
			entry = entry.WithField("userID", userID)
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("请求失败")
		} else {
			entry.Info("请求完成")
		}
	}
}

// both 同时注册带/不带结尾斜杠的路径
func both(path string) []string {
	return []string{path, path + "/"}
}

// SetupRouter 配置所有路由
func SetupRouter(cfg *config.Config, mgr *service.Manager) *gin.Engine {
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.Use(gin.Recovery(), requestLogger())

	// CORS 配置
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", constants.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", constants.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	tokens := mgr.GetTokenIssuer()
	users := user.NewHandler(mgr.GetAccountService(), tokens)
	friends := friend.NewHandler(mgr.GetLedger(), mgr.GetQueries(), mgr.GetAccountService())

	r.GET("/healthz", func(c *gin.Context) {
		if err := mgr.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ----- 无需认证的路由 -----
	for _, p := range both("/login") {
		r.POST(p, users.Login)
	}
	for _, p := range both("/signup") {
		r.POST(p, users.SignUp)
	}
	for _, p := range both("/token/refresh") {
		r.POST(p, users.Refresh)
	}
	for _, p := range both("/logout") {
		r.POST(p, users.Logout)
	}

	// ----- 需要认证的路由 -----
	authed := r.Group("/")
	authed.Use(auth.JWT(tokens))
	{
		for _, p := range both("/search") {
			authed.GET(p, users.SearchUsers)
		}
		for _, p := range both("/send-friend-request") {
			authed.POST(p, friends.SendFriendRequest)
		}
		for _, p := range both("/accept-friend-request") {
			authed.POST(p, friends.AcceptFriendRequest)
		}
		for _, p := range both("/reject-friend-request") {
			authed.POST(p, friends.RejectFriendRequest)
		}
		for _, p := range both("/friends") {
			authed.GET(p, friends.ListFriends)
		}
		for _, p := range both("/pending-requests") {
			authed.GET(p, friends.ListPending)
		}
	}

	return r
}
