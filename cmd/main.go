package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"friendlink/internal/clock"
	"friendlink/internal/config"
	"friendlink/internal/logger"
	"friendlink/internal/router"
	"friendlink/internal/server"
	"friendlink/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	createSuperuser := flag.Bool("create-superuser", false, "创建管理员账号后退出")
	email := flag.String("email", "", "管理员邮箱")
	password := flag.String("password", "", "管理员密码")
	flag.Parse()

	// 读取配置
	if err := config.Init(); err != nil {
		logrus.Fatalf("加载配置失败: %v", err)
	}
	cfg := config.GlobalConfig
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if !logrus.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr, err := service.NewManager(ctx, cfg, clock.Real{})
	if err != nil {
		logrus.Fatalf("初始化服务失败: %v", err)
	}
	defer mgr.Shutdown()

	if *createSuperuser {
		u, err := mgr.GetAccountService().CreateSuperuser(ctx, *email, *password)
		if err != nil {
			logrus.Fatalf("创建管理员失败: %v", err)
		}
		logrus.WithField("userID", u.ID).Info("管理员已创建")
		return
	}

	srv := server.New(cfg, router.SetupRouter(cfg, mgr))
	go func() {
		if err := srv.Start(); err != nil {
			logrus.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("正在关闭服务器...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("HTTP 服务器关闭失败: %v", err)
	}

	logrus.Info("服务器已安全关闭")
}
