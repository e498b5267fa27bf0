package server

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"friendlink/internal/config"

	"github.com/sirupsen/logrus"
)

// TLSConfig TLS配置
type TLSConfig struct {
	CertFile string
	KeyFile  string
	Enabled  bool
}

// GetTLSConfig 获取标准TLS配置
func (c *TLSConfig) GetTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12, // 最低TLS 1.2
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		},
	}
}

// ValidateCertificates 验证证书文件
func (c *TLSConfig) ValidateCertificates() error {
	if !c.Enabled {
		return nil
	}
	if _, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile); err != nil {
		return fmt.Errorf("验证TLS证书失败: %w", err)
	}
	return nil
}

// Server 包装 http.Server，记录是否启用 TLS
type Server struct {
	*http.Server
	tls *TLSConfig
}

// New 按配置创建 HTTP/HTTPS 服务器；证书无效时回退到 HTTP
func New(cfg *config.Config, handler http.Handler) *Server {
	tlsCfg := &TLSConfig{
		CertFile: cfg.Server.CertFile,
		KeyFile:  cfg.Server.KeyFile,
		Enabled:  cfg.Server.TLSEnabled,
	}
	if err := tlsCfg.ValidateCertificates(); err != nil {
		logrus.WithError(err).Warn("TLS证书验证失败，回退到HTTP模式")
		tlsCfg.Enabled = false
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if tlsCfg.Enabled {
		srv.TLSConfig = tlsCfg.GetTLSConfig()
	}
	return &Server{Server: srv, tls: tlsCfg}
}

// TLSEnabled 是否以 HTTPS 方式监听
func (s *Server) TLSEnabled() bool {
	return s.tls.Enabled
}

// Start 阻塞监听，正常关闭时返回 nil
func (s *Server) Start() error {
	var err error
	if s.tls.Enabled {
		logrus.WithFields(logrus.Fields{"addr": s.Addr, "cert": s.tls.CertFile}).Info("HTTPS服务器已启动")
		err = s.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
	} else {
		logrus.WithField("addr", s.Addr).Info("HTTP服务器已启动")
		err = s.ListenAndServe()
	}
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
