package user

import (
	"context"
	"errors"
	"strings"

	"friendlink/internal/auth"
	"friendlink/internal/clock"
	"friendlink/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidEmail = errors.New("invalid email format")
	ErrEmptyField   = errors.New("field is required")
	ErrPasswordLong = errors.New("password exceeds 72 bytes")
)

// bcrypt 只接受 72 字节以内的输入
const maxPasswordBytes = 72

// Option AccountService 可选配置
type Option func(*AccountService)

// WithHashCost 设置 bcrypt cost，测试里用 bcrypt.MinCost
func WithHashCost(cost int) Option {
	return func(s *AccountService) { s.hashCost = cost }
}

// AccountService 注册、登录、搜索
type AccountService struct {
	store    Store
	tokens   *auth.TokenIssuer
	clock    clock.Clock
	validate *validator.Validate
	hashCost int

	// 未知邮箱时与之比较，耗时与真实哈希一致
	dummyHash []byte
}

// NewAccountService 创建账户服务
func NewAccountService(store Store, tokens *auth.TokenIssuer, clk clock.Clock, opts ...Option) *AccountService {
	s := &AccountService{
		store:    store,
		tokens:   tokens,
		clock:    clk,
		validate: validator.New(),
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("friendlink-dummy-password"), s.hashCost)
	return s
}

// SignUp 注册普通用户
func (s *AccountService) SignUp(ctx context.Context, req *SignUpRequest) (*model.User, error) {
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" || req.Password == "" {
		return nil, ErrEmptyField
	}
	return s.create(ctx, req.Email, req.Password, func(u *model.User) {
		u.FirstName = req.FirstName
		u.LastName = req.LastName
	})
}

// CreateSuperuser 管理员账号，staff 与 superuser 标记均为 true
func (s *AccountService) CreateSuperuser(ctx context.Context, email, password string) (*model.User, error) {
	if password == "" {
		return nil, ErrEmptyField
	}
	return s.create(ctx, email, password, func(u *model.User) {
		u.IsStaff = true
		u.IsSuperuser = true
	})
}

func (s *AccountService) create(ctx context.Context, email, password string, attrs func(*model.User)) (*model.User, error) {
	if err := s.validate.Var(email, "required,email,max=255"); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) > maxPasswordBytes {
		return nil, ErrPasswordLong
	}
	email = NormalizeEmail(email)

	// 检查邮箱是否已存在（不区分大小写）
	exists, err := s.store.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	// 哈希密码
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Email:      email,
		Password:   string(hashed),
		IsActive:   true,
		DateJoined: s.clock.Now(),
	}
	attrs(u)

	// 唯一索引兜底并发注册
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "create",
		"userID":   u.ID,
		"staff":    u.IsStaff,
	}).Info("用户注册成功")
	return u, nil
}

// Authenticate 校验邮箱和密码；邮箱不存在、账号停用、密码错误都返回 ErrInvalidCredentials
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.store.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		logrus.WithField("userID", u.ID).Debug("密码验证失败")
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login 校验凭据、签发令牌并记录最后登录时间
func (s *AccountService) Login(ctx context.Context, req *LoginRequest) (*auth.TokenPair, error) {
	u, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}

	if err := s.store.TouchLastLogin(ctx, u.ID, s.clock.Now()); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Login",
		"userID":   u.ID,
	}).Info("用户登录成功")
	return pair, nil
}

// GetUsersByIDs 按 id 升序返回用户
func (s *AccountService) GetUsersByIDs(ctx context.Context, ids []uint) ([]model.User, error) {
	return s.store.FindByIDs(ctx, ids)
}

// SearchUsers 含 "@" 时按邮箱精确匹配，否则按名/姓子串匹配，空查询返回空；始终排除调用者
func (s *AccountService) SearchUsers(ctx context.Context, query string, callerID uint) ([]model.User, error) {
	switch {
	case strings.Contains(query, "@"):
		return s.store.SearchByEmail(ctx, query, callerID)
	case query != "":
		return s.store.SearchByName(ctx, query, callerID)
	default:
		return []model.User{}, nil
	}
}
