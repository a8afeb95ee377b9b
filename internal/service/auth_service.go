package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/mini_tweeter_server/config"
	"github.com/qs3c/mini_tweeter_server/internal/model"
	"github.com/qs3c/mini_tweeter_server/internal/model/dto"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/jwt"
	"github.com/qs3c/mini_tweeter_server/internal/pkg/oauth"
	"github.com/qs3c/mini_tweeter_server/internal/repository"
)

var (
	ErrEmailExists            = errors.New("邮箱已被注册")
	ErrUsernameExists         = errors.New("用户名已被使用")
	ErrInvalidCredentials     = errors.New("账号或密码错误")
	ErrUserNotFound           = errors.New("用户不存在")
	ErrGoogleAuthFailed       = errors.New("Google 登录校验失败")
	ErrGoogleEmailNotVerified = errors.New("Google 邮箱尚未验证")
	ErrGoogleNotConfigured    = errors.New("Google 登录未配置")
	ErrUsernameUnavailable    = errors.New("无法生成唯一用户名")
)

const maxUsernameSuffix = 10000

type AuthService struct {
	userRepo *repository.UserRepository
	google   oauth.GoogleVerifier
	cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, google oauth.GoogleVerifier, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		google:   google,
		cfg:      cfg,
	}
}

// Register 用户注册
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserInfo, error) {
	username := strings.TrimSpace(req.Username)
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	email := normalizeEmail(req.Email)

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateNames(firstName, lastName); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, email, username, 0); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发注册撞唯一索引
			if err := s.checkUnique(ctx, email, username, 0); err != nil {
				return nil, err
			}
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return buildUserInfo(user), nil
}

// Login 用户登录，支持邮箱或用户名
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	identifier := strings.TrimSpace(req.EmailOrUsername)
	if identifier == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmailOrUsername(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// GoogleAuth 使用 Google ID token 或授权码登录，首次登录自动注册
func (s *AuthService) GoogleAuth(ctx context.Context, req *dto.GoogleAuthRequest) (*dto.LoginResponse, error) {
	if s.google == nil {
		return nil, ErrGoogleNotConfigured
	}

	var (
		gUser *oauth.GoogleUser
		err   error
	)
	switch {
	case req.IDToken != "":
		gUser, err = s.google.VerifyIDToken(ctx, req.IDToken)
	case req.Code != "":
		gUser, err = s.google.ExchangeCode(ctx, req.Code, req.RedirectURI)
	default:
		return nil, fmt.Errorf("%w: 缺少 id_token 或 code", ErrInvalidInput)
	}
	if err != nil {
		if errors.Is(err, oauth.ErrNotConfigured) {
			return nil, ErrGoogleNotConfigured
		}
		return nil, fmt.Errorf("%w: %v", ErrGoogleAuthFailed, err)
	}

	if !gUser.EmailVerified {
		return nil, ErrGoogleEmailNotVerified
	}
	email := normalizeEmail(gUser.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: token 中缺少邮箱", ErrGoogleAuthFailed)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return s.issue(user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user, err = s.createGoogleUser(ctx, email, gUser)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) createGoogleUser(ctx context.Context, email string, gUser *oauth.GoogleUser) (*model.User, error) {
	username, err := s.uniqueUsername(ctx, email)
	if err != nil {
		return nil, err
	}

	firstName := strings.TrimSpace(gUser.GivenName)
	if firstName == "" {
		firstName = "Google"
	}
	lastName := strings.TrimSpace(gUser.FamilyName)
	if lastName == "" {
		lastName = "User"
	}

	// Google 用户不使用密码登录，存一个随机密码的哈希
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		FirstName:    truncateRunes(firstName, maxNameLength),
		LastName:     truncateRunes(lastName, maxNameLength),
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 同一账号并发首次登录
			existing, getErr := s.userRepo.GetByEmail(ctx, email)
			if getErr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("create google user: %w", err)
	}
	return user, nil
}

// uniqueUsername 以邮箱前缀为基础，冲突时追加递增数字
func (s *AuthService) uniqueUsername(ctx context.Context, email string) (string, error) {
	base := strings.TrimSpace(strings.SplitN(email, "@", 2)[0])
	base = strings.Join(strings.Fields(base), "")
	if base == "" {
		base = "user"
	}
	for utf8.RuneCountInString(base) < minUsernameLength {
		base += "0"
	}

	candidate := truncateRunes(base, maxNameLength)
	for suffix := 1; ; suffix++ {
		exists, err := s.userRepo.ExistsByUsername(ctx, candidate, 0)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		if suffix > maxUsernameSuffix {
			return "", ErrUsernameUnavailable
		}
		candidate = truncateRunes(base+strconv.Itoa(suffix), maxNameLength)
	}
}

func (s *AuthService) checkUnique(ctx context.Context, email, username string, excludeID int64) error {
	exists, err := s.userRepo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailExists
	}

	exists, err = s.userRepo.ExistsByUsername(ctx, username, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrUsernameExists
	}
	return nil
}

func (s *AuthService) issue(user *model.User) (*dto.LoginResponse, error) {
	token, err := jwt.GenerateToken(jwt.Subject{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, JWTOptions(s.cfg.JWT))
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &dto.LoginResponse{
		Access: token,
		User:   buildUserInfo(user),
	}, nil
}

// JWTOptions 把配置转换为签发参数
func JWTOptions(cfg config.JWTConfig) jwt.Options {
	return jwt.Options{
		Secret:        cfg.Secret,
		Issuer:        cfg.Issuer,
		Audience:      cfg.Audience,
		ExpireMinutes: cfg.ExpireMinutes,
	}
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
