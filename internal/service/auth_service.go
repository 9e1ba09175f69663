package service

import (
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/paywall_go_server/config"
	"github.com/qs3c/paywall_go_server/internal/model"
	"github.com/qs3c/paywall_go_server/internal/model/dto"
	"github.com/qs3c/paywall_go_server/internal/pkg/email"
	"github.com/qs3c/paywall_go_server/internal/pkg/jwt"
	"github.com/qs3c/paywall_go_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrUsernameExists     = errors.New("用户名已被使用")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrCreatorNameMissing = errors.New("创作者必须填写创作者名称")
)

type AuthService struct {
	userRepo *repository.UserRepository
	emailSvc *email.Service
	cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, emailSvc *email.Service, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		emailSvc: emailSvc,
		cfg:      cfg,
	}
}

// Register 用户注册，可同时注册为创作者
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if req.IsCreator && req.CreatorName == "" {
		return nil, ErrCreatorNameMissing
	}

	exists, err := s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	exists, err = s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		IsCreator:    req.IsCreator,
		CreatorName:  req.CreatorName,
		PhoneNumber:  req.PhoneNumber,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	// 欢迎邮件失败不影响注册
	if s.emailSvc != nil {
		if err := s.emailSvc.SendWelcome(user.Email, user.Username); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
		}
	}

	return &dto.RegisterResponse{UserID: user.ID}, nil
}

// Login 用户登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  toUserInfo(user),
	}, nil
}

// GetUserInfo 获取当前用户信息
func (s *AuthService) GetUserInfo(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserInfo(user), nil
}

// BecomeCreator 普通用户升级为创作者
func (s *AuthService) BecomeCreator(userID int64, creatorName string) (*dto.UserInfo, error) {
	if creatorName == "" {
		return nil, ErrCreatorNameMissing
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.IsCreator = true
	user.CreatorName = creatorName
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		IsCreator:   user.IsCreator,
		CreatorName: user.CreatorName,
		PhoneNumber: user.PhoneNumber,
		CreatedAt:   user.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}
