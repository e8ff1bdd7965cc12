package service

import (
	"context"
	"errors"
	"strings"

	"neighbourhood/internal/model"
	"neighbourhood/internal/pkg"
	"neighbourhood/internal/repository/mysql"
	"neighbourhood/internal/repository/redis"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// profileProtectedFields 个人资料 patch 的禁改字段
var profileProtectedFields = []string{"id", "username", "email", "password", "role", "post_count"}

type UserService struct {
	repo     *mysql.UserRepository
	accessor *Accessor
	opts     *OptionsService
	rUser    *redis.UserRepository
	emailSvc *EmailService // 可为 nil（测试环境跳过验证码）
}

func NewUserService(db *gorm.DB, opts *OptionsService, emailSvc *EmailService) *UserService {
	return &UserService{
		repo:     &mysql.UserRepository{DB: db},
		accessor: NewAccessor(db),
		opts:     opts,
		rUser:    &redis.UserRepository{},
		emailSvc: emailSvc,
	}
}

func (s *UserService) Register(ctx context.Context, username, password, email, code string) error {
	if s.emailSvc != nil {
		ok, err := s.emailSvc.VerifyCode("register", email, code)
		if err != nil || !ok {
			return pkg.Forbidden("verification failed")
		}
	}

	rules, err := s.opts.Validation(ctx)
	if err != nil {
		return err
	}
	if len(username) < rules.MinUsernameLength || len(username) > rules.MaxUsernameLength {
		return pkg.Forbidden("username length must be between %d and %d", rules.MinUsernameLength, rules.MaxUsernameLength)
	}
	if s := containsDisallowed(username, rules.DisallowedStrings); s != "" {
		return pkg.Forbidden("username contains disallowed string %q", s)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.repo.Create(&model.User{
		Username: username,
		Password: string(hash),
		Email:    email,
	})
}

func (s *UserService) Login(username, password string) (*pkg.Pair, error) {
	user, err := s.repo.FindByUsername(username)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, errors.New("invalid password")
	}
	token, err := pkg.GeneratePair(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	// 单端登录：当前 access token 写入 redis
	if err = s.rUser.AddUserToken(user.ID, token.AccessToken); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *UserService) Logout(usrID uint64) error {
	return s.rUser.DeleteUserToken(usrID)
}

func (s *UserService) Refresh(refreshToken string) (*pkg.Pair, error) {
	return pkg.Refresh(refreshToken)
}

// ResetPassword 验证码重置密码
func (s *UserService) ResetPassword(email, code, newPassword string) error {
	if s.emailSvc != nil {
		ok, err := s.emailSvc.VerifyCode("reset", email, code)
		if err != nil || !ok {
			return pkg.Forbidden("verification failed")
		}
	}

	user, err := s.repo.FindByEmail(email)
	if err != nil {
		return pkg.NotFound("user not found")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(user, string(hash))
}

// ChangePassword 登录态修改密码，成功后强制下线
func (s *UserService) ChangePassword(usrID uint64, oldPassword, newPassword string) error {
	user, err := s.accessor.User(usrID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return pkg.Forbidden("old password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err = s.repo.UpdatePassword(user, string(hash)); err != nil {
		return err
	}
	return s.Logout(usrID)
}

func (s *UserService) Profile(usrID uint64) (*model.User, error) {
	return s.accessor.User(usrID)
}

// UpdateProfile 清洗后更新个人资料；禁改字段直接 Forbidden，
// 与当前值相同的字段不产生写入
func (s *UserService) UpdateProfile(usrID uint64, updates map[string]any) (*model.User, error) {
	user, err := s.accessor.User(usrID)
	if err != nil {
		return nil, err
	}

	current := map[string]any{
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"bio":        user.Bio,
		"title":      user.Title,
		"avatar":     user.Avatar,
	}
	fields, err := pkg.SanitizePatch(updates, current, profileProtectedFields)
	if err != nil {
		return nil, err
	}
	if err = s.repo.UpdateFields(usrID, fields); err != nil {
		return nil, err
	}
	return s.accessor.User(usrID)
}

// DeleteAccount 删除账号并下线
func (s *UserService) DeleteAccount(usrID uint64) error {
	if _, err := s.accessor.User(usrID); err != nil {
		return err
	}
	if err := s.repo.Delete(usrID); err != nil {
		return err
	}
	return s.rUser.DeleteUserToken(usrID)
}

// containsDisallowed 返回命中的禁用字符串，未命中返回空串
func containsDisallowed(value string, disallowed []string) string {
	lower := strings.ToLower(value)
	for _, d := range disallowed {
		if d != "" && strings.Contains(lower, strings.ToLower(d)) {
			return d
		}
	}
	return ""
}
