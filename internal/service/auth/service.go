// Package auth 提供客服认证相关的业务逻辑
// 处理账号密码登录、Token 刷新和单点互踢
package auth

import (
	"context"
	"strings"

	"shop_chat_server/internal/dao/mysql/repository"
	myredis "shop_chat_server/internal/dao/redis"
	"shop_chat_server/internal/dto/request"
	"shop_chat_server/internal/dto/respond"
	"shop_chat_server/internal/model"
	"shop_chat_server/internal/service/chat"
	"shop_chat_server/pkg/errorx"
	"shop_chat_server/pkg/util/jwt"
	"shop_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

// Service 认证服务实现
type Service struct {
	repos *repository.Repositories
	cache myredis.CacheService // 存放每个客服当前有效的 Refresh Token ID
}

// NewAuthService 创建认证服务实例
func NewAuthService(repos *repository.Repositories, cache myredis.CacheService) *Service {
	return &Service{repos: repos, cache: cache}
}

func tokenKey(staffId string) string {
	return "staff_token:" + staffId
}

// Login 密码登录
func (s *Service) Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error) {
	staff, err := s.repos.Staff.FindByUsername(strings.TrimSpace(req.Username))
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeStaffNotExist, "staff account does not exist")
		}
		zap.L().Error("find staff failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if !staff.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeInvalidPassword, "wrong password")
	}
	if staff.Disabled() {
		return nil, errorx.New(errorx.CodeForbidden, "staff account is disabled")
	}
	return s.issue(ctx, staff)
}

// Refresh 校验 Refresh Token 及其 Token ID，旧 Token 随即失效
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*respond.LoginRespond, error) {
	claims, err := jwt.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeUnauthorized, "invalid refresh token")
	}
	valid, err := s.ValidateTokenID(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		zap.L().Error("read token id failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if !valid {
		return nil, errorx.New(errorx.CodeUnauthorized, "refresh token has been revoked")
	}

	staff, err := s.repos.Staff.FindByUuid(claims.UserID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUnauthorized, "staff account does not exist")
		}
		return nil, errorx.ErrServerBusy
	}
	if staff.Disabled() {
		return nil, errorx.New(errorx.CodeForbidden, "staff account is disabled")
	}
	return s.issue(ctx, staff)
}

// ValidateTokenID 验证客服当前有效的 Refresh Token ID
// 同一账号再次登录后，之前签发的 Refresh Token 不能再使用
func (s *Service) ValidateTokenID(ctx context.Context, staffId, tokenID string) (bool, error) {
	validTokenID, err := s.cache.Get(ctx, tokenKey(staffId))
	if err != nil {
		return false, err
	}
	if validTokenID == "" {
		return false, nil
	}
	return tokenID == validTokenID, nil
}

// issue 生成双 Token，并记录 Refresh Token ID
func (s *Service) issue(ctx context.Context, staff *model.StaffUser) (*respond.LoginRespond, error) {
	accessToken, err := jwt.GenerateAccessToken(staff.Uuid)
	if err != nil {
		zap.L().Error("generate access token failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	refreshToken, tokenID, err := jwt.GenerateRefreshToken(staff.Uuid)
	if err != nil {
		zap.L().Error("generate refresh token failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if err := s.cache.Set(ctx, tokenKey(staff.Uuid), tokenID, jwt.RefreshTokenExpiry()); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeCacheError, "could not store refresh token")
	}
	return &respond.LoginRespond{
		StaffId:      staff.Uuid,
		Username:     staff.Username,
		DisplayName:  staff.DisplayName,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Principal 查询客服的聊天身份，禁用账号返回 Forbidden
func (s *Service) Principal(staffId string) (*chat.Principal, error) {
	staff, err := s.repos.Staff.FindByUuid(staffId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUnauthorized, "staff account does not exist")
		}
		return nil, err
	}
	if staff.Disabled() {
		return nil, errorx.New(errorx.CodeForbidden, "staff account is disabled")
	}
	return &chat.Principal{StaffId: staff.Uuid, DisplayName: staff.DisplayName}, nil
}

// CreateStaff 创建客服账号，用户名重复时返回 CodeStaffExist
func (s *Service) CreateStaff(username, password, displayName string) (*model.StaffUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < 6 {
		return nil, errorx.New(errorx.CodeInvalidParam, "username is required and password needs at least 6 characters")
	}
	if _, err := s.repos.Staff.FindByUsername(username); err == nil {
		return nil, errorx.New(errorx.CodeStaffExist, "staff account already exists")
	} else if !errorx.IsNotFound(err) {
		return nil, err
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = username
	}
	staff := &model.StaffUser{
		Uuid:        snowflake.StaffUuid(),
		Username:    username,
		DisplayName: displayName,
		RawPassword: password,
	}
	if err := s.repos.Staff.Create(staff); err != nil {
		return nil, err
	}
	zap.L().Info("staff account created", zap.String("staff", staff.Uuid), zap.String("username", username))
	return staff, nil
}

// EnsureStaff 用于初始化默认客服账号，返回是否新建
func (s *Service) EnsureStaff(username, password, displayName string) (bool, error) {
	_, err := s.CreateStaff(username, password, displayName)
	if err == nil {
		return true, nil
	}
	if errorx.GetCode(err) == errorx.CodeStaffExist {
		return false, nil
	}
	return false, err
}
