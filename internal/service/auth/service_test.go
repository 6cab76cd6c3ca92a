package auth

import (
	"context"
	"testing"
	"time"

	"shop_chat_server/internal/dao/mysql/repository"
	"shop_chat_server/internal/dto/request"
	"shop_chat_server/internal/model"
	"shop_chat_server/internal/testutil"
	"shop_chat_server/pkg/errorx"
	"shop_chat_server/pkg/util/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*Service, *gorm.DB) {
	svc, db, _ := newServiceWithRedis(t)
	return svc, db
}

// newServiceWithRedis Refresh Token ID 存放在 miniredis 中
func newServiceWithRedis(t *testing.T) (*Service, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()
	jwt.Init("auth-test-secret", 15, 24)
	db := testutil.NewDB(t)
	cache, mr := testutil.NewRedisCache(t)
	return NewAuthService(repository.NewRepositories(db), cache), db, mr
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t)
	staff, err := svc.CreateStaff("ani", "rahasia123", "Ani")
	require.NoError(t, err)

	rsp, err := svc.Login(context.Background(), request.LoginRequest{Username: "ani", Password: "rahasia123"})
	require.NoError(t, err)
	assert.Equal(t, staff.Uuid, rsp.StaffId)
	assert.Equal(t, "Ani", rsp.DisplayName)

	claims, err := jwt.ParseAccessToken(rsp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, staff.Uuid, claims.UserID)

	_, err = svc.Login(context.Background(), request.LoginRequest{Username: "ani", Password: "salah"})
	assert.Equal(t, errorx.CodeInvalidPassword, errorx.GetCode(err))

	_, err = svc.Login(context.Background(), request.LoginRequest{Username: "budi", Password: "rahasia123"})
	assert.Equal(t, errorx.CodeStaffNotExist, errorx.GetCode(err))
}

func TestRefreshRotatesTokenID(t *testing.T) {
	svc, _, mr := newServiceWithRedis(t)
	staff, err := svc.CreateStaff("ani", "rahasia123", "Ani")
	require.NoError(t, err)
	ctx := context.Background()

	first, err := svc.Login(ctx, request.LoginRequest{Username: "ani", Password: "rahasia123"})
	require.NoError(t, err)
	firstID, err := mr.Get("staff_token:" + staff.Uuid)
	require.NoError(t, err)
	assert.NotEmpty(t, firstID)
	assert.Greater(t, mr.TTL("staff_token:"+staff.Uuid), time.Duration(0))

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	secondID, err := mr.Get("staff_token:" + staff.Uuid)
	require.NoError(t, err)
	assert.NotEqual(t, firstID, secondID)

	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	_, err = svc.Refresh(ctx, second.AccessToken)
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}

func TestRefreshRejectedAfterTokenIDExpires(t *testing.T) {
	svc, _, mr := newServiceWithRedis(t)
	_, err := svc.CreateStaff("ani", "rahasia123", "Ani")
	require.NoError(t, err)
	ctx := context.Background()

	rsp, err := svc.Login(ctx, request.LoginRequest{Username: "ani", Password: "rahasia123"})
	require.NoError(t, err)

	mr.FastForward(25 * time.Hour)
	_, err = svc.Refresh(ctx, rsp.RefreshToken)
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}

func TestDisabledStaffIsRejected(t *testing.T) {
	svc, db := newService(t)
	staff, err := svc.CreateStaff("ani", "rahasia123", "Ani")
	require.NoError(t, err)

	p, err := svc.Principal(staff.Uuid)
	require.NoError(t, err)
	assert.Equal(t, "Ani", p.DisplayName)

	require.NoError(t, db.Model(&model.StaffUser{}).Where("uuid = ?", staff.Uuid).Update("status", 1).Error)

	_, err = svc.Principal(staff.Uuid)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
	_, err = svc.Login(context.Background(), request.LoginRequest{Username: "ani", Password: "rahasia123"})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	_, err = svc.Principal("A404")
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}

func TestEnsureStaffIsIdempotent(t *testing.T) {
	svc, _ := newService(t)

	created, err := svc.EnsureStaff("admin", "admin123", "")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureStaff("admin", "other-password", "")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = svc.Login(context.Background(), request.LoginRequest{Username: "admin", Password: "admin123"})
	assert.NoError(t, err)

	_, err = svc.CreateStaff("x", "123", "")
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}
