package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/Blackdukee/UMS/internal/config"
	"github.com/Blackdukee/UMS/internal/googleauth"
	"github.com/Blackdukee/UMS/internal/models"
	"github.com/Blackdukee/UMS/internal/storage"
	"github.com/Blackdukee/UMS/mocks"
)

func testCfg() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       "unit-secret-0123456789-0123456789",
		ServiceKey:      "unit-service-key",
		AccessTokenTTL:  30 * time.Second,
		RefreshTokenTTL: 24 * time.Hour,
		OTPTTL:          10 * time.Minute,
		Issuer:          "user-management-service",
		Audience:        []string{"ums-clients"},
	}
}

func newSvc(t *testing.T) (*Service, *mocks.MockStorage, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	svc := New(st, testCfg())
	return svc, st, ctrl
}

func mustHashPW(t *testing.T, pw string) string {
	t.Helper()
	h, err := hashPassword(pw)
	require.NoError(t, err)
	return h
}

func activeUser(t *testing.T, id int64, email, pw string, role models.Role) *models.User {
	t.Helper()
	hash := mustHashPW(t, pw)
	return &models.User{
		ID:           id,
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: &hash,
		Role:         role,
		IsActive:     true,
	}
}

func TestRegisterUser_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	email := "User@Example.com"
	norm := "user@example.com"
	pw := "Abcdef1!"

	// Сначала UserByEmail → ErrNotFound, потом SaveUser, потом выпуск пары.
	st.EXPECT().UserByEmail(gomock.Any(), norm).Return(nil, storage.ErrNotFound)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *models.User) (*models.User, error) {
			require.Equal(t, norm, u.Email)
			require.Equal(t, models.RoleStudent, u.Role)
			require.True(t, u.IsActive)
			require.NotNil(t, u.PasswordHash)
			saved := *u
			saved.ID = 42
			return &saved, nil
		})
	st.EXPECT().RevokeAllForUser(gomock.Any(), int64(42)).Return(nil)
	st.EXPECT().SaveRefreshToken(gomock.Any(), gomock.Any()).Return(nil)

	user, tp, err := svc.RegisterUser(ctx, "Test", "User", email, pw, "Student")
	require.NoError(t, err)
	require.EqualValues(t, 42, user.ID)
	require.NotEmpty(t, tp.AccessToken)
	require.NotEmpty(t, tp.RefreshToken)

	require.WithinDuration(t, time.Now().Add(svc.cfg.AccessTokenTTL), tp.AccessExpiresAt, 2*time.Second)
}

func TestRegisterUser_InvalidEmail(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, _, err := svc.RegisterUser(context.Background(), "Test", "User", "not-an-email", "Abcdef1!", "Student")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidEmail)
}

func TestRegisterUser_WeakOrEmptyPassword(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, _, err := svc.RegisterUser(context.Background(), "Test", "User", "u@e.com", "", "Student")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrEmptyPassword)

	_, _, err = svc.RegisterUser(context.Background(), "Test", "User", "u@e.com", "short", "Student")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegisterUser_InvalidOrForbiddenRole(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	// Неизвестная роль.
	_, _, err := svc.RegisterUser(context.Background(), "Test", "User", "u@e.com", "Abcdef1!", "Superuser")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidRole)

	// Admin через публичную регистрацию недоступен.
	_, _, err = svc.RegisterUser(context.Background(), "Test", "User", "u@e.com", "Abcdef1!", "Admin")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestRegisterUser_EmptyName(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, _, err := svc.RegisterUser(context.Background(), "  ", "User", "u@e.com", "Abcdef1!", "Student")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRegisterUser_EmailAlreadyExists_OnLookup(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	// Если UserByEmail вернул пользователя (err == nil) - считается занятым email.
	st.EXPECT().UserByEmail(gomock.Any(), "user@example.com").
		Return(&models.User{ID: 1, Email: "user@example.com"}, nil)

	_, _, err := svc.RegisterUser(context.Background(), "Test", "User", "user@example.com", "Abcdef1!", "Student")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterUser_SaveUserAlreadyExists_MapsToEmailTaken(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByEmail(gomock.Any(), "user@example.com").
		Return(nil, storage.ErrNotFound)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).
		Return(nil, storage.ErrAlreadyExists)

	_, _, err := svc.RegisterUser(context.Background(), "Test", "User", "user@example.com", "Abcdef1!", "Student")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginUser_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	email := "user@example.com"
	pw := "Abcdef1!"
	user := activeUser(t, 7, email, pw, models.RoleStudent)

	st.EXPECT().UserByEmail(gomock.Any(), email).Return(user, nil)
	st.EXPECT().RevokeAllForUser(gomock.Any(), int64(7)).Return(nil)
	st.EXPECT().SaveRefreshToken(gomock.Any(), gomock.Any()).Return(nil)

	got, tp, err := svc.LoginUser(ctx, email, pw)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.NotEmpty(t, tp.AccessToken)
	require.NotEmpty(t, tp.RefreshToken)
}

func TestLoginUser_InvalidEmail_OrEmptyPassword(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, _, err := svc.LoginUser(context.Background(), "bad", "Abcdef1!")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.LoginUser(context.Background(), "user@example.com", "")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUser_FailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	// Неизвестный email.
	st.EXPECT().UserByEmail(gomock.Any(), "user@example.com").
		Return(nil, storage.ErrNotFound)
	_, _, err := svc.LoginUser(context.Background(), "user@example.com", "Abcdef1!")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Неверный пароль.
	user := activeUser(t, 1, "user@example.com", "Abcdef1!", models.RoleStudent)
	st.EXPECT().UserByEmail(gomock.Any(), "user@example.com").Return(user, nil)
	_, _, err = svc.LoginUser(context.Background(), "user@example.com", "WRONG1!x")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Google-only аккаунт (без локального пароля).
	noPass := &models.User{ID: 2, Email: "user@example.com", IsActive: true}
	st.EXPECT().UserByEmail(gomock.Any(), "user@example.com").Return(noPass, nil)
	_, _, err = svc.LoginUser(context.Background(), "user@example.com", "Abcdef1!")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Деактивированный аккаунт.
	suspended := activeUser(t, 3, "user@example.com", "Abcdef1!", models.RoleStudent)
	suspended.IsActive = false
	st.EXPECT().UserByEmail(gomock.Any(), "user@example.com").Return(suspended, nil)
	_, _, err = svc.LoginUser(context.Background(), "user@example.com", "Abcdef1!")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithGoogle_KnownUser(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	google := mocks.NewMockGoogleVerifier(ctrl)
	svc.SetGoogleVerifier(google)

	user := activeUser(t, 5, "user@example.com", "Abcdef1!", models.RoleEducator)

	google.EXPECT().Verify(gomock.Any(), "raw-id-token").Return(&googleauth.Claims{
		Subject: "g-123",
		Email:   "user@example.com",
	}, nil)
	st.EXPECT().UserByEmail(gomock.Any(), "user@example.com").Return(user, nil)
	st.EXPECT().RevokeAllForUser(gomock.Any(), int64(5)).Return(nil)
	st.EXPECT().SaveRefreshToken(gomock.Any(), gomock.Any()).Return(nil)

	got, tp, err := svc.LoginWithGoogle(context.Background(), "raw-id-token")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.NotEmpty(t, tp.AccessToken)
}

func TestLoginWithGoogle_AutoProvision(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	google := mocks.NewMockGoogleVerifier(ctrl)
	svc.SetGoogleVerifier(google)

	google.EXPECT().Verify(gomock.Any(), "raw-id-token").Return(&googleauth.Claims{
		Subject:   "g-123",
		Email:     "new@example.com",
		FirstName: "New",
		LastName:  "Person",
	}, nil)
	st.EXPECT().UserByEmail(gomock.Any(), "new@example.com").Return(nil, storage.ErrNotFound)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *models.User) (*models.User, error) {
			require.Equal(t, "new@example.com", u.Email)
			require.Equal(t, models.RoleStudent, u.Role)
			require.Nil(t, u.PasswordHash)
			saved := *u
			saved.ID = 9
			return &saved, nil
		})
	st.EXPECT().RevokeAllForUser(gomock.Any(), int64(9)).Return(nil)
	st.EXPECT().SaveRefreshToken(gomock.Any(), gomock.Any()).Return(nil)

	got, _, err := svc.LoginWithGoogle(context.Background(), "raw-id-token")
	require.NoError(t, err)
	require.EqualValues(t, 9, got.ID)
}

func TestLoginWithGoogle_VerifyFailed(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	google := mocks.NewMockGoogleVerifier(ctrl)
	svc.SetGoogleVerifier(google)

	google.EXPECT().Verify(gomock.Any(), "bad").Return(nil, errors.New("signature mismatch"))

	_, _, err := svc.LoginWithGoogle(context.Background(), "bad")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLoginWithGoogle_NotConfigured(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, _, err := svc.LoginWithGoogle(context.Background(), "token")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken_OK_WithRotation(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	user := activeUser(t, 11, "user@example.com", "Abcdef1!", models.RoleStudent)

	plain := "some-refresh-plain"
	hash := hashRefreshToken(plain)

	st.EXPECT().RefreshTokenByHash(gomock.Any(), hash).Return(&models.RefreshToken{
		RefreshTokenHash: hash,
		UserID:           11,
		CreatedAt:        time.Now().Add(-time.Hour),
		ExpiresAt:        time.Now().Add(time.Hour),
		Revoked:          false,
	}, nil)
	st.EXPECT().UserByID(gomock.Any(), int64(11)).Return(user, nil)
	st.EXPECT().RevokeRefreshTokenIfActive(gomock.Any(), hash).Return(true, nil)
	st.EXPECT().RevokeAllForUser(gomock.Any(), int64(11)).Return(nil)
	st.EXPECT().SaveRefreshToken(gomock.Any(), gomock.Any()).Return(nil)

	tp, uid, err := svc.RefreshToken(ctx, plain)
	require.NoError(t, err)
	require.EqualValues(t, 11, uid)
	require.NotEmpty(t, tp.AccessToken)
	require.NotEmpty(t, tp.RefreshToken)
	require.NotEqual(t, plain, tp.RefreshToken)
}

func TestRefreshToken_NotFound_Revoked_Expired(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	plain := "r"
	hash := hashRefreshToken(plain)

	// Not found -> ErrInvalidToken
	st.EXPECT().RefreshTokenByHash(gomock.Any(), hash).Return(nil, storage.ErrNotFound)
	_, _, err := svc.RefreshToken(context.Background(), plain)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Revoked — повторное использование потреблённого токена.
	st.EXPECT().RefreshTokenByHash(gomock.Any(), hash).Return(&models.RefreshToken{
		RefreshTokenHash: hash, UserID: 1, CreatedAt: time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour), Revoked: true,
	}, nil)
	_, _, err = svc.RefreshToken(context.Background(), plain)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrTokenRevoked)

	// Expired
	st.EXPECT().RefreshTokenByHash(gomock.Any(), hash).Return(&models.RefreshToken{
		RefreshTokenHash: hash, UserID: 1, CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Minute), Revoked: false,
	}, nil)
	_, _, err = svc.RefreshToken(context.Background(), plain)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshToken_SuspendedUser(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	plain := "r"
	hash := hashRefreshToken(plain)

	suspended := activeUser(t, 3, "user@example.com", "Abcdef1!", models.RoleStudent)
	suspended.IsActive = false

	st.EXPECT().RefreshTokenByHash(gomock.Any(), hash).Return(&models.RefreshToken{
		RefreshTokenHash: hash, UserID: 3, CreatedAt: time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour), Revoked: false,
	}, nil)
	st.EXPECT().UserByID(gomock.Any(), int64(3)).Return(suspended, nil)

	_, _, err := svc.RefreshToken(context.Background(), plain)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshToken_RotationNotFound_OrAlreadyRevoked_MapToErrors(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	plain := "r"
	hash := hashRefreshToken(plain)
	user := activeUser(t, 2, "u@e.com", "Abcdef1!", models.RoleStudent)

	// Валидация refresh ok + user ok; при ротации старый не найден -> ErrInvalidToken.
	st.EXPECT().RefreshTokenByHash(gomock.Any(), hash).Return(&models.RefreshToken{
		RefreshTokenHash: hash, UserID: 2, CreatedAt: time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour), Revoked: false,
	}, nil)
	st.EXPECT().UserByID(gomock.Any(), int64(2)).Return(user, nil)
	st.EXPECT().RevokeRefreshTokenIfActive(gomock.Any(), hash).Return(false, storage.ErrNotFound)
	_, _, err := svc.RefreshToken(ctx, plain)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Повтор: revoke = false -> ErrTokenRevoked (гонка двух refresh).
	st.EXPECT().RefreshTokenByHash(gomock.Any(), hash).Return(&models.RefreshToken{
		RefreshTokenHash: hash, UserID: 2, CreatedAt: time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour), Revoked: false,
	}, nil)
	st.EXPECT().UserByID(gomock.Any(), int64(2)).Return(user, nil)
	st.EXPECT().RevokeRefreshTokenIfActive(gomock.Any(), hash).Return(false, nil)
	_, _, err = svc.RefreshToken(ctx, plain)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRevokeToken_MapErrorsAndOK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	plain := "r"
	hash := hashRefreshToken(plain)

	// Not found -> ErrInvalidToken.
	st.EXPECT().RevokeRefreshTokenIfActive(gomock.Any(), hash).Return(false, storage.ErrNotFound)
	err := svc.RevokeToken(context.Background(), plain)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Already revoked (false, nil) -> ErrTokenRevoked.
	st.EXPECT().RevokeRefreshTokenIfActive(gomock.Any(), hash).Return(false, nil)
	err = svc.RevokeToken(context.Background(), plain)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrTokenRevoked)

	// Другая ошибка -> пропагируется.
	st.EXPECT().RevokeRefreshTokenIfActive(gomock.Any(), hash).Return(false, errors.New("db down"))
	err = svc.RevokeToken(context.Background(), plain)
	require.Error(t, err)

	// Ok.
	st.EXPECT().RevokeRefreshTokenIfActive(gomock.Any(), hash).Return(true, nil)
	require.NoError(t, svc.RevokeToken(context.Background(), plain))
}

func TestValidateToken_OK(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	user := activeUser(t, 17, "user@example.com", "Abcdef1!", models.RoleEducator)

	at, err := svc.generateAccessToken(ctx, user, time.Now().UTC())
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, at)
	require.NoError(t, err)
	require.EqualValues(t, 17, claims.UserID)
	require.Equal(t, "user@example.com", claims.Email)
	require.Equal(t, models.RoleEducator, claims.Role)
}

func TestValidateToken_InvalidAndExpired(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	// Неверный токен.
	_, err := svc.ValidateToken(context.Background(), "not-a-jwt")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Просроченный: конфиг с отрицательным TTL -> сформируем истёкший токен.
	cfg := svc.cfg
	cfg.AccessTokenTTL = -10 * time.Second
	svc.cfg = cfg

	user := activeUser(t, 1, "e@e.com", "Abcdef1!", models.RoleStudent)
	at, err := svc.generateAccessToken(context.Background(), user, time.Now().UTC())
	require.NoError(t, err)
	_, err = svc.ValidateToken(context.Background(), at)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	other := New(nil, config.AuthConfig{
		JWTSecret:       "another-secret-9876543210-9876543210",
		AccessTokenTTL:  30 * time.Second,
		RefreshTokenTTL: time.Hour,
		Issuer:          "user-management-service",
		Audience:        []string{"ums-clients"},
	})

	user := activeUser(t, 1, "e@e.com", "Abcdef1!", models.RoleStudent)
	at, err := other.generateAccessToken(context.Background(), user, time.Now().UTC())
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), at)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidToken)
}
