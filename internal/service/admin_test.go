package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/Blackdukee/UMS/internal/models"
	"github.com/Blackdukee/UMS/internal/storage"
)

func TestSearchUsers_Defaults(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().ListUsers(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, f storage.UserFilter) ([]*models.User, error) {
			require.Equal(t, 1, f.Page)
			require.Equal(t, 10, f.Limit)
			require.Nil(t, f.Role)
			require.Nil(t, f.IsActive)
			return []*models.User{}, nil
		})

	_, err := svc.SearchUsers(context.Background(), UserSearchFilter{})
	require.NoError(t, err)
}

func TestSearchUsers_FilterPassthrough(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	role := models.RoleEducator
	active := true

	st.EXPECT().ListUsers(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, f storage.UserFilter) ([]*models.User, error) {
			require.NotNil(t, f.Role)
			require.Equal(t, models.RoleEducator, *f.Role)
			require.NotNil(t, f.IsActive)
			require.True(t, *f.IsActive)
			require.Equal(t, 3, f.Page)
			require.Equal(t, 50, f.Limit)
			return []*models.User{}, nil
		})

	_, err := svc.SearchUsers(context.Background(), UserSearchFilter{
		Role: &role, IsActive: &active, Page: 3, Limit: 50,
	})
	require.NoError(t, err)
}

func TestSetUserRole(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	// Неизвестная роль.
	_, err := svc.SetUserRole(context.Background(), 1, "Superuser")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidRole)

	// Администратор может назначать любую роль, включая Admin.
	st.EXPECT().UpdateUser(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int64, upd storage.UserUpdate) (*models.User, error) {
			require.NotNil(t, upd.Role)
			require.Equal(t, models.RoleAdmin, *upd.Role)
			return &models.User{ID: 1, Role: models.RoleAdmin}, nil
		})
	got, err := svc.SetUserRole(context.Background(), 1, "Admin")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, got.Role)

	// Несуществующий пользователь.
	st.EXPECT().UpdateUser(gomock.Any(), int64(404), gomock.Any()).Return(nil, storage.ErrNotFound)
	_, err = svc.SetUserRole(context.Background(), 404, "Student")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSuspendUser_RevokesTokens(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UpdateUser(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int64, upd storage.UserUpdate) (*models.User, error) {
			require.NotNil(t, upd.IsActive)
			require.False(t, *upd.IsActive)
			return &models.User{ID: 1, IsActive: false}, nil
		})
	st.EXPECT().RevokeAllForUser(gomock.Any(), int64(1)).Return(nil)

	got, err := svc.SuspendUser(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, got.IsActive)
}

func TestActivateUser(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UpdateUser(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int64, upd storage.UserUpdate) (*models.User, error) {
			require.NotNil(t, upd.IsActive)
			require.True(t, *upd.IsActive)
			return &models.User{ID: 1, IsActive: true}, nil
		})

	got, err := svc.ActivateUser(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, got.IsActive)
}

func TestAdminUpdateUser_NothingToUpdate(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, err := svc.UpdateUser(context.Background(), 1, ProfileUpdate{})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAdminDeleteUser(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().DeleteUser(gomock.Any(), int64(1)).Return(nil)
	require.NoError(t, svc.DeleteUser(context.Background(), 1))

	st.EXPECT().DeleteUser(gomock.Any(), int64(404)).Return(storage.ErrNotFound)
	err := svc.DeleteUser(context.Background(), 404)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResetUserPassword(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	// Слабый пароль отклоняется до обращения к хранилищу.
	err := svc.ResetUserPassword(context.Background(), 1, "weak")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrWeakPassword)

	// Успех: хэш обновлён, refresh-токены отозваны.
	st.EXPECT().UpdateUser(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int64, upd storage.UserUpdate) (*models.User, error) {
			require.NotNil(t, upd.PasswordHash)
			require.True(t, checkPassword(*upd.PasswordHash, "Newpass1!"))
			return &models.User{ID: 1}, nil
		})
	st.EXPECT().RevokeAllForUser(gomock.Any(), int64(1)).Return(nil)
	require.NoError(t, svc.ResetUserPassword(context.Background(), 1, "Newpass1!"))

	// Несуществующий пользователь.
	st.EXPECT().UpdateUser(gomock.Any(), int64(404), gomock.Any()).Return(nil, storage.ErrNotFound)
	err = svc.ResetUserPassword(context.Background(), 404, "Newpass1!")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNotFound)
}
