package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Blackdukee/UMS/internal/models"
	"github.com/Blackdukee/UMS/internal/storage"
)

// userColumns — единый список колонок таблицы users,
// используемый в SELECT/RETURNING, чтобы гарантировать одинаковый порядок сканирования.
const userColumns = `
id, email, first_name, last_name, password_hash, role, is_active, created_at, updated_at
`

// scanUser сканирует одну строку пользователя из результата запроса
// в доменную модель с корректным кастом роли (SMALLINT -> models.Role).
func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var role int16

	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	user.Role = models.Role(role)

	return &user, nil
}

// SaveUser создает нового пользователя в БД.
// Ошибки: storage.ErrAlreadyExists при конфликте уникальности email, иные — как есть.
func (s *Storage) SaveUser(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "storage.postgres.SaveUser"

	q := `
		INSERT INTO users (email, first_name, last_name, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING
	` + userColumns

	row := s.db.QueryRow(ctx, q,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		int16(user.Role),
		user.IsActive,
	)

	result, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// UserByEmail находит пользователя по email.
func (s *Storage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgres.UserByEmail"

	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	result, err := scanUser(s.db.QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// UserByID находит пользователя по ID.
func (s *Storage) UserByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.postgres.UserByID"

	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	result, err := scanUser(s.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// UpdateUser выполняет частичный апдейт: обновляет только поля,
// указанные непустыми pointer-полями, и всегда сдвигает updated_at = now().
// Ошибки: storage.ErrNotFound при отсутствии записи.
func (s *Storage) UpdateUser(ctx context.Context, id int64, update storage.UserUpdate) (*models.User, error) {
	const op = "storage.postgres.UpdateUser"

	sets := []string{"updated_at = now()"}
	args := make([]any, 0, 6)
	count := 0

	if update.FirstName != nil {
		count++
		sets = append(sets, fmt.Sprintf("first_name = $%d", count))
		args = append(args, *update.FirstName)
	}

	if update.LastName != nil {
		count++
		sets = append(sets, fmt.Sprintf("last_name = $%d", count))
		args = append(args, *update.LastName)
	}

	if update.Role != nil {
		count++
		sets = append(sets, fmt.Sprintf("role = $%d", count))
		args = append(args, int16(*update.Role))
	}

	if update.IsActive != nil {
		count++
		sets = append(sets, fmt.Sprintf("is_active = $%d", count))
		args = append(args, *update.IsActive)
	}

	if update.PasswordHash != nil {
		count++
		sets = append(sets, fmt.Sprintf("password_hash = $%d", count))
		args = append(args, *update.PasswordHash)
	}

	count++
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), count, userColumns)

	result, err := scanUser(s.db.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// ListUsers возвращает страницу пользователей по фильтру,
// отсортированную по дате создания (новые первыми).
func (s *Storage) ListUsers(ctx context.Context, filter storage.UserFilter) ([]*models.User, error) {
	const op = "storage.postgres.ListUsers"

	conds := make([]string, 0, 2)
	args := make([]any, 0, 4)
	count := 0

	if filter.Role != nil {
		count++
		conds = append(conds, fmt.Sprintf("role = $%d", count))
		args = append(args, int16(*filter.Role))
	}

	if filter.IsActive != nil {
		count++
		conds = append(conds, fmt.Sprintf("is_active = $%d", count))
		args = append(args, *filter.IsActive)
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	args = append(args, limit, (page-1)*limit)

	q := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, count+1, count+2)

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

// DeleteUser удаляет пользователя по ID.
// Ошибки: storage.ErrNotFound при отсутствии записи.
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteUser"

	q := `DELETE FROM users WHERE id = $1`

	cmdTag, err := s.db.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
