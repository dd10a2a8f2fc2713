package storage

import (
	"context"
	"fmt"

	"admob-switch/internal/models"
)

func (s *Store) GetAdminByUsername(ctx context.Context, username string) (models.AdminUser, error) {
	var u models.AdminUser
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM admin_users WHERE username = $1`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return models.AdminUser{}, notFound(err)
	}
	return u, nil
}

func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM admin_users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}

func (s *Store) CreateAdmin(ctx context.Context, u models.AdminUser) (models.AdminUser, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO admin_users (id, username, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, password_hash, role, created_at`,
		u.ID, u.Username, u.PasswordHash, u.Role)
	var out models.AdminUser
	if err := row.Scan(&out.ID, &out.Username, &out.PasswordHash, &out.Role, &out.CreatedAt); err != nil {
		return models.AdminUser{}, fmt.Errorf("create admin: %w", err)
	}
	return out, nil
}
