package userservice

import (
	"context"
	"database/sql"
)

func (m *UserModel) addUserPermission(ctx context.Context, tx *sql.Tx, id int, permissions ...Permission) error {
	query := `
		INSERT INTO user_permissions (user_id, permission)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	for _, p := range permissions {
		_, err := tx.ExecContext(ctx, query, id, p)
		if err != nil {
			return err
		}
	}

	return nil
}

func (u *User) HasPermission(permission Permission) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}

	return false
}
