package userservice

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base32"
	"time"
)

func hashToken(token string) []byte {
	hash := sha256.Sum256([]byte(token))
	return hash[:]
}

func newAuthToken(userID int, ttl time.Duration) (*AuthToken, error) {
	randomBytes := make([]byte, 16)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return nil, err
	}

	token := &AuthToken{
		AccessTokenPlain:  base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes),
		UserID:            userID,
		AccessTokenExpiry: time.Now().Add(ttl).Truncate(time.Second),
	}

	token.AccessTokenHash = hashToken(token.AccessTokenPlain)

	return token, nil
}

func (m *UserModel) insertAuthToken(ctx context.Context, tx *sql.Tx, token *AuthToken) error {
	query := `
		INSERT INTO auth_tokens (access_token, user_id, access_token_expiry)
		VALUES ($1, $2, $3)`

	_, err := tx.ExecContext(ctx, query, token.AccessTokenHash, token.UserID, token.AccessTokenExpiry)
	return err
}

// deleteExpiredAuthTokens removes the tokens of a user that can no longer authenticate.
func (m *UserModel) deleteExpiredAuthTokens(ctx context.Context, tx *sql.Tx, userID int) error {
	query := `
		DELETE FROM auth_tokens
		WHERE user_id = $1 AND access_token_expiry <= NOW()`

	_, err := tx.ExecContext(ctx, query, userID)
	return err
}

func (m *UserModel) deleteAuthToken(ctx context.Context, hash []byte) error {
	query := `
		DELETE FROM auth_tokens
		WHERE access_token = $1`

	res, err := m.db.ExecContext(ctx, query, hash)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
