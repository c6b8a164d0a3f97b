package userservice

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/sushihentaime/inkwell/internal/common"
)

var (
	ErrAuthenticationFailure = errors.New("unauthorized access")
)

func NewUserService(db *sql.DB, c common.Cache, logger *slog.Logger) *UserService {
	return &UserService{
		m:      newUserModel(db),
		c:      c,
		logger: logger,
	}
}

// CreateUser creates a new user account that is allowed to write posts.
func (s *UserService) CreateUser(ctx context.Context, username, email, password string) (*User, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		Username: username,
		Email:    email,
	}

	if err := u.Password.set(password); err != nil {
		return nil, err
	}

	err := common.WithTx(ctx, s.m.db, func(tx *sql.Tx) error {
		if err := s.m.insertUser(ctx, tx, &u); err != nil {
			return err
		}

		return s.m.addUserPermission(ctx, tx, u.ID, PermissionWritePost)
	})
	if err != nil {
		return nil, err
	}

	u.Permissions = Permissions{PermissionWritePost}

	return &u, nil
}

// LoginUser checks the credentials and issues a fresh access token. Expired tokens of the
// user are removed in the same transaction.
func (s *UserService) LoginUser(ctx context.Context, username, password string) (*AuthToken, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.m.getUserByUsername(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	ok, err := user.Password.matches(password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAuthenticationFailure
	}

	token, err := newAuthToken(user.ID, AccessTokenTime)
	if err != nil {
		return nil, err
	}

	err = common.WithTx(ctx, s.m.db, func(tx *sql.Tx) error {
		if err := s.m.deleteExpiredAuthTokens(ctx, tx, user.ID); err != nil {
			return err
		}

		return s.m.insertAuthToken(ctx, tx, token)
	})
	if err != nil {
		return nil, err
	}

	return token, nil
}

// GetUserByAccessToken resolves a bearer token to its user.
func (s *UserService) GetUserByAccessToken(ctx context.Context, token string) (*User, error) {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	hash := hashToken(token)
	key := common.CacheKeyUserByAccessToken(hash)

	var cached User
	ok, err := s.c.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("could not read user from cache", slog.String("error", err.Error()))
	}
	if ok {
		return &cached, nil
	}

	user, err := s.m.getUserByAccessToken(ctx, hash)
	if err != nil {
		return nil, err
	}

	if err := s.c.Set(ctx, key, user); err != nil {
		s.logger.Warn("could not cache user", slog.Int("user_id", user.ID), slog.String("error", err.Error()))
	}

	return user, nil
}

// LogoutUser revokes a single access token.
func (s *UserService) LogoutUser(ctx context.Context, token string) error {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return v.ValidationError()
	}

	hash := hashToken(token)

	if err := s.m.deleteAuthToken(ctx, hash); err != nil {
		return err
	}

	if err := s.c.Delete(ctx, common.CacheKeyUserByAccessToken(hash)); err != nil {
		s.logger.Warn("could not evict user from cache", slog.String("error", err.Error()))
	}

	return nil
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}
