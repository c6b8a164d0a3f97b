package userservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/sushihentaime/inkwell/internal/common"
)

type Permission string
type Permissions []Permission

const (
	AccessTokenTime time.Duration = 7 * 24 * time.Hour

	PermissionWritePost Permission = "post:write"
)

var (
	AnonymousUser = User{}
)

type UserService struct {
	m      *UserModel
	c      common.Cache
	logger *slog.Logger
}

type UserModel struct {
	db *sql.DB
}

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`

	Permissions Permissions `json:"permissions"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// AuthToken is an opaque bearer token. Only its SHA-256 hash is stored.
type AuthToken struct {
	AccessTokenPlain  string    `json:"access_token"`
	AccessTokenHash   []byte    `json:"-"`
	UserID            int       `json:"-"`
	AccessTokenExpiry time.Time `json:"access_token_expiry"`
}
