package postservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/sushihentaime/inkwell/internal/common"
)

// PageSize is the number of posts returned per listing page.
const PageSize = 5

type Post struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	AuthorID int    `json:"author_id"`
	Author   Author `json:"author"`
	// LiveAt is nil while the post is a draft.
	LiveAt    *time.Time     `json:"live_at"`
	Content   []ContentBlock `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (p *Post) IsLive() bool {
	return p.LiveAt != nil
}

type Author struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"-"`
}

// ContentBlock is one ordered unit of a post's body. Body is stored in Markdown format.
type ContentBlock struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id"`
	Position  int       `json:"position"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContentItem is a submitted content block. A nil ID asks for a new block.
type ContentItem struct {
	ID   *int   `json:"id,omitempty"`
	Body string `json:"body"`
}

// ContentList is the submitted content of a post. It accepts any JSON value so that a
// payload of the wrong shape is reported as a validation error instead of a decode error.
type ContentList struct {
	Items     []ContentItem
	Present   bool
	Malformed bool
}

type Metadata struct {
	CurrentPage  int `json:"current_page,omitempty"`
	PageSize     int `json:"page_size,omitempty"`
	FirstPage    int `json:"first_page,omitempty"`
	LastPage     int `json:"last_page,omitempty"`
	TotalRecords int `json:"total_records"`
}

type PostPage struct {
	Posts    []Post   `json:"posts"`
	Metadata Metadata `json:"metadata"`
}

type CreatePostRequest struct {
	Name     string      `json:"name"`
	Live     bool        `json:"live"`
	Content  ContentList `json:"content"`
	AuthorID int         `json:"-"`
}

type UpdatePostRequest struct {
	ID      int         `json:"-"`
	Name    string      `json:"name"`
	Live    bool        `json:"live"`
	Content ContentList `json:"content"`
}

type PostModel struct {
	db *sql.DB
}

type PostService struct {
	m      *PostModel
	c      common.Cache
	mb     common.MessageProducer
	logger *slog.Logger
}
