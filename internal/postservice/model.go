package postservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sushihentaime/inkwell/internal/common"
)

var (
	ErrRecordNotFound = common.ErrRecordNotFound
	ErrPostNotFound   = errors.New("post not found")
	ErrForeignBlock   = errors.New("content block belongs to another post")
	ErrUserForeignKey = errors.New("author_id does not exist")
	ErrEditConflict   = errors.New("unable to update the post due to a concurrent edit, please try again")
	ErrStorageFailure = errors.New("storage failure")
)

func newPostModel(db *sql.DB) *PostModel {
	return &PostModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// storageError maps persistence errors onto the service error taxonomy. Domain errors are
// returned unchanged.
func storageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrRecordNotFound),
		errors.Is(err, ErrPostNotFound),
		errors.Is(err, ErrForeignBlock),
		errors.Is(err, ErrUserForeignKey),
		errors.Is(err, ErrEditConflict),
		errors.Is(err, ErrStorageFailure):
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01":
			return ErrEditConflict
		}
	}

	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}

func (m *PostModel) insertPost(ctx context.Context, tx *sql.Tx, p *Post, live bool) error {
	query := `
		INSERT INTO posts (name, author_id, live_at)
		VALUES ($1, $2, CASE WHEN $3::boolean THEN NOW() END)
		RETURNING id, live_at, created_at, updated_at`

	var liveAt sql.NullTime
	err := tx.QueryRowContext(ctx, query, p.Name, p.AuthorID, live).Scan(&p.ID, &liveAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		switch {
		case ForeignKeyError(err, "posts_author_id_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	p.LiveAt = timePtr(liveAt)
	return nil
}

// lockPost takes a row lock on the post for the rest of the transaction and returns its
// current publish time.
func (m *PostModel) lockPost(ctx context.Context, tx *sql.Tx, id int) (*time.Time, error) {
	query := `
		SELECT live_at
		FROM posts
		WHERE id = $1
		FOR UPDATE`

	var liveAt sql.NullTime
	err := tx.QueryRowContext(ctx, query, id).Scan(&liveAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrPostNotFound
		default:
			return nil, err
		}
	}

	return timePtr(liveAt), nil
}

// updatePost sets the name and publication state. A post that is already live keeps its
// original publish time.
func (m *PostModel) updatePost(ctx context.Context, tx *sql.Tx, p *Post, live bool) error {
	query := `
		UPDATE posts
		SET name = $1,
			live_at = CASE WHEN $2::boolean THEN COALESCE(live_at, NOW()) END,
			updated_at = NOW()
		WHERE id = $3
		RETURNING author_id, live_at, created_at, updated_at`

	var liveAt sql.NullTime
	err := tx.QueryRowContext(ctx, query, p.Name, live, p.ID).Scan(&p.AuthorID, &liveAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrPostNotFound
		default:
			return err
		}
	}

	p.LiveAt = timePtr(liveAt)
	return nil
}

// deletePost removes the post. Its content blocks go with it through the cascading foreign key.
func (m *PostModel) deletePost(ctx context.Context, id int) error {
	query := `
		DELETE FROM posts
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

// getPost reads the post with its author and ordered content in one query.
func (m *PostModel) getPost(ctx context.Context, id int) (*Post, error) {
	query := `
		SELECT p.id, p.name, p.author_id, p.live_at, p.created_at, p.updated_at,
			u.username, u.email,
			c.id, c.position, c.body, c.created_at, c.updated_at
		FROM posts p
		JOIN users u ON u.id = p.author_id
		LEFT JOIN post_contents c ON c.post_id = p.id
		WHERE p.id = $1
		ORDER BY c.position`

	rows, err := m.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts, _, err := scanPosts(rows, false)
	if err != nil {
		return nil, err
	}

	if len(posts) == 0 {
		return nil, ErrRecordNotFound
	}

	return &posts[0], nil
}

// listPosts returns a page of posts, newest first, with authors and content prefetched,
// plus the total number of posts.
func (m *PostModel) listPosts(ctx context.Context, limit, offset int) ([]Post, int, error) {
	query := `
		WITH page AS (
			SELECT id, name, author_id, live_at, created_at, updated_at, count(*) OVER() AS total
			FROM posts
			ORDER BY id DESC
			LIMIT $1 OFFSET $2
		)
		SELECT p.id, p.name, p.author_id, p.live_at, p.created_at, p.updated_at,
			u.username, u.email,
			c.id, c.position, c.body, c.created_at, c.updated_at,
			p.total
		FROM page p
		JOIN users u ON u.id = p.author_id
		LEFT JOIN post_contents c ON c.post_id = p.id
		ORDER BY p.id DESC, c.position`

	rows, err := m.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return scanPosts(rows, true)
}

func (m *PostModel) countPosts(ctx context.Context) (int, error) {
	var total int
	err := m.db.QueryRowContext(ctx, "SELECT count(*) FROM posts").Scan(&total)
	return total, err
}

// scanPosts folds post rows left joined with their content into posts, keeping row order.
func scanPosts(rows *sql.Rows, withTotal bool) ([]Post, int, error) {
	var (
		posts []Post
		total int
		index = make(map[int]int)
	)

	for rows.Next() {
		var (
			p         Post
			liveAt    sql.NullTime
			blockID   sql.NullInt64
			position  sql.NullInt64
			body      sql.NullString
			createdAt sql.NullTime
			updatedAt sql.NullTime
		)

		dest := []any{
			&p.ID, &p.Name, &p.AuthorID, &liveAt, &p.CreatedAt, &p.UpdatedAt,
			&p.Author.Username, &p.Author.Email,
			&blockID, &position, &body, &createdAt, &updatedAt,
		}
		if withTotal {
			dest = append(dest, &total)
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, 0, err
		}

		i, ok := index[p.ID]
		if !ok {
			p.Author.ID = p.AuthorID
			p.LiveAt = timePtr(liveAt)
			p.Content = []ContentBlock{}
			posts = append(posts, p)
			i = len(posts) - 1
			index[p.ID] = i
		}

		if blockID.Valid {
			posts[i].Content = append(posts[i].Content, ContentBlock{
				ID:        int(blockID.Int64),
				PostID:    p.ID,
				Position:  int(position.Int64),
				Body:      body.String,
				CreatedAt: createdAt.Time,
				UpdatedAt: updatedAt.Time,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
