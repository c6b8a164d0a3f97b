package postservice

import (
	"context"
	"database/sql"
	"log/slog"
	"math"
	"time"

	"github.com/sushihentaime/inkwell/internal/common"
)

const maxPage = math.MaxInt/PageSize + 1

func NewPostService(db *sql.DB, c common.Cache, mb common.MessageProducer, logger *slog.Logger) *PostService {
	return &PostService{m: newPostModel(db), c: c, mb: mb, logger: logger}
}

// CreatePost creates a post and, when content was submitted, its content blocks in a single
// transaction. The author ID must be provided.
func (s *PostService) CreatePost(ctx context.Context, req *CreatePostRequest) (*Post, error) {
	v := common.NewValidator()
	validateName(v, req.Name)
	ValidateContent(v, req.Content)
	validateInt(v, req.AuthorID, "author_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	p := &Post{Name: req.Name, AuthorID: req.AuthorID}

	err := common.WithTx(ctx, s.m.db, func(tx *sql.Tx) error {
		if err := s.m.insertPost(ctx, tx, p, req.Live); err != nil {
			return err
		}

		if !req.Content.Present {
			return nil
		}

		_, err := s.m.syncContent(ctx, tx, p.ID, req.Content.Items)
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}

	post, err := s.m.getPost(ctx, p.ID)
	if err != nil {
		return nil, storageError(err)
	}

	event := newPostEvent(post)
	s.publish(ctx, common.PostCreatedKey, event)
	if post.IsLive() {
		s.publish(ctx, common.PostPublishedKey, event)
	}

	return post, nil
}

// GetPost returns a post with its author and ordered content.
func (s *PostService) GetPost(ctx context.Context, id int) (*Post, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	var cached Post
	ok, err := s.c.Get(ctx, common.CacheKeyPost(id), &cached)
	if err != nil {
		s.logger.Warn("could not read post from cache", slog.Int("post_id", id), slog.String("error", err.Error()))
	}
	if ok {
		return &cached, nil
	}

	post, err := s.m.getPost(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}

	if err := s.c.Set(ctx, common.CacheKeyPost(id), post); err != nil {
		s.logger.Warn("could not cache post", slog.Int("post_id", id), slog.String("error", err.Error()))
	}

	return post, nil
}

// ListPosts returns one page of posts, newest first. Pages start at 1 and anything lower
// is treated as the first page.
func (s *PostService) ListPosts(ctx context.Context, page int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}

	var (
		posts []Post
		total int
		err   error
	)

	// pages whose offset would overflow are past the last page anyway
	if page <= maxPage {
		posts, total, err = s.m.listPosts(ctx, PageSize, (page-1)*PageSize)
		if err != nil {
			return nil, storageError(err)
		}
	}

	// past the last page the window count has no row to ride on
	if len(posts) == 0 && page > 1 {
		total, err = s.m.countPosts(ctx)
		if err != nil {
			return nil, storageError(err)
		}
	}

	if posts == nil {
		posts = []Post{}
	}

	return &PostPage{Posts: posts, Metadata: calculateMetadata(total, page, PageSize)}, nil
}

// UpdatePost replaces the name and publication state of a post and syncs its content when
// content was submitted. Live set to false clears the publish time.
func (s *PostService) UpdatePost(ctx context.Context, req *UpdatePostRequest) (*Post, error) {
	v := common.NewValidator()
	validateInt(v, req.ID, "id")
	validateName(v, req.Name)
	ValidateContent(v, req.Content)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	var wasLive bool

	err := common.WithTx(ctx, s.m.db, func(tx *sql.Tx) error {
		liveAt, err := s.m.lockPost(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		wasLive = liveAt != nil

		p := &Post{ID: req.ID, Name: req.Name}
		if err := s.m.updatePost(ctx, tx, p, req.Live); err != nil {
			return err
		}

		if !req.Content.Present {
			return nil
		}

		_, err = s.m.syncContent(ctx, tx, req.ID, req.Content.Items)
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}

	s.invalidate(ctx, req.ID)

	post, err := s.m.getPost(ctx, req.ID)
	if err != nil {
		return nil, storageError(err)
	}

	event := newPostEvent(post)
	s.publish(ctx, common.PostUpdatedKey, event)
	if post.IsLive() && !wasLive {
		s.publish(ctx, common.PostPublishedKey, event)
	}

	return post, nil
}

// SyncContent makes the content of a post exactly the submitted list, in order. It never
// changes the post's own fields.
func (s *PostService) SyncContent(ctx context.Context, postID int, items []ContentItem) ([]ContentBlock, error) {
	v := common.NewValidator()
	validateInt(v, postID, "id")
	validateItems(v, items)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	var blocks []ContentBlock

	err := common.WithTx(ctx, s.m.db, func(tx *sql.Tx) error {
		var err error
		blocks, err = s.m.syncContent(ctx, tx, postID, items)
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}

	s.invalidate(ctx, postID)

	return blocks, nil
}

// DeletePost deletes a post and all of its content.
func (s *PostService) DeletePost(ctx context.Context, id int) error {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	if err := s.m.deletePost(ctx, id); err != nil {
		return storageError(err)
	}

	s.invalidate(ctx, id)
	s.publish(ctx, common.PostDeletedKey, PostEvent{PostID: id, Timestamp: time.Now().UTC()})

	return nil
}

func (s *PostService) invalidate(ctx context.Context, id int) {
	if err := s.c.Delete(ctx, common.CacheKeyPost(id)); err != nil {
		s.logger.Warn("could not invalidate cached post", slog.Int("post_id", id), slog.String("error", err.Error()))
	}
}

func calculateMetadata(total, page, pageSize int) Metadata {
	if total == 0 {
		return Metadata{}
	}

	return Metadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		FirstPage:    1,
		LastPage:     (total + pageSize - 1) / pageSize,
		TotalRecords: total,
	}
}
