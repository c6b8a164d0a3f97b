package postservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sushihentaime/inkwell/internal/common"
)

// PostEvent is the message body of every post event on the post exchange.
type PostEvent struct {
	PostID      int        `json:"post_id"`
	Name        string     `json:"name"`
	AuthorID    int        `json:"author_id"`
	AuthorName  string     `json:"author_name,omitempty"`
	AuthorEmail string     `json:"author_email,omitempty"`
	LiveAt      *time.Time `json:"live_at,omitempty"`
	Blocks      int        `json:"blocks"`
	Timestamp   time.Time  `json:"timestamp"`
}

func newPostEvent(p *Post) PostEvent {
	return PostEvent{
		PostID:      p.ID,
		Name:        p.Name,
		AuthorID:    p.AuthorID,
		AuthorName:  p.Author.Username,
		AuthorEmail: p.Author.Email,
		LiveAt:      p.LiveAt,
		Blocks:      len(p.Content),
		Timestamp:   time.Now().UTC(),
	}
}

// publish sends the event after the write has been committed. A broker failure does not
// undo the write, so it is logged rather than returned.
func (s *PostService) publish(ctx context.Context, key common.BindingKey, event PostEvent) {
	if s.mb == nil {
		return
	}

	msg, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("could not marshal post event", slog.String("key", string(key)), slog.String("error", err.Error()))
		return
	}

	if err := s.mb.Publish(ctx, msg, key, common.PostExchange); err != nil {
		s.logger.Error("could not publish post event", slog.String("key", string(key)), slog.Int("post_id", event.PostID), slog.String("error", err.Error()))
	}
}
