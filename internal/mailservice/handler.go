package mailservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sushihentaime/inkwell/internal/common"
	"golang.org/x/exp/rand"
)

func NewMailService(mb common.MessageConsumer, cfg MailConfig, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:        mb,
		m:         NewMailer(cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Sender, NewTemplate()),
		logger:    logger,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		baseDelay: 500 * time.Millisecond,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SendPublishedEmail tells authors that their post went live. Every delivery is acked,
// including the ones that could not be delivered after all retries.
func (s *MailService) SendPublishedEmail() {
	msgs, err := s.mb.Consume(common.PostPublishedKey, common.PostExchange, common.PostPublishedQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				s.handlePublished(msg)
				_ = msg.Ack(false)

			case <-s.ctx.Done():
				s.logger.Info("stopping SendPublishedEmail due to context cancellation")
				return
			}
		}
	}()
}

func (s *MailService) handlePublished(msg amqp.Delivery) {
	var event postPublished

	err := json.Unmarshal(msg.Body, &event)
	if err != nil {
		s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
		return
	}

	if event.AuthorEmail == "" {
		s.logger.Error("post published event without author email", slog.Int("post_id", event.PostID))
		return
	}

	payload := publishedEmail{
		AuthorName: event.AuthorName,
		PostName:   event.Name,
		Blocks:     event.Blocks,
		URL:        fmt.Sprintf("%s/v1/posts/%d", s.baseURL, event.PostID),
	}
	if event.LiveAt != nil {
		payload.LiveAt = event.LiveAt.UTC().Format(time.RFC1123)
	}

	// using exponential backoff with jitter
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = s.m.send(event.AuthorEmail, payload, publishedTemplate)
		if err == nil {
			s.logger.Info("post published email sent", slog.String("email", event.AuthorEmail))
			return
		}

		if attempt == maxRetries-1 {
			break
		}

		delay := time.Duration(rand.Int63n(int64(s.baseDelay) << uint(attempt)))
		s.logger.Info("delaying post published email", slog.String("email", event.AuthorEmail), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			return
		}
	}

	s.logger.Error("could not send post published email", slog.String("email", event.AuthorEmail), slog.String("error", err.Error()))
}

func (s *MailService) Close() {
	s.cancel()
}
