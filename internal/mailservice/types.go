package mailservice

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/go-mail/mail/v2"

	"github.com/sushihentaime/inkwell/internal/common"
)

const (
	publishedTemplate = "post_published.html"

	maxRetries = 5
)

type MailService struct {
	mb        common.MessageConsumer
	m         Mailer
	logger    MailLogger
	baseURL   string
	baseDelay time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
}

type MailLogger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}

type Mail struct {
	mu     sync.Mutex
	dialer Dialer
	parser TemplateParser
	sender string
}

type Mailer interface {
	send(recipient string, data any, templateFile string) error
}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type TemplateParser interface {
	ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error)
}

// MailConfig holds the SMTP settings of the mail service.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
	BaseURL  string
}

// postPublished is the part of a post.published event the mail service reads.
type postPublished struct {
	PostID      int        `json:"post_id"`
	Name        string     `json:"name"`
	AuthorName  string     `json:"author_name"`
	AuthorEmail string     `json:"author_email"`
	LiveAt      *time.Time `json:"live_at"`
	Blocks      int        `json:"blocks"`
}

type publishedEmail struct {
	AuthorName string
	PostName   string
	LiveAt     string
	Blocks     int
	URL        string
}
