package mailservice

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"path"
	"sync"
)

//go:embed templates/*
var templateFS embed.FS

// emailBlocks are the blocks every file under templates/ defines, in the order
// ParseTemplate returns them.
var emailBlocks = [3]string{"subject", "plainBody", "htmlBody"}

// Template renders the notification emails embedded under templates/, such as the
// post_published.html message sent when a post goes live. Parsed files are kept so each
// one is parsed once.
type Template struct {
	mu     sync.Mutex
	parsed map[string]*template.Template
}

func NewTemplate() *Template {
	return &Template{parsed: make(map[string]*template.Template)}
}

func (tp *Template) lookup(name string) (*template.Template, error) {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if t, ok := tp.parsed[name]; ok {
		return t, nil
	}

	t, err := template.New(name).ParseFS(templateFS, path.Join("templates", name))
	if err != nil {
		return nil, fmt.Errorf("could not parse template: %w", err)
	}
	tp.parsed[name] = t

	return t, nil
}

// ParseTemplate renders the subject, plain text body and HTML body of the named email.
// For post_published.html data is a publishedEmail.
func (tp *Template) ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error) {
	t, err := tp.lookup(name)
	if err != nil {
		return nil, nil, nil, err
	}

	var parts [3]*bytes.Buffer
	for i, block := range emailBlocks {
		parts[i] = new(bytes.Buffer)
		if err := t.ExecuteTemplate(parts[i], block, data); err != nil {
			return nil, nil, nil, fmt.Errorf("could not render %s of %s: %w", block, name, err)
		}
	}

	return parts[0], parts[1], parts[2], nil
}
