// Package mailer composes the outbound news-summary and welcome emails.
package mailer

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sungwon/newsmail/internal/provider"
	"github.com/sungwon/newsmail/internal/render"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	newsSummaryTemplate = "templates/news_summary.html"
	welcomeTemplate     = "templates/welcome.html"
)

// Config holds sender identities and branding.
type Config struct {
	NewsFrom    string
	WelcomeFrom string
	BrandName   string
}

// WelcomeData is the input for a welcome email.
type WelcomeData struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Intro string `json:"intro"`
}

// Composer builds provider messages from the embedded HTML templates.
// It is safe for concurrent use.
type Composer struct {
	renderer    render.Renderer
	cfg         Config
	newsHTML    string
	welcomeHTML string
}

// New creates a Composer that fills templates with r.
func New(r render.Renderer, cfg Config) (*Composer, error) {
	if r == nil {
		return nil, errors.New("mailer: renderer is required")
	}
	news, err := templateFS.ReadFile(newsSummaryTemplate)
	if err != nil {
		return nil, fmt.Errorf("mailer: load news template: %w", err)
	}
	welcome, err := templateFS.ReadFile(welcomeTemplate)
	if err != nil {
		return nil, fmt.Errorf("mailer: load welcome template: %w", err)
	}
	return &Composer{
		renderer:    r,
		cfg:         cfg,
		newsHTML:    string(news),
		welcomeHTML: string(welcome),
	}, nil
}

// NewsSummary builds the daily news summary message for one recipient.
func (c *Composer) NewsSummary(email, date, content string) (*provider.Message, error) {
	html, err := c.renderer.Render(c.newsHTML, map[string]string{
		"date":        date,
		"newsContent": content,
	})
	if err != nil {
		return nil, fmt.Errorf("mailer: render news summary: %w", err)
	}
	return &provider.Message{
		ID:       uuid.New().String(),
		From:     c.cfg.NewsFrom,
		To:       []string{email},
		Subject:  "📈 Market News Summary Today - " + date,
		TextBody: "Today's market news summary from " + c.cfg.BrandName,
		HTMLBody: html,
	}, nil
}

// Welcome builds the onboarding message for a new user.
func (c *Composer) Welcome(d WelcomeData) (*provider.Message, error) {
	html, err := c.renderer.Render(c.welcomeHTML, map[string]string{
		"name":  d.Name,
		"intro": d.Intro,
	})
	if err != nil {
		return nil, fmt.Errorf("mailer: render welcome: %w", err)
	}
	return &provider.Message{
		ID:       uuid.New().String(),
		From:     c.cfg.WelcomeFrom,
		To:       []string{d.Email},
		Subject:  "Welcome to " + c.cfg.BrandName + " - your stock market toolkit is ready!",
		TextBody: "Thanks for joining " + c.cfg.BrandName,
		HTMLBody: html,
	}, nil
}

// SendWelcome composes and delivers a welcome email through p.
func (c *Composer) SendWelcome(ctx context.Context, p provider.Provider, d WelcomeData) (*provider.DeliveryResult, error) {
	msg, err := c.Welcome(d)
	if err != nil {
		return nil, err
	}
	result, err := p.Send(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("mailer: send welcome to %s: %w", d.Email, err)
	}
	return result, nil
}
