// Package render substitutes named fields into message templates.
package render

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/osteele/liquid"
)

// Render modes accepted by New.
const (
	ModeLiteral = "literal"
	ModeLiquid  = "liquid"
)

// ErrUnknownMode is returned by New for an unsupported render mode.
var ErrUnknownMode = errors.New("render: unknown mode")

// Renderer fills a template with named field values.
type Renderer interface {
	Render(template string, fields map[string]string) (string, error)
}

// New returns the renderer for mode. An empty mode selects literal rendering.
func New(mode string) (Renderer, error) {
	switch mode {
	case "", ModeLiteral:
		return Literal{}, nil
	case ModeLiquid:
		return NewLiquid(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// Literal replaces every {{key}} occurrence with its value. Values are not
// escaped and are not re-scanned for placeholders; unknown placeholders are
// left in place.
type Literal struct{}

// Render implements Renderer.
func (Literal) Render(template string, fields map[string]string) (string, error) {
	if len(fields) == 0 {
		return template, nil
	}
	pairs := make([]string, 0, len(fields)*2)
	for k, v := range fields {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template), nil
}

// Liquid renders templates with the Liquid template language, binding each
// field as a top-level variable. Parsed templates are cached by source.
type Liquid struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewLiquid creates a Liquid renderer.
func NewLiquid() *Liquid {
	return &Liquid{engine: liquid.NewEngine()}
}

// Render implements Renderer.
func (l *Liquid) Render(template string, fields map[string]string) (string, error) {
	bindings := make(liquid.Bindings, len(fields))
	for k, v := range fields {
		bindings[k] = v
	}
	tpl, err := l.parse(template)
	if err != nil {
		return "", err
	}
	out, rerr := tpl.RenderString(bindings)
	if rerr != nil {
		return "", fmt.Errorf("render: liquid: %w", rerr)
	}
	return out, nil
}

func (l *Liquid) parse(source string) (*liquid.Template, error) {
	if cached, ok := l.cache.Load(source); ok {
		return cached.(*liquid.Template), nil
	}
	tpl, err := l.engine.ParseString(source)
	if err != nil {
		return nil, fmt.Errorf("render: liquid parse: %w", err)
	}
	l.cache.Store(source, tpl)
	return tpl, nil
}
