package provider

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"testing"
)

// mockProvider implements Provider for registry tests.
type mockProvider struct {
	name      string
	healthErr error
}

func (m *mockProvider) Send(_ context.Context, _ *Message) (*DeliveryResult, error) {
	return &DeliveryResult{Status: StatusSent}, nil
}

func (m *mockProvider) GetName() string { return m.name }

func (m *mockProvider) HealthCheck(_ context.Context) error { return m.healthErr }

// parsedMessage is a decoded MIME message produced by BuildMIME.
type parsedMessage struct {
	header mail.Header
	text   string
	html   string
}

func parseMIME(t *testing.T, data []byte) parsedMessage {
	t.Helper()

	m, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("read message: %v", err)
	}

	out := parsedMessage{header: m.Header}
	mediaType, params, err := mime.ParseMediaType(m.Header.Get("Content-Type"))
	if err != nil {
		t.Fatalf("parse content type: %v", err)
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := multipart.NewReader(m.Body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("next part: %v", err)
			}
			b, err := io.ReadAll(part)
			if err != nil {
				t.Fatalf("read part: %v", err)
			}
			if strings.HasPrefix(part.Header.Get("Content-Type"), "text/html") {
				out.html = string(b)
			} else {
				out.text = string(b)
			}
		}
		return out
	}

	b, err := io.ReadAll(quotedprintable.NewReader(m.Body))
	if err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if mediaType == "text/html" {
		out.html = string(b)
	} else {
		out.text = string(b)
	}
	return out
}

func decodeSubject(t *testing.T, h mail.Header) string {
	t.Helper()
	s, err := new(mime.WordDecoder).DecodeHeader(h.Get("Subject"))
	if err != nil {
		t.Fatalf("decode subject: %v", err)
	}
	return s
}
