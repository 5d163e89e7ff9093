package provider

import (
	"strings"
	"testing"
	"time"
)

func TestBuildMIME_Alternative(t *testing.T) {
	msg := &Message{
		ID:       "msg-1",
		From:     `"Signalist News" <news@signalist.app>`,
		To:       []string{"a@x.com"},
		Subject:  "📈 Market News Summary Today - 2024-01-01",
		Headers:  map[string]string{"X-Batch": "b-1"},
		TextBody: "Today's market news summary",
		HTMLBody: `<p style="color:red">Stocks rallied on 2024-01-01</p>`,
	}

	data, err := BuildMIME(msg, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	p := parseMIME(t, data)
	if got := decodeSubject(t, p.header); got != msg.Subject {
		t.Errorf("expected subject %q, got %q", msg.Subject, got)
	}
	if p.header.Get("To") != "a@x.com" {
		t.Errorf("expected To a@x.com, got %q", p.header.Get("To"))
	}
	if p.header.Get("Message-ID") != "<msg-1@newsmail>" {
		t.Errorf("unexpected Message-ID %q", p.header.Get("Message-ID"))
	}
	if p.header.Get("X-Batch") != "b-1" {
		t.Errorf("expected custom header, got %q", p.header.Get("X-Batch"))
	}
	if !strings.HasPrefix(p.header.Get("Content-Type"), "multipart/alternative") {
		t.Errorf("expected multipart/alternative, got %q", p.header.Get("Content-Type"))
	}
	if p.text != msg.TextBody {
		t.Errorf("expected text %q, got %q", msg.TextBody, p.text)
	}
	if p.html != msg.HTMLBody {
		t.Errorf("expected html %q, got %q", msg.HTMLBody, p.html)
	}
}

func TestBuildMIME_SinglePart(t *testing.T) {
	tests := []struct {
		name     string
		msg      Message
		wantType string
	}{
		{"html only", Message{From: "a@x.com", To: []string{"b@x.com"}, HTMLBody: "<b>hi</b>"}, "text/html; charset=utf-8"},
		{"text only", Message{From: "a@x.com", To: []string{"b@x.com"}, TextBody: "hi"}, "text/plain; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := BuildMIME(&tt.msg, time.Now())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			p := parseMIME(t, data)
			if got := p.header.Get("Content-Type"); got != tt.wantType {
				t.Errorf("expected content type %q, got %q", tt.wantType, got)
			}
			if p.html != tt.msg.HTMLBody || p.text != tt.msg.TextBody {
				t.Errorf("body mismatch: text=%q html=%q", p.text, p.html)
			}
			if p.header.Get("Message-ID") != "" {
				t.Error("expected no Message-ID without an ID")
			}
		})
	}
}
