package provider

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"sort"
	"strings"
	"time"
)

// BuildMIME renders msg as an RFC 5322 message. A message carrying both a
// text and an HTML body becomes multipart/alternative; otherwise a single
// quoted-printable part is written.
func BuildMIME(msg *Message, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	writeHeader(&buf, "From", msg.From)
	writeHeader(&buf, "To", strings.Join(msg.To, ", "))
	writeHeader(&buf, "Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader(&buf, "Date", now.Format(time.RFC1123Z))
	if msg.ID != "" {
		writeHeader(&buf, "Message-ID", "<"+msg.ID+"@newsmail>")
	}
	writeHeader(&buf, "MIME-Version", "1.0")

	keys := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeHeader(&buf, k, msg.Headers[k])
	}

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		if err := writePart(mw, "text/plain; charset=utf-8", msg.TextBody); err != nil {
			return nil, err
		}
		if err := writePart(mw, "text/html; charset=utf-8", msg.HTMLBody); err != nil {
			return nil, err
		}
		if err := mw.Close(); err != nil {
			return nil, fmt.Errorf("mime: close multipart: %w", err)
		}
		writeHeader(&buf, "Content-Type", "multipart/alternative; boundary="+mw.Boundary())
		buf.WriteString("\r\n")
		buf.Write(body.Bytes())
	case msg.HTMLBody != "":
		if err := writeSinglePart(&buf, "text/html; charset=utf-8", msg.HTMLBody); err != nil {
			return nil, err
		}
	default:
		if err := writeSinglePart(&buf, "text/plain; charset=utf-8", msg.TextBody); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	fmt.Fprintf(buf, "%s: %s\r\n", key, value)
}

func writeSinglePart(buf *bytes.Buffer, contentType, body string) error {
	writeHeader(buf, "Content-Type", contentType)
	writeHeader(buf, "Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")
	return writeQuotedPrintable(buf, body)
}

func writePart(mw *multipart.Writer, contentType, body string) error {
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return fmt.Errorf("mime: create part: %w", err)
	}
	return writeQuotedPrintable(part, body)
}

func writeQuotedPrintable(w io.Writer, body string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := io.WriteString(qp, body); err != nil {
		return fmt.Errorf("mime: encode body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return fmt.Errorf("mime: encode body: %w", err)
	}
	return nil
}
