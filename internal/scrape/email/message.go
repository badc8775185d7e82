package email

import (
	"bytes"
	"io"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
)

const maxPartBytes = 6 << 20

// Parsed holds the decoded text parts of a message. When a message has
// several parts of one type the longest wins.
type Parsed struct {
	Subject string
	From    string
	Plain   string
	HTML    string
}

// Parse decodes a raw RFC822 message. Unknown charsets are tolerated: the
// part is kept undecoded.
func Parse(raw []byte) (Parsed, error) {
	e, err := message.Read(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return Parsed{}, err
	}

	var p Parsed
	p.Subject, _ = e.Header.Text("Subject")
	p.From, _ = e.Header.Text("From")

	err = e.Walk(func(_ []int, part *message.Entity, err error) error {
		if err != nil && !message.IsUnknownCharset(err) {
			return err
		}
		mediaType, _, _ := part.Header.ContentType()
		mediaType = strings.ToLower(mediaType)
		if strings.HasPrefix(mediaType, "multipart/") {
			return nil
		}

		b, err := io.ReadAll(io.LimitReader(part.Body, maxPartBytes))
		if err != nil {
			return nil
		}
		switch {
		case mediaType == "text/html":
			if len(b) > len(p.HTML) {
				p.HTML = string(b)
			}
		case mediaType == "text/plain" || mediaType == "":
			if len(b) > len(p.Plain) {
				p.Plain = string(b)
			}
		}
		return nil
	})
	return p, err
}
