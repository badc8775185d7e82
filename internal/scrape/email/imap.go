package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// Message is one fetched mail: envelope fields plus the raw RFC822 bytes.
type Message struct {
	UID     imap.UID
	From    string
	Subject string
	Date    time.Time
	Raw     []byte
}

// Mailbox lists recent messages. IMAPMailbox is the real one.
type Mailbox interface {
	Recent(ctx context.Context, since time.Time, max int) ([]Message, error)
}

type IMAPMailbox struct {
	Host     string
	Port     int
	Username string
	Folder   string
	// Password is resolved per run so a keyring change applies without restart.
	Password func() (string, error)
}

func (m *IMAPMailbox) addr() string {
	port := m.Port
	if port <= 0 {
		port = 993
	}
	return net.JoinHostPort(m.Host, strconv.Itoa(port))
}

// Recent opens the folder read-only and fetches messages since the cutoff,
// newest first. Bodies are fetched with BODY.PEEK[] so nothing is marked seen.
func (m *IMAPMailbox) Recent(ctx context.Context, since time.Time, max int) ([]Message, error) {
	if m.Password == nil {
		return nil, errors.New("imap password source is not configured")
	}
	pw, err := m.Password()
	if err != nil {
		return nil, err
	}

	c, err := dialAndLogin(ctx, m.addr(), m.Username, pw, &tls.Config{MinVersion: tls.VersionTLS12, ServerName: m.Host})
	if err != nil {
		return nil, err
	}
	defer logoutAndClose(c)

	folder := m.Folder
	if folder == "" {
		folder = "INBOX"
	}
	if _, err := c.Select(folder, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return nil, fmt.Errorf("imap select %s: %w", folder, err)
	}
	return fetchSince(ctx, c, since, max)
}

func dialAndLogin(ctx context.Context, addr, username, password string, tlsCfg *tls.Config) (*imapclient.Client, error) {
	if username == "" || password == "" {
		return nil, errors.New("imap username/password is required")
	}

	c, err := imapclient.DialTLS(addr, &imapclient.Options{TLSConfig: tlsCfg})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}

	// unblock pending commands when the run is cancelled
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	if err := c.Login(username, password).Wait(); err != nil {
		stop()
		_ = c.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	return c, nil
}

func fetchSince(ctx context.Context, c *imapclient.Client, since time.Time, max int) ([]Message, error) {
	if max <= 0 {
		max = 50
	}

	searchData, err := c.UIDSearch(&imap.SearchCriteria{Since: since}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search: %w", err)
	}
	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	slices.Reverse(uids)
	if len(uids) > max {
		uids = uids[:max]
	}

	bodyAll := &imap.FetchItemBodySection{Specifier: imap.PartSpecifierNone, Peek: true}
	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	out := make([]Message, 0, len(uids))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		msg := Message{UID: buf.UID}
		if buf.Envelope != nil {
			msg.Subject = buf.Envelope.Subject
			msg.Date = buf.Envelope.Date
			msg.From = joinAddrs(buf.Envelope.From)
		}
		if b := buf.FindBodySection(bodyAll); b != nil {
			msg.Raw = append([]byte(nil), b...)
		}
		out = append(out, msg)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

func logoutAndClose(c *imapclient.Client) {
	if err := c.Logout().Wait(); err != nil {
		log.Printf("[source:email] imap logout: %v", err)
	}
	_ = c.Close()
}

func joinAddrs(addrs []imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for i := range addrs {
		a := &addrs[i]
		addr := strings.TrimSpace(a.Addr())
		if addr == "" {
			addr = strings.TrimSpace(a.Name)
		}
		if addr != "" {
			parts = append(parts, addr)
		}
	}
	return strings.Join(parts, ", ")
}
