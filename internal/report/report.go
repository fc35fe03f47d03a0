// Package report delivers the one-line outcome of a fetch run.
package report

import (
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"azlogfetch/internal/models"
	"azlogfetch/pkg/utils"
)

const DefaultSMTPPort = 25

type Reporter interface {
	Report(subject, body string) error
}

// Nop discards reports. It is used when no mail destination is configured.
type Nop struct{}

func (Nop) Report(subject, body string) error { return nil }

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPReporter mails reports from and to the same address without
// authentication.
type SMTPReporter struct {
	Host  string
	Port  int
	Email string

	send sendMailFunc
	now  func() time.Time
}

// New returns an SMTPReporter, or Nop when host or email is empty.
func New(host string, port int, email string) Reporter {
	if host == "" || email == "" {
		return Nop{}
	}
	if port <= 0 {
		port = DefaultSMTPPort
	}
	return &SMTPReporter{Host: host, Port: port, Email: email, send: smtp.SendMail, now: time.Now}
}

func (r *SMTPReporter) Report(subject, body string) error {
	addr := net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
	msg := buildMessage(r.Email, r.Email, subject, body, r.now())

	if err := r.send(addr, nil, r.Email, []string{r.Email}, msg); err != nil {
		return fmt.Errorf("failed to send report via %s: %w", addr, err)
	}
	return nil
}

func buildMessage(from, to, subject, body string, date time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(subject))
	fmt.Fprintf(&b, "Date: %s\r\n", date.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", "\r\n"))
	return []byte(b.String())
}

func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// SuccessSubject is used when every dispatched transfer succeeded.
func SuccessSubject(account string, at time.Time) string {
	return fmt.Sprintf("%s download of logs complete at %s", account, at.Format("Monday, January 2, 2006 3:04 PM"))
}

// PartialSubject is used when the listing succeeded but some transfers failed.
func PartialSubject(account string, failed int64, at time.Time) string {
	return fmt.Sprintf("%s download of logs completed with %d failures at %s",
		account, failed, at.Format("Monday, January 2, 2006 3:04 PM"))
}

func FailureSubject(account string) string {
	return account + " download of logs failed!!!!"
}

// Subject picks the subject line for a finished run.
func Subject(account string, summary *models.RunSummary, at time.Time) string {
	if summary.Failed > 0 {
		return PartialSubject(account, summary.Failed, at)
	}
	return SuccessSubject(account, at)
}

// Body renders a plain-text summary of a run.
func Body(summary *models.RunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Downloaded: %d (%s)\n", summary.Downloaded, utils.FormatBytes(summary.Bytes))
	fmt.Fprintf(&b, "Skipped: %d\n", summary.Skipped)
	if summary.WouldDownload > 0 {
		fmt.Fprintf(&b, "Would download (dry run): %d\n", summary.WouldDownload)
	}
	fmt.Fprintf(&b, "Deleted: %d\n", summary.Deleted)
	fmt.Fprintf(&b, "Failed: %d\n", summary.Failed)
	fmt.Fprintf(&b, "Duration: %s\n", summary.Duration().Round(time.Millisecond))

	if len(summary.Failures) > 0 {
		b.WriteString("\nFailures:\n")
		for _, f := range summary.Failures {
			fmt.Fprintf(&b, "  %s [%s]: %s\n", f.Key, f.Stage, f.Error)
		}
	}
	return b.String()
}
