package mail

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type digest struct {
	Date    string
	Content struct {
		VerseText       string
		Reference       string
		Translation     string
		ConfessionTitle string
		ConfessionText  string
	}
}

func sampleDigest() digest {
	var d digest
	d.Date = "2026-10-19"
	d.Content.VerseText = "The LORD is my shepherd; I shall not want."
	d.Content.Reference = "Psalm 23:1"
	d.Content.Translation = "KJV"
	d.Content.ConfessionText = "The Lord is my shepherd & I lack nothing."
	return d
}

func TestRenderDaily(t *testing.T) {
	body, err := Render("daily.html", sampleDigest())
	require.NoError(t, err)

	html := string(body)
	assert.Contains(t, html, "Psalm 23:1 (KJV)")
	assert.Contains(t, html, "shepherd &amp; I lack nothing", "content is HTML escaped")
	assert.NotContains(t, html, "<h3>", "empty title is omitted")
}

func TestSendHTML(t *testing.T) {
	m := NewMail("devotions@example.com", "Daily Confession", "secret", "smtp.example.com", "587")

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		return nil
	}

	to := []string{"a@example.com", "b@example.com"}
	require.NoError(t, m.SendHTML(context.Background(), to, "Today", "daily.html", sampleDigest()))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, to, gotTo)
	assert.Contains(t, string(gotMsg), "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, string(gotMsg), "From: Daily Confession <devotions@example.com>\r\n")
	assert.Contains(t, string(gotMsg), "Subject: Today\r\n\r\n")
}

func TestSendHTML_Errors(t *testing.T) {
	m := NewMail("devotions@example.com", "Daily Confession", "secret", "smtp.example.com", "587")
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") }

	err := m.SendHTML(context.Background(), []string{"a@example.com"}, "Today", "daily.html", sampleDigest())
	assert.ErrorContains(t, err, "connection refused")

	err = m.SendHTML(context.Background(), []string{"a@example.com"}, "Today", "missing.html", nil)
	assert.ErrorContains(t, err, "failed to execute template")

	assert.NoError(t, m.SendHTML(context.Background(), nil, "Today", "daily.html", nil), "no recipients is a no-op")
	assert.False(t, (&Mailer{}).Configured())
	assert.True(t, m.Configured())
}
