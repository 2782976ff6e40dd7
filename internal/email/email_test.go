package email

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miaoyou_backend/internal/models"
)

type captureSender struct {
	sent []*Email
	err  error
}

func (c *captureSender) Send(email *Email) error {
	c.sent = append(c.sent, email)
	return c.err
}

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.False(t, Config{SMTPHost: "smtp.local"}.Enabled())
	assert.True(t, Config{SMTPHost: "smtp.local", Moderators: []string{"mod@example.com"}}.Enabled())
}

func TestConfig_Validate(t *testing.T) {
	assert.Error(t, Config{SMTPPort: 587, FromEmail: "a@b.c"}.Validate())
	assert.Error(t, Config{SMTPHost: "smtp.local", SMTPPort: 0, FromEmail: "a@b.c"}.Validate())
	assert.Error(t, Config{SMTPHost: "smtp.local", SMTPPort: 587}.Validate())
	assert.NoError(t, Config{SMTPHost: "smtp.local", SMTPPort: 587, FromEmail: "a@b.c"}.Validate())
}

func TestNewSMTPSender_RejectsBadConfig(t *testing.T) {
	_, err := NewSMTPSender(Config{})
	assert.Error(t, err)
}

func TestNotifier_PendingCommentEmail(t *testing.T) {
	sender := &captureSender{}
	n, err := NewNotifier(Config{
		Moderators: []string{"mod@example.com"},
		AdminURL:   "https://admin.example.com",
	}, sender)
	require.NoError(t, err)

	comment := &models.Comment{
		Content:    "<script>alert(1)</script>",
		TargetType: models.TargetArticle,
		TargetID:   "a1",
		GuestName:  "Гость",
		GuestEmail: "guest@example.com",
	}
	require.NoError(t, n.sendPendingComment(comment))

	require.Len(t, sender.sent, 1)
	sent := sender.sent[0]
	assert.Equal(t, []string{"mod@example.com"}, sent.To)
	assert.Contains(t, sent.HTMLBody, "Гость")
	assert.Contains(t, sent.HTMLBody, "guest@example.com")
	assert.Contains(t, sent.HTMLBody, "https://admin.example.com/comments?status=pending")
	assert.NotContains(t, sent.HTMLBody, "<script>")
}

func TestNotifier_SendErrorIsReturned(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	n, err := NewNotifier(Config{Moderators: []string{"mod@example.com"}}, sender)
	require.NoError(t, err)

	err = n.sendPendingComment(&models.Comment{Content: "hi", GuestName: "g"})
	assert.EqualError(t, err, "smtp down")
}

func TestTemplateManager_UnknownTemplate(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	_, err = tm.Render("welcome", nil)
	assert.Error(t, err)
}
