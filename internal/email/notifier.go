package email

import (
	"miaoyou_backend/internal/logger"
	"miaoyou_backend/internal/models"
)

// Notifier рассылает модераторам письма о гостевых комментариях.
// Отправка идет в фоне; ошибки только логируются.
type Notifier struct {
	config    Config
	sender    Sender
	templates *TemplateManager
}

func NewNotifier(config Config, sender Sender) (*Notifier, error) {
	tm, err := NewTemplateManager()
	if err != nil {
		return nil, err
	}
	return &Notifier{config: config, sender: sender, templates: tm}, nil
}

// PendingComment ставит письмо в отправку и сразу возвращается.
func (n *Notifier) PendingComment(comment *models.Comment) {
	go func() {
		if err := n.sendPendingComment(comment); err != nil {
			logger.Error("Failed to send moderation email", "comment_id", comment.ID, "error", err)
		}
	}()
}

func (n *Notifier) sendPendingComment(comment *models.Comment) error {
	data := PendingCommentData{
		GuestName:  comment.GuestName,
		GuestEmail: comment.GuestEmail,
		Content:    comment.Content,
		TargetType: string(comment.TargetType),
		TargetID:   comment.TargetID,
	}
	if n.config.AdminURL != "" {
		data.ReviewURL = n.config.AdminURL + "/comments?status=pending"
	}

	body, err := n.templates.Render(TemplatePendingComment, data)
	if err != nil {
		return err
	}

	return n.sender.Send(&Email{
		To:       n.config.Moderators,
		Subject:  "Новый комментарий на модерации",
		HTMLBody: body,
	})
}
