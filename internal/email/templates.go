package email

import (
	"bytes"
	"fmt"
	"html/template"
)

const TemplatePendingComment = "pending_comment"

// PendingCommentData - данные письма о комментарии на модерации
type PendingCommentData struct {
	GuestName  string
	GuestEmail string
	Content    string
	TargetType string
	TargetID   string
	ReviewURL  string
}

// TemplateManager хранит разобранные встроенные шаблоны.
type TemplateManager struct {
	templates map[string]*template.Template
}

func NewTemplateManager() (*TemplateManager, error) {
	tm := &TemplateManager{templates: make(map[string]*template.Template)}

	builtin := map[string]string{
		TemplatePendingComment: pendingCommentTemplate,
	}
	for name, text := range builtin {
		tpl, err := template.New(name).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		tm.templates[name] = tpl
	}
	return tm, nil
}

// Render рендерит шаблон с данными
func (tm *TemplateManager) Render(templateName string, data interface{}) (string, error) {
	tpl, exists := tm.templates[templateName]
	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

const pendingCommentTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Новый комментарий на модерации</title>
</head>
<body>
    <h2>Новый комментарий ждет модерации</h2>
    <p><strong>{{.GuestName}}</strong>{{if .GuestEmail}} ({{.GuestEmail}}){{end}} оставил комментарий к {{.TargetType}} {{.TargetID}}:</p>
    <blockquote style="border-left: 3px solid #ccc; padding-left: 10px;">{{.Content}}</blockquote>
    {{if .ReviewURL}}
    <a href="{{.ReviewURL}}" style="background-color: #007bff; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Открыть модерацию</a>
    {{end}}
</body>
</html>`
