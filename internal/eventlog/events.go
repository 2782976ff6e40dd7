package eventlog

import "time"

// Kind - тип журнала. Каждый тип пишется в свои суточные файлы.
type Kind string

const (
	KindBehavior Kind = "behavior"
	KindError    Kind = "error"
)

var kinds = []Kind{KindBehavior, KindError}

func (k Kind) Valid() bool {
	switch k {
	case KindBehavior, KindError:
		return true
	}
	return false
}

// BehaviorType - закрытый набор типов поведенческих событий.
type BehaviorType string

const (
	PageView      BehaviorType = "page_view"
	ArticleView   BehaviorType = "article_view"
	MomentView    BehaviorType = "moment_view"
	WorkView      BehaviorType = "work_view"
	UserVisit     BehaviorType = "user_visit"
	CommentCreate BehaviorType = "comment_create"
	LikeAction    BehaviorType = "like_action"
)

// BehaviorTypes возвращает все известные типы в стабильном порядке.
func BehaviorTypes() []BehaviorType {
	return []BehaviorType{PageView, ArticleView, MomentView, WorkView, UserVisit, CommentCreate, LikeAction}
}

func (t BehaviorType) Valid() bool {
	switch t {
	case PageView, ArticleView, MomentView, WorkView, UserVisit, CommentCreate, LikeAction:
		return true
	}
	return false
}

// IsView - считается ли событие просмотром (totalViews).
func (t BehaviorType) IsView() bool {
	switch t {
	case PageView, ArticleView, MomentView, WorkView:
		return true
	case UserVisit, CommentCreate, LikeAction:
		return false
	}
	return false
}

// RequestInfo - поля, извлеченные из HTTP-запроса. Общие для поведенческих
// событий и событий-ошибок.
type RequestInfo struct {
	UserID    string `json:"userId,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Referer   string `json:"referer,omitempty"`
	Country   string `json:"country,omitempty"`
	City      string `json:"city,omitempty"`
	Device    string `json:"device,omitempty"`
	Browser   string `json:"browser,omitempty"`
	OS        string `json:"os,omitempty"`
}

// BehaviorEvent - одна запись журнала поведения. После записи не меняется.
type BehaviorEvent struct {
	Timestamp   time.Time    `json:"timestamp"`
	Type        BehaviorType `json:"type"`
	TargetID    string       `json:"targetId,omitempty"`
	TargetTitle string       `json:"targetTitle,omitempty"`
	SessionID   string       `json:"sessionId"`
	RequestInfo
	Duration int            `json:"duration,omitempty"` // секунды
	Extra    map[string]any `json:"extra,omitempty"`
}

type Level string

const (
	LevelError Level = "error"
	LevelWarn  Level = "warn"
	LevelInfo  Level = "info"
)

// ErrorEvent - диагностическая запись. В агрегацию не попадает.
type ErrorEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Stack     string    `json:"stack,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	RequestInfo
	Extra map[string]any `json:"extra,omitempty"`
}
