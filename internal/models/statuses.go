package models

type UserRole string
type ArticleStatus string
type CommentStatus string
type TargetType string
type Visibility string
type WorkCategory string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"

	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
	ArticleStatusArchived  ArticleStatus = "archived"

	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusRejected CommentStatus = "rejected"

	TargetArticle TargetType = "article"
	TargetMoment  TargetType = "moment"
	TargetWork    TargetType = "work"

	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"

	WorkCategoryWeb     WorkCategory = "web"
	WorkCategoryMobile  WorkCategory = "mobile"
	WorkCategoryDesktop WorkCategory = "desktop"
	WorkCategoryDesign  WorkCategory = "design"
	WorkCategoryOther   WorkCategory = "other"
)

func (r UserRole) IsValid() bool {
	return r == UserRoleAdmin || r == UserRoleUser
}

func (s ArticleStatus) IsValid() bool {
	switch s {
	case ArticleStatusDraft, ArticleStatusPublished, ArticleStatusArchived:
		return true
	}
	return false
}

func (s CommentStatus) IsValid() bool {
	switch s {
	case CommentStatusPending, CommentStatusApproved, CommentStatusRejected:
		return true
	}
	return false
}

func (t TargetType) IsValid() bool {
	switch t {
	case TargetArticle, TargetMoment, TargetWork:
		return true
	}
	return false
}

func (v Visibility) IsValid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

func (c WorkCategory) IsValid() bool {
	switch c {
	case WorkCategoryWeb, WorkCategoryMobile, WorkCategoryDesktop, WorkCategoryDesign, WorkCategoryOther:
		return true
	}
	return false
}

// WorkCategories - в порядке отображения.
func WorkCategories() []WorkCategory {
	return []WorkCategory{WorkCategoryWeb, WorkCategoryMobile, WorkCategoryDesktop, WorkCategoryDesign, WorkCategoryOther}
}
