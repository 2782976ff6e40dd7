package validator

import (
	"log"
	"time"

	"miaoyou_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует enum-правила моделей.
// Пустые значения пропускаются: для них есть 'required'.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-user-role", stringRule(func(s string) bool { return models.UserRole(s).IsValid() }))
	mustRegister("is-content-status", stringRule(func(s string) bool { return models.ArticleStatus(s).IsValid() }))
	mustRegister("is-comment-status", stringRule(func(s string) bool { return models.CommentStatus(s).IsValid() }))
	mustRegister("is-target-type", stringRule(func(s string) bool { return models.TargetType(s).IsValid() }))
	mustRegister("is-visibility", stringRule(func(s string) bool { return models.Visibility(s).IsValid() }))
	mustRegister("is-work-category", stringRule(func(s string) bool { return models.WorkCategory(s).IsValid() }))
	mustRegister("is-date", stringRule(validateDate))
}

func stringRule(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		return valid(value)
	}
}

func validateDate(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}
