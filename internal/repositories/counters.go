package repositories

import (
	"fmt"

	"gorm.io/gorm"
)

type Counter string

const (
	CounterViews    Counter = "view_count"
	CounterLikes    Counter = "like_count"
	CounterComments Counter = "comment_count"
)

// incrementCounter атомарно меняет счетчик; значение не уходит ниже нуля.
func incrementCounter(db *gorm.DB, model any, id string, counter Counter, delta int) (int64, error) {
	switch counter {
	case CounterViews, CounterLikes, CounterComments:
	default:
		return 0, fmt.Errorf("unknown counter %q", counter)
	}

	col := string(counter)
	var expr any
	if delta >= 0 {
		expr = gorm.Expr(col+" + ?", delta)
	} else {
		expr = gorm.Expr("CASE WHEN "+col+" + ? < 0 THEN 0 ELSE "+col+" + ? END", delta, delta)
	}

	result := db.Model(model).Where("id = ?", id).UpdateColumn(col, expr)
	return result.RowsAffected, result.Error
}
