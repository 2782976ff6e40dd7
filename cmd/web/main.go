// @title           miaoyou API
// @version         1.0
// @description     API блога: статьи, моменты, работы, комментарии и поведенческая аналитика.
// @host            localhost:3000
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"miaoyou_backend/internal/app"

	_ "miaoyou_backend/docs"
)

func main() {
	app.Run()
}
