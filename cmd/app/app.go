package main

import (
	"github.com/stylefeed/go-backend/internal/app"
)

//	@title			StyleFeed Recommendation API
//	@version		1.0
//	@description	Сервис персональных рекомендаций по сохранённым товарам
//	@host			localhost:8080
//	@BasePath		/
func main() {
	app.Run()
}
