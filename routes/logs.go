package routes

import (
	"fitlog-backend/controllers"
	"fitlog-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupLogRoutes настраивает маршруты дневника тренировок
func SetupLogRoutes(app *fiber.App, logController *controllers.LogController) {
	logs := app.Group("/api/logs", utils.AuthMiddleware)

	logs.Post("/", logController.Create)   // POST /api/logs - новая запись, рассылается подписчикам
	logs.Get("/", logController.List)      // GET /api/logs - записи текущего пользователя
	logs.Patch("/", logController.Update)  // PATCH /api/logs - изменить запись по времени
	logs.Delete("/", logController.Delete) // DELETE /api/logs - удалить запись по времени
}
