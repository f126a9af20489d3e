package routes

import (
	"fitlog-backend/controllers"
	"fitlog-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupUpdateRoutes настраивает маршруты ленты обновлений
func SetupUpdateRoutes(app *fiber.App, feedController *controllers.FeedController) {
	updates := app.Group("/api/updates", utils.AuthMiddleware)

	// GET /api/updates - лента, отмечает ее просмотренной
	updates.Get("/", feedController.GetUpdates)

	// GET /api/updates/unread - число новых записей без отметки
	updates.Get("/unread", feedController.GetUnread)
}
