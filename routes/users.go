package routes

import (
	"fitlog-backend/controllers"
	"fitlog-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupUserRoutes настраивает маршруты поиска и профилей пользователей
func SetupUserRoutes(app *fiber.App, userController *controllers.UserController) {
	users := app.Group("/api/users", utils.AuthMiddleware)
	users.Get("/search", userController.Search)  // GET /api/users/search?q= - поиск по имени
	users.Get("/:id", userController.GetProfile) // GET /api/users/:id - профиль пользователя
}
