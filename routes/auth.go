package routes

import (
	"fitlog-backend/controllers"
	"fitlog-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes настраивает маршруты для аутентификации
func SetupAuthRoutes(app *fiber.App, authController *controllers.AuthController) {
	// Группа маршрутов для аутентификации
	auth := app.Group("/auth")

	// POST /auth/signup - регистрация пользователя
	auth.Post("/signup", authController.Signup)

	// POST /auth/login - вход пользователя
	auth.Post("/login", authController.Login)

	// POST /auth/logout - выход, удаляет cookie
	auth.Post("/logout", authController.Logout)

	// GET /auth/me - текущий пользователь
	auth.Get("/me", utils.AuthMiddleware, authController.Me)
}
