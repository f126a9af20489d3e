package routes

import (
	"fitlog-backend/controllers"
	"fitlog-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutineRoutes настраивает маршруты программ тренировок
func SetupRoutineRoutes(app *fiber.App, routineController *controllers.RoutineController) {
	routines := app.Group("/api/routines", utils.AuthMiddleware)

	routines.Post("/", routineController.Create)      // POST /api/routines - создать программу
	routines.Get("/", routineController.List)         // GET /api/routines - программы текущего пользователя
	routines.Get("/:id", routineController.Get)       // GET /api/routines/:id - одна программа
	routines.Put("/:id", routineController.Update)    // PUT /api/routines/:id - заменить программу
	routines.Delete("/:id", routineController.Delete) // DELETE /api/routines/:id - удалить программу
}
