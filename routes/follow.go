package routes

import (
	"fitlog-backend/controllers"
	"fitlog-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupFollowRoutes настраивает маршруты для подписок
func SetupFollowRoutes(app *fiber.App, followController *controllers.FollowController) {
	follow := app.Group("/api/follow", utils.AuthMiddleware)

	// Статические пути регистрируются раньше /:user_id

	// GET /api/follow/followers - подписчики текущего пользователя
	follow.Get("/followers", followController.GetFollowers)

	// GET /api/follow/following - подписки текущего пользователя
	follow.Get("/following", followController.GetFollowing)

	// GET /api/follow/stats - счетчики подписок
	follow.Get("/stats", followController.GetStats)

	// POST /api/follow/:user_id - подписка на пользователя
	follow.Post("/:user_id", followController.Follow)

	// DELETE /api/follow/:user_id - отписка от пользователя
	follow.Delete("/:user_id", followController.Unfollow)

	// GET /api/follow/:user_id - проверка подписки на пользователя
	follow.Get("/:user_id", followController.CheckFollow)
}
