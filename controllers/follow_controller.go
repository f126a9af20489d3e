package controllers

import (
	"fitlog-backend/services"

	"github.com/gofiber/fiber/v2"
)

// FollowController контроллер для управления подписками
type FollowController struct {
	follows *services.FollowService
}

// NewFollowController создает новый экземпляр FollowController
func NewFollowController(follows *services.FollowService) *FollowController {
	return &FollowController{follows: follows}
}

// Follow обрабатывает подписку на пользователя
func (fc *FollowController) Follow(c *fiber.Ctx) error {
	userID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	targetID, valid := getIDParam(c, "user_id")
	if !valid {
		return fail(c, 400, "Неверный ID пользователя")
	}

	if err := fc.follows.Follow(c.UserContext(), userID, targetID); err != nil {
		return serviceError(c, err, "Ошибка при создании подписки")
	}

	return ok(c, 201, "Успешно подписались на пользователя", fiber.Map{
		"user_id": targetID,
	})
}

// Unfollow обрабатывает отписку от пользователя
func (fc *FollowController) Unfollow(c *fiber.Ctx) error {
	userID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	targetID, valid := getIDParam(c, "user_id")
	if !valid {
		return fail(c, 400, "Неверный ID пользователя")
	}

	if err := fc.follows.Unfollow(c.UserContext(), userID, targetID); err != nil {
		return serviceError(c, err, "Ошибка при отмене подписки")
	}

	return ok(c, 200, "Успешно отписались от пользователя", nil)
}

// CheckFollow проверяет, подписан ли текущий пользователь на другого
func (fc *FollowController) CheckFollow(c *fiber.Ctx) error {
	userID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	targetID, valid := getIDParam(c, "user_id")
	if !valid {
		return fail(c, 400, "Неверный ID пользователя")
	}

	following, err := fc.follows.IsFollowing(c.UserContext(), userID, targetID)
	if err != nil {
		return serviceError(c, err, "Ошибка при проверке подписки")
	}

	return ok(c, 200, "Статус подписки получен", fiber.Map{
		"is_following": following,
	})
}

// GetFollowers список подписчиков, ?user_id= выбирает другого пользователя
func (fc *FollowController) GetFollowers(c *fiber.Ctx) error {
	currentID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	userID, valid := getTargetUserID(c, currentID)
	if !valid {
		return fail(c, 400, "Неверный ID пользователя")
	}

	page, limit := getPaginationParams(c)
	entries, total, err := fc.follows.ListFollowers(c.UserContext(), userID, page, limit)
	if err != nil {
		return serviceError(c, err, "Ошибка при получении подписчиков")
	}

	return ok(c, 200, "Подписчики получены", fiber.Map{
		"followers": entries,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

// GetFollowing список подписок, ?user_id= выбирает другого пользователя
func (fc *FollowController) GetFollowing(c *fiber.Ctx) error {
	currentID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	userID, valid := getTargetUserID(c, currentID)
	if !valid {
		return fail(c, 400, "Неверный ID пользователя")
	}

	page, limit := getPaginationParams(c)
	entries, total, err := fc.follows.ListFollowing(c.UserContext(), userID, page, limit)
	if err != nil {
		return serviceError(c, err, "Ошибка при получении подписок")
	}

	return ok(c, 200, "Подписки получены", fiber.Map{
		"following": entries,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

// GetStats счетчики подписок пользователя
func (fc *FollowController) GetStats(c *fiber.Ctx) error {
	currentID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	userID, valid := getTargetUserID(c, currentID)
	if !valid {
		return fail(c, 400, "Неверный ID пользователя")
	}

	stats, err := fc.follows.Stats(c.UserContext(), userID)
	if err != nil {
		return serviceError(c, err, "Ошибка при получении статистики")
	}

	return ok(c, 200, "Статистика подписок получена", fiber.Map{
		"followers_count": stats.FollowerCount,
		"following_count": stats.FollowingCount,
	})
}
