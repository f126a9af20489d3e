package controllers

import (
	"fitlog-backend/services"

	"github.com/gofiber/fiber/v2"
)

// UserController контроллер поиска и профилей пользователей
type UserController struct {
	users   *services.UserService
	follows *services.FollowService
}

// NewUserController создает новый экземпляр UserController
func NewUserController(users *services.UserService, follows *services.FollowService) *UserController {
	return &UserController{users: users, follows: follows}
}

// UserSummary пользователь в результатах поиска
type UserSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Search ищет пользователей по имени
func (uc *UserController) Search(c *fiber.Ctx) error {
	userID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	users, err := uc.users.Search(c.UserContext(), userID, c.Query("q"))
	if err != nil {
		return serviceError(c, err, "Ошибка при поиске пользователей")
	}

	result := make([]UserSummary, 0, len(users))
	for _, u := range users {
		result = append(result, UserSummary{ID: u.ID, Name: u.Name})
	}

	return ok(c, 200, "Пользователи найдены", result)
}

// GetProfile получает профиль пользователя по ID
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	currentID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	profileID, valid := getIDParam(c, "id")
	if !valid {
		return fail(c, 400, "Неверный ID пользователя")
	}

	ctx := c.UserContext()
	user, err := uc.users.GetByID(ctx, profileID)
	if err != nil {
		return serviceError(c, err, "Ошибка при получении профиля")
	}

	stats, err := uc.follows.Stats(ctx, profileID)
	if err != nil {
		return serviceError(c, err, "Ошибка при получении профиля")
	}

	following := false
	if currentID != profileID {
		following, err = uc.follows.IsFollowing(ctx, currentID, profileID)
		if err != nil {
			return serviceError(c, err, "Ошибка при получении профиля")
		}
	}

	return ok(c, 200, "Профиль получен", fiber.Map{
		"id":              user.ID,
		"name":            user.Name,
		"created_at":      user.CreatedAt,
		"followers_count": stats.FollowerCount,
		"following_count": stats.FollowingCount,
		"is_following":    following,
	})
}
