package controllers

import (
	"fitlog-backend/services"

	"github.com/gofiber/fiber/v2"
)

// RoutineController контроллер программ тренировок
type RoutineController struct {
	routines *services.RoutineService
}

// NewRoutineController создает новый экземпляр RoutineController
func NewRoutineController(routines *services.RoutineService) *RoutineController {
	return &RoutineController{routines: routines}
}

// Create создает программу
func (rc *RoutineController) Create(c *fiber.Ctx) error {
	userID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	var req services.RoutineInput
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Неверный формат данных")
	}

	routine, err := rc.routines.Create(c.UserContext(), userID, req)
	if err != nil {
		return serviceError(c, err, "Ошибка при создании программы")
	}

	return ok(c, 201, "Программа создана", routine)
}

// List возвращает программы пользователя, по умолчанию текущего
func (rc *RoutineController) List(c *fiber.Ctx) error {
	currentID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	userID, valid := getTargetUserID(c, currentID)
	if !valid {
		return fail(c, 400, "Неверный ID пользователя")
	}

	routines, err := rc.routines.List(c.UserContext(), userID)
	if err != nil {
		return serviceError(c, err, "Ошибка при получении программ")
	}

	return ok(c, 200, "Программы получены", routines)
}

// Get возвращает одну программу
func (rc *RoutineController) Get(c *fiber.Ctx) error {
	userID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	routineID, valid := getIDParam(c, "id")
	if !valid {
		return fail(c, 400, "Неверный ID программы")
	}

	routine, err := rc.routines.Get(c.UserContext(), userID, routineID)
	if err != nil {
		return serviceError(c, err, "Ошибка при получении программы")
	}

	return ok(c, 200, "Программа получена", routine)
}

// Update заменяет программу
func (rc *RoutineController) Update(c *fiber.Ctx) error {
	userID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	routineID, valid := getIDParam(c, "id")
	if !valid {
		return fail(c, 400, "Неверный ID программы")
	}

	var req services.RoutineInput
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Неверный формат данных")
	}

	routine, err := rc.routines.Update(c.UserContext(), userID, routineID, req)
	if err != nil {
		return serviceError(c, err, "Ошибка при изменении программы")
	}

	return ok(c, 200, "Программа изменена", routine)
}

// Delete удаляет программу
func (rc *RoutineController) Delete(c *fiber.Ctx) error {
	userID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	routineID, valid := getIDParam(c, "id")
	if !valid {
		return fail(c, 400, "Неверный ID программы")
	}

	if err := rc.routines.Delete(c.UserContext(), userID, routineID); err != nil {
		return serviceError(c, err, "Ошибка при удалении программы")
	}

	return ok(c, 200, "Программа удалена", nil)
}
