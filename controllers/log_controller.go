package controllers

import (
	"time"

	"fitlog-backend/services"

	"github.com/gofiber/fiber/v2"
)

// LogController контроллер дневника тренировок
type LogController struct {
	logs       *services.LogService
	dispatcher services.FanoutDispatcher
}

// NewLogController создает новый экземпляр LogController
func NewLogController(logs *services.LogService, dispatcher services.FanoutDispatcher) *LogController {
	return &LogController{logs: logs, dispatcher: dispatcher}
}

// CreateLogRequest запрос на новую запись
type CreateLogRequest struct {
	Entry string `json:"entry"`
}

// UpdateLogRequest запрос на изменение записи. Запись ищется по времени.
type UpdateLogRequest struct {
	Timestamp time.Time `json:"timestamp"`
	Entry     string    `json:"entry"`
}

// DeleteLogRequest запрос на удаление записи
type DeleteLogRequest struct {
	Timestamp time.Time `json:"timestamp"`
}

// Create добавляет запись и запускает рассылку подписчикам.
// Ответ не ждет окончания рассылки.
func (lc *LogController) Create(c *fiber.Ctx) error {
	userID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	var req CreateLogRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Неверный формат данных")
	}

	entry, err := lc.logs.Append(c.UserContext(), userID, req.Entry)
	if err != nil {
		return serviceError(c, err, "Ошибка при сохранении записи")
	}

	if lc.dispatcher != nil {
		lc.dispatcher.Dispatch(userID, entry.Timestamp)
	}

	return ok(c, 201, "Запись добавлена", entry)
}

// List возвращает записи пользователя, по умолчанию текущего
func (lc *LogController) List(c *fiber.Ctx) error {
	currentID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	userID, valid := getTargetUserID(c, currentID)
	if !valid {
		return fail(c, 400, "Неверный ID пользователя")
	}

	page, limit := getPaginationParams(c)
	entries, total, err := lc.logs.List(c.UserContext(), userID, page, limit)
	if err != nil {
		return serviceError(c, err, "Ошибка при получении записей")
	}

	return ok(c, 200, "Записи получены", fiber.Map{
		"entries":    entries,
		"total":      total,
		"pagination": paginationInfo(page, limit, total),
	})
}

// Update меняет текст записи
func (lc *LogController) Update(c *fiber.Ctx) error {
	userID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	var req UpdateLogRequest
	if err := c.BodyParser(&req); err != nil || req.Timestamp.IsZero() {
		return fail(c, 400, "Неверный формат данных")
	}

	entry, err := lc.logs.Update(c.UserContext(), userID, req.Timestamp, req.Entry)
	if err != nil {
		return serviceError(c, err, "Ошибка при изменении записи")
	}

	return ok(c, 200, "Запись изменена", entry)
}

// Delete удаляет запись
func (lc *LogController) Delete(c *fiber.Ctx) error {
	userID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	var req DeleteLogRequest
	if err := c.BodyParser(&req); err != nil || req.Timestamp.IsZero() {
		return fail(c, 400, "Неверный формат данных")
	}

	if err := lc.logs.Delete(c.UserContext(), userID, req.Timestamp); err != nil {
		return serviceError(c, err, "Ошибка при удалении записи")
	}

	return ok(c, 200, "Запись удалена", nil)
}
