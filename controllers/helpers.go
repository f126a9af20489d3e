package controllers

import (
	"errors"
	"strconv"

	"fitlog-backend/logger"
	"fitlog-backend/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Response общий формат ответа API
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func ok(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Response{
		Success: false,
		Message: message,
	})
}

// serviceError переводит ошибку сервиса в HTTP ответ
func serviceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fail(c, 400, err.Error())
	case errors.Is(err, services.ErrSelfFollow):
		return fail(c, 400, "Нельзя подписаться на самого себя")
	case errors.Is(err, services.ErrUserNotFound):
		return fail(c, 404, "Пользователь не найден")
	case errors.Is(err, services.ErrLogNotFound):
		return fail(c, 404, "Запись не найдена")
	case errors.Is(err, services.ErrNoLogs):
		return fail(c, 404, "Дневник пуст")
	case errors.Is(err, services.ErrRoutineNotFound):
		return fail(c, 404, "Программа не найдена")
	case errors.Is(err, services.ErrNotFollowing):
		return fail(c, 404, "Вы не подписаны на этого пользователя")
	case errors.Is(err, services.ErrAlreadyFollowing):
		return fail(c, 409, "Вы уже подписаны на этого пользователя")
	case errors.Is(err, services.ErrEmailTaken):
		return fail(c, 409, "Пользователь с таким email уже существует")
	}

	logger.Log.Error(fallback,
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))
	return fail(c, 500, fallback)
}

// getUserID возвращает ID пользователя, сохраненный AuthMiddleware
func getUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("user_id").(uint)
	return userID, ok && userID != 0
}

// getIDParam разбирает числовой параметр пути
func getIDParam(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// maxPage ограничивает номер страницы, чтобы (page-1)*limit не переполнялся.
// Дальние страницы все равно пустые.
const maxPage = 1_000_000

// getPaginationParams извлекает параметры пагинации из запроса
func getPaginationParams(c *fiber.Ctx) (int, int) {
	page := 1
	limit := 20

	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = min(p, maxPage)
		}
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	return page, limit
}

// getTargetUserID возвращает пользователя из ?user_id= или текущего
func getTargetUserID(c *fiber.Ctx, current uint) (uint, bool) {
	raw := c.Query("user_id")
	if raw == "" {
		return current, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// paginationInfo метаданные страницы для списков с известным total
func paginationInfo(page, limit int, total int64) fiber.Map {
	totalPages := (total + int64(limit) - 1) / int64(limit)
	return fiber.Map{
		"page":        page,
		"limit":       limit,
		"total":       total,
		"total_pages": totalPages,
		"has_more":    int64(page) < totalPages,
	}
}
