package controllers

import (
	"fitlog-backend/services"

	"github.com/gofiber/fiber/v2"
)

// FeedController контроллер ленты обновлений
type FeedController struct {
	feed *services.FeedService
}

// NewFeedController создает новый экземпляр FeedController
func NewFeedController(feed *services.FeedService) *FeedController {
	return &FeedController{feed: feed}
}

// GetUpdates возвращает ленту текущего пользователя и отмечает ее просмотренной.
// Пагинация режет уже собранную ленту, lastSeen сдвигается при любом запросе.
func (fc *FeedController) GetUpdates(c *fiber.Ctx) error {
	userID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	items, err := fc.feed.GetUpdates(c.UserContext(), userID)
	if err != nil {
		return serviceError(c, err, "Ошибка при получении ленты")
	}

	newCount := 0
	for _, item := range items {
		if item.IsNew {
			newCount++
		}
	}

	page, limit := getPaginationParams(c)
	start := len(items)
	if page-1 < len(items)/limit+1 {
		start = min((page-1)*limit, len(items))
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}

	return ok(c, 200, "Лента получена", fiber.Map{
		"activities": items[start:end],
		"total":      len(items),
		"new_count":  newCount,
		"page":       page,
		"limit":      limit,
	})
}

// GetUnread возвращает число непрочитанных записей без отметки просмотра
func (fc *FeedController) GetUnread(c *fiber.Ctx) error {
	userID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	n, err := fc.feed.UnreadCount(c.UserContext(), userID)
	if err != nil {
		return serviceError(c, err, "Ошибка при получении ленты")
	}

	return ok(c, 200, "Количество непрочитанных получено", fiber.Map{
		"unread": n,
	})
}
