package controllers

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"fitlog-backend/services"
	"fitlog-backend/utils"

	"github.com/gofiber/fiber/v2"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthController контроллер для аутентификации
type AuthController struct {
	users *services.UserService
}

// NewAuthController создает новый экземпляр AuthController
func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{users: users}
}

// SignupRequest структура запроса регистрации
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest структура запроса входа
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInfo публичные данные пользователя
type UserInfo struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse структура ответа аутентификации
type AuthResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Token   string    `json:"token,omitempty"`
	User    *UserInfo `json:"user,omitempty"`
}

// Signup обрабатывает регистрацию пользователя
func (ac *AuthController) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Неверный формат данных")
	}

	if err := validateSignup(&req); err != nil {
		return fail(c, 400, err.Error())
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return fail(c, 500, "Ошибка при создании пользователя")
	}

	user, err := ac.users.Create(c.UserContext(), req.Name, req.Email, hashedPassword)
	if err != nil {
		return serviceError(c, err, "Ошибка при создании пользователя")
	}

	token, err := utils.GenerateJWT(user.ID, user.Email)
	if err != nil {
		return fail(c, 500, "Ошибка при создании токена")
	}
	utils.SetTokenCookie(c, token)

	return c.Status(201).JSON(AuthResponse{
		Success: true,
		Message: "Пользователь успешно зарегистрирован",
		Token:   token,
		User:    &UserInfo{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

// Login обрабатывает вход пользователя
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Неверный формат данных")
	}

	if !emailRegex.MatchString(strings.TrimSpace(req.Email)) || req.Password == "" {
		return fail(c, 400, "Email и пароль обязательны")
	}

	user, err := ac.users.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return fail(c, 404, "Пользователь не найден")
		}
		return serviceError(c, err, "Ошибка при входе")
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return fail(c, 401, "Неверный пароль")
	}

	token, err := utils.GenerateJWT(user.ID, user.Email)
	if err != nil {
		return fail(c, 500, "Ошибка при создании токена")
	}
	utils.SetTokenCookie(c, token)

	return c.JSON(AuthResponse{
		Success: true,
		Message: "Успешный вход в систему",
		Token:   token,
		User:    &UserInfo{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

// Logout удаляет cookie с токеном
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	utils.ClearTokenCookie(c)
	return ok(c, 200, "Вы вышли из системы", nil)
}

// Me возвращает текущего пользователя
func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID, authed := getUserID(c)
	if !authed {
		return fail(c, 401, "Необходима авторизация")
	}

	user, err := ac.users.GetByID(c.UserContext(), userID)
	if err != nil {
		return serviceError(c, err, "Ошибка при получении пользователя")
	}

	return ok(c, 200, "Пользователь получен", UserInfo{ID: user.ID, Name: user.Name, Email: user.Email})
}

func validateSignup(req *SignupRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if req.Name == "" {
		return fiber.NewError(400, "Имя обязательно")
	}
	if n := utf8.RuneCountInString(req.Name); n < 2 || n > 50 {
		return fiber.NewError(400, "Имя должно содержать от 2 до 50 символов")
	}
	if !emailRegex.MatchString(req.Email) {
		return fiber.NewError(400, "Неверный формат email")
	}
	if len(req.Password) < 6 {
		return fiber.NewError(400, "Пароль должен содержать минимум 6 символов")
	}
	return nil
}
