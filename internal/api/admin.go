package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/annel0/arrow-physics/internal/logging"
	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/annel0/arrow-physics/internal/scoreboard"
	"github.com/gin-gonic/gin"
)

// DefaultTopSize - размер рейтинга по умолчанию
const DefaultTopSize = 10

// LoginRequest представляет запрос на вход оператора
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse представляет ответ на вход
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// DifficultyRequest меняет сложность мира
type DifficultyRequest struct {
	Difficulty string `json:"difficulty" binding:"required"`
}

// handleLogin обрабатывает вход оператора из конфигурации
func (rs *RestServer) handleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, LoginResponse{Success: false, Message: "Неверный формат запроса"})
		return
	}

	if !rs.operator.Authenticate(req.Username, req.Password) {
		logging.Warn("Неудачная попытка входа оператора %q с %s", req.Username, c.ClientIP())
		c.JSON(http.StatusUnauthorized, LoginResponse{Success: false, Message: "Неверное имя пользователя или пароль"})
		return
	}

	token, err := rs.tokens.Issue(req.Username, true)
	if err != nil {
		logging.Error("Ошибка выдачи токена: %v", err)
		c.JSON(http.StatusInternalServerError, LoginResponse{Success: false, Message: "Ошибка выдачи токена"})
		return
	}

	logging.Info("Оператор %s вошёл с %s", req.Username, c.ClientIP())
	c.JSON(http.StatusOK, LoginResponse{Success: true, Message: "Успешный вход", Token: token})
}

// handleScoreboard отдаёт рейтинг стрелков ?top=N
func (rs *RestServer) handleScoreboard(c *gin.Context) {
	if rs.scores == nil {
		c.JSON(http.StatusNotFound, GenericResponse{Success: false, Message: "Счёт стрелков отключён"})
		return
	}

	n := DefaultTopSize
	if raw := c.Query("top"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: "Некорректный параметр top"})
			return
		}
		n = v
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), scoreboard.DefaultTimeout)
	defer cancel()
	top, err := rs.scores.Top(ctx, n)
	if err != nil {
		logging.Error("Ошибка чтения рейтинга: %v", err)
		c.JSON(http.StatusInternalServerError, GenericResponse{Success: false, Message: "Ошибка чтения рейтинга"})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Рейтинг стрелков", Data: top})
}

func (rs *RestServer) handleResetScoreboard(c *gin.Context) {
	if rs.scores == nil {
		c.JSON(http.StatusNotFound, GenericResponse{Success: false, Message: "Счёт стрелков отключён"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), scoreboard.DefaultTimeout)
	defer cancel()
	if err := rs.scores.Reset(ctx); err != nil {
		logging.Error("Ошибка сброса рейтинга: %v", err)
		c.JSON(http.StatusInternalServerError, GenericResponse{Success: false, Message: "Ошибка сброса рейтинга"})
		return
	}

	logging.Info("Оператор %s сбросил рейтинг", c.GetString(ctxOperator))
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Рейтинг сброшен"})
}

func (rs *RestServer) handleSetDifficulty(c *gin.Context) {
	var req DifficultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: "Неверный формат запроса"})
		return
	}
	diff, ok := projectile.ParseDifficulty(req.Difficulty)
	if !ok {
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: "Неизвестная сложность"})
		return
	}

	rs.sim.World().SetDifficulty(diff)
	logging.Info("Оператор %s установил сложность %s", c.GetString(ctxOperator), diff)
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Сложность изменена", Data: gin.H{"difficulty": diff.String()}})
}
