package api

import (
	"errors"
	"net/http"

	"multistore/pkg/logger"
	"multistore/pkg/metrics"
	"multistore/pkg/models"
	"multistore/pkg/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves the five user operations over one store.
type UserHandler struct {
	Store store.UserStore
	// RequirePhone rejects create and update payloads without a phone.
	RequirePhone bool
	// WriteGuards run before create, update and delete.
	WriteGuards []gin.HandlerFunc

	metrics *metrics.HTTPMetrics
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(s store.UserStore, requirePhone bool, guards ...gin.HandlerFunc) *UserHandler {
	return &UserHandler{Store: s, RequirePhone: requirePhone, WriteGuards: guards}
}

// Register mounts the user routes on rg.
func (h *UserHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/users", h.ListUsers)
	rg.GET("/users/:id", h.GetUser)
	rg.POST("/users", h.guarded(h.CreateUser)...)
	rg.PUT("/users/:id", h.guarded(h.UpdateUser)...)
	rg.DELETE("/users/:id", h.guarded(h.DeleteUser)...)
}

func (h *UserHandler) guarded(final gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(h.WriteGuards)+1)
	chain = append(chain, h.WriteGuards...)
	return append(chain, final)
}

func (h *UserHandler) log(c *gin.Context) *zap.Logger {
	return logger.FromGin(c).With(zap.String("backend", h.Store.Name()))
}

// bind decodes the request payload according to the handler's phone rule.
func (h *UserHandler) bind(c *gin.Context) (models.UserInput, bool) {
	var (
		in  models.UserInput
		err error
	)
	if h.RequirePhone {
		err = c.ShouldBindJSON(&in)
	} else {
		var relaxed models.RelaxedUserInput
		err = c.ShouldBindJSON(&relaxed)
		in = relaxed.Input()
	}
	if err != nil {
		h.log(c).Warn("invalid user payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.Fail(bindMessage(err, h.RequirePhone)))
		return in, false
	}
	return in, true
}

func (h *UserHandler) fail(c *gin.Context, op string, err error) {
	status, msg := statusFor(err)
	log := h.log(c).With(zap.String("op", op), zap.String("user_id", c.Param("id")))
	var se *store.Error
	if errors.As(err, &se) {
		log = log.With(zap.String("store_backend", se.Backend), zap.String("store_op", se.Op))
	}

	switch {
	case status == http.StatusServiceUnavailable:
		log.Warn("backend unavailable", zap.Error(err))
		h.recordError("unavailable")
	case status >= http.StatusInternalServerError:
		log.Error("store error", zap.Error(err))
		h.recordError("internal")
	default:
		log.Info("user not found")
	}
	c.JSON(status, models.Fail(msg))
}

func (h *UserHandler) recordError(kind string) {
	if h.metrics != nil {
		h.metrics.RecordBackendError(h.Store.Name(), kind)
	}
}

// CreateUser godoc
// @Summary      Create a new user
// @Description  Creates a user in the selected backend. The memory backend does not require phone and expects an X-API-Key header.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        backend  path      string            true  "Backend"  Enums(mongo, postgres, sqlite, memory)
// @Param        request  body      models.UserInput  true  "User fields"
// @Success      201      {object}  models.Envelope{data=models.User}
// @Failure      400      {object}  models.Envelope
// @Failure      401      {object}  models.Envelope
// @Failure      500      {object}  models.Envelope
// @Failure      503      {object}  models.Envelope
// @Router       /{backend}/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	in, ok := h.bind(c)
	if !ok {
		return
	}

	user, err := h.Store.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "create", err)
		return
	}

	h.log(c).Info("user created", zap.String("user_id", user.ID.String()))
	c.JSON(http.StatusCreated, models.OK(user))
}

// UpdateUser godoc
// @Summary      Update an existing user
// @Description  Replaces name, email and phone; id and createdAt are kept
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        backend  path      string            true  "Backend"  Enums(mongo, postgres, sqlite, memory)
// @Param        id       path      string            true  "User ID"
// @Param        request  body      models.UserInput  true  "User fields"
// @Success      200      {object}  models.Envelope{data=models.User}
// @Failure      400      {object}  models.Envelope
// @Failure      404      {object}  models.Envelope
// @Failure      500      {object}  models.Envelope
// @Failure      503      {object}  models.Envelope
// @Router       /{backend}/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID := c.Param("id")
	in, ok := h.bind(c)
	if !ok {
		return
	}

	user, err := h.Store.Update(c.Request.Context(), userID, in)
	if err != nil {
		h.fail(c, "update", err)
		return
	}

	h.log(c).Info("user updated", zap.String("user_id", userID))
	c.JSON(http.StatusOK, models.OK(user))
}

// GetUser godoc
// @Summary      Get a user by ID
// @Description  Returns a single user
// @Tags         users
// @Produce      json
// @Param        backend  path      string  true  "Backend"  Enums(mongo, postgres, sqlite, memory)
// @Param        id       path      string  true  "User ID"
// @Success      200      {object}  models.Envelope{data=models.User}
// @Failure      404      {object}  models.Envelope
// @Failure      503      {object}  models.Envelope
// @Router       /{backend}/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.Store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, models.OK(user))
}

// ListUsers godoc
// @Summary      List all users
// @Description  Returns all users, newest first
// @Tags         users
// @Produce      json
// @Param        backend  path      string  true  "Backend"  Enums(mongo, postgres, sqlite, memory)
// @Success      200      {object}  models.Envelope{data=[]models.User}
// @Failure      500      {object}  models.Envelope
// @Failure      503      {object}  models.Envelope
// @Router       /{backend}/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.Store.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, models.OKList(users))
}

// DeleteUser godoc
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        backend  path      string  true  "Backend"  Enums(mongo, postgres, sqlite, memory)
// @Param        id       path      string  true  "User ID"
// @Success      200      {object}  models.Envelope
// @Failure      404      {object}  models.Envelope
// @Failure      500      {object}  models.Envelope
// @Failure      503      {object}  models.Envelope
// @Router       /{backend}/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("id")
	if err := h.Store.Delete(c.Request.Context(), userID); err != nil {
		h.fail(c, "delete", err)
		return
	}

	h.log(c).Info("user deleted", zap.String("user_id", userID))
	c.JSON(http.StatusOK, models.OKMessage("User deleted successfully"))
}
