package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-sentiment/internal/domain"
	"todo-sentiment/internal/service"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Name        string `json:"name"`
}

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// UserResponse is the public view of an account; the password never leaves the server.
type UserResponse struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AddedOn   string  `json:"added_on"`
	UpdatedOn *string `json:"updated_on"`
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		Name:      user.Name,
		Email:     user.Email,
		AddedOn:   formatTime(user.AddedOn),
		UpdatedOn: formatTimePtr(user.UpdatedOn),
	}
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	token, _, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Name:        user.Name,
	})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if _, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, "Successfully created a user")
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if _, err := h.users.Update(c.Request.Context(), id, domain.UserPatch{Name: req.Name, Email: req.Email}); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, "successfully updated the user data")
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.purgeExports(c, id)
	c.JSON(http.StatusAccepted, "Successfully deleted user")
}

func (h *Handler) deleteAllUsers(c *gin.Context) {
	n, err := h.users.DeleteAll(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.WithField("deleted", n).Info("flushed all users")
	h.purgeExports(c, 0)
	c.JSON(http.StatusAccepted, "Successfully flush all the user data")
}

// purgeExports drops stored exports of a removed account. Failures are logged
// only; the account itself is already gone.
func (h *Handler) purgeExports(c *gin.Context, userID int64) {
	if h.exports == nil {
		return
	}
	err := h.exports.Purge(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, service.ErrStorageDisabled) {
		h.logger.WithError(err).WithField("user_id", userID).Warn("purge exports")
	}
}
