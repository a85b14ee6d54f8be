package handlers

import (
	"net/http"

	"blogicum/internal/middleware"
	"blogicum/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// ShowEditProfile 编辑自己的资料
func (h *UserHandler) ShowEditProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	Render(c, http.StatusOK, "blog/user.html", gin.H{
		"Form": services.ProfileInput{
			Username:  user.Username,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
	})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	in := services.ProfileInput{
		Username:  c.PostForm("username"),
		Email:     c.PostForm("email"),
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), middleware.CurrentUser(c), in, middleware.RequestTime(c))
	if fields, invalid := validationErrors(err); invalid {
		Render(c, http.StatusBadRequest, "blog/user.html", gin.H{"Form": in, "Errors": fields})
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, profilePath(user.Username))
}
