package handlers

import (
	"errors"
	"net/http"

	"blogicum/internal/middleware"
	"blogicum/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	if user := middleware.CurrentUser(c); user != nil {
		c.Redirect(http.StatusFound, safeNext(c.Query("next"), "/"))
		return
	}
	Render(c, http.StatusOK, "registration/login.html", gin.H{"Next": c.Query("next")})
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	next := c.PostForm("next")

	user, err := h.users.Authenticate(c.Request.Context(), username, c.PostForm("password"))
	if errors.Is(err, services.ErrBadCredentials) {
		Render(c, http.StatusBadRequest, "registration/login.html", gin.H{
			"Error":    "Please enter a correct username and password.",
			"Username": username,
			"Next":     next,
		})
		return
	}
	if err != nil {
		ServerError(c, err)
		return
	}

	if err := middleware.Login(c, user); err != nil {
		ServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, safeNext(next, "/"))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.Logout(c); err != nil {
		ServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "registration/registration_form.html", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	in := services.RegisterInput{
		Username:        c.PostForm("username"),
		Email:           c.PostForm("email"),
		Password:        c.PostForm("password1"),
		PasswordConfirm: c.PostForm("password2"),
	}

	_, err := h.users.Register(c.Request.Context(), in, middleware.RequestTime(c))
	if fields, invalid := validationErrors(err); invalid {
		Render(c, http.StatusBadRequest, "registration/registration_form.html", gin.H{
			"Errors":   fields,
			"Username": in.Username,
			"Email":    in.Email,
		})
		return
	}
	if err != nil {
		ServerError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}
