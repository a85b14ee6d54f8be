package services

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/store"

	"golang.org/x/crypto/bcrypt"
)

const (
	usernameMaxLen    = 150
	passwordMinLen    = 8
	passwordMaxBytes  = 72 // bcrypt 上限
	usernameHelpError = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
)

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

// reservedUsernames 与 /profile/ 下的固定路由冲突
var reservedUsernames = map[string]bool{
	"edit": true,
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

type ProfileInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}

type UserService struct {
	store *store.Store
}

func NewUserService(st *store.Store) *UserService {
	return &UserService{store: st}
}

// GetUser loads the user behind a session.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return user, nil
}

func (s *UserService) Register(ctx context.Context, in RegisterInput, now time.Time) (*models.User, error) {
	fields := fieldErrors{}
	username := strings.TrimSpace(in.Username)
	if err := s.checkUsername(ctx, fields, username, 0); err != nil {
		return nil, err
	}
	email := checkEmail(fields, in.Email)

	switch {
	case len(in.Password) < passwordMinLen:
		fields.add("password", "This password is too short. It must contain at least 8 characters.")
	case len(in.Password) > passwordMaxBytes:
		fields.add("password", "This password is too long. It must contain at most 72 bytes.")
	case isNumeric(in.Password):
		fields.add("password", "This password is entirely numeric.")
	case in.Password != in.PasswordConfirm:
		fields.add("password_confirm", "The two password fields didn't match.")
	}
	if err := fields.err(); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:  username,
		Email:     email,
		Password:  hash,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate checks a username and password pair.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !checkPasswordHash(password, user.Password) {
		return nil, ErrBadCredentials
	}
	return user, nil
}

// UpdateProfile edits the viewer's own account fields.
func (s *UserService) UpdateProfile(ctx context.Context, viewer *models.User, in ProfileInput, now time.Time) (*models.User, error) {
	if viewer == nil {
		return nil, ErrAuthRequired
	}
	user, err := s.store.GetUser(ctx, viewer.ID)
	if err != nil {
		return nil, notFound(err, "user", viewer.ID)
	}

	fields := fieldErrors{}
	username := strings.TrimSpace(in.Username)
	if err := s.checkUsername(ctx, fields, username, user.ID); err != nil {
		return nil, err
	}
	email := checkEmail(fields, in.Email)
	if err := fields.err(); err != nil {
		return nil, err
	}

	user.Username = username
	user.Email = email
	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.UpdatedAt = now.UTC()
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "profile updated", "user_id", user.ID)
	return user, nil
}

func (s *UserService) checkUsername(ctx context.Context, fields fieldErrors, username string, exceptID uint) error {
	switch {
	case username == "":
		fields.add("username", "This field is required.")
		return nil
	case len(username) > usernameMaxLen || !usernameRe.MatchString(username):
		fields.add("username", usernameHelpError)
		return nil
	case reservedUsernames[username]:
		fields.add("username", "This username is reserved.")
		return nil
	}
	taken, err := s.store.UsernameTaken(ctx, username, exceptID)
	if err != nil {
		return err
	}
	if taken {
		fields.add("username", "A user with that username already exists.")
	}
	return nil
}

// checkEmail 邮箱可以为空
func checkEmail(fields fieldErrors, raw string) string {
	email := strings.TrimSpace(raw)
	if email == "" {
		return ""
	}
	if _, err := mail.ParseAddress(email); err != nil {
		fields.add("email", "Enter a valid email address.")
	}
	return email
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
