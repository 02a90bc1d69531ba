package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/cookbook/backend/internal/models"
	"github.com/anonto42/cookbook/backend/internal/repositories"
	"github.com/anonto42/cookbook/backend/internal/tokenstore"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// IDTokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthService exchanges credentials for bearer tokens
type AuthService struct {
	users    repositories.UserRepository
	tokens   tokenstore.Store
	firebase IDTokenVerifier
}

// NewAuthService creates an AuthService. firebase may be nil, which
// disables LoginWithFirebase.
func NewAuthService(users repositories.UserRepository, tokens tokenstore.Store, firebase IDTokenVerifier) *AuthService {
	return &AuthService{users: users, tokens: tokens, firebase: firebase}
}

// FirebaseEnabled reports whether Firebase login is configured
func (s *AuthService) FirebaseEnabled() bool {
	return s.firebase != nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logrus.WithField("email", email).Warn("Login with unknown email")
			return "", ErrInvalidCredentials
		}
		logrus.WithError(err).Error("Failed to load user for login")
		return "", ErrInternalServer
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		logrus.WithField("user_id", user.ID).Warn("Login with wrong password")
		return "", ErrInvalidCredentials
	}
	return s.issue(ctx, user.ID)
}

// Logout revokes token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.tokens.Revoke(ctx, token); err != nil {
		logrus.WithError(err).Error("Failed to revoke token")
		return ErrInternalServer
	}
	return nil
}

// Authenticate resolves a bearer token to a user id
func (s *AuthService) Authenticate(ctx context.Context, token string) (uint, error) {
	userID, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, tokenstore.ErrInvalidToken) {
			return 0, ErrInvalidToken
		}
		logrus.WithError(err).Error("Failed to resolve token")
		return 0, ErrInternalServer
	}
	return userID, nil
}

// LoginWithFirebase verifies a Firebase ID token and issues a local token.
// The account is found by Firebase UID, then by email, and is created on
// first sight.
func (s *AuthService) LoginWithFirebase(ctx context.Context, idToken string) (string, error) {
	if s.firebase == nil {
		return "", ErrInvalidCredentials
	}
	verified, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		logrus.WithError(err).Warn("Invalid Firebase ID token")
		return "", ErrInvalidToken
	}
	email, _ := verified.Claims["email"].(string)
	name, _ := verified.Claims["name"].(string)
	logCtx := logrus.WithFields(logrus.Fields{"firebase_uid": verified.UID, "email": email})

	user, err := s.users.GetUserByFirebaseUID(ctx, verified.UID)
	switch {
	case err == nil:
		return s.issue(ctx, user.ID)
	case !errors.Is(err, repositories.ErrNotFound):
		logCtx.WithError(err).Error("Failed to load user by Firebase UID")
		return "", ErrInternalServer
	}
	if email == "" {
		logCtx.Warn("Firebase token carries no email")
		return "", ErrInvalidCredentials
	}

	user, err = s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.users.LinkFirebaseUID(ctx, user.ID, verified.UID); err != nil {
			logCtx.WithError(err).Error("Failed to link Firebase UID")
			return "", ErrInternalServer
		}
		logCtx.WithField("user_id", user.ID).Info("Linked Firebase identity")
		return s.issue(ctx, user.ID)
	case !errors.Is(err, repositories.ErrNotFound):
		logCtx.WithError(err).Error("Failed to load user by email")
		return "", ErrInternalServer
	}

	user, err = s.createFirebaseUser(ctx, verified.UID, email, name)
	if err != nil {
		logCtx.WithError(err).Error("Failed to create Firebase user")
		return "", ErrInternalServer
	}
	logCtx.WithField("user_id", user.ID).Info("Created user from Firebase identity")
	return s.issue(ctx, user.ID)
}

var usernameStrip = regexp.MustCompile(`[^\w.@+-]`)

func (s *AuthService) createFirebaseUser(ctx context.Context, uid, email, name string) (*models.User, error) {
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	username := usernameStrip.ReplaceAllString(strings.SplitN(email, "@", 2)[0], "")
	if username == "" {
		username = "user"
	}
	if len(username) > 140 {
		username = username[:140]
	}

	user := &models.User{
		Email:       email,
		Username:    username,
		FirstName:   first,
		LastName:    strings.TrimSpace(last),
		FirebaseUID: &uid,
	}
	err := s.users.CreateUser(ctx, user)
	if errors.Is(err, repositories.ErrDuplicateEntry) {
		suffix := uid
		if len(suffix) > 8 {
			suffix = suffix[:8]
		}
		user.ID = 0
		user.Username = username + "-" + suffix
		err = s.users.CreateUser(ctx, user)
	}
	return user, err
}

func (s *AuthService) issue(ctx context.Context, userID uint) (string, error) {
	token, err := s.tokens.Issue(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to issue token")
		return "", ErrInternalServer
	}
	logrus.WithField("user_id", userID).Info("Token issued")
	return token, nil
}
