package services

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Praveen5612/skill-survey-bot/internal/directory"
)

// AuthDirectory is the user lookup used at login.
type AuthDirectory interface {
	ByEmail(email string) *directory.User
}

// TokenSigner mints a session token for an authenticated user.
type TokenSigner func(uid, email string, role directory.Role, ttl time.Duration) (string, error)

// AuthService logs users from the directory in. Email is the login key;
// when the directory row carries a bcrypt hash the password is verified,
// otherwise email alone suffices (the directory file is the trust anchor).
type AuthService struct {
	users     AuthDirectory
	signToken TokenSigner
	tokenTTL  time.Duration
}

type AuthResult struct {
	Token  string         `json:"token"`
	UserID string         `json:"user_id"`
	Name   string         `json:"name"`
	Email  string         `json:"email"`
	Role   directory.Role `json:"role"`
}

func NewAuthService(users AuthDirectory, signer TokenSigner) *AuthService {
	return &AuthService{
		users:     users,
		signToken: signer,
		tokenTTL:  12 * time.Hour,
	}
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, NewInvalidError("email required")
	}
	u := s.users.ByEmail(email)
	if u == nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if len(u.PassHash) > 0 {
		if err := bcrypt.CompareHashAndPassword(u.PassHash, []byte(password)); err != nil {
			return nil, NewUnauthorizedError("invalid credentials")
		}
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(u.ID, u.Email, u.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}, nil
}

func (s *AuthService) TokenTTL() time.Duration { return s.tokenTTL }
