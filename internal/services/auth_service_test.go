package services

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Praveen5612/skill-survey-bot/internal/directory"
)

func staticSigner(uid, email string, role directory.Role, _ time.Duration) (string, error) {
	return "tok:" + uid, nil
}

func TestLoginWithoutPasswordHash(t *testing.T) {
	svc := NewAuthService(testDirectory(), staticSigner)

	res, err := svc.Login("asha@example.com", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token != "tok:u1" || res.UserID != "u1" || res.Role != directory.RoleUser {
		t.Fatalf("result = %+v", res)
	}
}

func TestLoginVerifiesPasswordHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	users := testDirectory()
	users["a1"].PassHash = hash
	svc := NewAuthService(users, staticSigner)

	if _, err := svc.Login("root@example.com", "wrong"); err == nil {
		t.Fatal("expected rejection for wrong password")
	}
	res, err := svc.Login("root@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Role != directory.RoleAdmin {
		t.Fatalf("role = %q", res.Role)
	}
}

func TestLoginRejections(t *testing.T) {
	svc := NewAuthService(testDirectory(), staticSigner)

	if _, err := svc.Login("", "x"); err == nil {
		t.Fatal("expected error for empty email")
	}
	_, err := svc.Login("stranger@example.com", "x")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
