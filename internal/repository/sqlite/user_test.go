package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/task-manager/internal/domain"
	"github.com/msomdec/task-manager/internal/repository/sqlite"
)

func createTestUser(t *testing.T, db *sqlite.DB, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:        email,
		PasswordHash: "hashedpw",
		FirstName:    "Test",
		LastName:     "User",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create user %s: %v", email, err)
	}
	return user
}

func TestUserRepository_Create(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "test@example.com")

	if user.ID == 0 {
		t.Fatal("expected user ID to be set after create")
	}
	if user.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	first := createTestUser(t, db, "dup@example.com")

	second := &domain.User{
		Email:        "dup@example.com",
		PasswordHash: "hash2",
		FirstName:    "Other",
	}
	err := repo.Create(ctx, second)
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	// The original row must be untouched.
	found, err := repo.GetByEmail(ctx, "dup@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if found.ID != first.ID || found.PasswordHash != "hashedpw" {
		t.Fatalf("original user was overwritten: %+v", found)
	}
}

func TestUserRepository_EmailIsCaseSensitive(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "case@example.com")

	_, err := db.Users().GetByEmail(context.Background(), "CASE@example.com")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for differently cased email, got %v", err)
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "byid@example.com")

	found, err := db.Users().GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Email != user.Email {
		t.Fatalf("expected email %q, got %q", user.Email, found.Email)
	}
	if found.FirstName != "Test" || found.LastName != "User" {
		t.Fatalf("unexpected name %q %q", found.FirstName, found.LastName)
	}
	if !found.CreatedAt.Equal(user.CreatedAt) {
		t.Fatalf("expected CreatedAt %v, got %v", user.CreatedAt, found.CreatedAt)
	}
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByID(context.Background(), 99999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByEmail(context.Background(), "nonexistent@example.com")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
