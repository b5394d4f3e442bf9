package auth

import (
	"context"
	"errors"
	"testing"

	domain "github.com/example/daily-planner/domain/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupAuthService creates a service over an in-memory SQLite database.
func setupAuthService(t *testing.T) *AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return NewAuthService(NewUserRepository(db), NewPasswordHasher(), NewJWTManager(testJWTConfig()))
}

func TestAuthService_Register(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	t.Run("creates account", func(t *testing.T) {
		user, err := svc.Register(ctx, "me@example.com", "password123")
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if user.ID == "" {
			t.Error("expected a generated user id")
		}
		if user.Email != "me@example.com" {
			t.Errorf("expected email %q, got %q", "me@example.com", user.Email)
		}
		if user.PasswordHash == "password123" || user.PasswordHash == "" {
			t.Error("password must be stored hashed")
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "me@example.com", "password456")
		if !errors.Is(err, ErrUserExists) {
			t.Errorf("expected ErrUserExists, got %v", err)
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := svc.Register(ctx, "not-an-email", "password123")
		if !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("expected ErrInvalidEmail, got %v", err)
		}
	})

	t.Run("short password", func(t *testing.T) {
		_, err := svc.Register(ctx, "short@example.com", "1234567")
		if !errors.Is(err, ErrWeakPassword) {
			t.Errorf("expected ErrWeakPassword, got %v", err)
		}
	})

	t.Run("password over bcrypt limit", func(t *testing.T) {
		long := make([]byte, 73)
		for i := range long {
			long[i] = 'a'
		}
		_, err := svc.Register(ctx, "long@example.com", string(long))
		if !errors.Is(err, ErrPasswordTooLong) {
			t.Errorf("expected ErrPasswordTooLong, got %v", err)
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "me@example.com", "password123"); err != nil {
		t.Fatalf("seed register failed: %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		pair, err := svc.Login(ctx, "me@example.com", "password123")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if pair.AccessToken == "" || pair.RefreshToken == "" {
			t.Error("expected both tokens to be issued")
		}
		if pair.TokenType != "Bearer" {
			t.Errorf("expected token type Bearer, got %q", pair.TokenType)
		}

		claims, err := svc.ValidateToken(ctx, pair.AccessToken)
		if err != nil {
			t.Fatalf("ValidateToken() error = %v", err)
		}
		if claims.Email != "me@example.com" {
			t.Errorf("expected claims email %q, got %q", "me@example.com", claims.Email)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "me@example.com", "wrongpassword")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "password123")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_RefreshTokens(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "me@example.com", "password123"); err != nil {
		t.Fatalf("seed register failed: %v", err)
	}
	pair, err := svc.Login(ctx, "me@example.com", "password123")
	if err != nil {
		t.Fatalf("seed login failed: %v", err)
	}

	t.Run("valid refresh token", func(t *testing.T) {
		fresh, err := svc.RefreshTokens(ctx, pair.RefreshToken)
		if err != nil {
			t.Fatalf("RefreshTokens() error = %v", err)
		}
		if fresh.AccessToken == "" {
			t.Error("expected a new access token")
		}
	})

	t.Run("access token rejected", func(t *testing.T) {
		if _, err := svc.RefreshTokens(ctx, pair.AccessToken); err == nil {
			t.Error("RefreshTokens() should reject an access token")
		}
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		if _, err := svc.RefreshTokens(ctx, "garbage"); err == nil {
			t.Error("RefreshTokens() should reject a malformed token")
		}
	})
}

func TestAuthService_GetUser(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, "me@example.com", "password123")
	if err != nil {
		t.Fatalf("seed register failed: %v", err)
	}

	user, err := svc.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user.Email != "me@example.com" {
		t.Errorf("expected email %q, got %q", "me@example.com", user.Email)
	}

	_, err = svc.GetUser(ctx, "missing-id")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
