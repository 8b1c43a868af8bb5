package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/pkg/store"
)

type Users struct {
	db    *gorm.DB
	users *store.Store[model.User, *model.User]
	cost  int
	now   func() time.Time
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{
		db:    db,
		users: store.New[model.User](db),
		cost:  bcrypt.DefaultCost,
		now:   time.Now,
	}
}

// WithCost returns a copy hashing with the given bcrypt cost.
func (s *Users) WithCost(cost int) *Users {
	c := *s
	c.cost = cost
	return &c
}

func (s *Users) hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(b), nil
}

// digest shortens tokens below the bcrypt input limit.
func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByEmail looks a live user up across organizations. It is the only
// read that runs before a tenant is known.
func (s *Users) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).
		Where(clause.Eq{Column: "email", Value: normalizeEmail(email)}).
		Where(clause.Eq{Column: "deleted_at", Value: nil}).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

func (s *Users) List(ctx context.Context, org uuid.UUID) ([]model.User, error) {
	return s.users.FindMany(ctx, org, store.Filter{}, store.OrderBy("first_name"), store.OrderBy("last_name"))
}

func (s *Users) Get(ctx context.Context, org, id uuid.UUID) (*model.User, error) {
	return s.users.FindByID(ctx, org, id)
}

// Create stores u with a bcrypt hash of password. Emails are unique across
// organizations, deleted users included.
func (s *Users) Create(ctx context.Context, org uuid.UUID, u *model.User, password string) error {
	u.Email = normalizeEmail(u.Email)
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where(clause.Eq{Column: "email", Value: u.Email}).Count(&n).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if n > 0 {
		return ErrEmailTaken
	}
	if password != "" {
		h, err := s.hash(password)
		if err != nil {
			return err
		}
		u.PasswordHash = &h
	}
	if u.Role == "" {
		u.Role = model.RoleProjectManager
	}
	u.IsActive = true
	return s.users.Create(ctx, org, u)
}

// Update applies patch. Email and stored hashes are not patchable; a
// non-empty password replaces the password hash.
func (s *Users) Update(ctx context.Context, org, id uuid.UUID, patch map[string]any, password string) (*model.User, error) {
	if patch == nil {
		patch = map[string]any{}
	}
	for _, column := range []string{"password_hash", "refresh_token_hash", "email"} {
		delete(patch, column)
	}
	if password != "" {
		h, err := s.hash(password)
		if err != nil {
			return nil, err
		}
		patch["password_hash"] = h
	}
	if _, err := s.users.FindByID(ctx, org, id, store.Select("id")); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, org, id, patch); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, org, id)
}

// Delete deactivates the user and soft deletes it.
func (s *Users) Delete(ctx context.Context, org, id uuid.UUID) error {
	if _, err := s.users.FindByID(ctx, org, id, store.Select("id")); err != nil {
		return err
	}
	if err := s.users.Update(ctx, org, id, map[string]any{"is_active": false}); err != nil {
		return err
	}
	return s.users.Delete(ctx, org, id)
}

// CheckPassword verifies the local password of an active user.
func (s *Users) CheckPassword(u *model.User, password string) error {
	if !u.IsActive || u.PasswordHash == nil {
		return ErrInvalidCredential
	}
	if bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)) != nil {
		return ErrInvalidCredential
	}
	return nil
}

// RecordLogin stores the hash of the issued refresh token and the login time.
func (s *Users) RecordLogin(ctx context.Context, u *model.User, refreshToken string) error {
	h, err := s.hash(digest(refreshToken))
	if err != nil {
		return err
	}
	return s.users.Update(ctx, u.OrganizationID, u.ID, map[string]any{
		"refresh_token_hash": h,
		"last_login_at":      s.now(),
	})
}

// CheckRefreshToken verifies token against the hash stored at the last login.
func (s *Users) CheckRefreshToken(ctx context.Context, org, id uuid.UUID, token string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, org, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive || u.RefreshTokenHash == nil {
		return nil, ErrInvalidCredential
	}
	if bcrypt.CompareHashAndPassword([]byte(*u.RefreshTokenHash), []byte(digest(token))) != nil {
		return nil, ErrInvalidCredential
	}
	return u, nil
}

// Logout drops the stored refresh token hash.
func (s *Users) Logout(ctx context.Context, org, id uuid.UUID) error {
	return s.users.Update(ctx, org, id, map[string]any{"refresh_token_hash": nil})
}
