package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"woolcrafts-backend/cache"
	"woolcrafts-backend/events"
	"woolcrafts-backend/models"
	"woolcrafts-backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 6
	resetTokenTTL     = time.Hour

	msgInvalidLogin      = "Invalid email or password"
	msgInvalidAdminLogin = "Invalid admin credentials"
	msgInvalidReset      = "Invalid or expired reset token"
)

// dummyPasswordHash is compared against when no account matches, so a miss
// costs the same bcrypt work as a wrong password.
var dummyPasswordHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("woolcrafts-no-such-account"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy password hash: %v", err))
	}
	return hash
})

type AccountService struct {
	db      *gorm.DB
	cache   cache.Cache
	events  events.Publisher
	valid   *validator.Validate
	now     func() time.Time
	compare func(hash, password []byte) error
}

func NewAccountService(db *gorm.DB, c cache.Cache, pub events.Publisher) *AccountService {
	return &AccountService{
		db:      db,
		cache:   c,
		events:  pub,
		valid:   validator.New(),
		now:     time.Now,
		compare: bcrypt.CompareHashAndPassword,
	}
}

type SignupInput struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type AddressInput struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

type ProfileInput struct {
	FullName string          `json:"fullName"`
	Phone    string          `json:"phone"`
	Address  *[]AddressInput `json:"address"`
}

type ResetPasswordInput struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Session is an issued credential and the account it belongs to.
type Session struct {
	Token string
	User  *models.User
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AccountService) checkPassword(password, confirm string) error {
	if password != confirm {
		return newError(InvalidInput, "Passwords do not match")
	}
	if len(password) < minPasswordLength {
		return newError(InvalidInput, "Password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	phone := strings.TrimSpace(in.Phone)

	if fullName == "" || email == "" || phone == "" || in.Password == "" || in.ConfirmPassword == "" {
		return nil, newError(InvalidInput, "All fields are required")
	}
	if err := s.checkPassword(in.Password, in.ConfirmPassword); err != nil {
		return nil, err
	}
	if err := s.valid.Var(email, "email"); err != nil {
		return nil, newError(InvalidInput, "Invalid email format")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, newError(Conflict, "Email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		FullName:  fullName,
		Email:     email,
		Phone:     phone,
		Password:  string(hashed),
		Role:      models.RoleUser,
		Addresses: []models.Address{},
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, newError(Conflict, "Email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := utils.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, User: &user}, nil
}

// Login never reveals whether the email exists.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	return s.login(ctx, email, password, false)
}

func (s *AccountService) AdminLogin(ctx context.Context, email, password string) (*Session, error) {
	return s.login(ctx, email, password, true)
}

func (s *AccountService) login(ctx context.Context, email, password string, adminOnly bool) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, newError(InvalidInput, "Email and password are required")
	}

	failure := newError(Unauthorized, msgInvalidLogin)
	if adminOnly {
		failure = newError(Unauthorized, msgInvalidAdminLogin)
	}

	q := s.db.WithContext(ctx).Preload("Addresses").Where("email = ?", email)
	if adminOnly {
		q = q.Where("role = ?", models.RoleAdmin)
	}
	var user models.User
	if err := q.First(&user).Error; err != nil {
		if isNotFound(err) {
			_ = s.compare(dummyPasswordHash(), []byte(password))
			return nil, failure
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := s.compare([]byte(user.Password), []byte(password)); err != nil {
		return nil, failure
	}

	now := s.now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	user.LastLogin = &now

	token, err := utils.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, User: &user}, nil
}

func revokedKey(jti string) string {
	return cache.Key("revoked", jti)
}

// Logout revokes the token until it would have expired anyway.
func (s *AccountService) Logout(ctx context.Context, claims *utils.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.RemainingValidity()
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.Set(ctx, revokedKey(claims.ID), []byte("1"), ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *AccountService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, ok, err := s.cache.Get(ctx, revokedKey(jti))
	return ok, err
}

func (s *AccountService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Addresses").First(&user, "id = ?", userID).Error; err != nil {
		if isNotFound(err) {
			return nil, newError(NotFound, "User not found")
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if user.Addresses == nil {
		user.Addresses = []models.Address{}
	}
	return &user, nil
}

// UpdateProfile changes only the fields that are present. A non-nil address list
// replaces the saved addresses.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*models.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if isNotFound(err) {
				return newError(NotFound, "User not found")
			}
			return err
		}

		updates := map[string]interface{}{}
		if v := strings.TrimSpace(in.FullName); v != "" {
			updates["full_name"] = v
		}
		if v := strings.TrimSpace(in.Phone); v != "" {
			updates["phone"] = v
		}
		if len(updates) > 0 {
			if err := tx.Model(&user).Updates(updates).Error; err != nil {
				return err
			}
		}

		if in.Address != nil {
			if err := tx.Where("user_id = ?", userID).Delete(&models.Address{}).Error; err != nil {
				return err
			}
			for _, a := range *in.Address {
				addr := models.Address{
					UserID:  userID,
					Street:  a.Street,
					City:    a.City,
					State:   a.State,
					Pincode: a.Pincode,
					Country: a.Country,
				}
				if err := tx.Create(&addr).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		if KindOf(err) != ServerError {
			return nil, err
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetProfile(ctx, userID)
}

func (s *AccountService) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Preload("Addresses").Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RequestPasswordReset stores a one-time token for a known email and hands the raw
// token to the mail collaborator through an event. Unknown emails are a silent no-op.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return newError(InvalidInput, "Email is required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	record := models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashResetToken(token),
		ExpiresAt: s.now().UTC().Add(resetTokenTTL),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	ev := events.New(events.UserPasswordResetRequested, user.ID.String(), map[string]interface{}{
		"userId":    user.ID,
		"email":     user.Email,
		"fullName":  user.FullName,
		"token":     token,
		"expiresAt": record.ExpiresAt,
	})
	publishEvent(ctx, s.events, ev)
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if strings.TrimSpace(in.Token) == "" || in.Password == "" || in.ConfirmPassword == "" {
		return newError(InvalidInput, "All fields are required")
	}
	if err := s.checkPassword(in.Password, in.ConfirmPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.PasswordResetToken
		err := tx.Where("token_hash = ? AND used_at IS NULL AND expires_at > ?", hashResetToken(in.Token), now).
			First(&record).Error
		if err != nil {
			if isNotFound(err) {
				return newError(InvalidInput, msgInvalidReset)
			}
			return err
		}

		res := tx.Model(&models.PasswordResetToken{}).
			Where("id = ? AND used_at IS NULL", record.ID).
			Update("used_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return newError(InvalidInput, msgInvalidReset)
		}

		res = tx.Model(&models.User{}).Where("id = ?", record.UserID).Update("password", string(hashed))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return newError(InvalidInput, msgInvalidReset)
		}
		return nil
	})
	if err != nil {
		if KindOf(err) != ServerError {
			return err
		}
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}
