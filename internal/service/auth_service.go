package service

import (
	"context"
	"strings"

	"bizrwanda/internal/identity"
	"bizrwanda/internal/models"
	"bizrwanda/internal/repository"
	"bizrwanda/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// AuthService manages accounts: local registration and login, and users
// arriving through Firebase or an OAuth provider. Token issuance stays
// with the HTTP layer.
type AuthService struct {
	users repository.UserRepository
	cost  int
}

// RegisterInput is a local sign-up.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     string
}

func NewAuthService(users repository.UserRepository) *AuthService {
	return &AuthService{users: users, cost: bcrypt.DefaultCost}
}

// WithHashCost lowers the bcrypt cost; tests use bcrypt.MinCost.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.cost = cost
	return s
}

// signupRole resolves the role a new account may choose. Admin is never
// self-assigned.
func signupRole(raw string) (models.Role, error) {
	role := models.Role(strings.ToLower(strings.TrimSpace(raw)))
	switch role {
	case "":
		return models.RoleJobSeeker, nil
	case models.RoleJobSeeker, models.RoleEmployer:
		return role, nil
	}
	return "", models.NewFieldValidationError(map[string]string{
		"role": "must be one of: job_seeker, employer",
	})
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := validation.NormalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)

	fields := map[string]string{}
	if err := validation.ValidateEmail(email); err != nil {
		fields["email"] = err.Error()
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		fields["password"] = err.Error()
	}
	if err := validation.ValidateFullName(fullName); err != nil {
		fields["fullName"] = err.Error()
	}
	role, err := signupRole(in.Role)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:        email,
		FullName:     fullName,
		Role:         role,
		Password:     string(hash),
		AuthProvider: models.AuthProviderLocal,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks local credentials. Unknown emails and wrong passwords get the
// same answer.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, err
	}
	if user.Password == "" {
		return nil, models.NewUnauthorizedError("This account uses social sign-in")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// SyncFirebase returns the account bound to a verified Firebase identity,
// linking an existing account with the same email or creating one with
// the requested role.
func (s *AuthService) SyncFirebase(ctx context.Context, id *identity.Identity, role string) (*models.User, error) {
	if id == nil || id.Subject == "" {
		return nil, models.NewUnauthorizedError("Invalid Firebase token")
	}

	user, err := s.users.GetByFirebaseUID(ctx, id.Subject)
	if err == nil {
		return user, nil
	}
	if !models.IsNotFound(err) {
		return nil, err
	}

	if id.Email == "" {
		return nil, models.NewValidationError("Firebase account has no email address")
	}
	uid := id.Subject

	user, err = s.users.GetByEmail(ctx, id.Email)
	switch {
	case err == nil:
		user.FirebaseUID = &uid
		if user.FullName == "" {
			user.FullName = id.Name
		}
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	case !models.IsNotFound(err):
		return nil, err
	}

	r, err := signupRole(role)
	if err != nil {
		return nil, err
	}
	user = &models.User{
		Email:        id.Email,
		FullName:     id.Name,
		Role:         r,
		FirebaseUID:  &uid,
		AuthProvider: models.AuthProviderFirebase,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpsertOAuthUser returns the account for an OAuth identity, creating a job
// seeker account on first sign-in.
func (s *AuthService) UpsertOAuthUser(ctx context.Context, id *identity.Identity) (*models.User, error) {
	if id == nil || id.Email == "" {
		return nil, models.NewUnauthorizedError("Provider did not return an email address")
	}

	user, err := s.users.GetByEmail(ctx, id.Email)
	if err == nil {
		return user, nil
	}
	if !models.IsNotFound(err) {
		return nil, err
	}

	user = &models.User{
		Email:        id.Email,
		FullName:     id.Name,
		Role:         models.RoleJobSeeker,
		AuthProvider: id.Provider,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// EnsureAdmin makes sure an admin account exists for email. A new account
// gets password; an existing one is promoted and keeps its credentials.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*models.User, bool, error) {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, false, models.NewValidationError(err.Error())
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.Role == models.RoleAdmin {
			return user, false, nil
		}
		if err := s.users.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
			return nil, false, err
		}
		user.Role = models.RoleAdmin
		return user, false, nil
	case !models.IsNotFound(err):
		return nil, false, err
	}

	if err := validation.ValidatePassword(password); err != nil {
		return nil, false, models.NewValidationError(err.Error())
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, false, models.NewInternalError(err)
	}
	user = &models.User{
		Email:        email,
		FullName:     "Platform Admin",
		Role:         models.RoleAdmin,
		Password:     string(hash),
		AuthProvider: models.AuthProviderLocal,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
