package repository

import (
	"context"

	"bizrwanda/internal/cache"
	"bizrwanda/internal/models"
	"bizrwanda/internal/observability"

	"gorm.io/gorm"
)

const usersTable = "users"

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id uint, role models.Role) error
	List(ctx context.Context, role models.Role) ([]models.User, error)
	CountByRole(ctx context.Context) (map[string]int64, error)
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger(usersTable)}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (_ *models.User, err error) {
	ctx, done := instrument(ctx, "GetByID", usersTable)
	defer func() { done(err) }()

	var user models.User
	err = cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			return lookupError(err, "User", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (_ *models.User, err error) {
	ctx, done := instrument(ctx, "GetByEmail", usersTable)
	defer func() { done(err) }()

	var user models.User
	if err = r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, lookupError(err, "User", email)
	}
	return &user, nil
}

func (r *userRepository) GetByFirebaseUID(ctx context.Context, uid string) (_ *models.User, err error) {
	ctx, done := instrument(ctx, "GetByFirebaseUID", usersTable)
	defer func() { done(err) }()

	var user models.User
	if err = r.db.WithContext(ctx).Where("firebase_uid = ?", uid).First(&user).Error; err != nil {
		return nil, lookupError(err, "User", uid)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, done := instrument(ctx, "Create", usersTable)
	defer func() { done(err) }()

	if err = r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("An account with this email already exists")
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"id": user.ID, "role": user.Role})
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) (err error) {
	ctx, done := instrument(ctx, "Update", usersTable)
	defer func() { done(err) }()

	// Cached users carry no password hash, so Update never writes it.
	if err = r.db.WithContext(ctx).Omit("password").Save(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("An account with this email already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	r.log.LogUpdate(ctx, map[string]interface{}{"id": user.ID})
	return nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id uint, role models.Role) (err error) {
	ctx, done := instrument(ctx, "UpdateRole", usersTable)
	defer func() { done(err) }()

	res := r.db.WithContext(ctx).Model(&models.User{ID: id}).Update("role", role)
	if err = res.Error; err != nil {
		return models.NewInternalError(err)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	r.log.LogUpdate(ctx, map[string]interface{}{"id": id, "role": role})
	return nil
}

func (r *userRepository) List(ctx context.Context, role models.Role) (_ []models.User, err error) {
	ctx, done := instrument(ctx, "List", usersTable)
	defer func() { done(err) }()

	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var users []models.User
	if err = q.Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) CountByRole(ctx context.Context) (_ map[string]int64, err error) {
	ctx, done := instrument(ctx, "CountByRole", usersTable)
	defer func() { done(err) }()

	var rows []groupCount
	if err = r.db.WithContext(ctx).Model(&models.User{}).
		Select("role AS group_key, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.GroupKey] = row.Count
	}
	return out, nil
}
