package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/hfiles/backend/internal/common"
	"github.com/hfiles/backend/internal/dbx"
	"github.com/hfiles/backend/internal/logging"
	"github.com/hfiles/backend/internal/server/blobstore"
	"github.com/hfiles/backend/internal/server/models"
	"github.com/hfiles/backend/internal/server/repositories/repomanager"
)

// profilesNamespace prefixes every profile-image blob key.
const profilesNamespace = "profiles"

// UserService covers registration, credential checks and profile management.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		logger:      logger.With("module", "user_service"),
	}
}

// canonicalGender maps case-insensitive "male"/"female" to canonical casing.
// Any other value yields ok=false.
func canonicalGender(gender string) (string, bool) {
	switch strings.ToLower(gender) {
	case "male":
		return "Male", true
	case "female":
		return "Female", true
	default:
		return "", false
	}
}

// Register creates a new account. A duplicate email is reported as
// common.ErrorAlreadyExists. An empty gender defaults to "Male" (observed
// behavior of the original system); anything outside the two-value set is a
// validation error.
func (s *UserService) Register(ctx context.Context, fullName, email, password string, phone *string, gender, profileImageURL string) (*models.User, error) {

	if fullName == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: full name, email and password are required", common.ErrorValidation)
	}

	if gender == "" {
		gender = "Male"
	}
	canonical, ok := canonicalGender(gender)
	if !ok {
		return nil, fmt.Errorf("%w: gender must be 'Male' or 'Female'", common.ErrorValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if profileImageURL == "" {
		profileImageURL = models.DefaultProfileImageURL
	}

	user := &models.User{
		FullName:        fullName,
		Email:           email,
		Phone:           phone,
		PasswordHash:    string(hash),
		Gender:          canonical,
		ProfileImageURL: profileImageURL,
	}

	repo := s.repomanager.Users(s.db)

	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies the credentials and returns the user. Unknown email and
// wrong password are reported identically as ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

// GetProfile returns the account behind an authenticated session.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// UpdateProfile applies a partial update inside a transaction: empty fields
// keep their current value, and a gender outside the two-value set is
// silently ignored (observed behavior of the original system).
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, fullName, phone, gender, profileImageURL string) (*models.User, error) {

	var user *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		var err error
		user, err = repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if fullName != "" {
			user.FullName = fullName
		}
		if phone != "" {
			user.Phone = &phone
		}
		if canonical, ok := canonicalGender(gender); gender != "" && ok {
			user.Gender = canonical
		}
		if profileImageURL != "" {
			user.ProfileImageURL = profileImageURL
		}

		return repo.Update(ctx, user)
	})

	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	return user, nil
}

// ReplaceProfileImage uploads a new image under the profiles/ namespace and
// points the user row at it. No ledger row is written for profile images, and
// the previous image blob is not reclaimed.
func (s *UserService) ReplaceProfileImage(ctx context.Context, userID int64, origName string, body io.Reader, contentType string) (string, error) {

	ext := fileExt(origName)
	if !imageExtensions[ext] {
		return "", fmt.Errorf("%w: invalid file type", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", common.ErrorInternal
	}

	key := makeObjectKey(profilesNamespace, userID, ext)

	locator, err := s.blobs.Put(ctx, key, body, contentType)
	if err != nil {
		s.logger.Error(ctx, "profile image upload failed", "key", key, "error", err.Error())
		return "", fmt.Errorf("%w: blob upload failed", common.ErrorStorageUnavailable)
	}

	if err := repo.UpdateProfileImage(ctx, userID, locator); err != nil {
		s.logger.Error(ctx, "profile image update failed after blob upload, blob orphaned",
			"key", key, "error", err.Error())
		return "", fmt.Errorf("%w: profile update failed", common.ErrorStorageUnavailable)
	}

	return locator, nil
}
