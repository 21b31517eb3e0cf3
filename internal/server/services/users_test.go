package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/hfiles/backend/internal/common"
	"github.com/hfiles/backend/internal/server/models"
)

func newUserService(t *testing.T, repo *fakeUsersRepo, blobs *fakeBlobStore) (*UserService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserService(db, &fakeRepoManager{u: repo}, blobs, testLogger()), mock
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	repo := &fakeUsersRepo{}
	s, _ := newUserService(t, repo, &fakeBlobStore{})

	user, err := s.Register(context.Background(), "Jane Doe", "jane@example.com", "hunter22", nil, "Female", "")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("user id not assigned")
	}
	if user.Gender != "Female" {
		t.Fatalf("want gender Female, got %q", user.Gender)
	}
	if user.ProfileImageURL != models.DefaultProfileImageURL {
		t.Fatalf("want placeholder image, got %q", user.ProfileImageURL)
	}
	if user.Phone != nil {
		t.Fatalf("want nil phone, got %v", *user.Phone)
	}

	// The stored hash must verify against the original password and must not
	// be the password itself.
	if user.PasswordHash == "hunter22" {
		t.Fatal("password stored in clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestRegister_GenderDefaultsAndCanonicalizes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "Male"},
		{in: "male", want: "Male"},
		{in: "FEMALE", want: "Female"},
	}
	for _, tc := range tests {
		repo := &fakeUsersRepo{}
		s, _ := newUserService(t, repo, &fakeBlobStore{})

		user, err := s.Register(context.Background(), "Jane", "jane@example.com", "pw", nil, tc.in, "")
		if err != nil {
			t.Fatalf("Register(%q) error: %v", tc.in, err)
		}
		if user.Gender != tc.want {
			t.Fatalf("Register(%q): want gender %q, got %q", tc.in, tc.want, user.Gender)
		}
	}
}

func TestRegister_InvalidGender(t *testing.T) {
	s, _ := newUserService(t, &fakeUsersRepo{}, &fakeBlobStore{})

	_, err := s.Register(context.Background(), "Jane", "jane@example.com", "pw", nil, "other", "")
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want ErrorValidation, got %v", err)
	}
}

func TestRegister_MissingRequiredFields(t *testing.T) {
	s, _ := newUserService(t, &fakeUsersRepo{}, &fakeBlobStore{})

	for _, tc := range []struct{ name, email, pw string }{
		{"", "jane@example.com", "pw"},
		{"Jane", "", "pw"},
		{"Jane", "jane@example.com", ""},
	} {
		_, err := s.Register(context.Background(), tc.name, tc.email, tc.pw, nil, "", "")
		if !errors.Is(err, common.ErrorValidation) {
			t.Fatalf("Register(%q,%q,%q): want ErrorValidation, got %v", tc.name, tc.email, tc.pw, err)
		}
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &fakeUsersRepo{createErr: common.ErrorAlreadyExists}
	s, _ := newUserService(t, repo, &fakeBlobStore{})

	_, err := s.Register(context.Background(), "Jane", "jane@example.com", "pw", nil, "", "")
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}
}

// --- Login ---

func loginFixture(t *testing.T, password string) *fakeUsersRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	return &fakeUsersRepo{byEmail: map[string]*models.User{
		"jane@example.com": {ID: 7, Email: "jane@example.com", PasswordHash: string(hash)},
	}}
}

func TestLogin_Success(t *testing.T) {
	s, _ := newUserService(t, loginFixture(t, "hunter22"), &fakeBlobStore{})

	user, err := s.Login(context.Background(), "jane@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if user.ID != 7 {
		t.Fatalf("want user 7, got %d", user.ID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	s, _ := newUserService(t, loginFixture(t, "hunter22"), &fakeBlobStore{})

	_, err := s.Login(context.Background(), "jane@example.com", "wrong")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	// Indistinguishable from a wrong password.
	s, _ := newUserService(t, loginFixture(t, "hunter22"), &fakeBlobStore{})

	_, err := s.Login(context.Background(), "nobody@example.com", "hunter22")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
}

// --- UpdateProfile ---

func TestUpdateProfile_PartialUpdateInTx(t *testing.T) {
	phone := "+100"
	repo := &fakeUsersRepo{byID: map[int64]*models.User{
		7: {ID: 7, FullName: "Jane", Email: "jane@example.com", Phone: &phone, Gender: "Female", ProfileImageURL: "old"},
	}}
	s, mock := newUserService(t, repo, &fakeBlobStore{})

	mock.ExpectBegin()
	mock.ExpectCommit()

	user, err := s.UpdateProfile(context.Background(), 7, "Jane Q. Doe", "", "", "")
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}

	if user.FullName != "Jane Q. Doe" {
		t.Fatalf("full name not updated: %q", user.FullName)
	}
	// Untouched fields keep their values.
	if user.Phone == nil || *user.Phone != "+100" {
		t.Fatalf("phone must be unchanged, got %v", user.Phone)
	}
	if user.Gender != "Female" || user.ProfileImageURL != "old" {
		t.Fatalf("unexpected overwrite: %+v", user)
	}
	if len(repo.updated) != 1 {
		t.Fatalf("want one Update call, got %d", len(repo.updated))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("tx expectations: %v", err)
	}
}

func TestUpdateProfile_InvalidGenderIgnored(t *testing.T) {
	repo := &fakeUsersRepo{byID: map[int64]*models.User{
		7: {ID: 7, FullName: "Jane", Gender: "Female"},
	}}
	s, mock := newUserService(t, repo, &fakeBlobStore{})

	mock.ExpectBegin()
	mock.ExpectCommit()

	user, err := s.UpdateProfile(context.Background(), 7, "", "", "unicorn", "")
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if user.Gender != "Female" {
		t.Fatalf("invalid gender must be ignored, got %q", user.Gender)
	}
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	repo := &fakeUsersRepo{byID: map[int64]*models.User{}}
	s, mock := newUserService(t, repo, &fakeBlobStore{})

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.UpdateProfile(context.Background(), 99, "x", "", "", "")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("tx expectations: %v", err)
	}
}

// --- ReplaceProfileImage ---

func TestReplaceProfileImage_Success(t *testing.T) {
	repo := &fakeUsersRepo{byID: map[int64]*models.User{
		7: {ID: 7, ProfileImageURL: "blob://profiles/7_old.png"},
	}}
	blobs := &fakeBlobStore{}
	s, _ := newUserService(t, repo, blobs)

	locator, err := s.ReplaceProfileImage(context.Background(), 7, "avatar.JPG", strings.NewReader("pix"), "image/jpeg")
	if err != nil {
		t.Fatalf("ReplaceProfileImage error: %v", err)
	}

	key := blobs.putKeys[0]
	if !strings.HasPrefix(key, "profiles/7_") || !strings.HasSuffix(key, ".jpg") {
		t.Fatalf("unexpected key shape: %q", key)
	}
	if locator != "blob://"+key {
		t.Fatalf("locator %q does not match key %q", locator, key)
	}
	if len(repo.imageCalls) != 1 || repo.imageCalls[0] != "7:"+locator {
		t.Fatalf("unexpected UpdateProfileImage calls: %v", repo.imageCalls)
	}
	// The replaced image blob stays in the store.
	if len(blobs.deleted) != 0 {
		t.Fatalf("previous image must not be deleted, got %v", blobs.deleted)
	}
}

func TestReplaceProfileImage_RejectsNonImage(t *testing.T) {
	blobs := &fakeBlobStore{}
	s, _ := newUserService(t, &fakeUsersRepo{byID: map[int64]*models.User{7: {ID: 7}}}, blobs)

	_, err := s.ReplaceProfileImage(context.Background(), 7, "scan.pdf", strings.NewReader("x"), "application/pdf")
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want ErrorValidation, got %v", err)
	}
	if len(blobs.putKeys) != 0 {
		t.Fatal("no blob write expected on validation failure")
	}
}

func TestReplaceProfileImage_UnknownUser(t *testing.T) {
	blobs := &fakeBlobStore{}
	s, _ := newUserService(t, &fakeUsersRepo{byID: map[int64]*models.User{}}, blobs)

	_, err := s.ReplaceProfileImage(context.Background(), 99, "avatar.png", strings.NewReader("x"), "image/png")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
	if len(blobs.putKeys) != 0 {
		t.Fatal("no blob write expected for an unknown user")
	}
}
