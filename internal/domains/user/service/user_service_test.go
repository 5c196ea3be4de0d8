package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"foodgram-backend/internal/domains/user"
	"foodgram-backend/pkg/jwt"
)

// ========================================
// FAKES
// ========================================

type fakeRepo struct {
	users map[int64]*user.User
	next  int64
	// follows[viewer][author]
	follows map[int64]map[int64]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[int64]*user.User{}, follows: map[int64]map[int64]bool{}}
}

func (r *fakeRepo) Create(_ context.Context, u *user.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return user.ErrEmailAlreadyExists
		}
		if existing.Username == u.Username {
			return user.ErrUsernameAlreadyExists
		}
	}
	r.next++
	u.ID = r.next
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeRepo) GetProfile(ctx context.Context, viewerID, id int64) (*user.Profile, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &user.Profile{User: *u, IsSubscribed: r.follows[viewerID][id]}, nil
}

func (r *fakeRepo) List(ctx context.Context, viewerID int64, limit, offset int) ([]user.Profile, int, error) {
	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []user.Profile
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		p, _ := r.GetProfile(ctx, viewerID, ids[i])
		out = append(out, *p)
	}
	return out, len(ids), nil
}

func (r *fakeRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *fakeRepo) SetAvatar(_ context.Context, id int64, key string) (string, error) {
	u, ok := r.users[id]
	if !ok {
		return "", user.ErrUserNotFound
	}
	prev := u.Avatar
	u.Avatar = key
	return prev, nil
}

type fakeImages struct {
	objects   map[string][]byte
	seq       int
	removeErr error
	decodeErr error
}

func newFakeImages() *fakeImages { return &fakeImages{objects: map[string][]byte{}} }

func (f *fakeImages) Decode(payload string) ([]byte, error) {
	if f.decodeErr != nil {
		return nil, f.decodeErr
	}
	return []byte(payload), nil
}

func (f *fakeImages) Put(_ context.Context, folder string, data []byte) (string, error) {
	f.seq++
	key := fmt.Sprintf("%s/%d.jpg", folder, f.seq)
	f.objects[key] = data
	return key, nil
}

func (f *fakeImages) Remove(_ context.Context, key string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeImages) URL(key string) string { return "http://media.test/" + key }

type fakeRevoker struct {
	revoked []string
	err     error
}

func (f *fakeRevoker) Revoke(_ context.Context, claims *jwt.Claims) error {
	if f.err != nil {
		return f.err
	}
	f.revoked = append(f.revoked, claims.ID)
	return nil
}

type fixture struct {
	svc     user.Service
	repo    *fakeRepo
	images  *fakeImages
	revoker *fakeRevoker
	jwt     *jwt.Manager
}

func newFixture() *fixture {
	f := &fixture{
		repo:    newFakeRepo(),
		images:  newFakeImages(),
		revoker: &fakeRevoker{},
		jwt:     jwt.NewManager("test-secret", time.Hour),
	}
	f.svc = NewUserService(f.repo, f.jwt, f.revoker, f.images, WithBcryptCost(bcrypt.MinCost))
	return f
}

func validRegistration() user.RegisterRequest {
	return user.RegisterRequest{
		Email:     "cook@example.com",
		Username:  "cook",
		FirstName: "Ivan",
		LastName:  "Petrov",
		Password:  "s3cret-pass",
	}
}

func (f *fixture) register(t *testing.T, req user.RegisterRequest) *user.UserDTO {
	t.Helper()
	dto, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)
	return dto
}

// ========================================
// TESTS
// ========================================

func TestRegister(t *testing.T) {
	f := newFixture()
	req := validRegistration()
	req.Email = "  cook@example.com "

	dto := f.register(t, req)
	assert.Equal(t, int64(1), dto.ID)
	assert.Equal(t, "cook@example.com", dto.Email)

	stored := f.repo.users[dto.ID]
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))

	_, err := f.svc.Register(context.Background(), validRegistration())
	assert.ErrorIs(t, err, user.ErrEmailAlreadyExists)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name  string
		edit  func(*user.RegisterRequest)
		field string
	}{
		{"missing email", func(r *user.RegisterRequest) { r.Email = "" }, "email"},
		{"bad email", func(r *user.RegisterRequest) { r.Email = "not-an-email" }, "email"},
		{"bad username", func(r *user.RegisterRequest) { r.Username = "has space" }, "username"},
		{"short password", func(r *user.RegisterRequest) { r.Password = "short" }, "password"},
		{"missing last name", func(r *user.RegisterRequest) { r.LastName = " " }, "last_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegistration()
			tt.edit(&req)

			_, err := f.svc.Register(context.Background(), req)
			var fieldErrs validation.Errors
			require.ErrorAs(t, err, &fieldErrs)
			assert.Contains(t, fieldErrs, tt.field)
		})
	}
	assert.Empty(t, f.repo.users)
}

func TestLogin(t *testing.T) {
	f := newFixture()
	dto := f.register(t, validRegistration())

	token, err := f.svc.Login(context.Background(), user.LoginRequest{Email: "cook@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	claims, err := f.jwt.ValidateAccessToken(token.AuthToken)
	require.NoError(t, err)
	assert.Equal(t, dto.ID, claims.UserID)

	_, err = f.svc.Login(context.Background(), user.LoginRequest{Email: "cook@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), user.LoginRequest{Email: "nobody@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestLogout(t *testing.T) {
	f := newFixture()
	claims := &jwt.Claims{UserID: 1}
	claims.ID = "token-1"

	require.NoError(t, f.svc.Logout(context.Background(), claims))
	assert.Equal(t, []string{"token-1"}, f.revoker.revoked)

	f.revoker.err = errors.New("redis down")
	assert.Error(t, f.svc.Logout(context.Background(), claims))
}

func TestProfiles(t *testing.T) {
	f := newFixture()
	a := f.register(t, validRegistration())
	other := validRegistration()
	other.Email, other.Username = "chef@example.com", "chef"
	b := f.register(t, other)

	f.repo.follows[a.ID] = map[int64]bool{b.ID: true}

	p, err := f.svc.GetProfile(context.Background(), a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, p.IsSubscribed)
	assert.Nil(t, p.Avatar)

	p, err = f.svc.GetProfile(context.Background(), 0, b.ID)
	require.NoError(t, err)
	assert.False(t, p.IsSubscribed)

	_, err = f.svc.GetProfile(context.Background(), 0, 99)
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	page, total, err := f.svc.ListUsers(context.Background(), a.ID, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, "chef", page[0].Username)
	assert.True(t, page[0].IsSubscribed)
}

func TestSetPassword(t *testing.T) {
	f := newFixture()
	dto := f.register(t, validRegistration())
	ctx := context.Background()

	err := f.svc.SetPassword(ctx, dto.ID, user.SetPasswordRequest{CurrentPassword: "nope-nope", NewPassword: "new-password"})
	assert.ErrorIs(t, err, user.ErrWrongPassword)

	err = f.svc.SetPassword(ctx, dto.ID, user.SetPasswordRequest{CurrentPassword: "s3cret-pass", NewPassword: "short"})
	var fieldErrs validation.Errors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "new_password")

	require.NoError(t, f.svc.SetPassword(ctx, dto.ID, user.SetPasswordRequest{CurrentPassword: "s3cret-pass", NewPassword: "new-password"}))

	_, err = f.svc.Login(ctx, user.LoginRequest{Email: "cook@example.com", Password: "new-password"})
	assert.NoError(t, err)
}

func TestAvatarLifecycle(t *testing.T) {
	f := newFixture()
	dto := f.register(t, validRegistration())
	ctx := context.Background()

	got, err := f.svc.GetAvatar(ctx, dto.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Avatar)

	assert.ErrorIs(t, f.svc.DeleteAvatar(ctx, dto.ID), user.ErrAvatarNotSet)

	first, err := f.svc.SetAvatar(ctx, dto.ID, user.AvatarRequest{Avatar: "img-1"})
	require.NoError(t, err)
	require.NotNil(t, first.Avatar)
	assert.Equal(t, "http://media.test/users/avatars/1.jpg", *first.Avatar)

	// replacing drops the previous object
	_, err = f.svc.SetAvatar(ctx, dto.ID, user.AvatarRequest{Avatar: "img-2"})
	require.NoError(t, err)
	assert.NotContains(t, f.images.objects, "users/avatars/1.jpg")
	assert.Contains(t, f.images.objects, "users/avatars/2.jpg")

	require.NoError(t, f.svc.DeleteAvatar(ctx, dto.ID))
	assert.Empty(t, f.images.objects)
	assert.Empty(t, f.repo.users[dto.ID].Avatar)
}

func TestSetAvatar_Errors(t *testing.T) {
	f := newFixture()
	dto := f.register(t, validRegistration())
	ctx := context.Background()

	_, err := f.svc.SetAvatar(ctx, dto.ID, user.AvatarRequest{})
	var fieldErrs validation.Errors
	require.ErrorAs(t, err, &fieldErrs)

	f.images.decodeErr = errors.New("not an image")
	_, err = f.svc.SetAvatar(ctx, dto.ID, user.AvatarRequest{Avatar: "garbage"})
	assert.ErrorIs(t, err, user.ErrInvalidAvatar)
	assert.Empty(t, f.images.objects)

	// a failed cleanup is logged, never surfaced
	f.images.decodeErr = nil
	_, err = f.svc.SetAvatar(ctx, dto.ID, user.AvatarRequest{Avatar: "one"})
	require.NoError(t, err)
	f.images.removeErr = errors.New("bucket gone")
	_, err = f.svc.SetAvatar(ctx, dto.ID, user.AvatarRequest{Avatar: "two"})
	assert.NoError(t, err)

	// unknown user: the uploaded object is removed again
	f.images.removeErr = nil
	before := len(f.images.objects)
	_, err = f.svc.SetAvatar(ctx, 42, user.AvatarRequest{Avatar: "three"})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	assert.Len(t, f.images.objects, before)
}
