package auth

import (
	"context"
	"path/filepath"
	"testing"

	"talento/internal/apperr"
	"talento/internal/model"
	"talento/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccounts(t *testing.T) (*Accounts, *storage.Store) {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewAccounts(store, newTestService(t)), store
}

func TestRegisterValidatesAndNormalizes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	accounts, _ := newAccounts(t)

	u, err := accounts.Register(ctx, RegisterInput{Name: " Saraa ", Email: " Saraa@X.com ", Password: "secret1"}, model.RoleJobSeeker)
	require.NoError(t, err)
	assert.Equal(t, "Saraa", u.Name)
	assert.Equal(t, "saraa@x.com", u.Email)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	_, err = accounts.Register(ctx, RegisterInput{Name: "Other", Email: "saraa@x.com", Password: "secret1"}, model.RoleJobSeeker)
	require.Error(t, err)
	assert.Equal(t, msgEmailTaken, apperr.Message(err, ""))

	_, err = accounts.Register(ctx, RegisterInput{Name: "Other", Email: "o@x.com", Password: "12345"}, model.RoleJobSeeker)
	assert.Equal(t, msgShortPassword, apperr.Message(err, ""))

	_, err = accounts.Register(ctx, RegisterInput{Email: "o@x.com", Password: "123456"}, model.RoleJobSeeker)
	assert.Equal(t, msgRegisterFields, apperr.Message(err, ""))

	_, err = accounts.Register(ctx, RegisterInput{Name: "   ", Email: "o@x.com", Password: "123456"}, model.RoleJobSeeker)
	assert.Equal(t, msgRegisterFields, apperr.Message(err, ""), "blank name is rejected after trimming")
}

func TestRegisterEmployerRollsBackCompany(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	accounts, store := newAccounts(t)

	in := EmployerInput{
		RegisterInput: RegisterInput{Name: "Boss", Email: " Boss@X.com", Password: "secret1"},
		CompanyName:   "Acme",
	}
	u, err := accounts.RegisterEmployer(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, u.CompanyID)
	assert.Equal(t, "boss@x.com", u.Email)
	assert.Equal(t, model.RoleEmployer, u.Role)

	in.CompanyName = "Acme Two"
	_, err = accounts.RegisterEmployer(ctx, in)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	n, err := store.CountCompanies(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "company insert must roll back with the user")
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	accounts, _ := newAccounts(t)

	_, err := accounts.Register(ctx, RegisterInput{Name: "Root", Email: "root@x.com", Password: "secret1"}, model.RoleAdmin)
	require.NoError(t, err)

	tok, err := accounts.Login(ctx, LoginInput{Email: " ROOT@x.com ", Password: "secret1"})
	require.NoError(t, err)
	claims, err := accounts.auth.Parse(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	_, err = accounts.Login(ctx, LoginInput{Email: "root@x.com", Password: "nope"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	_, err = accounts.Login(ctx, LoginInput{Email: "ghost@x.com", Password: "secret1"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	accounts, _ := newAccounts(t)

	u, err := accounts.Register(ctx, RegisterInput{Name: "Saraa", Email: "saraa@x.com", Password: "secret1", PhoneNumber: "99119911"}, model.RoleJobSeeker)
	require.NoError(t, err)

	name := " Saraa Bold "
	link := "https://facebook.com/saraa"
	got, err := accounts.UpdateProfile(ctx, u.ID, ProfileInput{Name: &name, FacebookURL: &link})
	require.NoError(t, err)
	assert.Equal(t, "Saraa Bold", got.Name)
	assert.Equal(t, link, got.FacebookURL)
	assert.Equal(t, "99119911", got.PhoneNumber, "omitted fields stay unchanged")

	blank := "  "
	_, err = accounts.UpdateProfile(ctx, u.ID, ProfileInput{Name: &blank})
	assert.Equal(t, msgEmptyName, apperr.Message(err, ""))

	bad := "not a link"
	_, err = accounts.UpdateProfile(ctx, u.ID, ProfileInput{FacebookURL: &bad})
	assert.Equal(t, msgBadFacebook, apperr.Message(err, ""))

	_, err = accounts.UpdateProfile(ctx, u.ID, ProfileInput{})
	assert.Equal(t, msgNoProfileField, apperr.Message(err, ""))

	empty := ""
	got, err = accounts.UpdateProfile(ctx, u.ID, ProfileInput{FacebookURL: &empty})
	require.NoError(t, err)
	assert.Empty(t, got.FacebookURL)

	_, err = accounts.UpdateProfile(ctx, "missing", ProfileInput{Name: &name})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
