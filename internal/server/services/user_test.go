package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/prontuario/internal/common"
	"github.com/dmitrijs2005/prontuario/internal/server/auth"
	"github.com/dmitrijs2005/prontuario/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingIssuer struct{}

func (failingIssuer) Issue(auth.Claims) (string, error) { return "", errors.New("sign failed") }

func newUserService(t *testing.T, rm *fakeRepoManager) (*UserService, *auth.PasswordHasher, *auth.TokenManager) {
	t.Helper()
	db, _ := newSQLMockDB(t)

	hasher, err := auth.NewPasswordHasher(auth.DefaultBcryptCost)
	require.NoError(t, err)
	tokens, err := auth.NewTokenManager("k", time.Hour)
	require.NoError(t, err)

	return NewUserService(db, rm, hasher, tokens), hasher, tokens
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Name:      "João",
		CPF:       "12345678900",
		Password:  "s3nh@",
		BirthDate: models.NewDate(time.Date(1980, 1, 2, 0, 0, 0, 0, time.UTC)),
		Gender:    "M",
		Email:     "joao@example.com",
		Phone:     "11988887777",
		Address:   "Av. Paulista, 1000",
	}
}

func TestRegister_StoresHashNotPlaintext(t *testing.T) {
	users := &fakeUsersRepo{}
	s, hasher, _ := newUserService(t, &fakeRepoManager{u: users})

	u, err := s.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)
	require.Len(t, users.created, 1)

	assert.Equal(t, int64(1), u.ID)
	assert.NotEqual(t, "s3nh@", u.PasswordHash)
	assert.True(t, hasher.Verify("s3nh@", u.PasswordHash))
	assert.Equal(t, "Av. Paulista, 1000", u.Address)
}

func TestRegister_MissingFields(t *testing.T) {
	s, _, _ := newUserService(t, &fakeRepoManager{u: &fakeUsersRepo{}})

	in := validRegisterInput()
	in.Name = "  "
	in.BirthDate = models.Date{}

	_, err := s.Register(context.Background(), in)
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Contains(t, err.Error(), "nome")
	assert.Contains(t, err.Error(), "dataNascimento")
}

func TestRegister_TooLongSecret(t *testing.T) {
	users := &fakeUsersRepo{}
	s, _, _ := newUserService(t, &fakeRepoManager{u: users})

	in := validRegisterInput()
	in.Password = strings.Repeat("x", 100)

	_, err := s.Register(context.Background(), in)
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Empty(t, users.created)
}

func TestRegister_DuplicateCPF(t *testing.T) {
	s, _, _ := newUserService(t, &fakeRepoManager{u: &fakeUsersRepo{createErr: common.ErrorAlreadyExists}})

	_, err := s.Register(context.Background(), validRegisterInput())
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestRegister_StorageError(t *testing.T) {
	s, _, _ := newUserService(t, &fakeRepoManager{u: &fakeUsersRepo{createErr: errors.New("db down")}})

	_, err := s.Register(context.Background(), validRegisterInput())
	require.ErrorIs(t, err, common.ErrorInternal)
	assert.Contains(t, err.Error(), "db down")
}

func TestLogin_Success(t *testing.T) {
	users := &fakeUsersRepo{}
	s, hasher, tokens := newUserService(t, &fakeRepoManager{u: users})

	hash, err := hasher.Hash("s3nh@")
	require.NoError(t, err)
	users.getOut = &models.User{ID: 9, CPF: "12345678900", PasswordHash: hash}

	tok, err := s.Login(context.Background(), "12345678900", "s3nh@")
	require.NoError(t, err)

	claims, err := tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claims.UserID)
	assert.Equal(t, "12345678900", claims.CPF)
}

func TestLogin_WrongPasswordAndUnknownCPFLookAlike(t *testing.T) {
	users := &fakeUsersRepo{}
	s, hasher, _ := newUserService(t, &fakeRepoManager{u: users})

	hash, err := hasher.Hash("right")
	require.NoError(t, err)
	users.getOut = &models.User{ID: 1, CPF: "1", PasswordHash: hash}

	_, wrongErr := s.Login(context.Background(), "1", "wrong")
	assert.ErrorIs(t, wrongErr, common.ErrorUnauthorized)

	users.getOut, users.getErr = nil, common.ErrorNotFound
	_, unknownErr := s.Login(context.Background(), "2", "right")
	assert.ErrorIs(t, unknownErr, common.ErrorUnauthorized)

	assert.Equal(t, wrongErr, unknownErr)
}

func TestLogin_StorageError(t *testing.T) {
	s, _, _ := newUserService(t, &fakeRepoManager{u: &fakeUsersRepo{getErr: errors.New("conn refused")}})

	_, err := s.Login(context.Background(), "1", "x")
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.NotErrorIs(t, err, common.ErrorUnauthorized)
}

func TestLogin_IssueError(t *testing.T) {
	users := &fakeUsersRepo{}
	db, _ := newSQLMockDB(t)
	hasher, err := auth.NewPasswordHasher(auth.DefaultBcryptCost)
	require.NoError(t, err)
	hash, err := hasher.Hash("p")
	require.NoError(t, err)
	users.getOut = &models.User{ID: 1, CPF: "1", PasswordHash: hash}

	s := NewUserService(db, &fakeRepoManager{u: users}, hasher, failingIssuer{})

	_, err = s.Login(context.Background(), "1", "p")
	assert.ErrorIs(t, err, common.ErrorInternal)
}
