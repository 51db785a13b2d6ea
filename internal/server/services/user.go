// Package services contains server-side business logic: account
// registration and login, prescription uploads and medical history.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/prontuario/internal/common"
	"github.com/dmitrijs2005/prontuario/internal/server/auth"
	"github.com/dmitrijs2005/prontuario/internal/server/models"
	"github.com/dmitrijs2005/prontuario/internal/server/repositories/repomanager"
)

// PasswordHasher hashes and checks account secrets.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) bool
}

// TokenIssuer mints bearer tokens for authenticated accounts.
type TokenIssuer interface {
	Issue(c auth.Claims) (string, error)
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name      string
	CPF       string
	Password  string
	BirthDate models.Date
	Gender    string
	Email     string
	Phone     string
	Address   string
}

// UserService provides authentication-related operations:
// - Register: create accounts with a hashed secret
// - Login: verify credentials and mint an access token
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	tokens      TokenIssuer

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService constructs a UserService.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, tokens TokenIssuer) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
	}
}

// Register creates a new account. An already registered CPF yields
// common.ErrorAlreadyExists; a missing field or an over-long secret yields
// common.ErrorValidation.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	user := &models.User{
		CPF:          in.CPF,
		PasswordHash: hash,
		Name:         in.Name,
		BirthDate:    in.BirthDate,
		Gender:       in.Gender,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: error creating user: %v", common.ErrorInternal, err)
	}
	return u, nil
}

// Login verifies the CPF/secret pair and returns a signed access token.
// Unknown CPF and wrong secret both yield common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, cpf, password string) (string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByCPF(ctx, cpf)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// keep response time close to the wrong-secret path
			s.hasher.Verify(password, s.fallbackHash())
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("%w: error loading user: %v", common.ErrorInternal, err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", common.ErrorUnauthorized
	}

	token, err := s.tokens.Issue(auth.Claims{UserID: user.ID, CPF: user.CPF})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return token, nil
}

func (s *UserService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("prontuario-unknown-account")
	})
	return s.dummyHash
}

func (in RegisterInput) validate() error {
	required := map[string]string{
		"nome":     in.Name,
		"cpf":      in.CPF,
		"senha":    in.Password,
		"genero":   in.Gender,
		"email":    in.Email,
		"telefone": in.Phone,
		"endereco": in.Address,
	}
	var missing []string
	for _, field := range []string{"nome", "cpf", "senha", "genero", "email", "telefone", "endereco"} {
		if strings.TrimSpace(required[field]) == "" {
			missing = append(missing, field)
		}
	}
	if in.BirthDate.IsZero() {
		missing = append(missing, "dataNascimento")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", common.ErrorValidation, strings.Join(missing, ", "))
	}
	return nil
}
