package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/salesintel/sales-intelligence-api/internal/core/auth"
	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
	"github.com/salesintel/sales-intelligence-api/internal/core/ports"
	"github.com/salesintel/sales-intelligence-api/internal/mocks"
)

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	nextID  int
	findErr error
	saveErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = "00000000-0000-4000-8000-00000000000" + string(rune('0'+r.nextID))
	stored.CreatedAt = time.Now().UTC()
	r.users[stored.Email] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

// countingHasher records how many Verify calls were made.
type countingHasher struct {
	*auth.BcryptHasher
	mu       sync.Mutex
	verifies int
}

func (h *countingHasher) Verify(plaintext, hash string) bool {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return h.BcryptHasher.Verify(plaintext, hash)
}

type failingIssuer struct{}

func (failingIssuer) Issue(domain.Identity) (string, error) { return "", errors.New("sign failed") }

func newTestAuthService(t *testing.T, repo ports.UserRepository) (*AuthService, *auth.TokenService, *countingHasher) {
	t.Helper()
	tokens, err := auth.NewTokenService([]byte("secret"))
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	hasher := &countingHasher{BcryptHasher: auth.NewBcryptHasher(bcrypt.MinCost)}
	return NewAuthService(repo, hasher, tokens, zerolog.Nop()), tokens, hasher
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, tokens, _ := newTestAuthService(t, repo)

	res, err := svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "pw123456", Name: "A"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.User.Role != domain.RoleSalesman {
		t.Fatalf("expected default role %q, got %q", domain.RoleSalesman, res.User.Role)
	}
	if res.User.PasswordHash == "pw123456" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte("pw123456")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	id, err := tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if id != res.User.Identity() {
		t.Fatalf("token identity %+v does not match user %+v", id, res.User.Identity())
	}
}

func TestAuthService_Register_ExplicitRole(t *testing.T) {
	svc, _, _ := newTestAuthService(t, newStubUserRepo())

	res, err := svc.Register(context.Background(), ports.RegisterInput{Email: "m@x.com", Password: "pw123456", Name: "M", Role: domain.RoleManager})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.User.Role != domain.RoleManager {
		t.Fatalf("unexpected role: %s", res.User.Role)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _ := newTestAuthService(t, newStubUserRepo())

	cases := map[string]ports.RegisterInput{
		"missing email":  {Password: "pw123456", Name: "A"},
		"missing name":   {Email: "a@x.com", Password: "pw123456"},
		"bad email":      {Email: "ax.com", Password: "pw123456", Name: "A"},
		"short password": {Email: "a@x.com", Password: "pw1", Name: "A"},
		"unknown role":   {Email: "a@x.com", Password: "pw123456", Name: "A", Role: "owner"},
	}
	for name, input := range cases {
		_, err := svc.Register(context.Background(), input)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError, got %v", name, err)
		}
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _, _ := newTestAuthService(t, newStubUserRepo())
	input := ports.RegisterInput{Email: "a@x.com", Password: "pw123456", Name: "A"}

	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_EmailIsCaseSensitive(t *testing.T) {
	svc, _, _ := newTestAuthService(t, newStubUserRepo())

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "pw123456", Name: "A"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), ports.RegisterInput{Email: "A@x.com", Password: "pw123456", Name: "A"}); err != nil {
		t.Fatalf("expected differently cased email to register, got %v", err)
	}
}

func TestAuthService_Register_StoreFailureIsUnexpected(t *testing.T) {
	repo := newStubUserRepo()
	repo.saveErr = errors.New("connection reset")
	svc, _, _ := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "pw123456", Name: "A"})
	var ue *domain.UnexpectedError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnexpectedError, got %v", err)
	}
	if ue.Message != "Registration failed" {
		t.Fatalf("unexpected message: %q", ue.Message)
	}
}

func TestAuthService_Register_IssueFailureIsUnexpected(t *testing.T) {
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	svc := NewAuthService(newStubUserRepo(), hasher, failingIssuer{}, zerolog.Nop())

	_, err := svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "pw123456", Name: "A"})
	var ue *domain.UnexpectedError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnexpectedError, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, tokens, _ := newTestAuthService(t, newStubUserRepo())

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Email: "carol@x.com", Password: "s3cret99", Name: "Carol", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := svc.Login(context.Background(), "carol@x.com", "s3cret99")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	id, err := tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if id.Role != domain.RoleAdmin || id.Email != "carol@x.com" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestAuthService_Login_WrongPasswordAndUnknownEmailMatch(t *testing.T) {
	svc, _, hasher := newTestAuthService(t, newStubUserRepo())

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Email: "dave@x.com", Password: "goodpass", Name: "Dave"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, wrongPassword := svc.Login(context.Background(), "dave@x.com", "badpass1")
	_, unknownEmail := svc.Login(context.Background(), "ghost@x.com", "badpass1")

	if !errors.Is(wrongPassword, domain.ErrInvalidCredentials) || !errors.Is(unknownEmail, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v and %v", wrongPassword, unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("errors differ: %q vs %q", wrongPassword, unknownEmail)
	}
	if hasher.verifies != 2 {
		t.Fatalf("expected a hash comparison on both paths, got %d", hasher.verifies)
	}
}

// brokenHasher cannot hash but still compares, recording the digests it saw.
type brokenHasher struct {
	*auth.BcryptHasher
	mu     sync.Mutex
	hashes []string
}

func (h *brokenHasher) Hash(string) (string, error) { return "", errors.New("entropy exhausted") }

func (h *brokenHasher) Verify(plaintext, hash string) bool {
	h.mu.Lock()
	h.hashes = append(h.hashes, hash)
	h.mu.Unlock()
	return h.BcryptHasher.Verify(plaintext, hash)
}

func TestAuthService_Login_UnknownEmailComparesWhenHashFails(t *testing.T) {
	tokens, err := auth.NewTokenService([]byte("secret"))
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	hasher := &brokenHasher{BcryptHasher: auth.NewBcryptHasher(bcrypt.MinCost)}
	svc := NewAuthService(newStubUserRepo(), hasher, tokens, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if _, err := svc.Login(context.Background(), "ghost@x.com", "badpass1"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}

	if len(hasher.hashes) != 2 {
		t.Fatalf("expected a comparison per login, got %d", len(hasher.hashes))
	}
	for _, h := range hasher.hashes {
		if h != fallbackTimingHash {
			t.Fatalf("expected fallback digest, got %q", h)
		}
	}
	if _, err := bcrypt.Cost([]byte(fallbackTimingHash)); err != nil {
		t.Fatalf("fallback digest is not a bcrypt hash: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(fallbackTimingHash), []byte(timingPassword)); err != nil {
		t.Fatalf("fallback digest does not match its password: %v", err)
	}
}

func TestAuthService_Login_LookupFailureIsUnexpected(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("timeout")
	svc, _, _ := newTestAuthService(t, repo)

	_, err := svc.Login(context.Background(), "a@x.com", "pw123456")
	var ue *domain.UnexpectedError
	if !errors.As(err, &ue) || ue.Message != "Login failed" {
		t.Fatalf("expected Login failed UnexpectedError, got %v", err)
	}
}

func TestAuthService_Register_LostInsertRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)

	gomock.InOrder(
		repo.EXPECT().FindByEmail(gomock.Any(), "a@x.com").Return(nil, domain.ErrUserNotFound),
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, domain.ErrUserExists),
	)
	svc, _, _ := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "pw123456", Name: "A"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_StoresHashNotPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)

	repo.EXPECT().FindByEmail(gomock.Any(), "a@x.com").Return(nil, domain.ErrUserNotFound)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *domain.User) (*domain.User, error) {
		if u.PasswordHash == "" || u.PasswordHash == "pw123456" {
			t.Fatalf("expected a bcrypt hash, got %q", u.PasswordHash)
		}
		if u.Role != domain.RoleSalesman {
			t.Fatalf("expected default role, got %q", u.Role)
		}
		stored := *u
		stored.ID = "11111111-1111-4111-8111-111111111111"
		return &stored, nil
	})
	svc, _, _ := newTestAuthService(t, repo)

	res, err := svc.Register(context.Background(), ports.RegisterInput{Email: "a@x.com", Password: "pw123456", Name: "A"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if res.User.ID == "" || res.Token == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
}
