package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/verifactor/auth-service/internal/core/domain"
)

type stubStore struct {
	users  map[string]*domain.User // keyed by id
	nextID int
}

func newStubStore() *stubStore {
	return &stubStore{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	created := cloneUser(user)
	created.ID = "user-" + strconv.Itoa(r.nextID)
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

// testHasher is real bcrypt at the minimum cost so tests stay fast.
type testHasher struct{}

func (testHasher) Hash(_ context.Context, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(hash), err
}

func (testHasher) Compare(_ context.Context, password, hash string) (bool, error) {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

// stubTOTP hands out a fixed secret and accepts exactly one code for it.
type stubTOTP struct {
	secret string
	code   string
}

func (s stubTOTP) GenerateSecret() (string, error) { return s.secret, nil }

func (s stubTOTP) EnrollmentURI(secret, accountLabel string) string {
	return "otpauth://totp/test:" + accountLabel + "?secret=" + secret
}

func (s stubTOTP) Verify(secret, code string) bool {
	return secret == s.secret && code == s.code
}

func newTestService(store *stubStore) *AuthService {
	return NewAuthService(store, testHasher{}, stubTOTP{secret: "JBSWY3DPEHPK3PXP", code: "123456"}, zerolog.Nop())
}

func TestAuthService_Register_Success(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store)

	enrollment, err := svc.Register(context.Background(), "alice", "alice@example.com", "p@ss1")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if enrollment.UserID == "" {
		t.Fatal("expected a user id")
	}
	if enrollment.URI == "" {
		t.Fatal("expected an enrollment URI")
	}

	user, err := store.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail after register: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected username: %s", user.Username)
	}
	if user.PasswordHash == "p@ss1" {
		t.Fatal("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("p@ss1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.TOTPSecret == "" {
		t.Fatal("expected a totp secret to be stored")
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store)

	for _, in := range [][3]string{
		{"", "a@example.com", "pass"},
		{"alice", "", "pass"},
		{"alice", "a@example.com", ""},
	} {
		if _, err := svc.Register(context.Background(), in[0], in[1], in[2]); err != domain.ErrMissingFields {
			t.Fatalf("expected ErrMissingFields for %v, got %v", in, err)
		}
	}
	if len(store.users) != 0 {
		t.Fatal("validation failure must not create users")
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store)

	if _, err := svc.Register(context.Background(), "bob", "bob@example.com", "pass"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	original, _ := store.FindByEmail(context.Background(), "bob@example.com")

	if _, err := svc.Register(context.Background(), "bob2", "bob@example.com", "pass2"); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists for duplicate email, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "other@example.com", "pass2"); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists for duplicate username, got %v", err)
	}

	after, _ := store.FindByEmail(context.Background(), "bob@example.com")
	if after.PasswordHash != original.PasswordHash || after.Username != original.Username {
		t.Fatal("conflicting registration must leave the original user unchanged")
	}
	if len(store.users) != 1 {
		t.Fatalf("expected exactly one user, got %d", len(store.users))
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store)

	enrollment, err := svc.Register(context.Background(), "carol", "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := svc.Login(context.Background(), "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != enrollment.UserID {
		t.Fatalf("login yielded id %s, registration yielded %s", user.ID, enrollment.UserID)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store)

	_, _ = svc.Register(context.Background(), "dave", "dave@example.com", "goodpass")
	if _, err := svc.Login(context.Background(), "dave@example.com", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store)

	if _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_VerifySecondFactor_Success(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store)

	enrollment, _ := svc.Register(context.Background(), "erin", "erin@example.com", "pass")

	user, err := svc.VerifySecondFactor(context.Background(), enrollment.UserID, "123456")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if user.ID != enrollment.UserID {
		t.Fatalf("unexpected user: %s", user.ID)
	}

	// No single-use enforcement: the same code is accepted again within
	// the window.
	if _, err := svc.VerifySecondFactor(context.Background(), enrollment.UserID, "123456"); err != nil {
		t.Fatalf("repeat verify within the window failed: %v", err)
	}
}

func TestAuthService_VerifySecondFactor_WrongCode(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store)

	enrollment, _ := svc.Register(context.Background(), "frank", "frank@example.com", "pass")
	before, _ := store.FindByID(context.Background(), enrollment.UserID)

	if _, err := svc.VerifySecondFactor(context.Background(), enrollment.UserID, "000000"); err != domain.ErrInvalidTOTPCode {
		t.Fatalf("expected ErrInvalidTOTPCode, got %v", err)
	}

	after, _ := store.FindByID(context.Background(), enrollment.UserID)
	if after.TOTPSecret != before.TOTPSecret {
		t.Fatal("a failed verification must not touch the stored secret")
	}
}

func TestAuthService_VerifySecondFactor_UnknownUser(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store)

	if _, err := svc.VerifySecondFactor(context.Background(), "missing", "123456"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
