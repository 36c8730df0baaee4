package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	domain "auth-service/internal/domain/user"
	apperrors "auth-service/pkg/errors"
	"auth-service/pkg/security"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	args := m.Called(ctx, u)
	if fn, ok := args.Get(0).(func(*domain.User) *domain.User); ok {
		return fn(u), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var testDefaults = Defaults{Picture: "https://cdn.example/default.png", Status: "Hey there"}

func setupTestUsecase(t *testing.T) (*Usecase, *MockRepository) {
	mockRepo := new(MockRepository)
	uc := New(mockRepo, security.NewHasher(bcrypt.MinCost), testDefaults, zaptest.NewLogger(t))
	return uc, mockRepo
}

func assertStatus(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, status, apperrors.StatusOf(err))
	assert.Equal(t, message, apperrors.MessageOf(err))
}

func validRegister() RegisterRequest {
	return RegisterRequest{Name: "Al", Email: "a@b.com", Password: "secret1"}
}

// echoCreate returns the record passed to Create with an ID assigned.
func echoCreate(in *domain.User) *domain.User {
	u := *in
	u.ID = "11111111-2222-3333-4444-555555555555"
	return &u
}

// ==================== REGISTER TESTS ====================

func TestRegister_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(echoCreate, nil)

	u, err := uc.Register(ctx, validRegister())

	require.NoError(t, err)
	assert.Equal(t, "Al", u.Name)
	assert.Equal(t, "a@b.com", u.Email)
	assert.NotEqual(t, "secret1", u.Password)
	assert.True(t, strings.HasPrefix(u.Password, "$2a$"))
	assert.Equal(t, testDefaults.Picture, u.Picture)
	assert.Equal(t, testDefaults.Status, u.Status)
	assert.NotEmpty(t, u.ID)

	ok, err := security.NewHasher(bcrypt.MinCost).Compare(u.Password, "secret1")
	require.NoError(t, err)
	assert.True(t, ok)

	mockRepo.AssertExpectations(t)
}

func TestRegister_KeepsProvidedOptionalFields(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Picture == "me.png" && u.Status == "busy"
	})).Return(&domain.User{ID: "1", Picture: "me.png", Status: "busy"}, nil)

	in := validRegister()
	in.Picture = "me.png"
	in.Status = "busy"
	_, err := uc.Register(ctx, in)

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestRegister_LowercasesEmail(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "al@example.com").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "al@example.com"
	})).Return(&domain.User{ID: "1", Email: "al@example.com"}, nil)

	in := validRegister()
	in.Email = "Al@Example.COM"
	_, err := uc.Register(ctx, in)

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestRegister_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{name: "no name", mutate: func(r *RegisterRequest) { r.Name = "" }},
		{name: "no email", mutate: func(r *RegisterRequest) { r.Email = "" }},
		{name: "no password", mutate: func(r *RegisterRequest) { r.Password = "" }},
		{name: "nothing", mutate: func(r *RegisterRequest) { *r = RegisterRequest{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockRepo := setupTestUsecase(t)
			in := validRegister()
			tt.mutate(&in)

			_, err := uc.Register(context.Background(), in)

			assertStatus(t, err, http.StatusBadRequest, MsgFillAllFields)
			mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_NameLength(t *testing.T) {
	for _, name := range []string{"A", strings.Repeat("n", 17), strings.Repeat("é", 17)} {
		t.Run(name, func(t *testing.T) {
			uc, _ := setupTestUsecase(t)
			in := validRegister()
			in.Name = name

			_, err := uc.Register(context.Background(), in)

			assertStatus(t, err, http.StatusBadRequest, MsgNameLength)
		})
	}
}

func TestRegister_NameLengthCountsCharacters(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.Anything).Return(&domain.User{ID: "1"}, nil)

	in := validRegister()
	in.Name = strings.Repeat("é", 16) // 32 bytes, 16 characters
	_, err := uc.Register(ctx, in)

	assert.NoError(t, err)
}

func TestRegister_StatusTooLong(t *testing.T) {
	uc, _ := setupTestUsecase(t)
	in := validRegister()
	in.Status = strings.Repeat("s", 65)

	_, err := uc.Register(context.Background(), in)

	assertStatus(t, err, http.StatusBadRequest, MsgStatusLength)
}

func TestRegister_InvalidEmail(t *testing.T) {
	for _, email := range []string{"plainaddress", "a@", "@b.com", "a b@c.com", "a@b@c.com"} {
		t.Run(email, func(t *testing.T) {
			uc, mockRepo := setupTestUsecase(t)
			in := validRegister()
			in.Email = email

			_, err := uc.Register(context.Background(), in)

			assertStatus(t, err, http.StatusBadRequest, MsgInvalidEmail)
			mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_ValidationOrder(t *testing.T) {
	uc, _ := setupTestUsecase(t)

	// Every field is wrong; the name check comes first.
	_, err := uc.Register(context.Background(), RegisterRequest{
		Name:     "A",
		Email:    "bad",
		Password: "x",
		Status:   strings.Repeat("s", 65),
	})
	assertStatus(t, err, http.StatusBadRequest, MsgNameLength)

	// Status is checked before email.
	_, err = uc.Register(context.Background(), RegisterRequest{
		Name:     "Al",
		Email:    "bad",
		Password: "x",
		Status:   strings.Repeat("s", 65),
	})
	assertStatus(t, err, http.StatusBadRequest, MsgStatusLength)
}

func TestRegister_EmailExists_BeforePasswordCheck(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(&domain.User{ID: "1", Email: "a@b.com"}, nil)

	in := validRegister()
	in.Password = "x" // too short, but conflict wins
	_, err := uc.Register(ctx, in)

	assertStatus(t, err, http.StatusConflict, MsgUserExists)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_PasswordLength(t *testing.T) {
	for _, pw := range []string{"12345", strings.Repeat("p", 129)} {
		t.Run(pw[:3], func(t *testing.T) {
			uc, mockRepo := setupTestUsecase(t)
			ctx := context.Background()
			mockRepo.On("GetByEmail", ctx, "a@b.com").Return(nil, nil)

			in := validRegister()
			in.Password = pw
			_, err := uc.Register(ctx, in)

			assertStatus(t, err, http.StatusBadRequest, MsgPasswordLength)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_AcceptsBoundaryValues(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*RegisterRequest)
	}{
		{name: "2 character name", modify: func(in *RegisterRequest) { in.Name = "Al" }},
		{name: "16 character name", modify: func(in *RegisterRequest) { in.Name = strings.Repeat("n", 16) }},
		{name: "64 character status", modify: func(in *RegisterRequest) { in.Status = strings.Repeat("s", 64) }},
		{name: "6 character password", modify: func(in *RegisterRequest) { in.Password = "123456" }},
		{name: "128 character password", modify: func(in *RegisterRequest) { in.Password = strings.Repeat("p", 128) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockRepo := setupTestUsecase(t)
			ctx := context.Background()
			mockRepo.On("GetByEmail", ctx, "a@b.com").Return(nil, nil)
			mockRepo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(echoCreate, nil)

			in := validRegister()
			tt.modify(&in)
			u, err := uc.Register(ctx, in)

			require.NoError(t, err)
			assert.Equal(t, in.Name, u.Name)
			if in.Status != "" {
				assert.Equal(t, in.Status, u.Status)
			}

			ok, err := security.NewHasher(bcrypt.MinCost).Compare(u.Password, in.Password)
			require.NoError(t, err)
			assert.True(t, ok)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestRegister_DoesNotLogEmail(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mockRepo := new(MockRepository)
	uc := New(mockRepo, security.NewHasher(bcrypt.MinCost), testDefaults, zap.New(core))
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(nil, nil).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(echoCreate, nil).Once()
	_, err := uc.Register(ctx, validRegister())
	require.NoError(t, err)

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(&domain.User{ID: "1", Email: "a@b.com"}, nil).Once()
	_, err = uc.Register(ctx, validRegister())
	assertStatus(t, err, http.StatusConflict, MsgUserExists)

	require.NotZero(t, logs.Len())
	for _, entry := range logs.All() {
		assert.NotContains(t, entry.ContextMap(), "email", entry.Message)
		for _, v := range entry.ContextMap() {
			assert.NotEqual(t, "a@b.com", v, entry.Message)
		}
	}
}

func TestRegister_LookupFailure(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(nil, errors.New("connection refused"))

	_, err := uc.Register(ctx, validRegister())

	assertStatus(t, err, http.StatusInternalServerError, "Internal Server Error")
}

func TestRegister_InsertRace(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.Anything).Return(nil, domain.ErrEmailTaken)

	_, err := uc.Register(ctx, validRegister())

	assertStatus(t, err, http.StatusConflict, MsgUserExists)
}

func TestRegister_CreateFailure(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("disk full"))

	_, err := uc.Register(ctx, validRegister())

	assertStatus(t, err, http.StatusInternalServerError, "Internal Server Error")
}

// ==================== SIGN IN TESTS ====================

func storedUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := security.NewHasher(bcrypt.MinCost).Hash(password)
	require.NoError(t, err)
	return &domain.User{ID: "1", Name: "Al", Email: "a@b.com", Password: hash}
}

func TestSignIn_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()
	stored := storedUser(t, "secret1")

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(stored, nil)

	u, err := uc.SignIn(ctx, SignInRequest{Email: "A@B.com", Password: "secret1"})

	require.NoError(t, err)
	assert.Same(t, stored, u)
	mockRepo.AssertExpectations(t)
}

func TestSignIn_FailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()

	ucMissing, repoMissing := setupTestUsecase(t)
	repoMissing.On("GetByEmail", ctx, "ghost@b.com").Return(nil, nil)
	_, errMissing := ucMissing.SignIn(ctx, SignInRequest{Email: "ghost@b.com", Password: "secret1"})

	ucWrong, repoWrong := setupTestUsecase(t)
	repoWrong.On("GetByEmail", ctx, "a@b.com").Return(storedUser(t, "secret1"), nil)
	_, errWrong := ucWrong.SignIn(ctx, SignInRequest{Email: "a@b.com", Password: "wrong"})

	assertStatus(t, errMissing, http.StatusNotFound, MsgInvalidCredentials)
	assertStatus(t, errWrong, http.StatusNotFound, MsgInvalidCredentials)
	assert.Equal(t, errMissing, errWrong)
}

func TestSignIn_EmptyCredentials(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "").Return(nil, nil)

	_, err := uc.SignIn(ctx, SignInRequest{})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_CorruptHash(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(&domain.User{ID: "1", Password: "plain"}, nil)

	_, err := uc.SignIn(ctx, SignInRequest{Email: "a@b.com", Password: "plain"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_LookupFailure(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "a@b.com").Return(nil, errors.New("timeout"))

	_, err := uc.SignIn(ctx, SignInRequest{Email: "a@b.com", Password: "secret1"})

	assertStatus(t, err, http.StatusInternalServerError, "Internal Server Error")
}
