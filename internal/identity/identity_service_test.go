package identity

import (
	"context"
	"testing"

	identityerrors "github.com/glbits/Rudraksha-Hospital-IMS/internal/identity/errors"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/rbac"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeRepo struct {
	byEmail map[string]*Worker
	byID    map[uuid.UUID]*Worker
	created []*Worker
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byEmail: make(map[string]*Worker),
		byID:    make(map[uuid.UUID]*Worker),
	}
}

func (f *fakeRepo) add(w *Worker) {
	f.byEmail[w.Email] = w
	f.byID[w.ID] = w
}

func (f *fakeRepo) Create(ctx context.Context, w *Worker) error {
	if _, exists := f.byEmail[w.Email]; exists {
		return gorm.ErrDuplicatedKey
	}
	f.add(w)
	f.created = append(f.created, w)
	return nil
}

func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*Worker, error) {
	w, ok := f.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return w, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Worker, error) {
	w, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return w, nil
}

func (f *fakeRepo) FindAll(ctx context.Context) ([]Worker, error) {
	out := make([]Worker, 0, len(f.byID))
	for _, w := range f.byID {
		out = append(out, *w)
	}
	return out, nil
}

func seedWorker(t *testing.T, repo *fakeRepo, role string, active bool) *Worker {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("s3cret-password"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	w := &Worker{
		ID:       uuid.New(),
		FullName: "Devi Kumari",
		Email:    "devi@rudraksha.example",
		Password: string(hashed),
		Role:     role,
		IsActive: active,
	}
	repo.add(w)
	return w
}

func TestService_Login(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	repo := newFakeRepo()
	worker := seedWorker(t, repo, rbac.RoleNurse, true)

	svc := NewService(repo)

	resp, err := svc.Login(context.Background(), worker.Email, "s3cret-password")
	assert.NoError(t, err)
	assert.Equal(t, worker.ID.String(), resp.Worker.ID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	// The token carries identity claims the middleware relies on.
	token, err := jwt.Parse(resp.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, worker.ID.String(), claims["worker_id"])
	assert.Equal(t, rbac.RoleNurse, claims["role"])
	assert.Equal(t, "Devi Kumari", claims["name"])
}

func TestService_Login_WrongPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	repo := newFakeRepo()
	worker := seedWorker(t, repo, rbac.RoleNurse, true)

	svc := NewService(repo)

	_, err := svc.Login(context.Background(), worker.Email, "wrong")
	assert.ErrorIs(t, err, identityerrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@rudraksha.example", "s3cret-password")
	assert.ErrorIs(t, err, identityerrors.ErrInvalidCredentials)
}

func TestService_Login_InactiveWorker(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	repo := newFakeRepo()
	worker := seedWorker(t, repo, rbac.RoleStaff, false)

	svc := NewService(repo)

	_, err := svc.Login(context.Background(), worker.Email, "s3cret-password")
	assert.ErrorIs(t, err, identityerrors.ErrWorkerInactive)
}

func TestService_RefreshToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	repo := newFakeRepo()
	worker := seedWorker(t, repo, rbac.RoleDoctor, true)

	svc := NewService(repo)

	login, err := svc.Login(context.Background(), worker.Email, "s3cret-password")
	assert.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), login.RefreshToken)
	assert.NoError(t, err)
	assert.Equal(t, worker.ID.String(), refreshed.Worker.ID)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, identityerrors.ErrInvalidRefreshToken)
}

func TestService_RegisterWorker(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.RegisterWorker(context.Background(), RegisterWorkerRequest{
		FullName: "Arjun Singh",
		Email:    "arjun@rudraksha.example",
		Password: "another-secret",
		Role:     "SUPERVISOR",
	})
	assert.ErrorIs(t, err, identityerrors.ErrInvalidRole)

	resp, err := svc.RegisterWorker(context.Background(), RegisterWorkerRequest{
		FullName: "Arjun Singh",
		Email:    "arjun@rudraksha.example",
		Password: "another-secret",
		Role:     rbac.RoleDoctor,
	})
	assert.NoError(t, err)
	assert.Equal(t, rbac.RoleDoctor, resp.Role)
	assert.True(t, resp.IsActive)

	// Stored password is hashed, never plaintext.
	stored := repo.created[0]
	assert.NotEqual(t, "another-secret", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("another-secret")))

	_, err = svc.RegisterWorker(context.Background(), RegisterWorkerRequest{
		FullName: "Arjun Singh",
		Email:    "arjun@rudraksha.example",
		Password: "another-secret",
		Role:     rbac.RoleDoctor,
	})
	assert.ErrorIs(t, err, identityerrors.ErrEmailAlreadyRegistered)
}

func TestService_GetMe(t *testing.T) {
	repo := newFakeRepo()
	worker := seedWorker(t, repo, rbac.RoleNurse, true)

	svc := NewService(repo)

	resp, err := svc.GetMe(context.Background(), worker.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, worker.Email, resp.Email)

	_, err = svc.GetMe(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, identityerrors.ErrWorkerNotFound)

	_, err = svc.GetMe(context.Background(), "nope")
	assert.ErrorIs(t, err, identityerrors.ErrInvalidWorkerID)
}
