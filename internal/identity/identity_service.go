package identity

import (
	"context"
	"os"
	"time"

	identityerrors "github.com/glbits/Rudraksha-Hospital-IMS/internal/identity/errors"
	"github.com/glbits/Rudraksha-Hospital-IMS/internal/rbac"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

//go:generate mockgen -source=identity_service.go -destination=mock/identity_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (AuthResponse, error)
	GetMe(ctx context.Context, workerID string) (WorkerResponse, error)
	RegisterWorker(ctx context.Context, req RegisterWorkerRequest) (WorkerResponse, error)
	ListWorkers(ctx context.Context) ([]WorkerResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("identity.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("identity.service")
	}
	return &service{repo: repo, logger: l, now: time.Now}
}

func (s *service) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	worker, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return AuthResponse{}, identityerrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(worker.Password), []byte(password)); err != nil {
		return AuthResponse{}, identityerrors.ErrInvalidCredentials
	}

	if !worker.IsActive {
		return AuthResponse{}, identityerrors.ErrWorkerInactive
	}

	access, err := s.generateToken(worker, accessTokenTTL)
	if err != nil {
		return AuthResponse{}, identityerrors.ErrTokenGenerationFailed
	}
	refresh, err := s.generateToken(worker, refreshTokenTTL)
	if err != nil {
		return AuthResponse{}, identityerrors.ErrTokenGenerationFailed
	}

	s.logger.Info("worker logged in",
		zap.String("worker_id", worker.ID.String()),
		zap.String("role", worker.Role),
	)

	return AuthResponse{
		Worker:       mapToResponse(*worker),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (AuthResponse, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, identityerrors.ErrInvalidToken
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return AuthResponse{}, identityerrors.ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AuthResponse{}, identityerrors.ErrInvalidToken
	}

	workerIDStr, ok := claims["worker_id"].(string)
	if !ok {
		return AuthResponse{}, identityerrors.ErrInvalidToken
	}

	workerID, err := uuid.Parse(workerIDStr)
	if err != nil {
		return AuthResponse{}, identityerrors.ErrInvalidWorkerID
	}

	worker, err := s.repo.GetByID(ctx, workerID)
	if err != nil {
		return AuthResponse{}, identityerrors.ErrWorkerNotFound
	}
	if !worker.IsActive {
		return AuthResponse{}, identityerrors.ErrWorkerInactive
	}

	access, err := s.generateToken(worker, accessTokenTTL)
	if err != nil {
		return AuthResponse{}, identityerrors.ErrTokenGenerationFailed
	}
	refresh, err := s.generateToken(worker, refreshTokenTTL)
	if err != nil {
		return AuthResponse{}, identityerrors.ErrTokenGenerationFailed
	}

	return AuthResponse{
		Worker:       mapToResponse(*worker),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (s *service) GetMe(ctx context.Context, workerID string) (WorkerResponse, error) {
	id, err := uuid.Parse(workerID)
	if err != nil {
		return WorkerResponse{}, identityerrors.ErrInvalidWorkerID
	}

	worker, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return WorkerResponse{}, identityerrors.ErrWorkerNotFound
	}

	return mapToResponse(*worker), nil
}

func (s *service) RegisterWorker(ctx context.Context, req RegisterWorkerRequest) (WorkerResponse, error) {
	if !rbac.IsValidRole(req.Role) {
		return WorkerResponse{}, identityerrors.ErrInvalidRole
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return WorkerResponse{}, err
	}

	worker := &Worker{
		ID:       uuid.New(),
		FullName: req.FullName,
		Email:    req.Email,
		Password: string(hashed),
		Role:     req.Role,
		IsActive: true,
	}

	if err := s.repo.Create(ctx, worker); err != nil {
		return WorkerResponse{}, identityerrors.ErrEmailAlreadyRegistered
	}

	s.logger.Info("worker registered",
		zap.String("worker_id", worker.ID.String()),
		zap.String("role", worker.Role),
	)
	return mapToResponse(*worker), nil
}

func (s *service) ListWorkers(ctx context.Context) ([]WorkerResponse, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]WorkerResponse, len(rows))
	for i, w := range rows {
		out[i] = mapToResponse(w)
	}
	return out, nil
}

func (s *service) generateToken(w *Worker, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"worker_id": w.ID.String(),
		"name":      w.FullName,
		"role":      w.Role,
		"exp":       s.now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func mapToResponse(w Worker) WorkerResponse {
	return WorkerResponse{
		ID:       w.ID.String(),
		FullName: w.FullName,
		Email:    w.Email,
		Role:     w.Role,
		IsActive: w.IsActive,
	}
}
