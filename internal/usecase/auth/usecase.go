package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	domain "crm-service/internal/domain/user"
	pkgerrors "crm-service/pkg/errors"
	"crm-service/pkg/metrics"
)

const defaultTokenTTL = 24 * time.Hour

// Repository defines user persistence. FindByName returns (nil, nil) when no
// user has the name.
type Repository interface {
	FindByName(ctx context.Context, name string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
}

// Claims is the JWT payload issued on login.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Token is a signed access token.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type createUserInput struct {
	Name     string `validate:"required,min=3,max=64"`
	Password string `validate:"required,min=8,max=72"`
}

// Usecase authenticates users and issues tokens.
type Usecase struct {
	repo     Repository
	secret   []byte
	ttl      time.Duration
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

// New creates an auth Usecase signing tokens with secret.
func New(repo Repository, secret string, ttl time.Duration, log *zap.Logger) *Usecase {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Usecase{
		repo:     repo,
		secret:   []byte(secret),
		ttl:      ttl,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Login checks the password of the named user and returns a signed token.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (uc *Usecase) Login(ctx context.Context, name, password string) (*Token, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return nil, pkgerrors.NewValidationError("", "name and password are required")
	}

	u, err := uc.repo.FindByName(ctx, name)
	if err != nil {
		uc.log.Error("failed to load user", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		uc.log.Warn("login rejected", zap.String("name", name))
		return nil, pkgerrors.NewUnauthorizedError("invalid credentials")
	}

	return uc.issue(u)
}

func (uc *Usecase) issue(u *domain.User) (*Token, error) {
	now := uc.now()
	exp := now.Add(uc.ttl)
	claims := Claims{
		Name: u.Name,
		Role: u.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to sign token", err)
	}
	return &Token{Token: signed, ExpiresAt: exp}, nil
}

// ParseToken verifies an HS256 token and returns its principal.
func (uc *Usecase) ParseToken(raw string) (domain.Principal, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return uc.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(uc.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Principal{}, pkgerrors.NewUnauthorizedError("invalid token")
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Principal{}, pkgerrors.NewUnauthorizedError("invalid token subject")
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Principal{}, pkgerrors.NewUnauthorizedError("invalid token role")
	}
	return domain.Principal{UserID: id, Name: claims.Name, Role: role}, nil
}

// ResolveToken verifies raw and checks the user it names still exists. The
// role comes from the stored user, so a demotion or deletion takes effect on
// the next request instead of when the token expires.
func (uc *Usecase) ResolveToken(ctx context.Context, raw string) (domain.Principal, error) {
	p, err := uc.ParseToken(raw)
	if err != nil {
		return domain.Principal{}, err
	}

	u, err := uc.repo.FindByName(ctx, p.Name)
	if err != nil {
		uc.log.Error("failed to load token user", zap.String("name", p.Name), zap.Error(err))
		return domain.Principal{}, err
	}
	if u == nil || u.ID != p.UserID {
		return domain.Principal{}, pkgerrors.NewUnauthorizedError("user no longer exists")
	}
	return domain.Principal{UserID: u.ID, Name: u.Name, Role: u.Role}, nil
}

// CreateUser stores a new user with a bcrypt hash of password.
func (uc *Usecase) CreateUser(ctx context.Context, name, password string, role domain.Role) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if err := uc.validate.Struct(createUserInput{Name: name, Password: password}); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return nil, pkgerrors.NewValidationError(ve[0].Field(), ve[0].Tag())
		}
		return nil, pkgerrors.NewValidationError("", err.Error())
	}
	if _, err := domain.ParseRole(role.String()); err != nil {
		return nil, pkgerrors.NewValidationError("role", err.Error())
	}

	existing, err := uc.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.NewAlreadyExistsError("user", "user with this name already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to hash password", err)
	}

	now := uc.now().UTC().Truncate(time.Microsecond)
	created, err := uc.repo.Create(ctx, &domain.User{
		ID:           uuid.New(),
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		uc.log.Error("failed to create user", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	uc.log.Info("user created", zap.String("id", created.ID.String()), zap.String("role", role.String()))
	metrics.RecordWrite("user", "create")
	return created, nil
}

// ContextUser resolves the audit user from the request principal.
type ContextUser struct{}

// CurrentUserID returns the id of the authenticated principal in ctx.
func (ContextUser) CurrentUserID(ctx context.Context) (uuid.UUID, error) {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok || p.UserID == uuid.Nil {
		return uuid.Nil, pkgerrors.NewUnauthorizedError("no authenticated user")
	}
	return p.UserID, nil
}
