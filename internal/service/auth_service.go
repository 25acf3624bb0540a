package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/apierror"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/config"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/dto"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/model"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 12

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}

// TokenClaims are the custom claims embedded in every access token.
type TokenClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Rol      string `json:"rol"`
	jwt.RegisteredClaims
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg, now: time.Now}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, apierror.Validation("Usuario y contraseña son obligatorios")
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrUsuarioNoEncontrado) {
		return nil, apierror.Unauthorized("Usuario no encontrado o deshabilitado")
	}
	if err != nil {
		return nil, apierror.FromStorage(err)
	}
	if !user.Activo {
		return nil, apierror.Unauthorized("Usuario no encontrado o deshabilitado")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Info().Str("username", username).Msg("login rechazado: credenciales invalidas")
		return nil, apierror.Unauthorized("Credenciales inválidas")
	}

	now := s.now()
	if err := s.repo.UpdateUltimoLogin(ctx, user.IDUsuario, now); err != nil {
		log.Warn().Err(err).Int64("idusuario", user.IDUsuario).Msg("no se pudo actualizar ultimo_login")
	}

	ttl := time.Duration(s.cfg.JWTExpirationHours) * time.Hour
	token, err := s.generateToken(user, now, ttl)
	if err != nil {
		return nil, apierror.Internal("no se pudo firmar el token", err)
	}

	return &dto.LoginResponse{
		Status:      "ok",
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(ttl.Seconds()),
		User: dto.UsuarioResponse{
			IDUsuario:   user.IDUsuario,
			Username:    user.Username,
			Email:       user.Email,
			DNIEmpleado: user.DNIEmpleado,
			Rol:         user.Rol,
		},
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, now time.Time, ttl time.Duration) (string, error) {
	rol := ""
	if user.Rol != nil {
		rol = *user.Rol
	}
	claims := TokenClaims{
		UserID:   user.IDUsuario,
		Username: user.Username,
		Rol:      rol,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.IDUsuario, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// HashPassword returns the bcrypt hash stored in usuarios.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
