package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"cipriano/internal/config"
	"cipriano/internal/dto"
	"cipriano/internal/model"
	"cipriano/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

// etiquetasRol maps a login role to the role label written on scan events.
var etiquetasRol = map[string]string{
	model.OperadorCocina: model.RolCocina,
	model.OperadorVentas: model.RolVentas,
	model.OperadorLotes:  model.RolAdmin,
	model.OperadorAdmin:  model.RolAdmin,
}

// EtiquetaRol returns the audit label for an operator role.
func EtiquetaRol(rol string) string {
	if e, ok := etiquetasRol[rol]; ok {
		return e
	}
	return model.RolAdmin
}

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	CrearOperador(ctx context.Context, username, rol, pin string) (*dto.OperadorResponse, error)
	// GuardarOperador creates the operator or, if it exists, resets its PIN and
	// role and reactivates it.
	GuardarOperador(ctx context.Context, username, rol, pin string) (*dto.OperadorResponse, error)
	// BootstrapOperadores creates the default station logins that do not exist yet.
	BootstrapOperadores(ctx context.Context) error
}

type authService struct {
	repo repository.OperadorRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.OperadorRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	op, err := s.repo.FindByUsername(ctx, strings.ToLower(strings.TrimSpace(req.Username)))
	if err != nil || !op.Activo {
		return nil, unauthorized("credenciales invalidas")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PinHash), []byte(req.Pin)); err != nil {
		log.Warn().Str("username", op.Username).Msg("PIN de login invalido")
		return nil, unauthorized("credenciales invalidas")
	}

	token, err := s.generateToken(op, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.cfg.JWTExpirationHours * 3600,
		Operador:    operadorToResponse(op),
	}, nil
}

func (s *authService) CrearOperador(ctx context.Context, username, rol, pin string) (*dto.OperadorResponse, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, invalidArgument("Usuario requerido")
	}
	if _, ok := etiquetasRol[rol]; !ok {
		return nil, invalidArgument("Rol invalido: %s", rol)
	}
	if len(pin) < 4 {
		return nil, invalidArgument("El PIN debe tener al menos 4 digitos")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcryptCost)
	if err != nil {
		return nil, err
	}
	op := &model.Operador{Username: username, PinHash: string(hash), Rol: rol, Activo: true}
	if err := s.repo.Create(ctx, op); err != nil {
		if isDuplicate(err) {
			return nil, invalidArgument("El usuario %s ya existe", username)
		}
		return nil, err
	}
	resp := operadorToResponse(op)
	return &resp, nil
}

func (s *authService) GuardarOperador(ctx context.Context, username, rol, pin string) (*dto.OperadorResponse, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	op, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.CrearOperador(ctx, username, rol, pin)
	}
	if err != nil {
		return nil, err
	}
	if _, ok := etiquetasRol[rol]; !ok {
		return nil, invalidArgument("Rol invalido: %s", rol)
	}
	if len(pin) < 4 {
		return nil, invalidArgument("El PIN debe tener al menos 4 digitos")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcryptCost)
	if err != nil {
		return nil, err
	}
	op.PinHash, op.Rol, op.Activo = string(hash), rol, true
	if err := s.repo.Update(ctx, op); err != nil {
		return nil, err
	}
	log.Info().Str("username", op.Username).Str("rol", rol).Msg("operador actualizado")
	resp := operadorToResponse(op)
	return &resp, nil
}

func (s *authService) BootstrapOperadores(ctx context.Context) error {
	defaults := []struct{ username, rol, pin string }{
		{"cocina", model.OperadorCocina, s.cfg.DefaultKitchenPIN},
		{"ventas", model.OperadorVentas, s.cfg.DefaultSalesPIN},
		{"lotes", model.OperadorLotes, s.cfg.DefaultBatchesPIN},
		{"admin", model.OperadorAdmin, s.cfg.DefaultAdminPIN},
	}
	for _, d := range defaults {
		if d.pin == "" {
			continue
		}
		_, err := s.repo.FindByUsername(ctx, d.username)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if _, err := s.CrearOperador(ctx, d.username, d.rol, d.pin); err != nil {
			return err
		}
		log.Info().Str("username", d.username).Str("rol", d.rol).Msg("operador por defecto creado")
	}
	return nil
}

func (s *authService) generateToken(op *model.Operador, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"operador_id": op.ID.String(),
		"username":    op.Username,
		"rol":         op.Rol,
		"exp":         time.Now().Add(duration).Unix(),
		"iat":         time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func operadorToResponse(op *model.Operador) dto.OperadorResponse {
	return dto.OperadorResponse{
		ID:       op.ID.String(),
		Username: op.Username,
		Rol:      op.Rol,
		Etiqueta: EtiquetaRol(op.Rol),
	}
}
