package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	IDUsuario   int64   `json:"idusuario"`
	Username    string  `json:"username"`
	Email       *string `json:"email"`
	DNIEmpleado *string `json:"dni_empleado"`
	Rol         *string `json:"rol"`
}

type LoginResponse struct {
	Status      string          `json:"status"`
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"` // seconds
	User        UsuarioResponse `json:"user"`
}
