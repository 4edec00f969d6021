package dto

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResponseDTO struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	User         UserPublicDTO `json:"user"`
}

type UserPublicDTO struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	Fio      string `json:"fio"`
	RoleID   uint64 `json:"role_id"`
	RoleCode string `json:"role_code,omitempty"`
}
