package echoapi

import "github.com/go-playground/validator/v10"

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (lr LoginRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(lr)
}

type LoginResponse struct {
	Token string `json:"token"`
}
