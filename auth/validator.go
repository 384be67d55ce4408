package auth

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Credentials is the login/registration request body. The minimum
// lengths match the account-creation rules of the user store.
type Credentials struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func ValidateCredentials(c Credentials) error {
	return validate.Struct(c)
}
