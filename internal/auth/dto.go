package auth

// maxPasswordBytes is where bcrypt stops reading input.
const maxPasswordBytes = 72

// LoginDTO carries the account id and password posted to /auth/login.
type LoginDTO struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

// ValidationError is returned by DTO validation; the handler maps it to a 400.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d LoginDTO) Validate() error {
	switch {
	case d.ID == "":
		return ValidationError{Msg: "id is required"}
	case len(d.ID) > 100:
		return ValidationError{Msg: "id must be at most 100 characters"}
	case d.Password == "":
		return ValidationError{Msg: "password is required"}
	case len(d.Password) > maxPasswordBytes:
		return ValidationError{Msg: "password must be at most 72 bytes"}
	}
	return nil
}

func (d RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return ValidationError{Msg: "refresh_token is required"}
	}
	return nil
}
