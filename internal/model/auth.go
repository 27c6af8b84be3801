package model

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type SendPhoneCodeRequest struct {
	PhoneNumber    string `json:"phone_number" validate:"required"`
	RecaptchaToken string `json:"recaptcha_token"`
}

type VerifyPhoneCodeRequest struct {
	SessionInfo string `json:"session_info" validate:"required"`
	Code        string `json:"code" validate:"required"`
}

type GoogleLoginRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}

type LoginResponse struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Anonymous   bool   `json:"anonymous"`
	Token       string `json:"token"`
}

type SendPhoneCodeResponse struct {
	SessionInfo string `json:"session_info"`
}
