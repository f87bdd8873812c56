package dto

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}

type TOTPSetupResponse struct {
	Secret    string `json:"secret"`
	URL       string `json:"url"`
	QRDataURL string `json:"qr_data_url"`
}

type AuthTokensResponse struct {
	AccessToken  string       `json:"access_token"`
	ExpiresInSec int64        `json:"expires_in_sec"`
	Me           UserResponse `json:"me"`
}

type UserResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	TOTPEnabled bool   `json:"totp_enabled"`
}
