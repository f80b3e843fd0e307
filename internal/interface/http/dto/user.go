package dto

// StartSessionRequest 机器人为Telegram用户开启会话
type StartSessionRequest struct {
	TelegramID   int64  `json:"telegram_id" binding:"required,gt=0"`
	Username     string `json:"username" binding:"max=64"`
	FirstName    string `json:"first_name" binding:"max=128"`
	LastName     string `json:"last_name" binding:"max=128"`
	LanguageCode string `json:"language_code" binding:"max=8"`
}

// RefreshTokenRequest 刷新Access Token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResponse 新的Access Token
type RefreshTokenResponse struct {
	AccessToken string `json:"access_token"`
}
