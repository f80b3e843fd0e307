package user

import (
	apperrors "github.com/xiebiao/meatshop/pkg/errors"
)

var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = apperrors.New(apperrors.ErrCodeUserNotFound, "用户不存在")

	// ErrUserBlocked 用户已被封禁
	ErrUserBlocked = apperrors.New(apperrors.ErrCodeUserBlocked, "账号已被封禁")

	// ErrInvalidTelegramID Telegram ID非法
	ErrInvalidTelegramID = apperrors.New(apperrors.ErrCodeInvalidParams, "Telegram ID不合法")
)
