package cart

import (
	apperrors "github.com/xiebiao/meatshop/pkg/errors"
)

var (
	// ErrInvalidQuantity 数量超出范围
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须在1-99之间")
)
