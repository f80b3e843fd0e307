package order

import (
	apperrors "github.com/xiebiao/meatshop/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "订单状态不允许此操作")

	// ErrInvalidOrderNo 订单号格式不正确
	ErrInvalidOrderNo = apperrors.New(apperrors.ErrCodeInvalidParams, "订单号格式不正确")

	// ErrSequenceExhausted 当天订单号已用尽（超过9999）
	ErrSequenceExhausted = apperrors.New(apperrors.ErrCodeSequenceExhausted, "今日订单量已达上限，请明天再试")

	// ErrDuplicateOrderNo 订单号冲突（并发分配时由唯一索引拦截）
	ErrDuplicateOrderNo = apperrors.New(apperrors.ErrCodeDuplicateEntry, "订单号冲突")

	// ErrOrderRetryExhausted 多次冲突后仍未能创建订单
	ErrOrderRetryExhausted = apperrors.New(apperrors.ErrCodeOrderRetry, "下单失败，请重试")

	// ErrEmptyCart 购物车为空
	ErrEmptyCart = apperrors.New(apperrors.ErrCodeEmptyCart, "购物车为空")

	// ErrInvalidPaymentMethod 不支持的支付方式
	ErrInvalidPaymentMethod = apperrors.New(apperrors.ErrCodeInvalidParams, "不支持的支付方式")

	// ErrInvalidPaymentStatus 不支持的支付状态
	ErrInvalidPaymentStatus = apperrors.New(apperrors.ErrCodeInvalidParams, "不支持的支付状态")

	// ErrInvalidPhone 手机号格式不正确
	ErrInvalidPhone = apperrors.New(apperrors.ErrCodeInvalidParams, "手机号格式不正确")

	// ErrInvalidAddress 收货地址不合法
	ErrInvalidAddress = apperrors.New(apperrors.ErrCodeInvalidParams, "收货地址不合法")

	// ErrInvalidNotes 备注不合法
	ErrInvalidNotes = apperrors.New(apperrors.ErrCodeInvalidParams, "备注过长或包含非法内容")

	// ErrForbidden 无权查看此订单
	ErrForbidden = apperrors.New(apperrors.ErrCodeForbidden, "无权查看此订单")
)
