package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/meatshop/internal/application/order"
	"github.com/xiebiao/meatshop/internal/interface/http/dto"
	"github.com/xiebiao/meatshop/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/meatshop/pkg/errors"
	"github.com/xiebiao/meatshop/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	createOrder  *apporder.CreateOrderUseCase
	getOrder     *apporder.GetOrderUseCase
	listOrders   *apporder.ListOrdersUseCase
	updateStatus *apporder.UpdateStatusUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createOrder *apporder.CreateOrderUseCase,
	getOrder *apporder.GetOrderUseCase,
	listOrders *apporder.ListOrdersUseCase,
	updateStatus *apporder.UpdateStatusUseCase,
) *OrderHandler {
	return &OrderHandler{
		createOrder:  createOrder,
		getOrder:     getOrder,
		listOrders:   listOrders,
		updateStatus: updateStatus,
	}
}

// CreateOrder 购物车下单
// @Summary      下单
// @Description  用购物车中的商品下单，分配订单号 ORD-YYYYMMDD-NNNN
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateOrderRequest true "收货与支付信息"
// @Success      200 {object} response.Response{data=apporder.OrderDTO} "下单成功"
// @Failure      200 {object} response.Response "40003购物车为空 / 40001商品不可售 / 40006当日订单号已用尽 / 50010请重试"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.WithCause(apperrors.ErrBindError, err))
		return
	}

	result, err := h.createOrder.Execute(c.Request.Context(), apporder.CreateOrderRequest{
		UserID:        middleware.GetUserID(c),
		Address:       req.Address,
		Phone:         req.Phone,
		DeliveryNotes: req.DeliveryNotes,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetOrder 订单详情
// @Summary      订单详情
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        order_no path string true "订单号" example(ORD-20251021-0001)
// @Success      200 {object} response.Response{data=apporder.OrderDTO}
// @Router       /api/v1/orders/{order_no} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	result, err := h.getOrder.Execute(c.Request.Context(), apporder.GetOrderRequest{
		OrderNo: c.Param("order_no"),
		UserID:  middleware.GetUserID(c),
		IsAdmin: middleware.IsAdmin(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListOrders 我的订单
// @Summary      我的订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData{list=[]apporder.OrderSummaryDTO}}
// @Router       /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperrors.WithCause(apperrors.ErrBindError, err))
		return
	}

	result, err := h.listOrders.Execute(c.Request.Context(), apporder.ListOrdersRequest{
		UserID:   middleware.GetUserID(c),
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// UpdateStatus 变更订单状态（管理员）
// @Summary      变更订单状态
// @Tags         订单管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        order_no path string true "订单号"
// @Param        request  body dto.UpdateOrderStatusRequest true "目标状态"
// @Success      200 {object} response.Response{data=apporder.OrderDTO}
// @Router       /api/v1/admin/orders/{order_no}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.WithCause(apperrors.ErrBindError, err))
		return
	}

	result, err := h.updateStatus.Execute(c.Request.Context(), apporder.UpdateStatusRequest{
		OrderNo: c.Param("order_no"),
		Status:  req.Status,
		IsAdmin: middleware.IsAdmin(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// InspectOrderNumber 校验订单号
// @Summary      校验订单号
// @Description  检查格式并取出下单日期和序号，不查询数据库
// @Tags         订单
// @Produce      json
// @Param        order_no path string true "订单号"
// @Success      200 {object} response.Response{data=apporder.InspectResult}
// @Router       /api/v1/order-numbers/{order_no} [get]
func (h *OrderHandler) InspectOrderNumber(c *gin.Context) {
	response.Success(c, apporder.InspectOrderNumber(c.Param("order_no")))
}
