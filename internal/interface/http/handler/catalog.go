package handler

import (
	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/meatshop/internal/application/cart"
	appproduct "github.com/xiebiao/meatshop/internal/application/product"
	"github.com/xiebiao/meatshop/internal/interface/http/dto"
	"github.com/xiebiao/meatshop/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/meatshop/pkg/errors"
	"github.com/xiebiao/meatshop/pkg/response"
)

// CatalogHandler 商品目录与购物车
type CatalogHandler struct {
	listProducts *appproduct.ListProductsUseCase
	addToCart    *appcart.AddToCartUseCase
	listCart     *appcart.ListCartUseCase
	clearCart    *appcart.ClearCartUseCase
}

// NewCatalogHandler 创建处理器
func NewCatalogHandler(
	listProducts *appproduct.ListProductsUseCase,
	addToCart *appcart.AddToCartUseCase,
	listCart *appcart.ListCartUseCase,
	clearCart *appcart.ClearCartUseCase,
) *CatalogHandler {
	return &CatalogHandler{
		listProducts: listProducts,
		addToCart:    addToCart,
		listCart:     listCart,
		clearCart:    clearCart,
	}
}

// ListProducts 商品目录
// @Summary      商品目录
// @Tags         商品
// @Produce      json
// @Param        page        query int false "页码"
// @Param        page_size   query int false "每页数量"
// @Param        category_id query int false "分类"
// @Success      200 {object} response.Response{data=response.PageData{list=[]appproduct.ProductDTO}}
// @Router       /api/v1/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var q dto.ProductQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperrors.WithCause(apperrors.ErrBindError, err))
		return
	}

	result, err := h.listProducts.Execute(c.Request.Context(), appproduct.ListProductsRequest{
		Page:       q.Page,
		PageSize:   q.PageSize,
		CategoryID: q.CategoryID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// AddToCart 加入购物车
// @Summary      加入购物车
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddToCartRequest true "商品和数量"
// @Success      200 {object} response.Response{data=appcart.CartDTO}
// @Router       /api/v1/cart/items [post]
func (h *CatalogHandler) AddToCart(c *gin.Context) {
	var req dto.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.WithCause(apperrors.ErrBindError, err))
		return
	}

	result, err := h.addToCart.Execute(c.Request.Context(), appcart.AddToCartRequest{
		UserID:    middleware.GetUserID(c),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetCart 查看购物车
// @Summary      查看购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appcart.CartDTO}
// @Router       /api/v1/cart [get]
func (h *CatalogHandler) GetCart(c *gin.Context) {
	result, err := h.listCart.Execute(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ClearCart 清空购物车
// @Summary      清空购物车
// @Tags         购物车
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/cart [delete]
func (h *CatalogHandler) ClearCart(c *gin.Context) {
	if err := h.clearCart.Execute(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
