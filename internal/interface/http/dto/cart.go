package dto

// AddToCartRequest 加入购物车
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1,max=99"`
}

// ProductQuery 商品目录查询
type ProductQuery struct {
	PageQuery
	CategoryID uint `form:"category_id"`
}
