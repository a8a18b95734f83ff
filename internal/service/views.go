package service

import (
	"shopco-api/internal/dto"
	"shopco-api/internal/model"
)

func toBrandResponse(b *model.Brand) dto.BrandResponse {
	return dto.BrandResponse{ID: b.ID, Name: b.Name, CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt}
}

func toTypeResponse(t *model.Type) dto.TypeResponse {
	return dto.TypeResponse{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}

func toBrandTypeResponse(link *model.BrandType) dto.BrandTypeResponse {
	resp := dto.BrandTypeResponse{ID: link.ID, BrandID: link.BrandID, TypeID: link.TypeID}
	if link.Brand.ID != 0 {
		brand := toBrandResponse(&link.Brand)
		resp.Brand = &brand
	}
	if link.Type.ID != 0 {
		productType := toTypeResponse(&link.Type)
		resp.Type = &productType
	}
	return resp
}

func toProductInfoResponse(info *model.ProductInfo) dto.ProductInfoResponse {
	return dto.ProductInfoResponse{
		ID:          info.ID,
		ProductID:   info.ProductID,
		Title:       info.Title,
		Description: info.Description,
	}
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     dto.Money(p.Price),
		OldPrice:  dto.MoneyPtr(p.OldPrice),
		Rating:    p.Rating.Round(2).InexactFloat64(),
		Img:       p.Img,
		Discount:  p.Discount,
		TypeID:    p.TypeID,
		BrandID:   p.BrandID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Brand.ID != 0 {
		brand := toBrandResponse(&p.Brand)
		resp.Brand = &brand
	}
	if p.Type.ID != 0 {
		productType := toTypeResponse(&p.Type)
		resp.Type = &productType
	}
	for i := range p.Info {
		resp.Info = append(resp.Info, toProductInfoResponse(&p.Info[i]))
	}
	return resp
}

func colorPtr(color string) *string {
	if color == "" {
		return nil
	}
	return &color
}

func toCartItemResponse(line *model.CartItem) dto.CartItemResponse {
	return dto.CartItemResponse{
		ID:            line.ID,
		ProductID:     line.ProductID,
		Product:       toProductResponse(&line.Product),
		SelectedSize:  line.SelectedSize,
		SelectedColor: colorPtr(line.SelectedColor),
		Quantity:      line.Quantity,
		MaxQuantity:   model.MaxCartQuantity,
		AddedAt:       line.AddedAt,
	}
}

func toOrderResponse(o *model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:                   o.ID,
		UserID:               o.UserID,
		OrderNumber:          o.OrderNumber,
		Status:               string(o.Status),
		PaymentMethod:        o.PaymentMethod,
		PaymentStatus:        string(o.PaymentStatus),
		PaymentTransactionID: o.PaymentTransactionID,
		TotalAmount:          dto.Money(o.TotalAmount),
		Subtotal:             dto.Money(o.Subtotal),
		Tax:                  dto.Money(o.Tax),
		ShippingCost:         dto.Money(o.ShippingCost),
		FirstName:            o.FirstName,
		LastName:             o.LastName,
		Email:                o.Email,
		Street:               o.Street,
		City:                 o.City,
		PostalCode:           o.PostalCode,
		Country:              o.Country,
		Phone:                o.Phone,
		Notes:                o.Notes,
		Items:                make([]dto.OrderItemResponse, 0, len(o.Items)),
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}

	for _, item := range o.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ID:            item.ID,
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			ProductImage:  item.ProductImage,
			Quantity:      item.Quantity,
			Price:         dto.Money(item.Price),
			SelectedSize:  item.SelectedSize,
			SelectedColor: item.SelectedColor,
			Subtotal:      dto.Money(item.Subtotal),
		})
	}

	if o.User.ID != 0 {
		resp.User = &dto.OrderUserResponse{
			ID:        o.User.ID,
			Email:     o.User.Email,
			FirstName: o.User.FirstName,
			LastName:  o.User.LastName,
		}
	}
	return resp
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Street:     u.Street,
		City:       u.City,
		PostalCode: u.PostalCode,
		Country:    u.Country,
		Phone:      u.Phone,
		Role:       u.Role,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}
