package models

import "time"

type OrderItemDto struct {
	TourID   string  `json:"tourId"`
	TourName string  `json:"tourName"`
	Price    float64 `json:"price"`
}

type ShoppingCartDto struct {
	Items      []OrderItemDto `json:"items"`
	TotalPrice float64        `json:"totalPrice"`
}

type PurchaseTokenDto struct {
	ID          string    `json:"id"`
	TourID      string    `json:"tourId"`
	TourName    string    `json:"tourName"`
	PricePaid   float64   `json:"pricePaid"`
	PurchasedAt time.Time `json:"purchasedAt"`
}

type PositionDto struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func MapToCartDto(cart *ShoppingCart) *ShoppingCartDto {
	dto := &ShoppingCartDto{Items: []OrderItemDto{}}
	if cart == nil {
		return dto
	}
	for _, item := range cart.Items {
		dto.Items = append(dto.Items, OrderItemDto{
			TourID:   item.TourID.Hex(),
			TourName: item.TourName,
			Price:    item.Price,
		})
	}
	dto.TotalPrice = cart.TotalPrice
	return dto
}

func MapToPurchaseTokenDto(token *TourPurchaseToken) *PurchaseTokenDto {
	return &PurchaseTokenDto{
		ID:          token.ID.Hex(),
		TourID:      token.TourID.Hex(),
		TourName:    token.TourName,
		PricePaid:   token.PricePaid,
		PurchasedAt: token.PurchasedAt,
	}
}
