package service

import (
	"context"
	"fmt"

	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/repository"
	"github.com/shopspring/decimal"
)

type CartView struct {
	Items       []model.CartItem `json:"items"`
	TotalAmount decimal.Decimal  `json:"totalAmount"`
	TotalItems  int              `json:"totalItems"`
}

type CartService interface {
	GetCart(ctx context.Context, userID uint64) (*CartView, error)
	AddItem(ctx context.Context, userID, publicationID uint64, qty int) (*CartView, error)
	UpdateItem(ctx context.Context, userID, publicationID uint64, qty int) (*CartView, error)
	RemoveItem(ctx context.Context, userID, publicationID uint64) (*CartView, error)
	Clear(ctx context.Context, userID uint64) error
}

type cartService struct {
	store repository.Store
}

func NewCartService(store repository.Store) CartService {
	return &cartService{store: store}
}

// GetCart drops lines whose publication has gone inactive or out of stock.
func (s *cartService) GetCart(ctx context.Context, userID uint64) (*CartView, error) {
	cart, err := s.store.Carts().FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &CartView{Items: []model.CartItem{}, TotalAmount: decimal.Zero}
	var stale []uint64
	for _, it := range cart.Items {
		if it.Publication == nil || !it.Publication.IsActive || it.Publication.Stock <= 0 {
			stale = append(stale, it.ID)
			continue
		}
		view.Items = append(view.Items, it)
		view.TotalAmount = view.TotalAmount.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		view.TotalItems += it.Quantity
	}
	if err := s.store.Carts().DeleteItems(ctx, cart.ID, stale); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *cartService) checkPublication(ctx context.Context, publicationID uint64, qty int) (*model.Publication, error) {
	p, err := s.store.Publications().FindByID(ctx, publicationID)
	if err != nil {
		return nil, mapRepoErr(err, "publication")
	}
	if !p.IsActive {
		return nil, fmt.Errorf("%w: %q is not available", ErrUnavailable, p.Title)
	}
	if p.Stock < qty {
		return nil, fmt.Errorf("%w: only %d of %q left", ErrInsufficientStock, p.Stock, p.Title)
	}
	return p, nil
}

func (s *cartService) AddItem(ctx context.Context, userID, publicationID uint64, qty int) (*CartView, error) {
	if qty < 1 {
		return nil, validationf("quantity must be at least 1")
	}
	cart, err := s.store.Carts().FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, it := range cart.Items {
		if it.PublicationID == publicationID {
			qty += it.Quantity
			break
		}
	}
	if qty > maxLineQty {
		return nil, validationf("quantity exceeds %d", maxLineQty)
	}
	p, err := s.checkPublication(ctx, publicationID, qty)
	if err != nil {
		return nil, err
	}
	if err := s.store.Carts().UpsertItem(ctx, cart.ID, p.ID, qty, p.Price); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// UpdateItem sets the quantity of an existing line; zero removes it.
func (s *cartService) UpdateItem(ctx context.Context, userID, publicationID uint64, qty int) (*CartView, error) {
	if qty < 0 {
		return nil, validationf("quantity cannot be negative")
	}
	if qty == 0 {
		return s.RemoveItem(ctx, userID, publicationID)
	}
	if qty > maxLineQty {
		return nil, validationf("quantity exceeds %d", maxLineQty)
	}
	cart, err := s.store.Carts().FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Carts().FindItem(ctx, cart.ID, publicationID); err != nil {
		return nil, mapRepoErr(err, "cart item")
	}
	p, err := s.checkPublication(ctx, publicationID, qty)
	if err != nil {
		return nil, err
	}
	if err := s.store.Carts().UpsertItem(ctx, cart.ID, p.ID, qty, p.Price); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, publicationID uint64) (*CartView, error) {
	cart, err := s.store.Carts().FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	n, err := s.store.Carts().DeleteItem(ctx, cart.ID, publicationID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: cart item", ErrNotFound)
	}
	return s.GetCart(ctx, userID)
}

func (s *cartService) Clear(ctx context.Context, userID uint64) error {
	return s.store.Carts().ClearByUser(ctx, userID)
}
