package service

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/ecommerce-service/internal/domain"
	"github.com/fjod/go_cart/ecommerce-service/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type CartService struct {
	repo repository.CartRepository
}

func NewCartService(repo repository.CartRepository) *CartService {
	return &CartService{repo: repo}
}

// GetCart returns the products in the cart with their summed quantities.
func (s *CartService) GetCart(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	items, err := s.repo.GetCartItems(ctx, cartID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("cart_id", cartID.String()).Msg("repo get cart items error")
		return nil, err
	}
	return items, nil
}

// AddItem stores a cart line and returns the id of the cart it was added to.
// A line without a cart id starts a new cart.
func (s *CartService) AddItem(ctx context.Context, line *domain.Cart) (uuid.UUID, error) {
	if line.ProductID <= 0 {
		return uuid.Nil, fmt.Errorf("%w: product_id must be positive", ErrInvalidCartLine)
	}
	if line.Quantity == 0 {
		return uuid.Nil, fmt.Errorf("%w: quantity must not be zero", ErrInvalidCartLine)
	}

	if line.CartID == uuid.Nil {
		line.CartID = uuid.New()
	}

	if err := s.repo.AddCartLine(ctx, line); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("cart_id", line.CartID.String()).Msg("repo add cart line error")
		return uuid.Nil, err
	}
	return line.CartID, nil
}
