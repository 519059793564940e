package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/go_cart/ecommerce-service/internal/domain"
	"github.com/fjod/go_cart/ecommerce-service/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCart_Success(t *testing.T) {
	mockRepo := &mockCartRepository{
		items: []domain.CartItem{{ProductID: 1, ProductName: "Laptop", Quantity: 2}},
	}
	sut := NewCartService(mockRepo)

	items, err := sut.GetCart(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestGetCart_RepoError(t *testing.T) {
	mockRepo := &mockCartRepository{err: errors.New("db down")}
	sut := NewCartService(mockRepo)

	_, err := sut.GetCart(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestAddItem_NewCart(t *testing.T) {
	mockRepo := &mockCartRepository{}
	sut := NewCartService(mockRepo)

	cartID, err := sut.AddItem(context.Background(), &domain.Cart{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, cartID)
	require.Len(t, mockRepo.lines, 1)
	assert.Equal(t, cartID, mockRepo.lines[0].CartID)
}

func TestAddItem_ExistingCart(t *testing.T) {
	mockRepo := &mockCartRepository{}
	sut := NewCartService(mockRepo)
	existing := uuid.New()

	cartID, err := sut.AddItem(context.Background(), &domain.Cart{CartID: existing, ProductID: 1, Quantity: -1})
	require.NoError(t, err)
	assert.Equal(t, existing, cartID)
}

func TestAddItem_Validation(t *testing.T) {
	mockRepo := &mockCartRepository{}
	sut := NewCartService(mockRepo)

	_, err := sut.AddItem(context.Background(), &domain.Cart{ProductID: 0, Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidCartLine)

	_, err = sut.AddItem(context.Background(), &domain.Cart{ProductID: 1, Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidCartLine)

	assert.Empty(t, mockRepo.lines)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	mockRepo := &mockCartRepository{err: repository.ErrProductNotFound}
	sut := NewCartService(mockRepo)

	cartID, err := sut.AddItem(context.Background(), &domain.Cart{ProductID: 99, Quantity: 1})
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
	assert.Equal(t, uuid.Nil, cartID)
}
