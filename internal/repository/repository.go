package repository

import (
	"context"
	"errors"
	"math"

	"github.com/fjod/go_cart/ecommerce-service/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrContactNotFound = errors.New("contact not found")
	ErrProductNotFound = errors.New("product not found")
)

type Credentials struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// ContactFilter selects one page of contacts. Search is matched
// case-insensitively as a substring of first name, last name or email;
// an empty Search matches every contact.
type ContactFilter struct {
	Search     string
	PageNumber int
	PageSize   int
}

// Offset is (PageNumber-1)*PageSize, saturating at math.MaxInt.
func (f ContactFilter) Offset() int {
	if f.PageNumber < 1 || f.PageSize < 1 {
		return 0
	}
	if f.PageNumber-1 > math.MaxInt/f.PageSize {
		return math.MaxInt
	}
	return (f.PageNumber - 1) * f.PageSize
}

// CartRepository defines cart data operations.
// Consumers define this interface, not the SQL implementation.
type CartRepository interface {
	GetCartItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error)
	AddCartLine(ctx context.Context, line *domain.Cart) error
}

type ContactRepository interface {
	ListContacts(ctx context.Context, filter ContactFilter) (*domain.ContactPage, error)
	GetContact(ctx context.Context, id int64) (*domain.Contact, error)
	CreateContact(ctx context.Context, contact *domain.Contact) error
	UpdateContact(ctx context.Context, contact *domain.Contact) error
	DeleteContact(ctx context.Context, id int64) error
}
