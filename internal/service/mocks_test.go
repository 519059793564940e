package service

import (
	"context"
	"strings"
	"sync"

	"github.com/fjod/go_cart/ecommerce-service/internal/domain"
	"github.com/fjod/go_cart/ecommerce-service/internal/repository"
	"github.com/google/uuid"
)

type mockContactRepository struct {
	m         sync.RWMutex
	contacts  map[int64]domain.Contact
	nextID    int64
	listCalls int
	err       error

	// when set, ListContacts signals started and waits on release
	started chan struct{}
	release chan struct{}
}

func newMockContactRepository(contacts ...domain.Contact) *mockContactRepository {
	m := &mockContactRepository{contacts: make(map[int64]domain.Contact)}
	for _, c := range contacts {
		m.nextID++
		c.ID = m.nextID
		m.contacts[c.ID] = c
	}
	return m
}

func (m *mockContactRepository) ListContacts(ctx context.Context, f repository.ContactFilter) (*domain.ContactPage, error) {
	if m.started != nil {
		m.started <- struct{}{}
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.m.Lock()
	defer m.m.Unlock()
	m.listCalls++
	if m.err != nil {
		return nil, m.err
	}

	page := &domain.ContactPage{Contacts: []domain.Contact{}}
	for id := int64(1); id <= m.nextID; id++ {
		c, ok := m.contacts[id]
		if !ok {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(c.FirstName+" "+c.LastName+" "+c.Email), f.Search) {
			continue
		}
		page.TotalCount++
		if page.TotalCount > f.Offset() && len(page.Contacts) < f.PageSize {
			page.Contacts = append(page.Contacts, c)
		}
	}
	return page, nil
}

func (m *mockContactRepository) GetContact(_ context.Context, id int64) (*domain.Contact, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.contacts[id]
	if !ok {
		return nil, repository.ErrContactNotFound
	}
	return &c, nil
}

func (m *mockContactRepository) CreateContact(_ context.Context, c *domain.Contact) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.nextID++
	c.ID = m.nextID
	m.contacts[c.ID] = *c
	return nil
}

func (m *mockContactRepository) UpdateContact(_ context.Context, c *domain.Contact) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.contacts[c.ID]; !ok {
		return repository.ErrContactNotFound
	}
	m.contacts[c.ID] = *c
	return nil
}

func (m *mockContactRepository) DeleteContact(_ context.Context, id int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.contacts[id]; !ok {
		return repository.ErrContactNotFound
	}
	delete(m.contacts, id)
	return nil
}

func (m *mockContactRepository) setErr(err error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.err = err
}

func (m *mockContactRepository) getListCalls() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.listCalls
}

type mockCartRepository struct {
	m     sync.RWMutex
	lines []domain.Cart
	items []domain.CartItem
	err   error
}

func (m *mockCartRepository) GetCartItems(context.Context, uuid.UUID) ([]domain.CartItem, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func (m *mockCartRepository) AddCartLine(_ context.Context, line *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	line.ID = int64(len(m.lines) + 1)
	m.lines = append(m.lines, *line)
	return nil
}
