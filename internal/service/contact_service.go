package service

import (
	"context"
	"fmt"
	"math"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/fjod/go_cart/ecommerce-service/internal/cache"
	"github.com/fjod/go_cart/ecommerce-service/internal/circuitbreaker"
	"github.com/fjod/go_cart/ecommerce-service/internal/domain"
	"github.com/fjod/go_cart/ecommerce-service/internal/repository"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
)

const (
	CachePrefix = "contacts_"

	DefaultPageSize = 10
	MaxPageSize     = 100

	maxNameLength  = 100
	maxEmailLength = 254

	// storeQueryTimeout bounds a shared listing query once it no longer
	// follows the context of the request that started it.
	storeQueryTimeout = 30 * time.Second
)

type ContactService struct {
	repo    repository.ContactRepository
	cache   cache.ContactCache
	breaker *gobreaker.CircuitBreaker[*domain.ContactPage]
	sfg     singleflight.Group // Prevents cache stampede

	// generation counts invalidations. A page read from the store is only
	// cached if no invalidation happened while it was being read.
	genMu      sync.Mutex
	generation uint64
}

func NewContactService(repo repository.ContactRepository, c cache.ContactCache, breaker *gobreaker.CircuitBreaker[*domain.ContactPage]) *ContactService {
	if breaker == nil {
		breaker = circuitbreaker.New[*domain.ContactPage]("contacts-store", circuitbreaker.DefaultSettings(), zerolog.Nop())
	}
	return &ContactService{
		repo:    repo,
		cache:   c,
		breaker: breaker,
	}
}

// NormalizeFilter trims and lower-cases the search term and clamps paging
// values into range. Page numbers past math.MaxInt/pageSize are capped there
// so the offset cannot overflow; such pages are always empty.
func NormalizeFilter(search string, pageNumber, pageSize int) repository.ContactFilter {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if pageNumber < 1 {
		pageNumber = 1
	}
	if maxPage := math.MaxInt / pageSize; pageNumber > maxPage {
		pageNumber = maxPage
	}
	return repository.ContactFilter{
		Search:     strings.ToLower(strings.TrimSpace(search)),
		PageNumber: pageNumber,
		PageSize:   pageSize,
	}
}

// CacheKey identifies one listing query shape.
func CacheKey(f repository.ContactFilter) string {
	return fmt.Sprintf("%s%s_%d_%d", CachePrefix, f.Search, f.PageNumber, f.PageSize)
}

// ListContacts returns one page of contacts, served from the cache when possible.
func (s *ContactService) ListContacts(ctx context.Context, search string, pageNumber, pageSize int) (*domain.ContactPage, error) {
	filter := NormalizeFilter(search, pageNumber, pageSize)
	key := CacheKey(filter)
	log := zerolog.Ctx(ctx)
	gen := s.currentGeneration()

	// readers arriving after an invalidation never join a flight started before it
	flight := fmt.Sprintf("%s#%d", key, gen)
	ch := s.sfg.DoChan(flight, func() (interface{}, error) {
		if cached, ok := s.cache.TryGet(key); ok {
			if page, ok := cached.(*domain.ContactPage); ok {
				log.Debug().Str("key", key).Msg("contact cache hit")
				return page, nil
			}
		}
		log.Debug().Str("key", key).Msg("contact cache miss")

		// the flight is shared, so the caller that started it must not be
		// able to cancel it for the others
		queryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeQueryTimeout)
		defer cancel()

		page, err := s.breaker.Execute(func() (*domain.ContactPage, error) {
			return s.repo.ListContacts(queryCtx, filter)
		})
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("list contacts failed")
			return nil, err
		}

		s.populate(gen, key, page)
		return page, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.ContactPage), nil
	}
}

func (s *ContactService) GetContact(ctx context.Context, id int64) (*domain.Contact, error) {
	return s.repo.GetContact(ctx, id)
}

func (s *ContactService) CreateContact(ctx context.Context, contact *domain.Contact) error {
	if err := validateContact(contact); err != nil {
		return err
	}

	if err := s.repo.CreateContact(ctx, contact); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("repo create contact error")
		return err
	}

	s.invalidateCache(ctx)
	return nil
}

// UpdateContact overwrites the names and email of contact id. The id in the
// path and in the body must agree.
func (s *ContactService) UpdateContact(ctx context.Context, id int64, contact *domain.Contact) error {
	if contact.ID != id {
		return ErrContactIDMismatch
	}
	if err := validateContact(contact); err != nil {
		return err
	}

	if err := s.repo.UpdateContact(ctx, contact); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("id", id).Msg("repo update contact error")
		return err
	}

	s.invalidateCache(ctx)
	return nil
}

func (s *ContactService) DeleteContact(ctx context.Context, id int64) error {
	if err := s.repo.DeleteContact(ctx, id); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("id", id).Msg("repo delete contact error")
		return err
	}

	s.invalidateCache(ctx)
	return nil
}

func (s *ContactService) currentGeneration() uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generation
}

func (s *ContactService) populate(gen uint64, key string, page *domain.ContactPage) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if gen != s.generation {
		return
	}
	s.cache.AddToCache(key, page)
}

func (s *ContactService) invalidateCache(ctx context.Context) {
	s.genMu.Lock()
	s.generation++
	s.cache.InvalidateAllCaches()
	s.genMu.Unlock()
	zerolog.Ctx(ctx).Debug().Msg("contact cache invalidated")
}

func validateContact(c *domain.Contact) error {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.TrimSpace(c.Email)

	if utf8.RuneCountInString(c.FirstName) > maxNameLength {
		return fmt.Errorf("%w: first name longer than %d characters", ErrInvalidContact, maxNameLength)
	}
	if utf8.RuneCountInString(c.LastName) > maxNameLength {
		return fmt.Errorf("%w: last name longer than %d characters", ErrInvalidContact, maxNameLength)
	}
	if len(c.Email) > maxEmailLength {
		return fmt.Errorf("%w: email longer than %d characters", ErrInvalidContact, maxEmailLength)
	}
	if c.Email != "" {
		addr, err := mail.ParseAddress(c.Email)
		if err != nil || addr.Address != c.Email {
			return fmt.Errorf("%w: email %q is not a valid address", ErrInvalidContact, c.Email)
		}
	}
	return nil
}
