// Package cart is the client-side cart state container. It mirrors
// what the storefront keeps in browser storage: a list of product
// snapshots with quantities, loaded once at startup and written back
// after every mutation. Totals always come from the pricing package.
package cart

import (
	"encoding/json"
	"sync"

	"github.com/craftroni/shop/internal/models"
	"github.com/craftroni/shop/internal/pricing"
)

// StorageKey is the fixed namespace the cart persists under.
const StorageKey = "craftroni-cart"

type Item struct {
	ProductID uint           `json:"product_id"`
	Product   models.Product `json:"product"`
	Quantity  int            `json:"quantity"`
}

// Storage persists serialized cart state. Load returns (nil, nil) when
// nothing was stored under the key yet.
type Storage interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

type Store struct {
	mu      sync.Mutex
	storage Storage
	cfg     pricing.Config
	items   []Item
}

// NewStore loads existing state from storage. Corrupt state is
// discarded rather than propagated; a shopper with a broken cart gets
// an empty one.
func NewStore(storage Storage, cfg pricing.Config) (*Store, error) {
	s := &Store{storage: storage, cfg: cfg}

	data, err := storage.Load(StorageKey)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		var items []Item
		if err := json.Unmarshal(data, &items); err == nil {
			s.items = items
		}
	}
	return s, nil
}

func (s *Store) Add(p models.Product, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == p.ID {
			s.items[i].Quantity += quantity
			s.items[i].Product = p
			return s.persist()
		}
	}
	s.items = append(s.items, Item{ProductID: p.ID, Product: p, Quantity: quantity})
	return s.persist()
}

// UpdateQuantity sets an item's quantity; zero or less removes it.
func (s *Store) UpdateQuantity(productID uint, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return s.remove(productID)
	}
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity = quantity
			return s.persist()
		}
	}
	return nil
}

func (s *Store) Remove(productID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(productID)
}

func (s *Store) remove(productID uint) error {
	kept := s.items[:0]
	for _, it := range s.items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	s.items = kept
	return s.persist()
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return s.persist()
}

func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Contains(productID uint) bool {
	return s.Quantity(productID) > 0
}

func (s *Store) Quantity(productID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ProductID == productID {
			return it.Quantity
		}
	}
	return 0
}

func (s *Store) Totals() pricing.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]pricing.Line, len(s.items))
	for i, it := range s.items {
		lines[i] = pricing.Line{
			UnitPrice: it.Product.Price,
			SalePrice: it.Product.SalePrice,
			Quantity:  it.Quantity,
		}
	}
	return pricing.Calculate(lines, s.cfg)
}

func (s *Store) persist() error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return err
	}
	return s.storage.Save(StorageKey, data)
}
