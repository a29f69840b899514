package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/domain"
)

type Availability struct {
	Available bool
	UnitPrice decimal.Decimal
}

// Reservation records the exact size a successful Reserve decremented.
type Reservation struct {
	ProductID string
	Size      string
	Qty       int
}

type InventoryService struct {
	Store ProductStore
	Now   func() time.Time
}

func NewInventoryService(store ProductStore) *InventoryService {
	return &InventoryService{Store: store, Now: time.Now}
}

func (svc *InventoryService) now() time.Time {
	if svc.Now == nil {
		return time.Now().UTC()
	}
	return svc.Now().UTC()
}

// CheckAvailability compares qty with the stock summed over every size.
// A missing product is unavailable with a zero price.
func (svc *InventoryService) CheckAvailability(ctx context.Context, productID string, qty int) (Availability, error) {
	p, err := svc.Store.GetProduct(ctx, productID)
	if errors.Is(err, domain.ErrNotFound) {
		return Availability{UnitPrice: decimal.Zero}, nil
	}
	if err != nil {
		return Availability{}, fmt.Errorf("%w: get product: %v", ErrPersistence, err)
	}
	return Availability{Available: p.TotalQuantity() >= qty, UnitPrice: p.Price}, nil
}

// Reserve decrements qty from the first size, in stored order, that holds
// qty on its own. A lost race moves on to the next such size.
//
// CheckAvailability sums across sizes while Reserve needs a single size to
// cover qty, so an item can pass the check and still fail here.
func (svc *InventoryService) Reserve(ctx context.Context, productID string, qty int) (Reservation, bool, error) {
	p, err := svc.Store.GetProduct(ctx, productID)
	if errors.Is(err, domain.ErrNotFound) {
		return Reservation{}, false, nil
	}
	if err != nil {
		return Reservation{}, false, fmt.Errorf("%w: get product: %v", ErrPersistence, err)
	}

	for _, s := range p.Sizes {
		if s.Quantity < qty {
			continue
		}
		ok, err := svc.Store.DecrementSize(ctx, p.ID, s.Size, qty, svc.now())
		if err != nil {
			return Reservation{}, false, fmt.Errorf("%w: decrement size: %v", ErrPersistence, err)
		}
		if ok {
			return Reservation{ProductID: p.ID, Size: s.Size, Qty: qty}, true, nil
		}
	}
	return Reservation{}, false, nil
}

// Release puts a reservation's units back on the size they came from.
func (svc *InventoryService) Release(ctx context.Context, r Reservation) error {
	if err := svc.Store.RestockSize(ctx, r.ProductID, r.Size, r.Qty, svc.now()); err != nil {
		return fmt.Errorf("%w: release %s/%s: %v", ErrPersistence, r.ProductID, r.Size, err)
	}
	return nil
}
