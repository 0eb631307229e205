package memory

import (
	"context"
	"sync"

	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainrange "staybook/internal/domain/shared/daterange"
)

// ListingRepository keeps listing snapshots in memory. Reads return copies so
// callers never share the booked interval slice.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrListingNotFound
	}
	return listing.Copy(), nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := listing.Copy()
	stored.Version++
	listing.Version = stored.Version
	r.items[listing.ID] = stored
	return nil
}

func (r *ListingRepository) AddBookedInterval(ctx context.Context, id domainlistings.ListingID, dr domainrange.DateRange) error {
	if err := dr.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.items[id]
	if !ok {
		return domainlistings.ErrListingNotFound
	}
	if listing.Intervals().Overlaps(dr.CheckIn, dr.CheckOut) {
		return domainlistings.ErrIntervalTaken
	}
	listing.Booked = append(listing.Booked, dr)
	listing.Version++
	return nil
}

func (r *ListingRepository) RemoveBookedInterval(ctx context.Context, id domainlistings.ListingID, dr domainrange.DateRange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.items[id]
	if !ok {
		return domainlistings.ErrListingNotFound
	}
	kept := listing.Booked[:0]
	for _, b := range listing.Booked {
		if b.CheckIn.Equal(dr.CheckIn) && b.CheckOut.Equal(dr.CheckOut) {
			continue
		}
		kept = append(kept, b)
	}
	listing.Booked = kept
	listing.Version++
	return nil
}

func (r *ListingRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// WizardRepository stores wizard sessions with optimistic versioning.
type WizardRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.WizardID]*domainbooking.Wizard
}

func NewWizardRepository() *WizardRepository {
	return &WizardRepository{items: make(map[domainbooking.WizardID]*domainbooking.Wizard)}
}

func (r *WizardRepository) ByID(ctx context.Context, id domainbooking.WizardID) (*domainbooking.Wizard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrWizardNotFound
	}
	return w.Clone(), nil
}

func (r *WizardRepository) Save(ctx context.Context, w *domainbooking.Wizard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[w.ID]; ok && current.Version != w.Version {
		return domainbooking.ErrConcurrentUpdate
	}
	w.Version++
	r.items[w.ID] = w.Clone()
	return nil
}

var (
	_ domainlistings.Repository      = (*ListingRepository)(nil)
	_ domainbooking.WizardRepository = (*WizardRepository)(nil)
)
