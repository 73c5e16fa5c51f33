package shopper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/catalog"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/storage"
)

// FavoritesRecord is the record name favorites are persisted under.
const FavoritesRecord = "lorealFavorites"

// ClearPrompt is asked before all favorites are dropped.
const ClearPrompt = "Are you sure you want to clear all your favorite products?"

// FavoriteEntry is a saved product. Field names match the persisted record.
type FavoriteEntry struct {
	ProductID string           `json:"id"`
	Name      string           `json:"name"`
	Brand     string           `json:"brand"`
	Category  catalog.Category `json:"category"`
	Image     string           `json:"image"`
}

// FavoriteSnapshot captures the fields a favorite keeps from a product.
func FavoriteSnapshot(p catalog.Product) FavoriteEntry {
	return FavoriteEntry{ProductID: p.ID, Name: p.Name, Brand: p.Brand, Category: p.Category, Image: p.Image}
}

// Confirmation answers a yes/no prompt. Returning false cancels the guarded action.
type Confirmation func(prompt string) bool

// Favorites is an insertion-ordered set written through to durable storage on every change.
type Favorites struct {
	mu      sync.Mutex
	store   storage.Store
	key     string
	entries []FavoriteEntry
}

// LoadFavorites restores the set stored under key. A missing or unreadable record yields an empty set.
func LoadFavorites(ctx context.Context, store storage.Store, key string, logger *zap.Logger) *Favorites {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Favorites{store: store, key: key}
	raw, err := store.Get(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return f
	case err != nil:
		logger.Warn("favorites: read failed, starting empty", zap.String("key", key), zap.Error(err))
		return f
	}
	var entries []FavoriteEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		logger.Warn("favorites: corrupt record, starting empty", zap.String("key", key), zap.Error(err))
		return f
	}
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.ProductID == "" {
			continue
		}
		if _, dup := seen[e.ProductID]; dup {
			continue
		}
		seen[e.ProductID] = struct{}{}
		f.entries = append(f.entries, e)
	}
	return f
}

// Toggle removes productID if saved, otherwise saves snapshot under productID.
// If the write fails nothing changes and the error is returned.
func (f *Favorites) Toggle(ctx context.Context, productID string, snapshot FavoriteEntry) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev := f.entries
	var favorited bool
	if i := f.index(productID); i >= 0 {
		f.entries = append(f.entries[:i:i], f.entries[i+1:]...)
	} else {
		snapshot.ProductID = productID
		f.entries = append(f.entries[:len(f.entries):len(f.entries)], snapshot)
		favorited = true
	}
	if err := f.persist(ctx); err != nil {
		f.entries = prev
		return !favorited, err
	}
	return favorited, nil
}

// Clear drops every favorite once confirm agrees. It reports whether the set was cleared.
func (f *Favorites) Clear(ctx context.Context, confirm Confirmation) (bool, error) {
	if confirm == nil || !confirm(ClearPrompt) {
		return false, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	prev := f.entries
	f.entries = nil
	if err := f.persist(ctx); err != nil {
		f.entries = prev
		return false, err
	}
	return true, nil
}

func (f *Favorites) Contains(productID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index(productID) >= 0
}

// Get returns the saved entry for productID.
func (f *Favorites) Get(productID string) (FavoriteEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.index(productID); i >= 0 {
		return f.entries[i], true
	}
	return FavoriteEntry{}, false
}

// List returns a copy in insertion order.
func (f *Favorites) List() []FavoriteEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FavoriteEntry(nil), f.entries...)
}

func (f *Favorites) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *Favorites) index(productID string) int {
	for i, e := range f.entries {
		if e.ProductID == productID {
			return i
		}
	}
	return -1
}

// persist overwrites the whole record.
func (f *Favorites) persist(ctx context.Context) error {
	entries := f.entries
	if entries == nil {
		entries = []FavoriteEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("favorites: encode: %w", err)
	}
	if err := f.store.Put(ctx, f.key, raw); err != nil {
		return fmt.Errorf("favorites: save: %w", err)
	}
	return nil
}
