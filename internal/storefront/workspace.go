// Package storefront owns the per-visitor state behind the catalog page.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/assistant"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/catalog"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/observability"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/shopper"
	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/storage"
)

var (
	ErrUnknownProduct     = errors.New("storefront: unknown product")
	ErrProductUnavailable = errors.New("storefront: product no longer in catalog")
	ErrEmptySelection     = errors.New("storefront: no products selected")
	ErrEmptyMessage       = errors.New("storefront: empty message")
	ErrUnknownTurn        = errors.New("storefront: unknown turn")
)

const defaultTurnTimeout = 45 * time.Second

// Catalog is the product source a workspace reads from.
type Catalog interface {
	Load(ctx context.Context) ([]catalog.Product, error)
	Lookup(ctx context.Context, id string) (catalog.Product, bool)
}

// Deps are shared by every workspace.
type Deps struct {
	Catalog   Catalog
	Store     storage.Store
	Assistant assistant.Completer
	// TurnTimeout bounds each assistant round trip.
	TurnTimeout time.Duration
	Logger      *zap.Logger
}

type turn struct {
	entryID string
	done    chan struct{}
	entry   Entry
}

// Workspace is one visitor's filter, selection, favorites and conversation.
type Workspace struct {
	deps   Deps
	logger *zap.Logger

	mu           sync.Mutex
	filter       catalog.Filter
	selection    shopper.Selection
	favorites    *shopper.Favorites
	conversation *assistant.Conversation
	transcript   *Transcript
	modal        string
	turns        map[string]*turn
	// tail closes when the most recently queued turn has finished.
	tail chan struct{}
}

// NewWorkspace restores the visitor's favorites and starts a fresh conversation.
func NewWorkspace(ctx context.Context, deps Deps, visitorID string) *Workspace {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.TurnTimeout <= 0 {
		deps.TurnTimeout = defaultTurnTimeout
	}
	logger := deps.Logger.With(zap.String("visitor_id", visitorID))
	return &Workspace{
		deps:         deps,
		logger:       logger,
		favorites:    shopper.LoadFavorites(ctx, deps.Store, storage.VisitorKey(visitorID, shopper.FavoritesRecord), logger),
		conversation: assistant.NewConversation(deps.Assistant, assistant.SystemPrompt),
		transcript:   newTranscript(),
		turns:        map[string]*turn{},
	}
}

// Snapshot captures everything the page renders.
func (w *Workspace) Snapshot(ctx context.Context) Snapshot {
	products, err := w.deps.Catalog.Load(ctx)
	if err != nil {
		observability.FromContext(ctx).Warn("catalog unavailable", zap.Error(err))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	s := Snapshot{
		Criteria:           w.filter.Criteria(),
		Listing:            w.filter.VisibleProducts(products),
		CatalogUnavailable: err != nil,
		Selection:          w.selection.List(),
		Favorites:          w.favorites.List(),
		Transcript:         w.transcript.Entries(),
	}
	if w.modal != "" {
		if p, ok := findProduct(products, w.modal); ok {
			s.Modal = &p
		}
	}
	s.index()
	return s
}

// SetCategory narrows the listing to one category; empty shows all categories.
func (w *Workspace) SetCategory(value string) Change {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.filter.SetCategory(value)
	return Change{Listing: true}
}

// SetSearchTerm narrows the listing by text; empty removes the term.
func (w *Workspace) SetSearchTerm(value string) Change {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.filter.SetSearchTerm(value)
	return Change{Listing: true}
}

// ClearFilters returns the grid to its initial placeholder.
func (w *Workspace) ClearFilters() Change {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.filter.Clear()
	return Change{Listing: true, Filters: true}
}

// ToggleSelection adds or removes a catalog product from the selection.
func (w *Workspace) ToggleSelection(ctx context.Context, productID string) (Change, error) {
	p, ok := w.deps.Catalog.Lookup(ctx, productID)
	if !ok {
		return Change{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selection.Toggle(productID, shopper.SelectionSnapshot(p))
	return Change{Cards: []string{productID}, Selection: true, Modal: w.modal == productID}, nil
}

// ToggleFavorite saves or forgets a product. A favorite whose product left the catalog can still be removed.
func (w *Workspace) ToggleFavorite(ctx context.Context, productID string) (Change, error) {
	p, ok := w.deps.Catalog.Lookup(ctx, productID)
	w.mu.Lock()
	defer w.mu.Unlock()
	snapshot := shopper.FavoriteSnapshot(p)
	if !ok {
		saved, isFavorite := w.favorites.Get(productID)
		if !isFavorite {
			return Change{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
		}
		snapshot = saved
	}
	on, err := w.favorites.Toggle(ctx, productID, snapshot)
	if err != nil {
		w.logger.Error("favorites write failed", zap.String("product_id", productID), zap.Error(err))
		return Change{}, err
	}
	w.logger.Debug("favorite toggled", zap.String("product_id", productID), zap.Bool("favorited", on))
	return Change{Cards: []string{productID}, Favorites: true, Modal: w.modal == productID}, nil
}

// SelectFavorite adds a saved product to the selection. The product must still be in the catalog.
func (w *Workspace) SelectFavorite(ctx context.Context, productID string) (Change, error) {
	w.mu.Lock()
	fav, ok := w.favorites.Get(productID)
	w.mu.Unlock()
	if !ok {
		return Change{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	p, ok := w.deps.Catalog.Lookup(ctx, productID)
	if !ok {
		return Change{}, fmt.Errorf("%w: %s", ErrProductUnavailable, fav.Name)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.selection.Add(shopper.SelectionSnapshot(p)) {
		return Change{}, nil
	}
	notice := w.transcript.append(EntryNotice, fmt.Sprintf("Added %s to your selected products!", p.Name))
	return Change{
		Cards:     []string{productID},
		Selection: true,
		Modal:     w.modal == productID,
		Append:    []Entry{notice},
	}, nil
}

// ClearFavorites drops every favorite once confirm agrees. Without agreement the returned change
// carries the question to put to the visitor.
func (w *Workspace) ClearFavorites(ctx context.Context, confirm shopper.Confirmation) (Change, error) {
	var asked string
	ask := func(prompt string) bool {
		asked = prompt
		return confirm != nil && confirm(prompt)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.favorites.Len() == 0 {
		return Change{Favorites: true}, nil
	}
	previous := w.favorites.List()
	cleared, err := w.favorites.Clear(ctx, ask)
	if err != nil {
		w.logger.Error("favorites clear failed", zap.Error(err))
		return Change{}, err
	}
	if !cleared {
		return Change{Confirm: asked}, nil
	}
	ch := Change{Favorites: true}
	for _, f := range previous {
		ch.Cards = append(ch.Cards, f.ProductID)
		if f.ProductID == w.modal {
			ch.Modal = true
		}
	}
	ch.Append = []Entry{w.transcript.append(EntryNotice, ClearedNotice)}
	return ch, nil
}

// Notice appends an informational line to the chat window.
func (w *Workspace) Notice(text string) Change {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Change{Append: []Entry{w.transcript.append(EntryNotice, text)}}
}

// SaveFailedNotice tells the visitor a favorites write did not go through.
func (w *Workspace) SaveFailedNotice() Change { return w.Notice(saveFailNotice) }

// SubmitChat queues a chat turn. The returned change shows the message and a pending reply.
func (w *Workspace) SubmitChat(ctx context.Context, text string) (Change, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Change{}, ErrEmptyMessage
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	user := w.transcript.append(EntryUser, text)
	pending := w.enqueue(ctx, text, TypingLabel)
	return Change{Append: []Entry{user, pending}}, nil
}

// GenerateRoutine asks the assistant for a routine built from the current selection.
func (w *Workspace) GenerateRoutine(ctx context.Context) (Change, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selection.Empty() {
		return Change{}, ErrEmptySelection
	}
	var products []assistant.Product
	for _, e := range w.selection.List() {
		products = append(products, assistant.Product{Name: e.Name, Brand: e.Brand})
	}
	user := w.transcript.append(EntryUser, assistant.RoutineSummary(products))
	pending := w.enqueue(ctx, assistant.RoutinePrompt(products), RoutineLabel)
	return Change{Append: []Entry{user, pending}}, nil
}

// enqueue starts a turn that sends prompt once every earlier turn has finished. Caller holds w.mu.
func (w *Workspace) enqueue(ctx context.Context, prompt, label string) Entry {
	id := ulid.Make().String()
	pending := w.transcript.appendPending(label, id)
	t := &turn{entryID: pending.ID, done: make(chan struct{})}
	w.turns[id] = t
	prev := w.tail
	w.tail = t.done

	// the turn outlives the request that queued it
	base := observability.WithLogger(context.WithoutCancel(ctx), w.logger.With(zap.String("turn_id", id)))
	go func() {
		defer close(t.done)
		if prev != nil {
			<-prev
		}
		turnCtx, cancel := context.WithTimeout(base, w.deps.TurnTimeout)
		defer cancel()
		reply := w.conversation.Send(turnCtx, prompt)

		w.mu.Lock()
		defer w.mu.Unlock()
		if e, ok := w.transcript.resolve(t.entryID, reply); ok {
			t.entry = e
		}
		// a poll that arrives later finds the reply in the transcript
		delete(w.turns, id)
	}()
	return pending
}

// AwaitTurn blocks until the turn's reply is in the transcript. When ctx reaches its deadline first the
// still-pending entry comes back so the caller can poll again.
func (w *Workspace) AwaitTurn(ctx context.Context, turnID string) (Change, error) {
	w.mu.Lock()
	t, ok := w.turns[turnID]
	if !ok {
		e, found := w.transcript.byTurn(turnID)
		w.mu.Unlock()
		if !found || e.Pending {
			return Change{}, fmt.Errorf("%w: %s", ErrUnknownTurn, turnID)
		}
		return Change{Resolved: &e}, nil
	}
	w.mu.Unlock()

	select {
	case <-t.done:
	case <-ctx.Done():
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Change{}, ctx.Err()
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		e, _ := w.transcript.byTurn(turnID)
		return Change{Resolved: &e}, nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	entry := t.entry
	return Change{Resolved: &entry}, nil
}

// Details opens the details modal for a product.
func (w *Workspace) Details(ctx context.Context, productID string) (Change, error) {
	if _, ok := w.deps.Catalog.Lookup(ctx, productID); !ok {
		return Change{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.modal = productID
	return Change{Modal: true}, nil
}

// CloseDetails closes the details modal.
func (w *Workspace) CloseDetails() Change {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.modal = ""
	return Change{Modal: true}
}

// Messages returns the conversation log sent to the assistant.
func (w *Workspace) Messages() []assistant.Message { return w.conversation.Messages() }

func findProduct(products []catalog.Product, id string) (catalog.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}
