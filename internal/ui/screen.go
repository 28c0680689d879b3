package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/clinicdesk/clinicdesk/internal/store"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

// Definition describes one entity screen.
type Definition[T store.Entity, P any] struct {
	// Name is the plural heading, e.g. "Patients".
	Name string
	// Title overrides the "<Name> Management" header.
	Title string
	// Noun is the singular used in banners, e.g. "Patient".
	Noun    string
	Columns []Column[T]
	// Form is nil for read-only screens.
	Form  Form[P]
	Input func(T) P
}

func (d Definition[T, P]) title() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name + " Management"
}

func (d Definition[T, P]) plural() string {
	return strings.ToLower(d.Name)
}

func (d Definition[T, P]) noun() string {
	return strings.ToLower(d.Noun)
}

type validator interface {
	Validate() error
}

// Screen drives one store and keeps what the user sees: the mirrored
// loading and error flags, the last banner and the record being edited.
type Screen[T store.Entity, P any] struct {
	def    Definition[T, P]
	store  *store.Store[T, P]
	cancel func()

	mu      sync.Mutex
	loading bool
	err     string
	banner  Banner
	editing int64
}

// NewScreen attaches a screen to s. Call Close to detach it.
func NewScreen[T store.Entity, P any](def Definition[T, P], s *store.Store[T, P]) *Screen[T, P] {
	sc := &Screen[T, P]{def: def, store: s}
	sc.mirror(s.Snapshot())
	sc.cancel = s.Watch(sc.mirror)
	return sc
}

func (sc *Screen[T, P]) mirror(st store.State[T]) {
	sc.mu.Lock()
	sc.loading = st.Loading
	sc.err = st.Error
	sc.mu.Unlock()
}

// Close stops mirroring the store.
func (sc *Screen[T, P]) Close() {
	if sc.cancel != nil {
		sc.cancel()
	}
}

func (sc *Screen[T, P]) Definition() Definition[T, P] {
	return sc.def
}

func (sc *Screen[T, P]) Store() *store.Store[T, P] {
	return sc.store
}

func (sc *Screen[T, P]) Banner() Banner {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.banner
}

// Editing returns the id being edited, or 0 when the form creates.
func (sc *Screen[T, P]) Editing() int64 {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.editing
}

// DismissBanner clears the banner and the store's error.
func (sc *Screen[T, P]) DismissBanner() {
	sc.setBanner(Banner{})
	sc.store.ClearError()
}

func (sc *Screen[T, P]) setBanner(b Banner) {
	sc.mu.Lock()
	sc.banner = b
	sc.mu.Unlock()
}

// Load fetches the list.
func (sc *Screen[T, P]) Load(ctx context.Context) error {
	if err := sc.store.LoadAll(ctx); err != nil {
		sc.setBanner(Failure("Failed to load " + sc.def.plural()))
		return err
	}
	sc.setBanner(Success(sc.def.Name + " loaded successfully"))
	return nil
}

// Edit loads id and returns its values for the form. The next Submit
// updates it.
func (sc *Screen[T, P]) Edit(ctx context.Context, id int64) (P, error) {
	item, err := sc.store.LoadOne(ctx, id)
	if err != nil {
		sc.setBanner(Failure("Failed to load " + sc.def.noun()))
		var zero P
		return zero, err
	}
	sc.mu.Lock()
	sc.editing = id
	sc.mu.Unlock()
	return sc.def.Input(item), nil
}

// CancelEdit returns the form to create mode.
func (sc *Screen[T, P]) CancelEdit() {
	sc.mu.Lock()
	sc.editing = 0
	sc.mu.Unlock()
}

// Submit validates in and then creates it, or updates the record opened
// with Edit.
func (sc *Screen[T, P]) Submit(ctx context.Context, in P) (T, error) {
	var zero T
	if sc.def.Form == nil {
		return zero, fmt.Errorf("%s are read-only", sc.def.plural())
	}
	if v, ok := any(in).(validator); ok {
		if err := v.Validate(); err != nil {
			sc.setBanner(Failure(err.Error()))
			return zero, err
		}
	}

	id := sc.Editing()
	if id != 0 {
		item, err := sc.store.Update(ctx, id, in)
		if err != nil {
			sc.setBanner(Failure("Failed to update " + sc.def.noun()))
			return zero, err
		}
		sc.CancelEdit()
		sc.setBanner(Success(sc.def.Noun + " updated successfully"))
		return item, nil
	}

	item, err := sc.store.Create(ctx, in)
	if err != nil {
		sc.setBanner(Failure("Failed to create " + sc.def.noun()))
		return zero, err
	}
	sc.setBanner(Success(sc.def.Noun + " created successfully"))
	return item, nil
}

// Remove deletes id.
func (sc *Screen[T, P]) Remove(ctx context.Context, id int64) error {
	if err := sc.store.Delete(ctx, id); err != nil {
		sc.setBanner(Failure("Failed to delete " + sc.def.noun()))
		return err
	}
	sc.setBanner(Success(sc.def.Noun + " deleted successfully"))
	return nil
}

// Render writes the whole screen. A non-zero page shows only that window of
// the list.
func (sc *Screen[T, P]) Render(w io.Writer, page pagination.Params) error {
	sc.mu.Lock()
	loading, storeErr, banner := sc.loading, sc.err, sc.banner
	sc.mu.Unlock()

	if _, err := fmt.Fprintf(w, "%s\n\n", sc.def.title()); err != nil {
		return err
	}
	if err := banner.write(w); err != nil {
		return err
	}
	if storeErr != "" && (banner.Kind != BannerError || banner.Text != storeErr) {
		fmt.Fprintf(w, "Error: %s\n", storeErr)
	}

	items := sc.store.Items()
	switch {
	case loading:
		_, err := fmt.Fprintf(w, "Loading %s...\n", sc.def.plural())
		return err
	case len(items) == 0:
		_, err := fmt.Fprintf(w, "No %s found.\n", sc.def.plural())
		return err
	}

	if err := WriteTable(w, sc.def.Columns, pagination.Window(items, page)); err != nil {
		return err
	}
	if page.Limit > 0 || page.Offset > 0 {
		fmt.Fprintln(w, page.Summary(len(items)))
	}
	return nil
}

// RenderItem writes one record.
func (sc *Screen[T, P]) RenderItem(w io.Writer, item T) error {
	return WriteRecord(w, sc.def.Columns, item)
}
