package tray

import "github.com/yeremiapane/table-sync-app/models"

// Origin records where the current tray state came from. The persistence
// bridge only writes states whose origin is local; state applied from a
// broadcast never schedules a write, so no echo loop is possible.
type Origin int

const (
	OriginLocal Origin = iota
	OriginRemote
)

func (o Origin) String() string {
	if o == OriginRemote {
		return "remote"
	}
	return "local"
}

// Engine is the client-local tray state machine. Every operation is a total
// function of current state plus input; totals are recomputed on demand and
// never cached. The engine itself is not goroutine-safe; the bridge
// serializes access for the single client actor that owns it.
type Engine struct {
	items    []models.TrayItem
	revision uint64
	origin   Origin
}

func NewEngine() *Engine {
	return &Engine{items: []models.TrayItem{}}
}

// AddItem -> bump quantity if the item is already on the tray, otherwise
// append it with quantity 1, unconfirmed. Price and image are snapshotted
// from the catalog at add time.
func (e *Engine) AddItem(itemName string, price float64, imageURL string) {
	for i := range e.items {
		if e.items[i].ItemName == itemName {
			e.items[i].Quantity++
			e.bumpLocal()
			return
		}
	}
	e.items = append(e.items, models.TrayItem{
		ItemName: itemName,
		Price:    price,
		Quantity: 1,
		ImageURL: imageURL,
	})
	e.bumpLocal()
}

// RemoveItem erases the entry. No-op once the item is confirmed; that is the
// enforcement point for the locking rule, not the UI.
func (e *Engine) RemoveItem(itemName string) {
	for i := range e.items {
		if e.items[i].ItemName != itemName {
			continue
		}
		if e.items[i].Confirmed {
			return
		}
		e.items = append(e.items[:i], e.items[i+1:]...)
		e.bumpLocal()
		return
	}
}

// SetQuantity updates quantity in place; n <= 0 behaves like RemoveItem.
// No-op on confirmed items.
func (e *Engine) SetQuantity(itemName string, n int) {
	if n <= 0 {
		e.RemoveItem(itemName)
		return
	}
	for i := range e.items {
		if e.items[i].ItemName != itemName {
			continue
		}
		if e.items[i].Confirmed {
			return
		}
		e.items[i].Quantity = n
		e.bumpLocal()
		return
	}
}

// ConfirmItem locks the item; irreversible through this interface.
func (e *Engine) ConfirmItem(itemName string) {
	for i := range e.items {
		if e.items[i].ItemName == itemName && !e.items[i].Confirmed {
			e.items[i].Confirmed = true
			e.bumpLocal()
			return
		}
	}
}

// Clear empties the tray (session ended locally).
func (e *Engine) Clear() {
	if len(e.items) == 0 {
		return
	}
	e.items = []models.TrayItem{}
	e.bumpLocal()
}

// Replace swaps the whole tray for state loaded from the server or received
// from a broadcast. The origin tag decides whether the bridge may write it
// back.
func (e *Engine) Replace(items []models.TrayItem, origin Origin) {
	e.items = make([]models.TrayItem, len(items))
	copy(e.items, items)
	e.revision++
	e.origin = origin
}

// Items returns a copy; callers never share the backing slice.
func (e *Engine) Items() []models.TrayItem {
	out := make([]models.TrayItem, len(e.items))
	copy(out, e.items)
	return out
}

// Totals -> (total item count, total price), recomputed from scratch.
func (e *Engine) Totals() (totalItems int, totalPrice float64) {
	for _, it := range e.items {
		totalItems += it.Quantity
		totalPrice += it.Price * float64(it.Quantity)
	}
	return totalItems, totalPrice
}

func (e *Engine) Revision() uint64 { return e.revision }
func (e *Engine) Origin() Origin   { return e.origin }

func (e *Engine) bumpLocal() {
	e.revision++
	e.origin = OriginLocal
}
