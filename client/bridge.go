package client

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/yeremiapane/table-sync-app/models"
	"github.com/yeremiapane/table-sync-app/store"
	"github.com/yeremiapane/table-sync-app/tray"
	"github.com/yeremiapane/table-sync-app/utils"
)

// DefaultDebounce is the quiet period before a burst of local edits is
// persisted and broadcast as one update.
const DefaultDebounce = time.Second

// TrayStore persists a full tray. Satisfied by *API on a device and by
// *store.SessionStore in-process.
type TrayStore interface {
	UpdateTray(tableNumber, pin string, tray []models.TrayItem) ([]models.TrayItem, error)
}

// TrayPublisher fans the persisted tray out to the rest of the room.
type TrayPublisher interface {
	SendTrayUpdate(tableNumber string, tray []models.TrayItem) error
}

// Bridge sits between the tray engine and the durable store. Local mutations
// arm a debounce timer; when it fires, the latest state is written once and
// then published. State applied from a broadcast is tagged remote-origin in
// the engine and never arms the timer, which is what breaks the A-B-A echo
// loop without any timed reset flag.
type Bridge struct {
	mu     sync.Mutex
	engine *tray.Engine
	store  TrayStore
	pub    TrayPublisher
	clock  clockwork.Clock
	delay  time.Duration

	tableNumber string
	pin         string

	timer      clockwork.Timer
	flushedRev uint64
	closed     bool
}

// NewBridge wires a bridge for one session. pub may be nil when there is no
// live socket; delay <= 0 falls back to DefaultDebounce, clock == nil to the
// real clock.
func NewBridge(engine *tray.Engine, ts TrayStore, pub TrayPublisher, tableNumber, pin string, delay time.Duration, clock clockwork.Clock) *Bridge {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Bridge{
		engine:      engine,
		store:       ts,
		pub:         pub,
		clock:       clock,
		delay:       delay,
		tableNumber: tableNumber,
		pin:         pin,
	}
}

func (b *Bridge) AddItem(itemName string, price float64, imageURL string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.engine.AddItem(itemName, price, imageURL)
	b.scheduleLocked()
}

func (b *Bridge) RemoveItem(itemName string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.engine.RemoveItem(itemName)
	b.scheduleLocked()
}

func (b *Bridge) SetQuantity(itemName string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.engine.SetQuantity(itemName, n)
	b.scheduleLocked()
}

func (b *Bridge) ConfirmItem(itemName string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.engine.ConfirmItem(itemName)
	b.scheduleLocked()
}

func (b *Bridge) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.engine.Clear()
	b.scheduleLocked()
}

// ApplyRemote loads a tray received over the sync channel into the engine.
// Tagged remote, so no write is scheduled and nothing echoes back.
func (b *Bridge) ApplyRemote(items []models.TrayItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.engine.Replace(items, tray.OriginRemote)
}

// Load seeds the engine from authoritative server state (initial fetch or
// reconnect). Also remote-origin: re-reading must never trigger a write.
func (b *Bridge) Load(items []models.TrayItem) {
	b.ApplyRemote(items)
}

// Items returns a snapshot of the current tray for the UI.
func (b *Bridge) Items() []models.TrayItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.Items()
}

func (b *Bridge) Totals() (int, float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.Totals()
}

// Close stops the debounce timer. Any flush already in flight will find the
// session inactive and fail silently.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
	}
}

func (b *Bridge) scheduleLocked() {
	if b.closed || b.engine.Origin() != tray.OriginLocal {
		return
	}
	if b.timer == nil {
		b.timer = b.clock.AfterFunc(b.delay, b.flush)
		return
	}
	b.timer.Reset(b.delay)
}

// flush runs when the quiet period elapses. Only the most recent local state
// is ever written; intermediate states superseded during the burst are
// simply dropped.
func (b *Bridge) flush() {
	b.mu.Lock()
	if b.closed || b.engine.Origin() != tray.OriginLocal {
		b.mu.Unlock()
		return
	}
	rev := b.engine.Revision()
	if rev == b.flushedRev {
		b.mu.Unlock()
		return
	}
	items := b.engine.Items()
	b.mu.Unlock()

	if _, err := b.store.UpdateTray(b.tableNumber, b.pin, items); err != nil {
		if isTerminal(err) {
			// Session gone or credentials dead: nothing left to sync.
			utils.InfoLogger.Printf("tray flush for table %s dropped: %v", b.tableNumber, err)
			return
		}
		utils.ErrorLogger.Printf("tray flush for table %s failed, will retry: %v", b.tableNumber, err)
		b.mu.Lock()
		if !b.closed && b.timer != nil {
			b.timer.Reset(b.delay)
		}
		b.mu.Unlock()
		return
	}

	b.mu.Lock()
	b.flushedRev = rev
	b.mu.Unlock()

	if b.pub != nil {
		if err := b.pub.SendTrayUpdate(b.tableNumber, items); err != nil {
			// Best-effort: subscribers resync on their next read.
			utils.ErrorLogger.Printf("tray publish for table %s failed: %v", b.tableNumber, err)
		}
	}
}

func isTerminal(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, store.ErrNoActiveSession) ||
		errors.Is(err, store.ErrInvalidPin) ||
		errors.Is(err, store.ErrTableNotFound)
}
