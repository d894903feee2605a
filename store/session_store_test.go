package store_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-sync-app/models"
	"github.com/yeremiapane/table-sync-app/store"
)

// setupStores -> SQLite in-memory with the same TranslateError config as
// production, single connection so concurrent writers serialize cleanly.
func setupStores(t *testing.T) (*store.TableStore, *store.SessionStore) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Table{}, &models.TableSession{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	tables := store.NewTableStore(db)
	return tables, store.NewSessionStore(db, tables)
}

func TestCreateSessionOccupiesTable(t *testing.T) {
	tables, sessions := setupStores(t)

	_, err := tables.Create("5", 4)
	assert.NoError(t, err)

	session, err := sessions.Create("5", "Alice", "01712345678", "4321")
	assert.NoError(t, err)
	assert.True(t, session.Active)
	assert.Empty(t, session.Tray)

	table, err := tables.GetByNumber("5")
	assert.NoError(t, err)
	assert.Equal(t, models.TableOccupied, table.Status)

	// Second party, any PIN: table is taken.
	_, err = sessions.Create("5", "Bob", "01898765432", "0000")
	assert.ErrorIs(t, err, store.ErrSessionActive)
}

func TestCreateSessionUnknownTable(t *testing.T) {
	_, sessions := setupStores(t)

	_, err := sessions.Create("99", "Alice", "01712345678", "4321")
	assert.ErrorIs(t, err, store.ErrTableNotFound)
}

// N simultaneous create attempts on the same table must yield exactly one
// success; the unique index on active_key decides the race.
func TestConcurrentSessionCreation(t *testing.T) {
	tables, sessions := setupStores(t)
	_, err := tables.Create("7", 4)
	assert.NoError(t, err)

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = sessions.Create("7", "Party", "0170000000", "1111")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, store.ErrSessionActive)
		}
	}
	assert.Equal(t, 1, successes, "exactly one create may win")
}

func TestValidateSession(t *testing.T) {
	tables, sessions := setupStores(t)
	_, err := tables.Create("7", 4)
	assert.NoError(t, err)
	_, err = sessions.Create("7", "Alice", "01712345678", "4321")
	assert.NoError(t, err)

	session, err := sessions.Validate("7", "4321")
	assert.NoError(t, err)
	assert.Equal(t, "Alice", session.CustomerName)

	// Wrong PIN -> Unauthorized
	_, err = sessions.Validate("7", "0000")
	assert.ErrorIs(t, err, store.ErrInvalidPin)

	// No session at all -> NotFound
	_, err = sessions.Validate("9", "4321")
	assert.ErrorIs(t, err, store.ErrNoActiveSession)
}

func TestUpdateTrayReplacesWholesale(t *testing.T) {
	tables, sessions := setupStores(t)
	_, err := tables.Create("7", 4)
	assert.NoError(t, err)
	_, err = sessions.Create("7", "Alice", "01712345678", "4321")
	assert.NoError(t, err)

	first := []models.TrayItem{
		{ItemName: "Burger", Price: 250, Quantity: 1},
		{ItemName: "Cola", Price: 50, Quantity: 2},
	}
	stored, err := sessions.UpdateTray("7", "4321", first)
	assert.NoError(t, err)
	assert.Equal(t, first, stored)

	// Replace, not merge: the second write wins completely.
	second := []models.TrayItem{{ItemName: "Pizza", Price: 400, Quantity: 1, Confirmed: true}}
	stored, err = sessions.UpdateTray("7", "4321", second)
	assert.NoError(t, err)
	assert.Equal(t, second, stored)

	session, err := sessions.Validate("7", "4321")
	assert.NoError(t, err)
	assert.Equal(t, second, session.Tray)

	// PIN is re-validated on every write.
	_, err = sessions.UpdateTray("7", "9999", first)
	assert.ErrorIs(t, err, store.ErrInvalidPin)
}

func TestEndSessionFreesTable(t *testing.T) {
	tables, sessions := setupStores(t)
	_, err := tables.Create("5", 4)
	assert.NoError(t, err)
	_, err = sessions.Create("5", "Alice", "01712345678", "4321")
	assert.NoError(t, err)

	assert.NoError(t, sessions.End("5", "4321"))

	table, err := tables.GetByNumber("5")
	assert.NoError(t, err)
	assert.Equal(t, models.TableAvailable, table.Status)

	// Terminal and idempotent: the second end just reports no session.
	assert.ErrorIs(t, sessions.End("5", "4321"), store.ErrNoActiveSession)

	// The table is free again for the next party.
	_, err = sessions.Create("5", "Bob", "01898765432", "8888")
	assert.NoError(t, err)
}
