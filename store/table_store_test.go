package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/table-sync-app/models"
	"github.com/yeremiapane/table-sync-app/store"
)

func TestCreateTableDuplicateNumber(t *testing.T) {
	tables, _ := setupStores(t)

	table, err := tables.Create("5", 4)
	assert.NoError(t, err)
	assert.Equal(t, models.TableAvailable, table.Status)

	_, err = tables.Create("5", 2)
	assert.ErrorIs(t, err, store.ErrDuplicateTable)
}

func TestSetStatusUnknownTable(t *testing.T) {
	tables, _ := setupStores(t)

	err := tables.SetStatus("42", models.TableOccupied)
	assert.ErrorIs(t, err, store.ErrTableNotFound)
}

func TestListAndDelete(t *testing.T) {
	tables, _ := setupStores(t)

	_, err := tables.Create("2", 2)
	assert.NoError(t, err)
	created, err := tables.Create("1", 6)
	assert.NoError(t, err)

	list, err := tables.List()
	assert.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "1", list[0].Number, "sorted by number")

	assert.NoError(t, tables.Delete(created.ID))
	assert.ErrorIs(t, tables.Delete(created.ID), store.ErrTableNotFound)

	_, err = tables.GetByNumber("1")
	assert.ErrorIs(t, err, store.ErrTableNotFound)
}
