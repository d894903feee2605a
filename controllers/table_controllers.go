package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/table-sync-app/store"
	"github.com/yeremiapane/table-sync-app/utils"
)

type TableController struct {
	Store *store.TableStore
}

func NewTableController(tables *store.TableStore) *TableController {
	return &TableController{Store: tables}
}

// CreateTable -> register a new table (admin console).
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Number   string `json:"number" binding:"required"`
		Capacity int    `json:"capacity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Store.Create(req.Number, req.Capacity)
	if err != nil {
		utils.RespondError(c, statusForStoreError(err), err)
		return
	}

	utils.InfoLogger.Printf("New table created: %s (capacity=%d)", table.Number, table.Capacity)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> list all tables, sorted by number.
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Store.List()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableStatus -> public status lookup for one table (?table=5).
func (tc *TableController) GetTableStatus(c *gin.Context) {
	number := c.Query("table")
	if number == "" {
		utils.RespondError(c, http.StatusBadRequest, &CustomError{"table number is required"})
		return
	}

	table, err := tc.Store.GetByNumber(number)
	if err != nil {
		utils.RespondError(c, statusForStoreError(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table status", table)
}

// DeleteTable -> remove a table (admin console).
func (tc *TableController) DeleteTable(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := tc.Store.Delete(uint(id)); err != nil {
		utils.RespondError(c, statusForStoreError(err), err)
		return
	}

	utils.InfoLogger.Printf("Table %d deleted", id)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": id})
}
