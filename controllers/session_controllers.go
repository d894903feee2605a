package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/table-sync-app/models"
	"github.com/yeremiapane/table-sync-app/realtime"
	"github.com/yeremiapane/table-sync-app/store"
	"github.com/yeremiapane/table-sync-app/utils"
)

type SessionController struct {
	Store *store.SessionStore
	Hub   *realtime.Hub
}

func NewSessionController(sessions *store.SessionStore, hub *realtime.Hub) *SessionController {
	return &SessionController{Store: sessions, Hub: hub}
}

// CreateSession -> start an order on an available table. On success the
// table flips to occupied and the status change is broadcast to everyone,
// so the admin console updates immediately.
func (sc *SessionController) CreateSession(c *gin.Context) {
	var req struct {
		TableNumber   string `json:"tableNumber" binding:"required"`
		CustomerName  string `json:"customerName" binding:"required"`
		CustomerPhone string `json:"customerPhone" binding:"required"`
		Pin           string `json:"pin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.Store.Create(req.TableNumber, req.CustomerName, req.CustomerPhone, req.Pin)
	if err != nil {
		utils.RespondError(c, statusForStoreError(err), err)
		return
	}

	sc.Hub.BroadcastTableStatus(realtime.TableStatusPayload{
		TableNumber:   session.TableNumber,
		Status:        models.TableOccupied,
		CustomerName:  &session.CustomerName,
		CustomerPhone: &session.CustomerPhone,
	})

	utils.InfoLogger.Printf("Session %d created for table %s (%s)", session.ID, session.TableNumber, session.CustomerName)
	utils.RespondJSON(c, http.StatusCreated, "Session created successfully", session)
}

// GetSession -> validate PIN and return the session incl. tray contents.
func (sc *SessionController) GetSession(c *gin.Context) {
	table, pin := c.Query("table"), c.Query("pin")
	if table == "" || pin == "" {
		utils.RespondError(c, http.StatusBadRequest, ErrMissingTablePin)
		return
	}

	session, err := sc.Store.Validate(table, pin)
	if err != nil {
		utils.RespondError(c, statusForStoreError(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session detail", session)
}

// UpdateTray -> wholesale tray replace after PIN re-validation. The room
// fanout happens over the websocket (trey-update), not here.
func (sc *SessionController) UpdateTray(c *gin.Context) {
	var req struct {
		TableNumber string            `json:"tableNumber" binding:"required"`
		Pin         string            `json:"pin" binding:"required"`
		Tray        []models.TrayItem `json:"tray"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tray, err := sc.Store.UpdateTray(req.TableNumber, req.Pin, req.Tray)
	if err != nil {
		utils.RespondError(c, statusForStoreError(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tray updated successfully", tray)
}

// EndSession -> deactivate the session, free the table and tell everyone.
func (sc *SessionController) EndSession(c *gin.Context) {
	table, pin := c.Query("table"), c.Query("pin")
	if table == "" || pin == "" {
		utils.RespondError(c, http.StatusBadRequest, ErrMissingTablePin)
		return
	}

	if err := sc.Store.End(table, pin); err != nil {
		utils.RespondError(c, statusForStoreError(err), err)
		return
	}

	sc.Hub.BroadcastTableStatus(realtime.TableStatusPayload{
		TableNumber: table,
		Status:      models.TableAvailable,
	})

	utils.InfoLogger.Printf("Session ended for table %s", table)
	utils.RespondJSON(c, http.StatusOK, "Session ended successfully", nil)
}
