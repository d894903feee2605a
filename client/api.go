package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/yeremiapane/table-sync-app/models"
)

// API is the device-side REST client for the session endpoints.
type API struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// CreateSession -> POST /tables/session
func (a *API) CreateSession(tableNumber, customerName, customerPhone, pin string) (*models.TableSession, error) {
	body := map[string]string{
		"tableNumber":   tableNumber,
		"customerName":  customerName,
		"customerPhone": customerPhone,
		"pin":           pin,
	}
	var session models.TableSession
	if err := a.do(http.MethodPost, "/tables/session", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Session -> GET /tables/session?table&pin, validate and read.
func (a *API) Session(tableNumber, pin string) (*models.TableSession, error) {
	path := "/tables/session?" + sessionQuery(tableNumber, pin)
	var session models.TableSession
	if err := a.do(http.MethodGet, path, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateTray -> PATCH /tables/session, wholesale replace.
func (a *API) UpdateTray(tableNumber, pin string, tray []models.TrayItem) ([]models.TrayItem, error) {
	if tray == nil {
		tray = []models.TrayItem{}
	}
	body := map[string]interface{}{
		"tableNumber": tableNumber,
		"pin":         pin,
		"tray":        tray,
	}
	var stored []models.TrayItem
	if err := a.do(http.MethodPatch, "/tables/session", body, &stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// EndSession -> DELETE /tables/session?table&pin
func (a *API) EndSession(tableNumber, pin string) error {
	path := "/tables/session?" + sessionQuery(tableNumber, pin)
	return a.do(http.MethodDelete, path, nil, nil)
}

// TableStatus -> GET /tables/status?table
func (a *API) TableStatus(tableNumber string) (*models.Table, error) {
	path := "/tables/status?table=" + url.QueryEscape(tableNumber)
	var table models.Table
	if err := a.do(http.MethodGet, path, nil, &table); err != nil {
		return nil, err
	}
	return &table, nil
}

func (a *API) do(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, a.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return err
	}
	return json.Unmarshal(env.Data, out)
}

func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusBadRequest:
		return ErrInvalid
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusConflict:
		return ErrConflict
	default:
		return fmt.Errorf("server error: status %d", code)
	}
}

func sessionQuery(tableNumber, pin string) string {
	q := url.Values{}
	q.Set("table", tableNumber)
	q.Set("pin", pin)
	return q.Encode()
}
