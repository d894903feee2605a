package store

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-sync-app/models"
)

// SessionStore manages the PIN-protected session record binding a table to
// one active customer party and its tray contents.
type SessionStore struct {
	db     *gorm.DB
	tables *TableStore
}

func NewSessionStore(db *gorm.DB, tables *TableStore) *SessionStore {
	return &SessionStore{db: db, tables: tables}
}

// Create -> admission control. The pre-check gives a friendly ErrSessionActive
// for the common case; the unique index on active_key is what actually decides
// the race when two parties hit the same table at once.
func (s *SessionStore) Create(tableNumber, customerName, customerPhone, pin string) (*models.TableSession, error) {
	if _, err := s.tables.GetByNumber(tableNumber); err != nil {
		return nil, err
	}

	if _, err := s.activeByTable(tableNumber); err == nil {
		return nil, ErrSessionActive
	} else if !errors.Is(err, ErrNoActiveSession) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	key := tableNumber
	session := models.TableSession{
		TableNumber:   tableNumber,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		PinHash:       string(hash),
		Tray:          []models.TrayItem{},
		Active:        true,
		ActiveKey:     &key,
	}
	if err := s.db.Create(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race, another party got the table first.
			return nil, ErrSessionActive
		}
		return nil, err
	}

	if err := s.tables.SetStatus(tableNumber, models.TableOccupied); err != nil {
		return nil, err
	}
	return &session, nil
}

// Validate -> find the active session for a table and check the PIN.
// PINs are stored bcrypt-hashed; the admission contract is still exact match.
func (s *SessionStore) Validate(tableNumber, pin string) (*models.TableSession, error) {
	session, err := s.activeByTable(tableNumber)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(session.PinHash), []byte(pin)); err != nil {
		return nil, ErrInvalidPin
	}
	return session, nil
}

// UpdateTray replaces the stored tray wholesale and returns the stored value.
// Replace, not merge: the caller has already merged locally.
func (s *SessionStore) UpdateTray(tableNumber, pin string, tray []models.TrayItem) ([]models.TrayItem, error) {
	session, err := s.Validate(tableNumber, pin)
	if err != nil {
		return nil, err
	}

	if tray == nil {
		tray = []models.TrayItem{}
	}
	session.Tray = tray
	if err := s.db.Save(session).Error; err != nil {
		return nil, err
	}
	return session.Tray, nil
}

// End deactivates the session (never deletes it) and frees the table.
// A second call finds no active session and returns ErrNoActiveSession.
func (s *SessionStore) End(tableNumber, pin string) error {
	session, err := s.Validate(tableNumber, pin)
	if err != nil {
		return err
	}

	session.Active = false
	session.ActiveKey = nil
	if err := s.db.Save(session).Error; err != nil {
		return err
	}

	return s.tables.SetStatus(tableNumber, models.TableAvailable)
}

func (s *SessionStore) activeByTable(tableNumber string) (*models.TableSession, error) {
	var session models.TableSession
	err := s.db.Where("table_number = ? AND active = ?", tableNumber, true).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, err
	}
	return &session, nil
}
