package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yeremiapane/table-sync-app/models"
)

// TableStore is the durable registry of physical tables.
type TableStore struct {
	db *gorm.DB
}

func NewTableStore(db *gorm.DB) *TableStore {
	return &TableStore{db: db}
}

// Create -> register a new table, status starts as available.
func (s *TableStore) Create(number string, capacity int) (*models.Table, error) {
	table := models.Table{
		Number:   number,
		Capacity: capacity,
		Status:   models.TableAvailable,
	}
	if err := s.db.Create(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTable
		}
		return nil, err
	}
	return &table, nil
}

func (s *TableStore) GetByNumber(number string) (*models.Table, error) {
	var table models.Table
	if err := s.db.Where("number = ?", number).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &table, nil
}

func (s *TableStore) List() ([]models.Table, error) {
	var tables []models.Table
	if err := s.db.Order("number").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

// SetStatus flips table occupancy. Only the session lifecycle calls this;
// the client UI never reaches it directly.
func (s *TableStore) SetStatus(number, status string) error {
	res := s.db.Model(&models.Table{}).Where("number = ?", number).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTableNotFound
	}
	return nil
}

func (s *TableStore) Delete(id uint) error {
	res := s.db.Delete(&models.Table{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTableNotFound
	}
	return nil
}
