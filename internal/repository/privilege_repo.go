package repository

import (
	"dental-inventory/internal/model"

	"gorm.io/gorm"
)

type PrivilegeRepository interface {
	FindByCodes(codes []string) ([]model.Privilege, error)
	FindAll() ([]model.Privilege, error)
	SeedDefaults() error
}

type privilegeRepo struct {
	db *gorm.DB
}

func NewPrivilegeRepo(db *gorm.DB) PrivilegeRepository {
	return &privilegeRepo{db}
}

func (r *privilegeRepo) FindByCodes(codes []string) ([]model.Privilege, error) {
	var privileges []model.Privilege
	if err := r.db.Where("code IN ?", codes).Order("id ASC").Find(&privileges).Error; err != nil {
		return nil, err
	}
	return privileges, nil
}

func (r *privilegeRepo) FindAll() ([]model.Privilege, error) {
	var privileges []model.Privilege
	if err := r.db.Order("id ASC").Find(&privileges).Error; err != nil {
		return nil, err
	}
	return privileges, nil
}

// SeedDefaults inserts any default privilege that is missing. Existing rows
// keep their names.
func (r *privilegeRepo) SeedDefaults() error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, p := range model.DefaultPrivileges {
			p := p
			if err := tx.Where(model.Privilege{Code: p.Code}).FirstOrCreate(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
