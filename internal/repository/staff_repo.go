package repository

import (
	"dental-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StaffRepository interface {
	FindByEmail(email string) (*model.Staff, error)
	FindByID(id uuid.UUID) (*model.Staff, error)
	FindAll() ([]model.Staff, error)
	Create(staff *model.Staff) error
	UpdatePassword(id uuid.UUID, hashedPassword string) error
	UpdateTokenVersion(id uuid.UUID, version string) error
}

type staffRepo struct {
	db *gorm.DB
}

func NewStaffRepo(db *gorm.DB) StaffRepository {
	return &staffRepo{db}
}

func (r *staffRepo) FindByEmail(email string) (*model.Staff, error) {
	var staff model.Staff
	if err := r.db.Preload("Role").Preload("Privileges").Where("email = ?", email).First(&staff).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepo) FindByID(id uuid.UUID) (*model.Staff, error) {
	var staff model.Staff
	if err := r.db.Preload("Role").Preload("Privileges").First(&staff, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepo) FindAll() ([]model.Staff, error) {
	var staff []model.Staff
	if err := r.db.Preload("Role").Preload("Privileges").Order("created_at ASC").Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

func (r *staffRepo) Create(staff *model.Staff) error {
	return r.db.Create(staff).Error
}

func (r *staffRepo) UpdateTokenVersion(id uuid.UUID, version string) error {
	return r.db.Model(&model.Staff{}).Where("id = ?", id).Update("token_version", version).Error
}

func (r *staffRepo) UpdatePassword(id uuid.UUID, hashedPassword string) error {
	return r.db.Model(&model.Staff{}).Where("id = ?", id).Update("password", hashedPassword).Error
}
