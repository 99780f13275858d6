package service

import (
	"errors"
	"fmt"

	"dental-inventory/internal/model"
	"dental-inventory/internal/repository"
	"dental-inventory/pkg/validator"

	"github.com/google/uuid"
)

var (
	ErrEmailExists  = errors.New("email already exists")
	ErrRoleNotFound = errors.New("role not found")
)

type StaffService interface {
	CreateStaff(req *CreateStaffRequest, creatorID string) (*model.Staff, error)
	GetAllStaff() ([]model.StaffResponse, error)
	GetStaffByID(id uuid.UUID) (*model.StaffResponse, error)
	// SeedAccessControl creates default privileges, roles and the first
	// administrator when they are missing.
	SeedAccessControl(adminEmail, adminPassword string) error
}

type CreateStaffRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	RoleID   uint   `json:"role_id" validate:"required"`
}

type staffService struct {
	staffRepo     repository.StaffRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
}

func NewStaffService(staffRepo repository.StaffRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository) StaffService {
	return &staffService{
		staffRepo:     staffRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
	}
}

func (s *staffService) CreateStaff(req *CreateStaffRequest, creatorID string) (*model.Staff, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	if existing, _ := s.staffRepo.FindByEmail(req.Email); existing != nil {
		return nil, ErrEmailExists
	}

	role, err := s.roleRepo.FindByID(req.RoleID)
	if err != nil {
		return nil, ErrRoleNotFound
	}

	staff := &model.Staff{
		Email:      req.Email,
		FullName:   req.FullName,
		RoleID:     &req.RoleID,
		IsActive:   true,
		Privileges: role.Privileges, // privileges follow the role at creation
	}
	staff.CreatedBy = creatorID
	staff.UpdatedBy = creatorID

	if err := staff.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}
	if err := s.staffRepo.Create(staff); err != nil {
		return nil, err
	}
	return s.staffRepo.FindByID(staff.ID)
}

func (s *staffService) GetAllStaff() ([]model.StaffResponse, error) {
	staff, err := s.staffRepo.FindAll()
	if err != nil {
		return nil, err
	}
	responses := make([]model.StaffResponse, len(staff))
	for i := range staff {
		responses[i] = staff[i].ToResponse()
	}
	return responses, nil
}

func (s *staffService) GetStaffByID(id uuid.UUID) (*model.StaffResponse, error) {
	staff, err := s.staffRepo.FindByID(id)
	if err != nil {
		return nil, ErrStaffNotFound
	}
	response := staff.ToResponse()
	return &response, nil
}

func (s *staffService) SeedAccessControl(adminEmail, adminPassword string) error {
	if err := s.privilegeRepo.SeedDefaults(); err != nil {
		return fmt.Errorf("seed privileges: %w", err)
	}
	if err := s.roleRepo.SeedDefaults(); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	all, err := s.privilegeRepo.FindAll()
	if err != nil {
		return err
	}

	master, err := s.roleRepo.FindByCode(model.RoleMasterAdmin)
	if err != nil {
		return err
	}
	if len(master.Privileges) == 0 {
		if err := s.roleRepo.ReplacePrivileges(master, all); err != nil {
			return err
		}
	}

	staffRole, err := s.roleRepo.FindByCode(model.RoleStaff)
	if err != nil {
		return err
	}
	if len(staffRole.Privileges) == 0 {
		limited, err := s.privilegeRepo.FindByCodes(model.StaffRolePrivileges)
		if err != nil {
			return err
		}
		if err := s.roleRepo.ReplacePrivileges(staffRole, limited); err != nil {
			return err
		}
	}

	if existing, _ := s.staffRepo.FindByEmail(adminEmail); existing != nil {
		return nil
	}
	admin := &model.Staff{
		Email:      adminEmail,
		FullName:   "Master Administrator",
		RoleID:     &master.ID,
		IsActive:   true,
		Privileges: master.Privileges,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(adminPassword); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	return s.staffRepo.Create(admin)
}
