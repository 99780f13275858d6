package service

import (
	"errors"

	"dental-inventory/internal/model"
	"dental-inventory/internal/repository"
	"dental-inventory/pkg/jwt"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrStaffNotFound      = errors.New("staff not found")
	ErrStaffInactive      = errors.New("staff account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
)

type AuthService interface {
	Login(email, password string) (*LoginResponse, error)
	ResetPassword(email, oldPassword, newPassword string) error
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
}

type LoginResponse struct {
	Token      string              `json:"token"`
	Staff      model.StaffResponse `json:"staff"`
	Privileges []string            `json:"privileges"`
}

type TokenValidationResponse struct {
	Staff      model.StaffResponse `json:"staff"`
	Privileges []string            `json:"privileges"`
}

type authService struct {
	staffRepo repository.StaffRepository
	tokens    *jwt.Manager
}

func NewAuthService(staffRepo repository.StaffRepository, tokens *jwt.Manager) AuthService {
	return &authService{staffRepo: staffRepo, tokens: tokens}
}

func (s *authService) Login(email, password string) (*LoginResponse, error) {
	staff, err := s.staffRepo.FindByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !staff.IsActive {
		return nil, ErrStaffInactive
	}
	if !staff.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// a fresh version invalidates tokens issued to earlier sessions
	staff.TokenVersion = uuid.New().String()
	if err := s.staffRepo.UpdateTokenVersion(staff.ID, staff.TokenVersion); err != nil {
		return nil, errors.New("failed to update session")
	}

	roleCode := ""
	if staff.Role != nil {
		roleCode = staff.Role.Code
	}
	token, err := s.tokens.Generate(jwt.Claims{
		StaffID:      staff.ID,
		Email:        staff.Email,
		Name:         staff.FullName,
		RoleCode:     roleCode,
		Privileges:   staff.PrivilegeCodes(),
		TokenVersion: staff.TokenVersion,
	})
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{
		Token:      token,
		Staff:      staff.ToResponse(),
		Privileges: staff.PrivilegeCodes(),
	}, nil
}

func (s *authService) ResetPassword(email, oldPassword, newPassword string) error {
	staff, err := s.staffRepo.FindByEmail(email)
	if err != nil {
		return ErrStaffNotFound
	}
	if !staff.IsActive {
		return ErrStaffInactive
	}
	if !staff.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if err := staff.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}
	if err := s.staffRepo.UpdatePassword(staff.ID, staff.Password); err != nil {
		return err
	}
	// sessions issued with the old password end here
	if err := s.staffRepo.UpdateTokenVersion(staff.ID, uuid.New().String()); err != nil {
		return errors.New("failed to update session")
	}
	return nil
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	staff, err := s.staffRepo.FindByID(claims.StaffID)
	if err != nil {
		return nil, ErrStaffNotFound
	}
	if !staff.IsActive {
		return nil, ErrStaffInactive
	}
	if staff.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}

	return &TokenValidationResponse{
		Staff:      staff.ToResponse(),
		Privileges: staff.PrivilegeCodes(),
	}, nil
}
