package model

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Staff is a clinic employee allowed to sign in and move stock.
type Staff struct {
	BaseModel
	Email        string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password     string      `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string      `gorm:"type:varchar(255)" json:"full_name"`
	RoleID       *uint       `gorm:"index" json:"role_id"`
	Role         *Role       `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	IsActive     bool        `gorm:"default:true" json:"is_active"`
	Privileges   []Privilege `gorm:"many2many:staff_privileges;" json:"privileges,omitempty"`
	TokenVersion string      `gorm:"type:varchar(255);default:''" json:"-"` // rotated on login, one live session per account
}

// SetPassword hashes and stores the password.
func (s *Staff) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.Password = string(hashed)
	return nil
}

func (s *Staff) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(s.Password), []byte(password)) == nil
}

// PrivilegeCodes returns the codes of every privilege granted to s.
func (s *Staff) PrivilegeCodes() []string {
	codes := make([]string, len(s.Privileges))
	for i, p := range s.Privileges {
		codes[i] = p.Code
	}
	return codes
}

// StaffResponse is the API shape of a staff member, without secrets.
type StaffResponse struct {
	ID         uuid.UUID   `json:"id"`
	Email      string      `json:"email"`
	FullName   string      `json:"full_name"`
	RoleID     *uint       `json:"role_id,omitempty"`
	Role       *Role       `json:"role,omitempty"`
	IsActive   bool        `json:"is_active"`
	Privileges []Privilege `json:"privileges"`
}

func (s *Staff) ToResponse() StaffResponse {
	return StaffResponse{
		ID:         s.ID,
		Email:      s.Email,
		FullName:   s.FullName,
		RoleID:     s.RoleID,
		Role:       s.Role,
		IsActive:   s.IsActive,
		Privileges: s.Privileges,
	}
}
