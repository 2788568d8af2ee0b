package model

import "time"

// CollegeAdmin represents an administrator account that owns students.
type CollegeAdmin struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone,omitempty"`
	CollegeName  string    `json:"college_name"`
	Department   *string   `json:"department,omitempty"`
	Position     *string   `json:"position,omitempty"`
	IsActive     bool      `json:"is_active"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest is the payload for creating a new college admin account.
type RegisterRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=255"`
	Email       string `json:"email" binding:"required,email,max=255"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	CollegeName string `json:"college_name" binding:"required,min=2,max=255"`
}

// LoginRequest is the payload for admin authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginResponse is returned after successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	Admin CollegeAdmin `json:"admin"`
}

// CreateCollegeAdminRequest is the payload for creating an admin via the management API.
type CreateCollegeAdminRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=255"`
	Email       string  `json:"email" binding:"required,email,max=255"`
	Phone       *string `json:"phone" binding:"omitempty,max=20"`
	CollegeName string  `json:"college_name" binding:"required,min=2,max=255"`
	Department  *string `json:"department" binding:"omitempty,max=255"`
	Position    *string `json:"position" binding:"omitempty,max=255"`
	Password    string  `json:"password" binding:"required,min=8,max=128"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateCollegeAdminRequest is the payload for partially updating an admin.
type UpdateCollegeAdminRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=255"`
	Email       *string `json:"email" binding:"omitempty,email,max=255"`
	Phone       *string `json:"phone" binding:"omitempty,max=20"`
	CollegeName *string `json:"college_name" binding:"omitempty,min=2,max=255"`
	Department  *string `json:"department" binding:"omitempty,max=255"`
	Position    *string `json:"position" binding:"omitempty,max=255"`
	Password    *string `json:"password" binding:"omitempty,min=8,max=128"`
	IsActive    *bool   `json:"is_active"`
}

// AdminStatistics summarizes a college admin's student portfolio by current risk.
type AdminStatistics struct {
	TotalStudents   int `json:"total_students"`
	SafeStudents    int `json:"safe_students"`
	AtRiskStudents  int `json:"at_risk_students"`
	DropoutStudents int `json:"dropout_students"`
	Unassessed      int `json:"unassessed_students"`
}
