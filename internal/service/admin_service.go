package service

import (
	"context"

	"github.com/retainhq/retain-backend/internal/model"
	"github.com/retainhq/retain-backend/internal/repository"
)

// AdminService manages college admin accounts.
type AdminService struct {
	admins *repository.AdminRepository
	auth   *AuthService
}

// NewAdminService creates a new AdminService.
func NewAdminService(admins *repository.AdminRepository, auth *AuthService) *AdminService {
	return &AdminService{admins: admins, auth: auth}
}

// Register creates a self-service admin account. New accounts are active
// immediately.
func (s *AdminService) Register(ctx context.Context, req *model.RegisterRequest) (*model.CollegeAdmin, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	admin := &model.CollegeAdmin{
		Name:         req.Name,
		Email:        req.Email,
		CollegeName:  req.CollegeName,
		IsActive:     true,
		PasswordHash: hash,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// Authenticate verifies credentials and returns the admin on success.
// Deactivated accounts cannot log in.
func (s *AdminService) Authenticate(ctx context.Context, email, password string) (*model.CollegeAdmin, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.auth.CheckPassword(admin.PasswordHash, password); err != nil {
		return nil, err
	}
	if !admin.IsActive {
		return nil, ErrAccountInactive
	}
	return admin, nil
}

// GetByID returns a single admin.
func (s *AdminService) GetByID(ctx context.Context, id int) (*model.CollegeAdmin, error) {
	return s.admins.GetByID(ctx, id)
}

// List returns a page of admins with the total count.
func (s *AdminService) List(ctx context.Context, active *bool, search string, page, perPage int) ([]model.CollegeAdmin, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 15
	}
	return s.admins.ListPaginated(ctx, active, search, perPage, (page-1)*perPage)
}

// ListActive returns all active admins, unpaginated.
func (s *AdminService) ListActive(ctx context.Context) ([]model.CollegeAdmin, error) {
	return s.admins.ListActive(ctx)
}

// Create adds an admin through the management API.
func (s *AdminService) Create(ctx context.Context, req *model.CreateCollegeAdminRequest) (*model.CollegeAdmin, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	admin := &model.CollegeAdmin{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		CollegeName:  req.CollegeName,
		Department:   req.Department,
		Position:     req.Position,
		IsActive:     active,
		PasswordHash: hash,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// Update applies a partial update to an admin.
func (s *AdminService) Update(ctx context.Context, id int, req *model.UpdateCollegeAdminRequest) (*model.CollegeAdmin, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		admin.Name = *req.Name
	}
	if req.Email != nil {
		admin.Email = *req.Email
	}
	if req.Phone != nil {
		admin.Phone = req.Phone
	}
	if req.CollegeName != nil {
		admin.CollegeName = *req.CollegeName
	}
	if req.Department != nil {
		admin.Department = req.Department
	}
	if req.Position != nil {
		admin.Position = req.Position
	}
	if req.IsActive != nil {
		admin.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hash, err := s.auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		admin.PasswordHash = hash
	}

	if err := s.admins.Update(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// Delete removes an admin. Admins that still own students cannot be deleted.
func (s *AdminService) Delete(ctx context.Context, id int) error {
	return s.admins.Delete(ctx, id)
}

// Statistics aggregates student and risk counts for an admin.
func (s *AdminService) Statistics(ctx context.Context, adminID int) (*model.AdminStatistics, error) {
	return s.admins.GetStatistics(ctx, adminID)
}
