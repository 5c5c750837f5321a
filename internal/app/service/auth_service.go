package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"evoting_backend/internal/common"
	"evoting_backend/internal/common/security"
	"evoting_backend/internal/domain/model"
	"evoting_backend/internal/domain/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	aadharPattern = regexp.MustCompile(`^\d{12}$`)
	mobilePattern = regexp.MustCompile(`^\d{10}$`)
)

const minPasswordLength = 6

type AuthService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, logger *zap.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, logger: logger}
}

type SignupRequest struct {
	Name         string `json:"name"`
	Age          int    `json:"age"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile"`
	Address      string `json:"address"`
	AadharNumber string `json:"aadharCardNumber"`
	Password     string `json:"password"`
	Role         string `json:"role"`
}

type LoginRequest struct {
	AadharNumber string `json:"aadharCardNumber"`
	Password     string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type VerifyAadharResponse struct {
	Message      string `json:"message"`
	Mobile       string `json:"mobile"`
	MaskedMobile string `json:"maskedMobile"`
}

type ResetPasswordRequest struct {
	AadharNumber string `json:"aadharCardNumber"`
	NewPassword  string `json:"newPassword"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if req.Name == "" || req.Address == "" || req.Password == "" {
		return nil, fmt.Errorf("name, address and password are required: %w", common.ErrBadRequest)
	}

	role := req.Role
	if role == "" {
		role = model.RoleVoter
	}
	if role != model.RoleVoter && role != model.RoleAdmin {
		return nil, fmt.Errorf("role must be voter or admin: %w", common.ErrValidation)
	}

	// Single-admin pre-check for a clean error message; the partial
	// unique index on users(role) is the actual guarantee under
	// concurrent signups.
	if role == model.RoleAdmin {
		adminCount, err := s.userRepo.CountAdmins(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count admins: %w", err)
		}
		if adminCount > 0 {
			return nil, fmt.Errorf("admin user already exists: %w", common.ErrConflict)
		}
	}

	if !aadharPattern.MatchString(req.AadharNumber) {
		return nil, fmt.Errorf("aadhar card number must be exactly 12 digits: %w", common.ErrValidation)
	}
	if !mobilePattern.MatchString(req.Mobile) {
		return nil, fmt.Errorf("mobile number must be exactly 10 digits: %w", common.ErrValidation)
	}

	if err := s.checkDuplicate(ctx, s.userRepo.FindByAadhar, req.AadharNumber, "aadhar card number"); err != nil {
		return nil, err
	}
	if err := s.checkDuplicate(ctx, s.userRepo.FindByMobile, req.Mobile, "mobile number"); err != nil {
		return nil, err
	}
	if req.Email != "" {
		if err := s.checkDuplicate(ctx, s.userRepo.FindByEmail, req.Email, "email"); err != nil {
			return nil, err
		}
	}

	if req.Age < 18 {
		return nil, fmt.Errorf("age must be 18 or above to register: %w", common.ErrValidation)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Age:            req.Age,
		Email:          req.Email,
		Mobile:         req.Mobile,
		Address:        req.Address,
		AadharNumber:   req.AadharNumber,
		HashedPassword: hashedPassword,
		Role:           role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", user.Role))

	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = "" // Clear password before returning
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) checkDuplicate(ctx context.Context, find func(context.Context, string) (*model.User, error), value, field string) error {
	_, err := find(ctx, value)
	if err == nil {
		return fmt.Errorf("user with the same %s already exists: %w", field, common.ErrConflict)
	}
	if !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("failed to check existing %s: %w", field, err)
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (string, error) {
	if req.AadharNumber == "" || req.Password == "" {
		return "", fmt.Errorf("aadhar card number and password are required: %w", common.ErrBadRequest)
	}
	if !aadharPattern.MatchString(req.AadharNumber) {
		return "", fmt.Errorf("invalid aadhar card number format: %w", common.ErrValidation)
	}

	user, err := s.userRepo.FindByAadhar(ctx, req.AadharNumber)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrUnauthorized // Generic message for security
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return "", common.ErrUnauthorized
	}

	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = ""
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return fmt.Errorf("both currentPassword and newPassword are required: %w", common.ErrBadRequest)
	}
	if len(req.NewPassword) < minPasswordLength {
		return fmt.Errorf("new password must be at least 6 characters long: %w", common.ErrValidation)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !security.CheckPasswordHash(req.CurrentPassword, user.HashedPassword) {
		return fmt.Errorf("invalid current password: %w", common.ErrUnauthorized)
	}

	hashedPassword, err := security.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return err
	}
	s.logger.Info("password updated", zap.String("user_id", userID))
	return nil
}

// VerifyAadhar resolves an aadhar number to the account's mobile number
// for the password recovery flow. The full number is returned because
// the caller needs it to request an OTP; the masked form is for display.
func (s *AuthService) VerifyAadhar(ctx context.Context, aadhar string) (*VerifyAadharResponse, error) {
	if aadhar == "" {
		return nil, fmt.Errorf("aadhar card number is required: %w", common.ErrBadRequest)
	}
	if !aadharPattern.MatchString(aadhar) {
		return nil, fmt.Errorf("invalid aadhar card number format: %w", common.ErrValidation)
	}

	user, err := s.userRepo.FindByAadhar(ctx, aadhar)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("no account found with this aadhar card number: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &VerifyAadharResponse{
		Message:      "Aadhar card number verified successfully",
		Mobile:       user.Mobile,
		MaskedMobile: common.MaskMobile(user.Mobile),
	}, nil
}

// ResetPassword sets a new password without the old one. Identity is
// assumed proven out-of-band via the OTP step-up; the endpoint itself
// does not demand OTP proof.
func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if req.AadharNumber == "" || req.NewPassword == "" {
		return fmt.Errorf("aadhar card number and new password are required: %w", common.ErrBadRequest)
	}
	if !aadharPattern.MatchString(req.AadharNumber) {
		return fmt.Errorf("invalid aadhar card number format: %w", common.ErrValidation)
	}
	if len(req.NewPassword) < minPasswordLength {
		return fmt.Errorf("new password must be at least 6 characters long: %w", common.ErrValidation)
	}

	user, err := s.userRepo.FindByAadhar(ctx, req.AadharNumber)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("no account found with this aadhar card number: %w", common.ErrNotFound)
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	hashedPassword, err := security.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return err
	}
	s.logger.Info("password reset", zap.String("user_id", user.ID))
	return nil
}
