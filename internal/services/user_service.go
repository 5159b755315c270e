// internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/pollopollo-backend/internal/config"
	"github.com/javajoker/pollopollo-backend/internal/models"
	"github.com/javajoker/pollopollo-backend/internal/repository"
	"github.com/javajoker/pollopollo-backend/internal/utils"
)

// PairingLinker builds the wallet link a producer follows to pair a device.
type PairingLinker interface {
	PairingLink(secret string) string
}

type UserService struct {
	store      repository.Store
	cfg        *config.Config
	pairing    PairingLinker
	thumbnails ThumbnailResolver
	now        func() time.Time
}

type RegisterRequest struct {
	FirstName    string          `json:"first_name" validate:"required,single_line,max=255"`
	SurName      string          `json:"sur_name" validate:"required,single_line,max=255"`
	Email        string          `json:"email" validate:"required,email,max=255"`
	Password     string          `json:"password" validate:"required,min=8,max=255"`
	Country      string          `json:"country" validate:"required,single_line,max=255"`
	Role         models.UserRole `json:"role" validate:"required,user_role"`
	Street       string          `json:"street" validate:"required_if=Role producer,single_line,max=255"`
	StreetNumber string          `json:"street_number" validate:"single_line,max=50"`
	Zipcode      string          `json:"zipcode" validate:"single_line,max=50"`
	City         string          `json:"city" validate:"required_if=Role producer,single_line,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	FirstName       string `json:"first_name" validate:"required,single_line,max=255"`
	SurName         string `json:"sur_name" validate:"required,single_line,max=255"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Country         string `json:"country" validate:"required,single_line,max=255"`
	Description     string `json:"description" validate:"max=5000"`
	Thumbnail       string `json:"thumbnail" validate:"single_line,max=255"`
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"omitempty,min=8,max=255"`
	WalletAddress   string `json:"wallet_address" validate:"single_line,max=255"`
	Street          string `json:"street" validate:"single_line,max=255"`
	StreetNumber    string `json:"street_number" validate:"single_line,max=50"`
	Zipcode         string `json:"zipcode" validate:"single_line,max=50"`
	City            string `json:"city" validate:"single_line,max=255"`
}

type PairDeviceRequest struct {
	PairingSecret string `json:"pairing_secret" validate:"required,single_line"`
	DeviceAddress string `json:"device_address" validate:"required,single_line,max=255"`
	WalletAddress string `json:"wallet_address" validate:"required,single_line,max=255"`
}

type AuthResponse struct {
	User        UserProfile `json:"user"`
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"` // in seconds
}

// UserProfile is either a *ProducerView or a *ReceiverView.
type UserProfile interface {
	ProfileRole() models.UserRole
	isProfile()
}

type UserDetails struct {
	UserID      uint            `json:"user_id"`
	FirstName   string          `json:"first_name"`
	SurName     string          `json:"sur_name"`
	Email       string          `json:"email,omitempty"`
	Country     string          `json:"country"`
	Description string          `json:"description"`
	Thumbnail   string          `json:"thumbnail"`
	Role        models.UserRole `json:"role"`
}

type DonationSummary struct {
	PastWeek  models.DonationStats `json:"past_week"`
	PastMonth models.DonationStats `json:"past_month"`
	AllTime   models.DonationStats `json:"all_time"`
}

type ProducerView struct {
	UserDetails
	WalletAddress      string          `json:"wallet_address"`
	DeviceAddress      string          `json:"device_address"`
	PairingLink        string          `json:"pairing_link,omitempty"`
	Street             string          `json:"street"`
	StreetNumber       string          `json:"street_number"`
	Zipcode            string          `json:"zipcode"`
	City               string          `json:"city"`
	CompletedDonations DonationSummary `json:"completed_donations"`
	PendingDonations   DonationSummary `json:"pending_donations"`
}

func (*ProducerView) ProfileRole() models.UserRole { return models.UserRoleProducer }
func (*ProducerView) isProfile()                   {}

type ReceiverView struct {
	UserDetails
}

func (*ReceiverView) ProfileRole() models.UserRole { return models.UserRoleReceiver }
func (*ReceiverView) isProfile()                   {}

type UserCounts struct {
	Producers int64 `json:"producers"`
	Receivers int64 `json:"receivers"`
}

func NewUserService(store repository.Store, cfg *config.Config, pairing PairingLinker, thumbnails ThumbnailResolver) *UserService {
	return &UserService{
		store:      store,
		cfg:        cfg,
		pairing:    pairing,
		thumbnails: thumbnails,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	if _, err := s.store.FindUserByEmail(ctx, req.Email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.persistenceError("look up email", err)
	}

	user := &models.User{
		FirstName: req.FirstName,
		SurName:   req.SurName,
		Email:     req.Email,
		Country:   req.Country,
		Role:      req.Role,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		if user.Role == models.UserRoleProducer {
			return tx.CreateProducer(ctx, &models.Producer{
				UserID:        user.ID,
				PairingSecret: utils.GeneratePairingSecret(s.now()),
				Street:        req.Street,
				StreetNumber:  req.StreetNumber,
				Zipcode:       req.Zipcode,
				City:          req.City,
			})
		}
		return tx.CreateReceiver(ctx, &models.Receiver{UserID: user.ID})
	})
	if err != nil {
		return nil, s.persistenceError("create user", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User registered")

	return s.issueToken(ctx, user.ID)
}

func (s *UserService) Authenticate(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	user, err := s.store.FindUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, s.persistenceError("look up email", err)
	}
	if err := user.CheckPassword(req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(ctx, user.ID)
}

func (s *UserService) issueToken(ctx context.Context, userID uint) (*AuthResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	accessToken, err := utils.GenerateJWT(user.ID, user.FullName(), string(user.Role), s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	profile, err := s.profile(ctx, user, true)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:        profile,
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   s.cfg.JWT.AccessTokenTTL * 3600,
	}, nil
}

// Find returns the profile of userID. Private fields are only filled in when
// viewerID is the same user.
func (s *UserService) Find(ctx context.Context, userID, viewerID uint) (UserProfile, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, user, userID == viewerID)
}

func (s *UserService) Update(ctx context.Context, userID uint, req *UpdateUserRequest) (UserProfile, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.CheckPassword(req.CurrentPassword); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !strings.EqualFold(user.Email, req.Email) {
		if _, err := s.store.FindUserByEmail(ctx, req.Email); err == nil {
			return nil, ErrUserExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.persistenceError("look up email", err)
		}
	}

	user.FirstName = req.FirstName
	user.SurName = req.SurName
	user.Email = req.Email
	user.Country = req.Country
	user.Description = req.Description
	user.Thumbnail = req.Thumbnail
	if req.NewPassword != "" {
		if err := user.SetPassword(req.NewPassword); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.SaveUser(ctx, user); err != nil {
			return err
		}
		if user.Role != models.UserRoleProducer || user.Producer == nil {
			return nil
		}
		producer := user.Producer
		if req.WalletAddress != "" {
			producer.WalletAddress = req.WalletAddress
		}
		if req.Street != "" {
			producer.Street = req.Street
		}
		if req.StreetNumber != "" {
			producer.StreetNumber = req.StreetNumber
		}
		if req.Zipcode != "" {
			producer.Zipcode = req.Zipcode
		}
		if req.City != "" {
			producer.City = req.City
		}
		return tx.SaveProducer(ctx, producer)
	})
	if err != nil {
		return nil, s.persistenceError("update user", err)
	}

	return s.Find(ctx, userID, userID)
}

// PairDevice stores the wallet and device address reported by the chatbot for
// the producer owning the pairing secret.
func (s *UserService) PairDevice(ctx context.Context, req *PairDeviceRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		producer, err := tx.FindProducerByPairingSecret(ctx, req.PairingSecret)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidPairingSecret
			}
			return err
		}
		producer.DeviceAddress = req.DeviceAddress
		producer.WalletAddress = req.WalletAddress
		return tx.SaveProducer(ctx, producer)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidPairingSecret) {
			return err
		}
		return s.persistenceError("pair device", err)
	}
	return nil
}

func (s *UserService) Counts(ctx context.Context) (*UserCounts, error) {
	producers, err := s.store.CountUsersByRole(ctx, models.UserRoleProducer)
	if err != nil {
		return nil, s.persistenceError("count producers", err)
	}
	receivers, err := s.store.CountUsersByRole(ctx, models.UserRoleReceiver)
	if err != nil {
		return nil, s.persistenceError("count receivers", err)
	}
	return &UserCounts{Producers: producers, Receivers: receivers}, nil
}

func (s *UserService) findUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.FindUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.persistenceError("find user", err)
	}
	return user, nil
}

func (s *UserService) profile(ctx context.Context, user *models.User, self bool) (UserProfile, error) {
	details := UserDetails{
		UserID:      user.ID,
		FirstName:   user.FirstName,
		SurName:     user.SurName,
		Country:     user.Country,
		Description: user.Description,
		Role:        user.Role,
	}
	if self {
		details.Email = user.Email
	}
	if s.thumbnails != nil {
		details.Thumbnail = s.thumbnails.ThumbnailURL(user.Thumbnail)
	}

	if user.Role != models.UserRoleProducer {
		return &ReceiverView{UserDetails: details}, nil
	}

	view := &ProducerView{UserDetails: details}
	if p := user.Producer; p != nil {
		view.WalletAddress = p.WalletAddress
		view.DeviceAddress = p.DeviceAddress
		view.Street = p.Street
		view.StreetNumber = p.StreetNumber
		view.Zipcode = p.Zipcode
		view.City = p.City
		if self && s.pairing != nil && p.PairingSecret != "" {
			view.PairingLink = s.pairing.PairingLink(p.PairingSecret)
		}
	}

	var err error
	if view.CompletedDonations, err = s.donationSummary(ctx, user.ID, models.ApplicationStatusCompleted); err != nil {
		return nil, err
	}
	if view.PendingDonations, err = s.donationSummary(ctx, user.ID, models.ApplicationStatusPending); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *UserService) donationSummary(ctx context.Context, producerID uint, status models.ApplicationStatus) (DonationSummary, error) {
	now := s.now()
	var (
		summary DonationSummary
		err     error
	)
	if summary.PastWeek, err = s.store.DonationStats(ctx, producerID, status, now.AddDate(0, 0, -7)); err != nil {
		return summary, s.persistenceError("load donation stats", err)
	}
	if summary.PastMonth, err = s.store.DonationStats(ctx, producerID, status, now.AddDate(0, -1, 0)); err != nil {
		return summary, s.persistenceError("load donation stats", err)
	}
	if summary.AllTime, err = s.store.DonationStats(ctx, producerID, status, time.Time{}); err != nil {
		return summary, s.persistenceError("load donation stats", err)
	}
	return summary, nil
}

func (s *UserService) persistenceError(op string, err error) error {
	logrus.WithError(err).Errorf("Failed to %s", op)
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}
