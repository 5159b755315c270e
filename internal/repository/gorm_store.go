// internal/repository/gorm_store.go
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/javajoker/pollopollo-backend/internal/database"
	"github.com/javajoker/pollopollo-backend/internal/models"
)

// GormStore implements Store on PostgreSQL through gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// Users

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Omit("Producer", "Receiver").Create(user).Error
}

func (s *GormStore) SaveUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Omit("Producer", "Receiver").Save(user).Error
}

func (s *GormStore) FindUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Producer").Preload("Receiver").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) CreateProducer(ctx context.Context, producer *models.Producer) error {
	return s.db.WithContext(ctx).Create(producer).Error
}

func (s *GormStore) SaveProducer(ctx context.Context, producer *models.Producer) error {
	return s.db.WithContext(ctx).Save(producer).Error
}

func (s *GormStore) FindProducerByUserID(ctx context.Context, userID uint) (*models.Producer, error) {
	var producer models.Producer
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&producer).Error; err != nil {
		return nil, err
	}
	return &producer, nil
}

func (s *GormStore) FindProducerByPairingSecret(ctx context.Context, secret string) (*models.Producer, error) {
	var producer models.Producer
	if err := s.db.WithContext(ctx).Where("pairing_secret = ?", secret).First(&producer).Error; err != nil {
		return nil, err
	}
	return &producer, nil
}

func (s *GormStore) CreateReceiver(ctx context.Context, receiver *models.Receiver) error {
	return s.db.WithContext(ctx).Create(receiver).Error
}

func (s *GormStore) CountUsersByRole(ctx context.Context, role models.UserRole) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (s *GormStore) DonationStats(ctx context.Context, producerID uint, status models.ApplicationStatus, since time.Time) (models.DonationStats, error) {
	var stats models.DonationStats
	q := s.db.WithContext(ctx).Table("applications AS a").
		Select("COUNT(*) AS count, COALESCE(SUM(p.price), 0) AS total").
		Joins("JOIN products p ON p.id = a.product_id").
		Where("p.producer_id = ? AND a.status = ?", producerID, status)
	if !since.IsZero() {
		q = q.Where("a.last_modified_at >= ?", since)
	}
	err := q.Scan(&stats).Error
	return stats, err
}

// Products

func (s *GormStore) CreateProduct(ctx context.Context, product *models.Product) error {
	return s.db.WithContext(ctx).Omit("Producer", "Applications").Create(product).Error
}

func (s *GormStore) SaveProduct(ctx context.Context, product *models.Product) error {
	return s.db.WithContext(ctx).Omit("Producer", "Applications").Save(product).Error
}

func (s *GormStore) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *GormStore) ListProductsByProducer(ctx context.Context, producerID uint) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.WithContext(ctx).
		Where("producer_id = ?", producerID).
		Order("created_at DESC, id ASC").
		Find(&products).Error
	return products, err
}

// Contracts

func (s *GormStore) FindContract(ctx context.Context, applicationID uint) (*models.Contract, error) {
	var contract models.Contract
	if err := s.db.WithContext(ctx).Where("application_id = ?", applicationID).Take(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func (s *GormStore) SaveContract(ctx context.Context, contract *models.Contract) error {
	return s.db.WithContext(ctx).Save(contract).Error
}

func (s *GormStore) FindContractInfo(ctx context.Context, applicationID uint) (*models.ContractInfo, error) {
	var info models.ContractInfo
	err := s.db.WithContext(ctx).Table("applications AS a").
		Select(`a.id AS application_id, p.id AS product_id, p.producer_id, p.price,
			pr.wallet_address AS producer_wallet, pr.device_address AS producer_device`).
		Joins("JOIN products p ON p.id = a.product_id").
		Joins("JOIN producers pr ON pr.user_id = p.producer_id").
		Where("a.id = ?", applicationID).
		Take(&info).Error
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *GormStore) LatestExchangeRate(ctx context.Context) (*models.ByteExchangeRate, error) {
	var rate models.ByteExchangeRate
	if err := s.db.WithContext(ctx).Order("updated_at DESC, id DESC").Take(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}
