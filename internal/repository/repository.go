// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/javajoker/pollopollo-backend/internal/models"
)

// Store is the persistence gateway used by the services. Lookups of missing
// rows return gorm.ErrRecordNotFound whatever the backing implementation.
// List methods return fully materialized slices ordered by created_at
// descending, then id ascending.
type Store interface {
	// Transaction runs fn against a transactional view of the store. A non-nil
	// error from fn rolls back every write made through that view.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	// Users
	CreateUser(ctx context.Context, user *models.User) error
	SaveUser(ctx context.Context, user *models.User) error
	FindUser(ctx context.Context, id uint) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateProducer(ctx context.Context, producer *models.Producer) error
	SaveProducer(ctx context.Context, producer *models.Producer) error
	FindProducerByUserID(ctx context.Context, userID uint) (*models.Producer, error)
	FindProducerByPairingSecret(ctx context.Context, secret string) (*models.Producer, error)
	CreateReceiver(ctx context.Context, receiver *models.Receiver) error
	CountUsersByRole(ctx context.Context, role models.UserRole) (int64, error)
	// DonationStats sums applications on a producer's products in status that
	// were last modified at or after since. A zero since means all time.
	DonationStats(ctx context.Context, producerID uint, status models.ApplicationStatus, since time.Time) (models.DonationStats, error)

	// Products
	CreateProduct(ctx context.Context, product *models.Product) error
	SaveProduct(ctx context.Context, product *models.Product) error
	FindProduct(ctx context.Context, id uint) (*models.Product, error)
	ListProductsByProducer(ctx context.Context, producerID uint) ([]models.Product, error)

	// Applications
	CreateApplication(ctx context.Context, app *models.Application) error
	SaveApplication(ctx context.Context, app *models.Application) error
	DeleteApplication(ctx context.Context, id uint) error
	FindApplication(ctx context.Context, id uint) (*models.Application, error)
	FindApplicationDetail(ctx context.Context, id uint) (*models.ApplicationDetail, error)
	ListApplicationDetails(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, error)
	FindApplicationParties(ctx context.Context, id uint) (*models.ApplicationParties, error)
	DistinctReceiverCountries(ctx context.Context) ([]string, error)
	DistinctProducerCities(ctx context.Context, country string) ([]string, error)

	// Contracts
	FindContract(ctx context.Context, applicationID uint) (*models.Contract, error)
	SaveContract(ctx context.Context, contract *models.Contract) error
	FindContractInfo(ctx context.Context, applicationID uint) (*models.ContractInfo, error)
	LatestExchangeRate(ctx context.Context) (*models.ByteExchangeRate, error)
}
