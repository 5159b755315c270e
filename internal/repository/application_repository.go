// internal/repository/application_repository.go
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/javajoker/pollopollo-backend/internal/models"
)

const applicationDetailColumns = `a.id AS application_id, a.receiver_id,
	u.first_name AS receiver_first_name, u.sur_name AS receiver_sur_name,
	u.country AS receiver_country, u.thumbnail AS receiver_thumbnail,
	p.id AS product_id, p.title AS product_title, p.price AS product_price, p.producer_id,
	a.motivation, a.status, a.created_at, a.last_modified_at, a.date_of_donation`

func (s *GormStore) CreateApplication(ctx context.Context, app *models.Application) error {
	return s.db.WithContext(ctx).Omit("Receiver", "Product", "Contract").Create(app).Error
}

func (s *GormStore) SaveApplication(ctx context.Context, app *models.Application) error {
	return s.db.WithContext(ctx).Omit("Receiver", "Product", "Contract").Save(app).Error
}

func (s *GormStore) DeleteApplication(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Application{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *GormStore) FindApplication(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	if err := s.db.WithContext(ctx).First(&app, id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *GormStore) detailQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table("applications AS a").
		Select(applicationDetailColumns).
		Joins("JOIN users u ON u.id = a.receiver_id").
		Joins("JOIN products p ON p.id = a.product_id")
}

func (s *GormStore) FindApplicationDetail(ctx context.Context, id uint) (*models.ApplicationDetail, error) {
	var detail models.ApplicationDetail
	if err := s.detailQuery(ctx).Where("a.id = ?", id).Take(&detail).Error; err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *GormStore) ListApplicationDetails(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, error) {
	q := s.detailQuery(ctx)

	if filter.Status != "" {
		q = q.Where("a.status = ?", filter.Status)
	}
	if filter.ReceiverID != 0 {
		q = q.Where("a.receiver_id = ?", filter.ReceiverID)
	}
	if filter.ProducerID != 0 {
		q = q.Where("p.producer_id = ?", filter.ProducerID)
	}
	if filter.ReceiverCountry != "" {
		q = q.Where("u.country = ?", filter.ReceiverCountry)
	}
	if filter.ProducerCity != "" {
		q = q.Joins("JOIN producers pr ON pr.user_id = p.producer_id").
			Where("pr.city = ?", filter.ProducerCity)
	}
	if filter.Withdrawable {
		q = q.Joins("JOIN contracts c ON c.application_id = a.id").
			Where("c.completed = ? AND c.bytes > 0 AND c.withdrawal_pending = ?", true, false)
	}

	details := []models.ApplicationDetail{}
	if err := q.Order("a.created_at DESC, a.id ASC").Scan(&details).Error; err != nil {
		return nil, err
	}
	return details, nil
}

func (s *GormStore) FindApplicationParties(ctx context.Context, id uint) (*models.ApplicationParties, error) {
	var app models.Application
	err := s.db.WithContext(ctx).
		Preload("Receiver").
		Preload("Product.Producer.Producer").
		First(&app, id).Error
	if err != nil {
		return nil, err
	}
	if app.Receiver == nil || app.Product == nil {
		return nil, gorm.ErrRecordNotFound
	}

	parties := &models.ApplicationParties{
		Receiver: *app.Receiver,
		Product:  *app.Product,
	}
	if owner := app.Product.Producer; owner != nil {
		parties.ProducerUser = *owner
		if owner.Producer != nil {
			parties.Producer = *owner.Producer
		}
	}

	app.Receiver = nil
	app.Product = nil
	parties.Application = app
	parties.Product.Producer = nil
	parties.ProducerUser.Producer = nil
	return parties, nil
}

func (s *GormStore) DistinctReceiverCountries(ctx context.Context) ([]string, error) {
	countries := []string{}
	err := s.db.WithContext(ctx).Table("applications AS a").
		Joins("JOIN users u ON u.id = a.receiver_id").
		Where("a.status = ? AND u.country <> ''", models.ApplicationStatusOpen).
		Distinct().
		Order("u.country").
		Pluck("u.country", &countries).Error
	return countries, err
}

func (s *GormStore) DistinctProducerCities(ctx context.Context, country string) ([]string, error) {
	cities := []string{}
	err := s.db.WithContext(ctx).Table("applications AS a").
		Joins("JOIN users u ON u.id = a.receiver_id").
		Joins("JOIN products p ON p.id = a.product_id").
		Joins("JOIN producers pr ON pr.user_id = p.producer_id").
		Where("a.status = ? AND u.country = ? AND pr.city <> ''", models.ApplicationStatusOpen, country).
		Distinct().
		Order("pr.city").
		Pluck("pr.city", &cities).Error
	return cities, err
}
