// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/pollopollo-backend/internal/models"
	"github.com/javajoker/pollopollo-backend/internal/repository"
	"github.com/javajoker/pollopollo-backend/internal/utils"
)

type ProductService struct {
	store      repository.Store
	thumbnails ThumbnailResolver
}

type CreateProductRequest struct {
	Title       string `json:"title" validate:"required,single_line,max=255"`
	Description string `json:"description" validate:"max=5000"`
	Price       int    `json:"price" validate:"required,gt=0"`
	Location    string `json:"location" validate:"single_line,max=255"`
	Country     string `json:"country" validate:"single_line,max=255"`
	Thumbnail   string `json:"thumbnail" validate:"single_line,max=255"`
	Rank        int    `json:"rank" validate:"gte=0"`
}

type ProductView struct {
	ProductID   uint   `json:"product_id"`
	ProducerID  uint   `json:"producer_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Location    string `json:"location"`
	Country     string `json:"country"`
	Thumbnail   string `json:"thumbnail"`
	Available   bool   `json:"available"`
	Rank        int    `json:"rank"`
}

func NewProductService(store repository.Store, thumbnails ThumbnailResolver) *ProductService {
	return &ProductService{
		store:      store,
		thumbnails: thumbnails,
	}
}

// Create adds an available product owned by producerID. Only producers may
// list products.
func (s *ProductService) Create(ctx context.Context, producerID uint, req *CreateProductRequest) (*ProductView, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	user, err := s.store.FindUser(ctx, producerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.persistenceError("find user", err)
	}
	if user.Role != models.UserRoleProducer {
		return nil, fmt.Errorf("%w: only producers can create products", ErrForbidden)
	}

	product := &models.Product{
		ProducerID:  producerID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Location:    req.Location,
		Country:     req.Country,
		Thumbnail:   req.Thumbnail,
		Available:   true,
		Rank:        req.Rank,
	}
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		return tx.CreateProduct(ctx, product)
	})
	if err != nil {
		return nil, s.persistenceError("create product", err)
	}

	logrus.WithFields(logrus.Fields{
		"product_id":  product.ID,
		"producer_id": producerID,
	}).Info("Product created")

	view := s.toView(product)
	return &view, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*ProductView, error) {
	product, err := s.store.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, s.persistenceError("find product", err)
	}
	view := s.toView(product)
	return &view, nil
}

func (s *ProductService) ListByProducer(ctx context.Context, producerID uint) ([]ProductView, error) {
	products, err := s.store.ListProductsByProducer(ctx, producerID)
	if err != nil {
		return nil, s.persistenceError("list products", err)
	}

	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, s.toView(&products[i]))
	}
	return views, nil
}

// SetAvailability toggles whether new applications can be made for a product.
// Existing applications are left as they are.
func (s *ProductService) SetAvailability(ctx context.Context, producerID, productID uint, available bool) (*ProductView, error) {
	var product *models.Product
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		p, err := tx.FindProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if p.ProducerID != producerID {
			return fmt.Errorf("%w: product belongs to another producer", ErrForbidden)
		}
		p.Available = available
		product = p
		return tx.SaveProduct(ctx, p)
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrForbidden) {
			return nil, err
		}
		return nil, s.persistenceError("update product", err)
	}

	view := s.toView(product)
	return &view, nil
}

func (s *ProductService) toView(p *models.Product) ProductView {
	view := ProductView{
		ProductID:   p.ID,
		ProducerID:  p.ProducerID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Location:    p.Location,
		Country:     p.Country,
		Available:   p.Available,
		Rank:        p.Rank,
	}
	if s.thumbnails != nil {
		view.Thumbnail = s.thumbnails.ThumbnailURL(p.Thumbnail)
	}
	return view
}

func (s *ProductService) persistenceError(op string, err error) error {
	logrus.WithError(err).Errorf("Failed to %s", op)
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}
