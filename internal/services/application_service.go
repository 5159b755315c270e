// internal/services/application_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/pollopollo-backend/internal/metrics"
	"github.com/javajoker/pollopollo-backend/internal/models"
	"github.com/javajoker/pollopollo-backend/internal/repository"
	"github.com/javajoker/pollopollo-backend/internal/utils"
)

type ApplicationService struct {
	store      repository.Store
	notifier   Notifier
	wallet     WalletClient
	thumbnails ThumbnailResolver
	now        func() time.Time
}

type SubmitApplicationRequest struct {
	ReceiverID uint   `json:"receiver_id" validate:"required"`
	ProductID  uint   `json:"product_id" validate:"required"`
	Motivation string `json:"motivation" validate:"required,min=4,max=5000"`
}

type SubmissionResult struct {
	Outcome     models.SubmitOutcome `json:"outcome"`
	ProductID   uint                 `json:"product_id"`
	Application *ApplicationView     `json:"application,omitempty"`
}

type ApplicationView struct {
	ApplicationID  uint                     `json:"application_id"`
	ReceiverID     uint                     `json:"receiver_id"`
	ReceiverName   string                   `json:"receiver_name"`
	Country        string                   `json:"country"`
	Thumbnail      string                   `json:"thumbnail"`
	ProductID      uint                     `json:"product_id"`
	ProductTitle   string                   `json:"product_title"`
	ProductPrice   int                      `json:"product_price"`
	ProducerID     uint                     `json:"producer_id"`
	Motivation     string                   `json:"motivation"`
	Status         models.ApplicationStatus `json:"status"`
	CreationDate   string                   `json:"creation_date"`
	DateOfDonation string                   `json:"date_of_donation,omitempty"`
}

// StatusActor says who asks for a status change. Receivers may only confirm
// receipt; the wallet reports donations, reverts and holds.
type StatusActor string

const (
	ActorReceiver StatusActor = "receiver"
	ActorWallet   StatusActor = "wallet"
)

type UpdateStatusRequest struct {
	ApplicationID uint                     `json:"application_id" validate:"required"`
	ReceiverID    uint                     `json:"receiver_id" validate:"required"`
	Status        models.ApplicationStatus `json:"status" validate:"required"`
	Contract      *ContractRequest         `json:"contract,omitempty"`
	// Actor defaults to ActorReceiver.
	Actor StatusActor `json:"-"`
}

// ContractRequest carries settlement data recorded together with a status change.
type ContractRequest struct {
	ConfirmKey    string `json:"confirm_key" validate:"single_line,max=255"`
	SharedAddress string `json:"shared_address" validate:"single_line,max=255"`
	DonorWallet   string `json:"donor_wallet" validate:"single_line,max=255"`
	DonorDevice   string `json:"donor_device" validate:"single_line,max=255"`
	Bytes         int64  `json:"bytes" validate:"gte=0"`
	Completed     bool   `json:"completed"`
}

type DeliveryStatus struct {
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

type UpdateResult struct {
	Updated              bool                     `json:"updated"`
	Status               models.ApplicationStatus `json:"status"`
	Notification         *DeliveryStatus          `json:"notification,omitempty"`
	ProducerNotification *DeliveryStatus          `json:"producer_notification,omitempty"`
}

func NewApplicationService(store repository.Store, notifier Notifier, wallet WalletClient, thumbnails ThumbnailResolver) *ApplicationService {
	return &ApplicationService{
		store:      store,
		notifier:   notifier,
		wallet:     wallet,
		thumbnails: thumbnails,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Submit creates an open application for an available product. An unavailable
// product yields OutcomeUnavailable and nothing is written.
func (s *ApplicationService) Submit(ctx context.Context, req *SubmitApplicationRequest) (*SubmissionResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", ErrValidationFailed)
	}
	in := *req
	in.Motivation = strings.TrimSpace(in.Motivation)
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	product, err := s.store.FindProduct(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, s.persistenceError("find product", err, logrus.Fields{"product_id": in.ProductID})
	}

	if !product.Available {
		metrics.RecordSubmission(string(models.SubmitOutcomeUnavailable))
		return &SubmissionResult{
			Outcome:   models.SubmitOutcomeUnavailable,
			ProductID: product.ID,
		}, nil
	}

	now := s.now().Truncate(time.Second)
	app := &models.Application{
		ReceiverID:     in.ReceiverID,
		ProductID:      in.ProductID,
		Motivation:     in.Motivation,
		Status:         models.ApplicationStatusOpen,
		CreatedAt:      now,
		LastModifiedAt: now,
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		return tx.CreateApplication(ctx, app)
	})
	if err != nil {
		return nil, s.persistenceError("create application", err, logrus.Fields{
			"receiver_id": in.ReceiverID,
			"product_id":  in.ProductID,
		})
	}
	metrics.RecordSubmission(string(models.SubmitOutcomeCreated))

	view, err := s.FindByID(ctx, app.ID)
	if err != nil {
		logrus.WithError(err).WithField("application_id", app.ID).Warn("Created application could not be projected")
		view = &ApplicationView{
			ApplicationID: app.ID,
			ReceiverID:    app.ReceiverID,
			ProductID:     product.ID,
			ProductTitle:  product.Title,
			ProductPrice:  product.Price,
			ProducerID:    product.ProducerID,
			Motivation:    app.Motivation,
			Status:        app.Status,
			CreationDate:  app.CreatedAt.Format(models.CreationDateLayout),
		}
	}

	return &SubmissionResult{
		Outcome:     models.SubmitOutcomeCreated,
		ProductID:   product.ID,
		Application: view,
	}, nil
}

func (s *ApplicationService) FindByID(ctx context.Context, id uint) (*ApplicationView, error) {
	detail, err := s.store.FindApplicationDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, s.persistenceError("find application", err, logrus.Fields{"application_id": id})
	}
	view := s.toView(*detail)
	return &view, nil
}

func (s *ApplicationService) ListOpen(ctx context.Context) ([]ApplicationView, error) {
	return s.list(ctx, models.ApplicationFilter{Status: models.ApplicationStatusOpen})
}

func (s *ApplicationService) ListCompleted(ctx context.Context) ([]ApplicationView, error) {
	return s.list(ctx, models.ApplicationFilter{Status: models.ApplicationStatusCompleted})
}

func (s *ApplicationService) ListByReceiver(ctx context.Context, receiverID uint) ([]ApplicationView, error) {
	return s.list(ctx, models.ApplicationFilter{ReceiverID: receiverID})
}

// ListFiltered returns open applications, optionally restricted to a receiver
// country and to the city of the product's producer.
func (s *ApplicationService) ListFiltered(ctx context.Context, country, city string) ([]ApplicationView, error) {
	return s.list(ctx, models.ApplicationFilter{
		Status:          models.ApplicationStatusOpen,
		ReceiverCountry: strings.TrimSpace(country),
		ProducerCity:    strings.TrimSpace(city),
	})
}

func (s *ApplicationService) ListWithdrawableByProducer(ctx context.Context, producerID uint) ([]ApplicationView, error) {
	return s.list(ctx, models.ApplicationFilter{
		Status:       models.ApplicationStatusCompleted,
		ProducerID:   producerID,
		Withdrawable: true,
	})
}

func (s *ApplicationService) list(ctx context.Context, filter models.ApplicationFilter) ([]ApplicationView, error) {
	details, err := s.store.ListApplicationDetails(ctx, filter)
	if err != nil {
		return nil, s.persistenceError("list applications", err, logrus.Fields{"filter": fmt.Sprintf("%+v", filter)})
	}

	views := make([]ApplicationView, 0, len(details))
	for _, d := range details {
		views = append(views, s.toView(d))
	}
	return views, nil
}

// UpdateStatus moves an application along the status graph and notifies the
// people involved. The write is committed before any email goes out, and a
// failed email never undoes it.
func (s *ApplicationService) UpdateStatus(ctx context.Context, req *UpdateStatusRequest) (*UpdateResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", ErrValidationFailed)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidationFailed, req.Status)
	}
	if req.Actor != ActorWallet {
		if req.Status != models.ApplicationStatusCompleted {
			return nil, fmt.Errorf("%w: receivers can only confirm receipt", ErrForbidden)
		}
		if req.Contract != nil {
			return nil, fmt.Errorf("%w: settlement data comes from the wallet", ErrForbidden)
		}
	}
	if req.Contract != nil {
		if err := utils.ValidateStruct(req.Contract); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
	}

	var (
		updated models.Application
		from    models.ApplicationStatus
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		app, err := tx.FindApplication(ctx, req.ApplicationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApplicationNotFound
			}
			return err
		}
		if app.ReceiverID != req.ReceiverID {
			return ErrApplicationNotFound
		}
		if !app.Status.CanTransitionTo(req.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, app.Status, req.Status)
		}

		now := s.now()
		from = app.Status
		app.Status = req.Status
		app.LastModifiedAt = now
		switch req.Status {
		case models.ApplicationStatusPending:
			app.DateOfDonation = &now
		case models.ApplicationStatusOpen:
			app.DateOfDonation = nil
		}

		if err := tx.SaveApplication(ctx, app); err != nil {
			return err
		}
		if req.Contract != nil {
			if err := s.saveContract(ctx, tx, app.ID, req.Contract); err != nil {
				return err
			}
		}

		updated = *app
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrApplicationNotFound) || errors.Is(err, ErrInvalidTransition) {
			return nil, err
		}
		return nil, s.persistenceError("update application status", err, logrus.Fields{
			"application_id": req.ApplicationID,
			"status":         req.Status,
		})
	}

	metrics.RecordTransition(string(from), string(updated.Status))
	logrus.WithFields(logrus.Fields{
		"application_id": updated.ID,
		"from":           from,
		"to":             updated.Status,
		"actor":          actorOrDefault(req.Actor),
	}).Info("Application status updated")

	result := &UpdateResult{Updated: true, Status: updated.Status}
	s.notify(ctx, &updated, result)
	return result, nil
}

func (s *ApplicationService) saveContract(ctx context.Context, tx repository.Store, applicationID uint, in *ContractRequest) error {
	contract, err := tx.FindContract(ctx, applicationID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		contract = &models.Contract{ApplicationID: applicationID, CreatedAt: s.now()}
	}

	info, err := tx.FindContractInfo(ctx, applicationID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if info != nil {
		contract.Price = info.Price
		contract.ProducerWallet = info.ProducerWallet
		contract.ProducerDevice = info.ProducerDevice
	}

	contract.ConfirmKey = in.ConfirmKey
	contract.SharedAddress = in.SharedAddress
	contract.DonorWallet = in.DonorWallet
	contract.DonorDevice = in.DonorDevice
	contract.Bytes = in.Bytes
	contract.Completed = in.Completed
	return tx.SaveContract(ctx, contract)
}

func (s *ApplicationService) notify(ctx context.Context, app *models.Application, result *UpdateResult) {
	if app.Status != models.ApplicationStatusPending && app.Status != models.ApplicationStatusCompleted {
		return
	}

	parties, err := s.store.FindApplicationParties(ctx, app.ID)
	if err != nil {
		logrus.WithError(err).WithField("application_id", app.ID).Error("Could not load notification recipients")
		result.Notification = &DeliveryStatus{Error: fmt.Sprintf("could not load recipients: %v", err)}
		return
	}

	switch app.Status {
	case models.ApplicationStatusPending:
		result.Notification = s.deliver(app.ID, donationReceivedEmail, parties.Receiver.Email, donationReceivedData{
			ProductTitle:  parties.Product.Title,
			PickupAddress: parties.Producer.PickupAddress(),
		})
	case models.ApplicationStatusCompleted:
		result.Notification = s.deliver(app.ID, receiptThankYouEmail, parties.Receiver.Email, nil)
		result.ProducerNotification = s.notifyProducer(ctx, parties)
	}
}

// notifyProducer sends the settlement summary. It only goes out when a
// contract with funds exists for the application.
func (s *ApplicationService) notifyProducer(ctx context.Context, parties *models.ApplicationParties) *DeliveryStatus {
	contract, err := s.store.FindContract(ctx, parties.Application.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).WithField("application_id", parties.Application.ID).Warn("Could not load contract for producer summary")
		}
		return nil
	}
	if contract.Bytes <= 0 {
		return nil
	}

	rate, err := s.store.LatestExchangeRate(ctx)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).Warn("Could not load exchange rate")
	}

	return s.deliver(parties.Application.ID, receiptConfirmedEmail, parties.ProducerUser.Email, receiptConfirmedData{
		ReceiverName:  parties.Receiver.FullName(),
		ApplicationID: parties.Application.ID,
		ProductTitle:  parties.Product.Title,
		ProductPrice:  parties.Product.Price,
		Bytes:         contract.Bytes,
		USD:           fmt.Sprintf("%.2f", rate.BytesToUSD(contract.Bytes)),
		SharedAddress: contract.SharedAddress,
	})
}

func (s *ApplicationService) deliver(applicationID uint, tmpl emailTemplate, to string, data interface{}) *DeliveryStatus {
	subject, body, err := tmpl.render(data)
	if err == nil {
		err = s.notifier.SendEmail(to, subject, body)
	}
	metrics.RecordNotification(tmpl.name, err == nil)

	if err != nil {
		logrus.WithFields(logrus.Fields{
			"application_id": applicationID,
			"template":       tmpl.name,
			"error":          err.Error(),
		}).Warn("Notification email not delivered")
		return &DeliveryStatus{Sent: false, Error: err.Error()}
	}
	return &DeliveryStatus{Sent: true}
}

// Delete removes an open application on behalf of its receiver.
func (s *ApplicationService) Delete(ctx context.Context, actingUserID, applicationID uint) error {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		app, err := tx.FindApplication(ctx, applicationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApplicationNotFound
			}
			return err
		}
		if app.ReceiverID != actingUserID {
			return fmt.Errorf("%w: application belongs to another receiver", ErrForbidden)
		}
		if app.Status != models.ApplicationStatusOpen {
			return fmt.Errorf("%w: application is %s", ErrForbidden, app.Status)
		}
		return tx.DeleteApplication(ctx, applicationID)
	})
	if err != nil {
		if errors.Is(err, ErrApplicationNotFound) || errors.Is(err, ErrForbidden) {
			return err
		}
		return s.persistenceError("delete application", err, logrus.Fields{"application_id": applicationID})
	}
	return nil
}

func (s *ApplicationService) ContractInfo(ctx context.Context, applicationID uint) (*models.ContractInfo, error) {
	info, err := s.store.FindContractInfo(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, s.persistenceError("find contract info", err, logrus.Fields{"application_id": applicationID})
	}
	return info, nil
}

func (s *ApplicationService) DistinctCountries(ctx context.Context) ([]string, error) {
	countries, err := s.store.DistinctReceiverCountries(ctx)
	if err != nil {
		return nil, s.persistenceError("list countries", err, nil)
	}
	return countries, nil
}

func (s *ApplicationService) DistinctCities(ctx context.Context, country string) ([]string, error) {
	cities, err := s.store.DistinctProducerCities(ctx, strings.TrimSpace(country))
	if err != nil {
		return nil, s.persistenceError("list cities", err, logrus.Fields{"country": country})
	}
	return cities, nil
}

// Withdraw asks the wallet to pay out a completed application to its producer.
// The contract is marked before the wallet is called and only cleared once the
// payout is recorded, so a balance is never handed to the wallet twice.
func (s *ApplicationService) Withdraw(ctx context.Context, producerID, applicationID uint) error {
	info, err := s.ContractInfo(ctx, applicationID)
	if err != nil {
		return err
	}
	if info.ProducerID != producerID {
		return fmt.Errorf("%w: application is not on your product", ErrForbidden)
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		app, err := tx.FindApplication(ctx, applicationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApplicationNotFound
			}
			return err
		}
		contract, err := tx.FindContract(ctx, applicationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNothingToWithdraw
			}
			return err
		}
		if contract.WithdrawalPending {
			return ErrWithdrawalInProgress
		}
		if app.Status != models.ApplicationStatusCompleted || !contract.Completed || contract.Bytes <= 0 {
			return ErrNothingToWithdraw
		}
		if info.ProducerWallet == "" {
			return fmt.Errorf("%w: producer has no paired wallet", ErrValidationFailed)
		}
		contract.WithdrawalPending = true
		return tx.SaveContract(ctx, contract)
	})
	if err != nil {
		if errors.Is(err, ErrApplicationNotFound) || errors.Is(err, ErrNothingToWithdraw) ||
			errors.Is(err, ErrWithdrawalInProgress) || errors.Is(err, ErrValidationFailed) {
			return err
		}
		return s.persistenceError("reserve contract balance", err, logrus.Fields{"application_id": applicationID})
	}

	err = s.wallet.WithdrawBytes(ctx, applicationID, info.ProducerWallet, info.ProducerDevice)
	metrics.RecordWithdrawal(err == nil)
	if err != nil {
		logrus.WithError(err).WithField("application_id", applicationID).Error("Withdrawal failed")
		if releaseErr := s.finishWithdrawal(ctx, applicationID, false); releaseErr != nil {
			logrus.WithError(releaseErr).WithField("application_id", applicationID).Error("Could not release contract after failed withdrawal")
		}
		return fmt.Errorf("withdraw application %d: %w", applicationID, err)
	}

	if err := s.finishWithdrawal(ctx, applicationID, true); err != nil {
		// The marker stays set, so the balance is not offered again.
		return s.persistenceError("clear contract balance", err, logrus.Fields{"application_id": applicationID})
	}
	return nil
}

// finishWithdrawal clears the in-flight marker. A paid contract also loses
// its balance.
func (s *ApplicationService) finishWithdrawal(ctx context.Context, applicationID uint, paid bool) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		contract, err := tx.FindContract(ctx, applicationID)
		if err != nil {
			return err
		}
		if paid {
			contract.Bytes = 0
		}
		contract.WithdrawalPending = false
		return tx.SaveContract(ctx, contract)
	})
}

func actorOrDefault(a StatusActor) StatusActor {
	if a == "" {
		return ActorReceiver
	}
	return a
}

func (s *ApplicationService) toView(d models.ApplicationDetail) ApplicationView {
	view := ApplicationView{
		ApplicationID: d.ApplicationID,
		ReceiverID:    d.ReceiverID,
		ReceiverName:  strings.TrimSpace(d.ReceiverFirstName + " " + d.ReceiverSurName),
		Country:       d.ReceiverCountry,
		ProductID:     d.ProductID,
		ProductTitle:  d.ProductTitle,
		ProductPrice:  d.ProductPrice,
		ProducerID:    d.ProducerID,
		Motivation:    d.Motivation,
		Status:        d.Status,
		CreationDate:  d.CreatedAt.UTC().Format(models.CreationDateLayout),
	}
	if s.thumbnails != nil {
		view.Thumbnail = s.thumbnails.ThumbnailURL(d.ReceiverThumbnail)
	}
	if d.DateOfDonation != nil && !d.DateOfDonation.IsZero() {
		view.DateOfDonation = d.DateOfDonation.UTC().Format(models.DonationDateLayout)
	}
	return view
}

func (s *ApplicationService) persistenceError(op string, err error, fields logrus.Fields) error {
	logrus.WithFields(fields).WithError(err).Errorf("Failed to %s", op)
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}
