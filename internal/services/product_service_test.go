package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/pollopollo-backend/internal/models"
)

func TestProductLifecycle(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	svc := NewProductService(store, nil)

	producer := models.User{Email: "shop@example.com", Role: models.UserRoleProducer}
	require.NoError(t, store.CreateUser(ctx, &producer))
	receiver := models.User{Email: "ana@example.com", Role: models.UserRoleReceiver}
	require.NoError(t, store.CreateUser(ctx, &receiver))

	_, err := svc.Create(ctx, receiver.ID, &CreateProductRequest{Title: "Chickens", Price: 10})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(ctx, producer.ID, &CreateProductRequest{Title: "Chickens"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	created, err := svc.Create(ctx, producer.ID, &CreateProductRequest{Title: "Chickens", Price: 10})
	require.NoError(t, err)
	assert.True(t, created.Available)

	_, err = svc.SetAvailability(ctx, receiver.ID, created.ProductID, false)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.SetAvailability(ctx, producer.ID, created.ProductID, false)
	require.NoError(t, err)
	assert.False(t, updated.Available)

	got, err := svc.Get(ctx, created.ProductID)
	require.NoError(t, err)
	assert.False(t, got.Available)

	list, err := svc.ListByProducer(ctx, producer.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = svc.SetAvailability(ctx, producer.ID, 999, true)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
