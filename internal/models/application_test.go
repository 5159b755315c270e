package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to ApplicationStatus
		allowed  bool
	}{
		{ApplicationStatusOpen, ApplicationStatusPending, true},
		{ApplicationStatusOpen, ApplicationStatusLocked, true},
		{ApplicationStatusPending, ApplicationStatusCompleted, true},
		{ApplicationStatusPending, ApplicationStatusOpen, true},
		{ApplicationStatusOpen, ApplicationStatusCompleted, false},
		{ApplicationStatusOpen, ApplicationStatusOpen, false},
		{ApplicationStatusPending, ApplicationStatusLocked, false},
		{ApplicationStatusCompleted, ApplicationStatusOpen, false},
		{ApplicationStatusLocked, ApplicationStatusPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestApplicationStatusValid(t *testing.T) {
	assert.True(t, ApplicationStatusLocked.Valid())
	assert.False(t, ApplicationStatus("unavailable").Valid())
	assert.False(t, ApplicationStatus("").Valid())
}

func TestProducerPickupAddress(t *testing.T) {
	p := &Producer{Street: "Rued Langgaards Vej", StreetNumber: "7", City: "Copenhagen"}
	assert.Equal(t, "Rued Langgaards Vej 7, Copenhagen", p.PickupAddress())

	p.Zipcode = "2300"
	assert.Equal(t, "Rued Langgaards Vej 7, 2300 Copenhagen", p.PickupAddress())
}

func TestUserPassword(t *testing.T) {
	u := &User{}
	require.NoError(t, u.SetPassword("verysecret123"))
	assert.NotEqual(t, "verysecret123", u.PasswordHash)
	assert.NoError(t, u.CheckPassword("verysecret123"))
	assert.Error(t, u.CheckPassword("wrong"))
}

func TestBytesToUSD(t *testing.T) {
	rate := &ByteExchangeRate{GBYTEUSD: 20}
	assert.InDelta(t, 10.0, rate.BytesToUSD(500_000_000), 0.0001)

	var missing *ByteExchangeRate
	assert.Zero(t, missing.BytesToUSD(500_000_000))
}
