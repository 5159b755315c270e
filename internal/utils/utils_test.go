// internal/utils/utils_test.go
package utils

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateJWT(42, "Ana Silva", "receiver", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", claims.Name)
	assert.Equal(t, "receiver", claims.Role)
	assert.Equal(t, "pollopollo", claims.Issuer)

	id, err := claims.ID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestJWTRejectsForeignSecretAndExpiry(t *testing.T) {
	SetJWTSecret("one")
	token, err := GenerateJWT(1, "Pia", "producer", 1)
	require.NoError(t, err)

	SetJWTSecret("two")
	_, err = ValidateJWT(token)
	assert.Error(t, err)

	expired, err := GenerateJWT(1, "Pia", "producer", -1)
	require.NoError(t, err)
	_, err = ValidateJWT(expired)
	assert.Error(t, err)
}

func TestJWTRejectsNoneAlgorithm(t *testing.T) {
	claims := JWTClaims{UserID: "1", Role: "producer"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestClaimsIDRejectsGarbage(t *testing.T) {
	_, err := (&JWTClaims{UserID: "abc"}).ID()
	assert.Error(t, err)
}

func TestGetWindowParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query  string
		offset int
		amount int
	}{
		{"", 0, 0},
		{"offset=5&amount=10", 5, 10},
		{"offset=-3&amount=-1", 0, maxPageAmount},
		{"amount=1000", 0, maxPageAmount},
		{"offset=x&amount=y", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/applications?"+tt.query, nil)

			params := GetWindowParams(c)
			assert.Equal(t, tt.offset, params.Offset)
			assert.Equal(t, tt.amount, params.Amount)
		})
	}
}

func TestApplyWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	result := ApplyWindow(items, WindowParams{Offset: 1, Amount: 2})
	assert.Equal(t, []int{2, 3}, result.Items)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 2, result.Amount)

	result = ApplyWindow(items, WindowParams{Offset: 3})
	assert.Equal(t, []int{4, 5}, result.Items)

	result = ApplyWindow(items, WindowParams{Offset: 10, Amount: 2})
	assert.Empty(t, result.Items)
	assert.NotNil(t, result.Items)
	assert.Equal(t, 5, result.Total)
}

func TestValidatorCustomTags(t *testing.T) {
	type input struct {
		Role   string `validate:"required,user_role"`
		Status string `validate:"required,application_status"`
	}

	assert.NoError(t, ValidateStruct(&input{Role: "producer", Status: "pending"}))

	err := ValidateStruct(&input{Role: "admin", Status: "unavailable"})
	require.Error(t, err)

	details := GetValidationErrors(err)
	require.Len(t, details, 2)
	assert.Equal(t, "role", details[0].Field)
	assert.Equal(t, "Role must be producer or receiver", details[0].Message)
	assert.Equal(t, "application_status", details[1].Tag)
}

func TestValidatorSingleLine(t *testing.T) {
	type input struct {
		Name string `validate:"required,single_line"`
	}

	assert.NoError(t, ValidateStruct(&input{Name: "Ana Sofía"}))
	for _, name := range []string{"Eve\r\nBcc: victim@example.com", "Eve\nX", "Eve\x00"} {
		err := ValidateStruct(&input{Name: name})
		require.Error(t, err, "%q", name)
		assert.Equal(t, "single_line", GetValidationErrors(err)[0].Tag)
	}
}

func TestGeneratePairingSecretIsUnique(t *testing.T) {
	now := testNow()
	a := GeneratePairingSecret(now)
	b := GeneratePairingSecret(now)
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "_1714564800000000000"))
}

func TestParseIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for param, want := range map[string]bool{"7": true, "0": false, "-1": false, "seven": false} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Params = gin.Params{{Key: "id", Value: param}}
		_, ok := ParseIDParam(c, "id")
		assert.Equal(t, want, ok, param)
	}
}

func testNow() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}
