// internal/tests/api_test.go
package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/pollopollo-backend/internal/config"
	"github.com/javajoker/pollopollo-backend/internal/database"
	"github.com/javajoker/pollopollo-backend/internal/i18n"
	"github.com/javajoker/pollopollo-backend/internal/repository"
	"github.com/javajoker/pollopollo-backend/internal/router"
)

const walletToken = "chatbot-token"

type sentEmail struct {
	To, Subject, Body string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (n *recordingNotifier) SendEmail(to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (n *recordingNotifier) emails() []sentEmail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentEmail(nil), n.sent...)
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta json.RawMessage `json:"meta"`
}

type session struct {
	UserID uint
	Token  string
}

type APITestSuite struct {
	suite.Suite
	cfg      *config.Config
	db       *gorm.DB
	router   *gin.Engine
	notifier *recordingNotifier
}

func (suite *APITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(i18n.Initialize("en"))
	suite.cfg = &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{CORSOrigins: []string{"*"}},
		Database:    config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"},
		JWT:         config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 1},
		Wallet:      config.WalletConfig{DeviceAddress: "0BOT", Hub: "obyte.org/bb", ServiceToken: walletToken},
		I18n:        config.I18nConfig{DefaultLocale: "en"},
	}
}

func (suite *APITestSuite) SetupTest() {
	db, err := database.OpenInMemory("silent")
	suite.Require().NoError(err)
	suite.db = db
	suite.notifier = &recordingNotifier{}
	suite.router = router.Initialize(repository.NewGormStore(db), suite.cfg, suite.notifier)
}

func (suite *APITestSuite) TearDownTest() {
	database.Close(suite.db)
}

func (suite *APITestSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	headers := map[string]string{}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return suite.send(method, path, headers, body)
}

// report calls the wallet chatbot route for an application.
func (suite *APITestSuite) report(id uint, serviceToken string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	headers := map[string]string{}
	if serviceToken != "" {
		headers["X-Service-Token"] = serviceToken
	}
	return suite.send(http.MethodPut, fmt.Sprintf("/v1/wallet/applications/%d/status", id), headers, body)
}

func (suite *APITestSuite) send(method, path string, headers map[string]string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	var reader *bytes.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(jsonData)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var response apiResponse
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func (suite *APITestSuite) register(email, role string) session {
	body := map[string]interface{}{
		"first_name": "Test",
		"sur_name":   "User",
		"email":      email,
		"password":   "password123",
		"country":    "UG",
		"role":       role,
	}
	if role == "producer" {
		body["street"] = "Main Street"
		body["street_number"] = "4"
		body["city"] = "Kampala"
	}

	w, response := suite.do(http.MethodPost, "/v1/users", "", body)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var auth struct {
		User        struct{ UserID uint `json:"user_id"` } `json:"user"`
		AccessToken string                                 `json:"access_token"`
	}
	suite.Require().NoError(json.Unmarshal(response.Data, &auth))
	return session{UserID: auth.User.UserID, Token: auth.AccessToken}
}

func (suite *APITestSuite) createProduct(producer session) uint {
	w, response := suite.do(http.MethodPost, "/v1/products", producer.Token, map[string]interface{}{
		"title": "Chickens",
		"price": 42,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var product struct {
		ProductID uint `json:"product_id"`
	}
	suite.Require().NoError(json.Unmarshal(response.Data, &product))
	return product.ProductID
}

func (suite *APITestSuite) submit(receiver session, productID uint) uint {
	w, response := suite.do(http.MethodPost, "/v1/applications", receiver.Token, map[string]interface{}{
		"product_id": productID,
		"motivation": "We need chickens for eggs",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var result struct {
		Application struct {
			ApplicationID uint `json:"application_id"`
		} `json:"application"`
	}
	suite.Require().NoError(json.Unmarshal(response.Data, &result))
	return result.Application.ApplicationID
}

func (suite *APITestSuite) TestHealthAndMetrics() {
	w, _ := suite.do(http.MethodGet, "/health", "", nil)
	suite.Equal(http.StatusOK, w.Code)

	w, _ = suite.do(http.MethodGet, "/metrics", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "http_requests_total")
}

func (suite *APITestSuite) TestUserRegistrationAndLogin() {
	receiver := suite.register("ana@example.com", "receiver")
	suite.NotEmpty(receiver.Token)

	w, response := suite.do(http.MethodPost, "/v1/users/authenticate", "", map[string]interface{}{
		"email":    "ana@example.com",
		"password": "password123",
	})
	suite.Equal(http.StatusOK, w.Code)
	suite.True(response.Success)

	w, response = suite.do(http.MethodPost, "/v1/users/authenticate", "", map[string]interface{}{
		"email":    "ana@example.com",
		"password": "wrong-password",
	})
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.False(response.Success)

	w, _ = suite.do(http.MethodPost, "/v1/users", "", map[string]interface{}{
		"first_name": "Ana", "sur_name": "Again", "email": "ana@example.com",
		"password": "password123", "country": "UG", "role": "receiver",
	})
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *APITestSuite) TestRegistrationValidationErrors() {
	w, response := suite.do(http.MethodPost, "/v1/users", "", map[string]interface{}{
		"first_name": "Ana", "sur_name": "Silva", "email": "not-an-email",
		"password": "short", "country": "UG", "role": "receiver",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Require().NotNil(response.Error)
	suite.Equal("VALIDATION_ERROR", response.Error.Code)
}

func (suite *APITestSuite) TestProducerProfileShowsPairingLinkToOwnerOnly() {
	producer := suite.register("shop@example.com", "producer")
	path := fmt.Sprintf("/v1/users/%d", producer.UserID)

	_, response := suite.do(http.MethodGet, path, producer.Token, nil)
	suite.Contains(string(response.Data), `"pairing_link":"byteball:0BOT@obyte.org/bb#`)

	w, response := suite.do(http.MethodGet, path, "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.NotContains(string(response.Data), "pairing_link")
	suite.Contains(string(response.Data), `"completed_donations"`)
}

func (suite *APITestSuite) TestApplicationLifecycle() {
	producer := suite.register("shop@example.com", "producer")
	receiver := suite.register("ana@example.com", "receiver")
	productID := suite.createProduct(producer)

	first := suite.submit(receiver, productID)
	second := suite.submit(receiver, productID)

	w, response := suite.do(http.MethodGet, "/v1/applications?offset=0&amount=1", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("2", w.Header().Get("X-Total-Count"))
	var page []struct {
		ApplicationID uint `json:"application_id"`
	}
	suite.Require().NoError(json.Unmarshal(response.Data, &page))
	suite.Len(page, 1)

	w, _ = suite.do(http.MethodPut, fmt.Sprintf("/v1/applications/%d/status", first), receiver.Token, map[string]interface{}{
		"status": "pending",
	})
	suite.Equal(http.StatusForbidden, w.Code)

	w, _ = suite.report(first, "", map[string]interface{}{"receiver_id": receiver.UserID, "status": "pending"})
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, response = suite.report(first, walletToken, map[string]interface{}{
		"receiver_id": receiver.UserID,
		"status":      "pending",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Contains(string(response.Data), `"notification":{"sent":true}`)

	emails := suite.notifier.emails()
	suite.Require().Len(emails, 1)
	suite.Equal("ana@example.com", emails[0].To)
	suite.Equal("You received a donation on PolloPollo!", emails[0].Subject)
	suite.Contains(emails[0].Body, "Main Street 4, Kampala")

	w, _ = suite.do(http.MethodPut, fmt.Sprintf("/v1/applications/%d/status", second), receiver.Token, map[string]interface{}{
		"status": "completed",
	})
	suite.Equal(http.StatusConflict, w.Code)

	w, _ = suite.do(http.MethodDelete, fmt.Sprintf("/v1/applications/%d/%d", receiver.UserID, first), receiver.Token, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w, _ = suite.do(http.MethodDelete, fmt.Sprintf("/v1/applications/%d/%d", receiver.UserID, second), receiver.Token, nil)
	suite.Equal(http.StatusOK, w.Code)

	w, _ = suite.do(http.MethodGet, fmt.Sprintf("/v1/applications/%d", second), "", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w, response = suite.do(http.MethodGet, fmt.Sprintf("/v1/applications/receiver/%d", receiver.UserID), "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(string(response.Data), `"status":"pending"`)

	w, response = suite.do(http.MethodGet, "/v1/applications/countries", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`[]`, string(response.Data))
}

func (suite *APITestSuite) TestSubmitRules() {
	producer := suite.register("shop@example.com", "producer")
	receiver := suite.register("ana@example.com", "receiver")
	productID := suite.createProduct(producer)

	w, _ := suite.do(http.MethodPost, "/v1/applications", "", map[string]interface{}{"product_id": productID, "motivation": "Please"})
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, _ = suite.do(http.MethodPost, "/v1/applications", producer.Token, map[string]interface{}{"product_id": productID, "motivation": "Please"})
	suite.Equal(http.StatusForbidden, w.Code)

	w, response := suite.do(http.MethodPost, "/v1/applications", receiver.Token, map[string]interface{}{"product_id": productID, "motivation": "ab"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Require().NotNil(response.Error)
	suite.Equal("VALIDATION_ERROR", response.Error.Code)

	w, _ = suite.do(http.MethodPut, fmt.Sprintf("/v1/products/%d/availability", productID), producer.Token, map[string]interface{}{"available": false})
	suite.Require().Equal(http.StatusOK, w.Code)

	w, response = suite.do(http.MethodPost, "/v1/applications", receiver.Token, map[string]interface{}{"product_id": productID, "motivation": "Please help"})
	suite.Equal(http.StatusConflict, w.Code)
	suite.Require().NotNil(response.Error)
	suite.Equal("PRODUCT_UNAVAILABLE", response.Error.Code)

	w, response = suite.do(http.MethodGet, "/v1/applications", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`[]`, string(response.Data))
}

func (suite *APITestSuite) TestWithdrawRequiresFunds() {
	producer := suite.register("shop@example.com", "producer")
	receiver := suite.register("ana@example.com", "receiver")
	productID := suite.createProduct(producer)
	id := suite.submit(receiver, productID)

	w, _ := suite.do(http.MethodPost, fmt.Sprintf("/v1/applications/%d/withdraw", id), producer.Token, nil)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	w, _ = suite.do(http.MethodGet, fmt.Sprintf("/v1/applications/withdrawable/%d", receiver.UserID), producer.Token, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w, response := suite.do(http.MethodGet, fmt.Sprintf("/v1/applications/withdrawable/%d", producer.UserID), producer.Token, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`[]`, string(response.Data))
}

func (suite *APITestSuite) TestReceiverCannotSupplyContract() {
	producer := suite.register("shop@example.com", "producer")
	receiver := suite.register("ana@example.com", "receiver")
	id := suite.submit(receiver, suite.createProduct(producer))

	w, _ := suite.report(id, walletToken, map[string]interface{}{"receiver_id": receiver.UserID, "status": "pending"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w, response := suite.do(http.MethodPut, fmt.Sprintf("/v1/applications/%d/status", id), receiver.Token, map[string]interface{}{
		"status":   "completed",
		"contract": map[string]interface{}{"bytes": 9000000000, "completed": true},
	})
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Require().NotNil(response.Error)

	w, response = suite.do(http.MethodGet, fmt.Sprintf("/v1/applications/withdrawable/%d", producer.UserID), producer.Token, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`[]`, string(response.Data))

	w, _ = suite.do(http.MethodPut, fmt.Sprintf("/v1/applications/%d/status", id), receiver.Token, map[string]interface{}{
		"status": "completed",
	})
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *APITestSuite) TestWalletRouteRejectsUserTokens() {
	producer := suite.register("shop@example.com", "producer")
	receiver := suite.register("ana@example.com", "receiver")
	id := suite.submit(receiver, suite.createProduct(producer))

	w, _ := suite.report(id, "guess", map[string]interface{}{"receiver_id": receiver.UserID, "status": "pending"})
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, _ = suite.do(http.MethodPut, fmt.Sprintf("/v1/wallet/applications/%d/status", id), receiver.Token, map[string]interface{}{
		"receiver_id": receiver.UserID, "status": "pending",
	})
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *APITestSuite) TestUserStats() {
	suite.register("shop@example.com", "producer")
	suite.register("ana@example.com", "receiver")

	w, response := suite.do(http.MethodGet, "/v1/users/stats", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"producers":1,"receivers":1}`, string(response.Data))
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
