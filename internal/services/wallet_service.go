// internal/services/wallet_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/pollopollo-backend/internal/config"
)

// WalletClient asks the wallet chatbot to settle funds. Settlement itself
// happens on the chatbot side.
type WalletClient interface {
	WithdrawBytes(ctx context.Context, applicationID uint, walletAddress, deviceAddress string) error
}

type WalletService struct {
	config     config.WalletConfig
	httpClient *http.Client
}

type withdrawRequest struct {
	ApplicationID uint   `json:"applicationId"`
	WalletAddress string `json:"walletAddress"`
	DeviceAddress string `json:"deviceAddress"`
}

func NewWalletService(cfg config.WalletConfig) *WalletService {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WalletService{
		config:     cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *WalletService) WithdrawBytes(ctx context.Context, applicationID uint, walletAddress, deviceAddress string) error {
	if s.config.ChatbotURL == "" {
		return ErrWalletUnavailable
	}

	payload, err := json.Marshal(withdrawRequest{
		ApplicationID: applicationID,
		WalletAddress: walletAddress,
		DeviceAddress: deviceAddress,
	})
	if err != nil {
		return fmt.Errorf("failed to encode withdraw request: %w", err)
	}

	url := strings.TrimRight(s.config.ChatbotURL, "/") + "/postwithdraw"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build withdraw request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wallet request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("wallet responded with status %d", resp.StatusCode)
	}

	logrus.WithFields(logrus.Fields{
		"application_id": applicationID,
		"status":         resp.StatusCode,
	}).Info("Withdrawal accepted by wallet")
	return nil
}

// PairingLink is the link a producer opens in the Obyte wallet to pair their
// device with the chatbot.
func (s *WalletService) PairingLink(secret string) string {
	return fmt.Sprintf("byteball:%s@%s#%s", s.config.DeviceAddress, s.config.Hub, secret)
}
