// internal/models/contract.go
package models

import (
	"time"
)

type Contract struct {
	ApplicationID     uint      `json:"application_id" gorm:"primaryKey;autoIncrement:false"`
	ConfirmKey        string    `json:"confirm_key" gorm:"size:255"`
	SharedAddress     string    `json:"shared_address" gorm:"size:255"`
	DonorWallet       string    `json:"donor_wallet" gorm:"size:255"`
	DonorDevice       string    `json:"donor_device" gorm:"size:255"`
	ProducerWallet    string    `json:"producer_wallet" gorm:"size:255"`
	ProducerDevice    string    `json:"producer_device" gorm:"size:255"`
	Price             int       `json:"price"`
	Bytes             int64     `json:"bytes"`
	Completed         bool      `json:"completed" gorm:"not null"`
	// WithdrawalPending is set while a payout is with the wallet. A contract
	// in this state is never offered for withdrawal again.
	WithdrawalPending bool      `json:"withdrawal_pending" gorm:"not null;default:false"`
	CreatedAt         time.Time `json:"created_at"`
}

// ContractInfo is what a donor needs to pay for an application.
type ContractInfo struct {
	ApplicationID  uint   `json:"application_id"`
	ProductID      uint   `json:"product_id"`
	ProducerID     uint   `json:"producer_id"`
	Price          int    `json:"price"`
	ProducerWallet string `json:"producer_wallet"`
	ProducerDevice string `json:"producer_device"`
}

type ByteExchangeRate struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	GBYTEUSD  float64   `json:"gbyte_usd" gorm:"column:gbyte_usd;type:decimal(18,8);not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BytesToUSD converts a byte amount with the GBYTE/USD rate.
func (r *ByteExchangeRate) BytesToUSD(bytes int64) float64 {
	if r == nil {
		return 0
	}
	return float64(bytes) / 1e9 * r.GBYTEUSD
}
