// internal/utils/pagination.go
package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxPageAmount = 100

// WindowParams selects a slice of a result list by offset and amount.
type WindowParams struct {
	Offset int `json:"offset"`
	Amount int `json:"amount"`
}

type WindowResult[T any] struct {
	Offset int `json:"offset"`
	Amount int `json:"amount"`
	Total  int `json:"total"`
	Items  []T `json:"items"`
}

// GetWindowParams reads offset and amount from the query string. An amount of
// zero means everything from offset on.
func GetWindowParams(c *gin.Context) WindowParams {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	amount, _ := strconv.Atoi(c.DefaultQuery("amount", "0"))

	if offset < 0 {
		offset = 0
	}
	if amount < 0 || amount > maxPageAmount {
		amount = maxPageAmount
	}

	return WindowParams{Offset: offset, Amount: amount}
}

func ApplyWindow[T any](items []T, params WindowParams) WindowResult[T] {
	total := len(items)
	start := params.Offset
	if start > total {
		start = total
	}
	end := total
	if params.Amount > 0 && start+params.Amount < total {
		end = start + params.Amount
	}

	page := make([]T, end-start)
	copy(page, items[start:end])

	return WindowResult[T]{
		Offset: params.Offset,
		Amount: len(page),
		Total:  total,
		Items:  page,
	}
}

func SetWindowHeaders(c *gin.Context, total, offset, amount int) {
	c.Header("X-Total-Count", strconv.Itoa(total))
	c.Header("X-Offset", strconv.Itoa(offset))
	c.Header("X-Amount", strconv.Itoa(amount))
}
