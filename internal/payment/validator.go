// Package payment validates payment details and simulates the gateway.
package payment

import (
	"errors"
	"strings"

	"github.com/fjod/gamestore/internal/domain"
)

var ErrInvalidPaymentData = errors.New("invalid payment data")

const (
	minCardDigits = 13
	cvvLength     = 3
	phoneDigits   = 9
)

// Validate checks the fields the chosen method needs. Any failure is
// ErrInvalidPaymentData.
func Validate(method domain.PaymentMethod, d domain.PaymentDetails) error {
	switch method {
	case domain.PaymentMethodCreditCard:
		number := strings.ReplaceAll(d.CardNumber, " ", "")
		if len(number) < minCardDigits || !allDigits(number) {
			return ErrInvalidPaymentData
		}
		if len(d.CVV) != cvvLength {
			return ErrInvalidPaymentData
		}
		if d.Expiry == "" || strings.TrimSpace(d.CardHolder) == "" {
			return ErrInvalidPaymentData
		}
		return nil
	case domain.PaymentMethodWallet:
		if len(d.Phone) != phoneDigits || !allDigits(d.Phone) {
			return ErrInvalidPaymentData
		}
		return nil
	default:
		return ErrInvalidPaymentData
	}
}

// Mask keeps only what an order needs to show the payment source.
func Mask(method domain.PaymentMethod, d domain.PaymentDetails) map[string]string {
	switch method {
	case domain.PaymentMethodCreditCard:
		number := strings.ReplaceAll(d.CardNumber, " ", "")
		return map[string]string{
			"card_last4":  lastFour(number),
			"card_holder": strings.TrimSpace(d.CardHolder),
		}
	case domain.PaymentMethodWallet:
		return map[string]string{"phone_last4": lastFour(d.Phone)}
	default:
		return map[string]string{}
	}
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func lastFour(s string) string {
	if len(s) <= 4 {
		return s
	}
	return s[len(s)-4:]
}
