package domain

type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodWallet     PaymentMethod = "wallet"
)

// PaymentDetails carries the fields of every supported method; only the ones
// relevant to the chosen method are read.
type PaymentDetails struct {
	CardNumber string `json:"card_number,omitempty"`
	CVV        string `json:"cvv,omitempty"`
	Expiry     string `json:"expiry,omitempty"`
	CardHolder string `json:"card_holder,omitempty"`
	Phone      string `json:"phone,omitempty"`
}
