// README: Common money value object used across modules (integer cents).
package types

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func Cents(amount int64) Money {
	return Money{Amount: amount, Currency: "USD"}
}
