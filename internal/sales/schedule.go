package sales

import (
	"fmt"
	"math"
	"time"
)

// ScheduleEntry is one line of a generated payment schedule. It is what
// gets frozen into the sale's schedule snapshot.
type ScheduleEntry struct {
	Sequence int       `json:"sequence"`
	DueDate  time.Time `json:"due_date"`
	Amount   float64   `json:"amount"`
}

// BuildSchedule spreads the balance after the down payment over termMonths
// equal monthly installments, due monthly from the signing date. Amounts
// are rounded to cents; any rounding remainder lands on the last
// installment so the schedule always sums to the financed balance.
func BuildSchedule(totalPrice, downPayment float64, termMonths int, signedAt time.Time) ([]ScheduleEntry, error) {
	if totalPrice <= 0 {
		return nil, fmt.Errorf("total price must be positive")
	}
	if downPayment < 0 || downPayment >= totalPrice {
		return nil, fmt.Errorf("down payment must be between 0 and the total price")
	}
	if termMonths < 1 {
		return nil, fmt.Errorf("term must be at least one month")
	}

	balance := roundCents(totalPrice - downPayment)
	monthly := roundCents(balance / float64(termMonths))

	entries := make([]ScheduleEntry, termMonths)
	allocated := 0.0
	for i := 0; i < termMonths; i++ {
		amount := monthly
		if i == termMonths-1 {
			amount = roundCents(balance - allocated)
		}
		entries[i] = ScheduleEntry{
			Sequence: i + 1,
			DueDate:  signedAt.AddDate(0, i+1, 0),
			Amount:   amount,
		}
		allocated = roundCents(allocated + amount)
	}
	return entries, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
