package model

import "fmt"

// Money is an amount in kobo (minor units). 1 NGN = 100 kobo.
// Stored as int64 so balance math stays exact and maps directly onto
// the conditional-decrement SQL in the ledger store.
type Money int64

func NairaToMoney(naira int64) Money {
	return Money(naira * 100)
}

func (m Money) Kobo() int64 {
	return int64(m)
}

func (m Money) String() string {
	return fmt.Sprintf("₦%d.%02d", m/100, m%100)
}
