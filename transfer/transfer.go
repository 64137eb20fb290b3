// Package transfer defines the transfer record and its field-level validation.
package transfer

import "maps"

// Transfer is one money-transfer instruction.
type Transfer struct {
	AccountHolder string  `json:"accountHolder,omitempty"`
	IBAN          string  `json:"iban"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	Note          string  `json:"note,omitempty"`
}

// Transfers maps a caller-supplied id to its record.
type Transfers map[string]Transfer

// Clone returns a shallow copy. Transfer holds no references, so the
// copy shares nothing with the receiver.
func (t Transfers) Clone() Transfers {
	if t == nil {
		return Transfers{}
	}
	return maps.Clone(t)
}
