package order

import (
	"fmt"

	"exchange/internal/pkg/errs"
)

// Mode distinguishes how the order was initiated. It informs which actions
// and queries are semantically meaningful: only offer-mode orders take part
// in the offer back-and-forth ("who must respond next").
type Mode int

const (
	// ModeUnknown is the zero value and is never a legal mode.
	ModeUnknown Mode = iota

	// ModeBuy is a straight purchase at the listed price.
	ModeBuy

	// ModeOffer is a negotiated purchase opened by a buyer offer.
	ModeOffer
)

func modeStrings() map[Mode]string {
	return map[Mode]string{
		ModeBuy:   "buy",
		ModeOffer: "offer",
	}
}

// Validate rejects ModeUnknown and out-of-range values.
func (m Mode) Validate() error {
	if _, ok := modeStrings()[m]; !ok {
		return errs.NewValidationErrorWithCause(
			errs.CodeInvalidOrder,
			fmt.Errorf("%d is not a valid mode", m),
		)
	}
	return nil
}

// String returns "buy" or "offer"; invalid modes read "unknown".
func (m Mode) String() string {
	if str, ok := modeStrings()[m]; ok {
		return str
	}
	return "unknown"
}

// ModeFromString parses a persisted or wire-format mode name.
func ModeFromString(s string) (Mode, error) {
	for mode, str := range modeStrings() {
		if str == s {
			return mode, nil
		}
	}
	return ModeUnknown, errs.NewValidationErrorWithCause(
		errs.CodeInvalidOrder,
		fmt.Errorf("%q is not a valid mode", s),
	)
}
