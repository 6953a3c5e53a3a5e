package order

import (
	"exchange/internal/pkg/errs"
)

// Reason classifies why an order reached a reason-bearing state.
// The only reason-bearing state is StateCanceled; the set of acceptable
// codes is closed.
type Reason string

const (
	// ReasonNone marks the absence of a reason. It is the only acceptable
	// value for transitions whose target is not reason-bearing.
	ReasonNone Reason = ""

	ReasonSellerLapsed                      Reason = "seller_lapsed"
	ReasonSellerRejectedOfferTooLow         Reason = "seller_rejected_offer_too_low"
	ReasonSellerRejectedShippingUnavailable Reason = "seller_rejected_shipping_unavailable"
	ReasonSellerRejectedArtworkUnavailable  Reason = "seller_rejected_artwork_unavailable"
	ReasonSellerRejectedOther               Reason = "seller_rejected_other"
	ReasonSellerRejected                    Reason = "seller_rejected"
	ReasonBuyerRejected                     Reason = "buyer_rejected"
	ReasonBuyerLapsed                       Reason = "buyer_lapsed"
	ReasonAdminCanceled                     Reason = "admin_canceled"
)

func canceledReasons() map[Reason]struct{} {
	return map[Reason]struct{}{
		ReasonSellerLapsed:                      {},
		ReasonSellerRejectedOfferTooLow:         {},
		ReasonSellerRejectedShippingUnavailable: {},
		ReasonSellerRejectedArtworkUnavailable:  {},
		ReasonSellerRejectedOther:               {},
		ReasonSellerRejected:                    {},
		ReasonBuyerRejected:                     {},
		ReasonBuyerLapsed:                       {},
		ReasonAdminCanceled:                     {},
	}
}

// ValidateFor checks the reason against a transition's target state:
// a reason is acceptable iff the target is StateCanceled and the reason is
// one of the enumerated cancellation codes, or the target is not
// reason-bearing and the reason is absent. A violation is a validation
// failure distinct from an illegal transition; the offending reason is
// carried in the error context.
func (r Reason) ValidateFor(target State) error {
	if target == StateCanceled {
		if r == ReasonNone {
			return nil
		}
		if _, ok := canceledReasons()[r]; !ok {
			return errs.NewInvalidStateReasonError(string(r)).
				With("target", target.String())
		}
		return nil
	}

	if r != ReasonNone {
		return errs.NewInvalidStateReasonError(string(r)).
			With("target", target.String())
	}
	return nil
}

// String returns the wire representation of the reason.
func (r Reason) String() string {
	return string(r)
}

// ReasonFromString parses a wire-format reason code. The empty string parses
// to ReasonNone; anything else must be in the cancellation set.
func ReasonFromString(s string) (Reason, error) {
	if s == "" {
		return ReasonNone, nil
	}
	r := Reason(s)
	if _, ok := canceledReasons()[r]; !ok {
		return ReasonNone, errs.NewInvalidStateReasonError(s)
	}
	return r, nil
}
