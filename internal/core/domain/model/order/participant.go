package order

import (
	"fmt"

	"exchange/internal/pkg/errs"
)

// Participant identifies one side of an offer-mode negotiation.
type Participant int

const (
	// ParticipantUnknown is the zero value and is never a legal participant.
	ParticipantUnknown Participant = iota

	// ParticipantBuyer is the offer-initiating side.
	ParticipantBuyer

	// ParticipantSeller is the side confirming or rejecting the order.
	ParticipantSeller
)

func participantStrings() map[Participant]string {
	return map[Participant]string{
		ParticipantBuyer:  "buyer",
		ParticipantSeller: "seller",
	}
}

// Validate rejects ParticipantUnknown and out-of-range values.
func (p Participant) Validate() error {
	if _, ok := participantStrings()[p]; !ok {
		return errs.NewValidationErrorWithCause(
			errs.CodeUnknownParticipantType,
			fmt.Errorf("%d is not a valid participant", p),
		)
	}
	return nil
}

// String returns "buyer" or "seller"; invalid values read "unknown".
func (p Participant) String() string {
	if str, ok := participantStrings()[p]; ok {
		return str
	}
	return "unknown"
}

// Counterpart returns the other side of the negotiation.
func (p Participant) Counterpart() (Participant, error) {
	switch p {
	case ParticipantBuyer:
		return ParticipantSeller, nil
	case ParticipantSeller:
		return ParticipantBuyer, nil
	default:
		return ParticipantUnknown, errs.NewValidationErrorWithCause(
			errs.CodeUnknownParticipantType,
			fmt.Errorf("%d has no counterpart", p),
		)
	}
}

// ParticipantFromString parses a persisted or wire-format participant name.
func ParticipantFromString(s string) (Participant, error) {
	for participant, str := range participantStrings() {
		if str == s {
			return participant, nil
		}
	}
	return ParticipantUnknown, errs.NewValidationErrorWithCause(
		errs.CodeUnknownParticipantType,
		fmt.Errorf("%q is not a valid participant", s),
	)
}
