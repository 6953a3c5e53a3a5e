package errs

// Code identifies a precise failure kind within its category.
// The full set of codes is closed; see the category slices below.
type Code string

// Validation codes. Deterministic failures: the same input will fail again,
// so the caller must correct the input or choose a different action.
const (
	CodeCannotAcceptOffer            Code = "cannot_accept_offer"
	CodeCannotCounter                Code = "cannot_counter"
	CodeCannotOffer                  Code = "cannot_offer"
	CodeCannotRejectOffer            Code = "cannot_reject_offer"
	CodeCannotRejectOwnOffer         Code = "cannot_reject_own_offer"
	CodeCantSubmit                   Code = "cant_submit"
	CodeCreditCardDeactivated        Code = "credit_card_deactivated"
	CodeCreditCardMissingCustomer    Code = "credit_card_missing_customer"
	CodeCreditCardMissingExternalID  Code = "credit_card_missing_external_id"
	CodeCreditCardNotFound           Code = "credit_card_not_found"
	CodeFailedOrderCodeGeneration    Code = "failed_order_code_generation"
	CodeInvalidAmountCents           Code = "invalid_amount_cents"
	CodeInvalidArtworkAddress        Code = "invalid_artwork_address"
	CodeInvalidCommissionRate        Code = "invalid_commission_rate"
	CodeInvalidCreditCard            Code = "invalid_credit_card"
	CodeInvalidOffer                 Code = "invalid_offer"
	CodeInvalidOrder                 Code = "invalid_order"
	CodeInvalidSellerAddress         Code = "invalid_seller_address"
	CodeInvalidState                 Code = "invalid_state"
	CodeInvalidStatesParams          Code = "invalid_states_params"
	CodeMissingArtworkLocation       Code = "missing_artwork_location"
	CodeMissingCommissionRate        Code = "missing_commission_rate"
	CodeMissingCountry               Code = "missing_country"
	CodeMissingCurrency              Code = "missing_currency"
	CodeMissingDomesticShippingFee   Code = "missing_domestic_shipping_fee"
	CodeMissingEditionSetID          Code = "missing_edition_set_id"
	CodeMissingMerchantAccount       Code = "missing_merchant_account"
	CodeMissingParams                Code = "missing_params"
	CodeMissingPartnerLocation       Code = "missing_partner_location"
	CodeMissingPhoneNumber           Code = "missing_phone_number"
	CodeMissingPostalCode            Code = "missing_postal_code"
	CodeMissingPrice                 Code = "missing_price"
	CodeMissingRegion                Code = "missing_region"
	CodeMissingRequiredInfo          Code = "missing_required_info"
	CodeMissingRequiredParam         Code = "missing_required_param"
	CodeMissingSelectedShippingQuote Code = "missing_selected_shipping_quote_id"
	CodeMissingShippingQuote         Code = "missing_shipping_quote"
	CodeMoreThanOneLineItem          Code = "more_than_one_line_item"
	CodeNoTaxableAddresses           Code = "no_taxable_addresses"
	CodeNotAcquireable               Code = "not_acquireable"
	CodeNotFound                     Code = "not_found"
	CodeNotLastOffer                 Code = "not_last_offer"
	CodeNotOfferable                 Code = "not_offerable"
	CodeOfferNotFromBuyer            Code = "offer_not_from_buyer"
	CodeOfferTotalNotDefined         Code = "offer_total_not_defined"
	CodeOrderNotSubmitted            Code = "order_not_submitted"
	CodeUncommittableAction          Code = "uncommittable_action"
	CodeUnknownArtwork               Code = "unknown_artwork"
	CodeUnknownEditionSet            Code = "unknown_edition_set"
	CodeUnknownParticipantType       Code = "unknown_participant_type"
	CodeUnknownPartner               Code = "unknown_partner"
	CodeUnpublishedArtwork           Code = "unpublished_artwork"
	CodeUnsupportedPaymentMethod     Code = "unsupported_payment_method"
	CodeUnsupportedShippingLocation  Code = "unsupported_shipping_location"
	CodeWrongFulfillmentType         Code = "wrong_fulfillment_type"
)

// Processing codes. Transient, environment-dependent failures raised while
// talking to payment, tax or inventory collaborators. Safe to retry.
const (
	CodeArtworkVersionMismatch          Code = "artwork_version_mismatch"
	CodeCancelPaymentFailed             Code = "cancel_payment_failed"
	CodeCannotCapture                   Code = "cannot_capture"
	CodeCaptureFailed                   Code = "capture_failed"
	CodeChargeAuthorizationFailed       Code = "charge_authorization_failed"
	CodeInsufficientInventory           Code = "insufficient_inventory"
	CodePaymentMethodConfirmationFailed Code = "payment_method_confirmation_failed"
	CodePaymentRequiresAction           Code = "payment_requires_action"
	CodeReceivedPartialRefund           Code = "received_partial_refund"
	CodeRefundFailed                    Code = "refund_failed"
	CodeTaxCalculatorFailure            Code = "tax_calculator_failure"
	CodeTaxRecordingFailure             Code = "tax_recording_failure"
	CodeTaxRefundFailure                Code = "tax_refund_failure"
	CodeUndeductInventoryFailure        Code = "undeduct_inventory_failure"
	CodeUnknownEventCharge              Code = "unknown_event_charge"
)

// Internal codes. Defects or unclassified upstream failures.
const (
	CodeGeneric Code = "generic"
	CodeGravity Code = "gravity"
)

// validationCodes lists every code in the validation category.
func validationCodes() []Code {
	return []Code{
		CodeCannotAcceptOffer, CodeCannotCounter, CodeCannotOffer,
		CodeCannotRejectOffer, CodeCannotRejectOwnOffer, CodeCantSubmit,
		CodeCreditCardDeactivated, CodeCreditCardMissingCustomer,
		CodeCreditCardMissingExternalID, CodeCreditCardNotFound,
		CodeFailedOrderCodeGeneration, CodeInvalidAmountCents,
		CodeInvalidArtworkAddress, CodeInvalidCommissionRate,
		CodeInvalidCreditCard, CodeInvalidOffer, CodeInvalidOrder,
		CodeInvalidSellerAddress, CodeInvalidState, CodeInvalidStatesParams,
		CodeMissingArtworkLocation, CodeMissingCommissionRate,
		CodeMissingCountry, CodeMissingCurrency, CodeMissingDomesticShippingFee,
		CodeMissingEditionSetID, CodeMissingMerchantAccount, CodeMissingParams,
		CodeMissingPartnerLocation, CodeMissingPhoneNumber, CodeMissingPostalCode,
		CodeMissingPrice, CodeMissingRegion, CodeMissingRequiredInfo,
		CodeMissingRequiredParam, CodeMissingSelectedShippingQuote,
		CodeMissingShippingQuote, CodeMoreThanOneLineItem,
		CodeNoTaxableAddresses, CodeNotAcquireable, CodeNotFound,
		CodeNotLastOffer, CodeNotOfferable, CodeOfferNotFromBuyer,
		CodeOfferTotalNotDefined, CodeOrderNotSubmitted,
		CodeUncommittableAction, CodeUnknownArtwork, CodeUnknownEditionSet,
		CodeUnknownParticipantType, CodeUnknownPartner, CodeUnpublishedArtwork,
		CodeUnsupportedPaymentMethod, CodeUnsupportedShippingLocation,
		CodeWrongFulfillmentType,
	}
}

// processingCodes lists every code in the processing category.
func processingCodes() []Code {
	return []Code{
		CodeArtworkVersionMismatch, CodeCancelPaymentFailed, CodeCannotCapture,
		CodeCaptureFailed, CodeChargeAuthorizationFailed,
		CodeInsufficientInventory, CodePaymentMethodConfirmationFailed,
		CodePaymentRequiresAction, CodeReceivedPartialRefund, CodeRefundFailed,
		CodeTaxCalculatorFailure, CodeTaxRecordingFailure, CodeTaxRefundFailure,
		CodeUndeductInventoryFailure, CodeUnknownEventCharge,
	}
}

// internalCodes lists every code in the internal category.
func internalCodes() []Code {
	return []Code{CodeGeneric, CodeGravity}
}

var categoryByCode = buildCatalog()

func buildCatalog() map[Code]Category {
	catalog := make(map[Code]Category)
	for _, c := range validationCodes() {
		catalog[c] = Validation
	}
	for _, c := range processingCodes() {
		catalog[c] = Processing
	}
	for _, c := range internalCodes() {
		catalog[c] = Internal
	}
	return catalog
}

// Category returns the category the code belongs to,
// or CategoryUnknown for codes outside the catalog.
func (c Code) Category() Category {
	return categoryByCode[c]
}

// Known reports whether the code is part of the closed catalog.
func (c Code) Known() bool {
	_, ok := categoryByCode[c]
	return ok
}

// String returns the wire representation of the code.
func (c Code) String() string {
	return string(c)
}
