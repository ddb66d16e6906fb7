package constants

// MemberStatus is the canonical status for rows in members.
type MemberStatus string

// Stable values (store these exact strings in DB).
const (
	StatusPendingPayment MemberStatus = "pending_payment" // created, awaiting payment
	StatusActive         MemberStatus = "active"          // payment confirmed
)

// PaymentOutcome values accepted by the payment-update endpoint.
const (
	PaymentSuccessful = "successful"
	PaymentFailed     = "failed"
)
