package model

import "time"

// NoticeKind names a state transition worth telling a user about.
type NoticeKind string

const (
	NoticeRegistrationPending   NoticeKind = "registration.pending"
	NoticeRegistrationReceived  NoticeKind = "registration.received"
	NoticeRegistrationCancelled NoticeKind = "registration.cancelled"
	NoticeRegistrationUpdated   NoticeKind = "registration.updated"
	NoticePaymentCompleted      NoticeKind = "payment.completed"
	NoticePaymentReceived       NoticeKind = "payment.received"
	NoticeRefundIssued          NoticeKind = "refund.issued"
	NoticeRefundProcessed       NoticeKind = "refund.processed"
)

// Notice is a domain event emitted by a committed operation. Delivering it
// is best effort and never affects the operation that produced it.
type Notice struct {
	Kind           NoticeKind `json:"kind"`
	UserID         string     `json:"user_id"`
	RegistrationID string     `json:"registration_id,omitempty"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	OccurredAt     time.Time  `json:"occurred_at"`
}
