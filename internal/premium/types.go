package premium

import "errors"

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMissingUserID    = errors.New("checkout event has no user id")
)

// EventCheckoutCompleted is the checkout event type that grants premium access.
const EventCheckoutCompleted = "checkout.session.completed"

// Store is the premium persistence. store.Store satisfies it.
type Store interface {
	IsPremium(userID string) (bool, error)
	GrantPremium(userID string) error
}

// Gate decides who may use premium features.
type Gate struct {
	store       Store
	emailDomain string
	devMode     bool
	secret      string
}

// CheckoutEvent is the subset of a checkout webhook payload that is read.
type CheckoutEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			CustomerEmail string            `json:"customer_email"`
			Metadata      map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}
