package model

type CheckoutStep string

const (
	StepCollectingInfo CheckoutStep = "CollectingInfo"
	StepPaying         CheckoutStep = "Paying"
	StepComplete       CheckoutStep = "Complete"
)

// CanTransition reports whether the wizard may move from s to next.
// Complete is terminal; Paying may go back to CollectingInfo.
func (s CheckoutStep) CanTransition(next CheckoutStep) bool {
	switch s {
	case StepCollectingInfo:
		return next == StepPaying
	case StepPaying:
		return next == StepComplete || next == StepCollectingInfo
	default:
		return false
	}
}

func (s CheckoutStep) String() string {
	return string(s)
}

type DeliveryMethod string

const (
	DeliveryShipping DeliveryMethod = "shipping"
	DeliveryPickup   DeliveryMethod = "pickup"
)

// Address is a shipping destination.
type Address struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// CheckoutForm holds everything the buyer types in step one. Kept whole
// across back/forward navigation so nothing gets retyped.
type CheckoutForm struct {
	FullName    string `json:"fullName"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
	Country     string `json:"country"`
	PhoneNumber string `json:"phoneNumber"`
}

// CheckoutState is the wizard's working state, persisted under the
// checkout-state storage key so an abandoned checkout resumes.
type CheckoutState struct {
	Step           CheckoutStep   `json:"step"`
	Email          string         `json:"email"`
	Items          []CartItem     `json:"items"`
	DeliveryMethod DeliveryMethod `json:"deliveryMethod"`
	Form           CheckoutForm   `json:"form"`
}
