package request

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AmountRequest is the request body for credit and debit. Amount is a
// decimal string so no precision is lost in transit.
type AmountRequest struct {
	Amount string `json:"amount"`
}
