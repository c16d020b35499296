package types

// Identity is the verified caller identity returned by the credential gate.
type Identity struct {
	Account string `json:"account"`
	ARN     string `json:"arn"`
	UserID  string `json:"user_id"`
}
