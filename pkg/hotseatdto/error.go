package hotseatdto

// Error codes returned by the HTTP API.
const (
	CodeBadRequest       = "bad_request"
	CodeNotOffered       = "not_offered"
	CodeNotPlaying       = "not_playing"
	CodePromotionPending = "promotion_pending"
	CodeNotFound         = "not_found"
	CodeExited           = "exited"
	CodeUnavailable      = "unavailable"
	CodeInternal         = "internal"
)

type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "hotseat error"
}
