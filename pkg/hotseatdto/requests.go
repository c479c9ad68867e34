package hotseatdto

// ClickRequest carries either pixel coordinates (X, Y) or a square (Row, Col).
type ClickRequest struct {
	X   *int `json:"x,omitempty"`
	Y   *int `json:"y,omitempty"`
	Row *int `json:"row,omitempty"`
	Col *int `json:"col,omitempty"`
}

type ButtonRequest struct {
	Button string `json:"button,omitempty"`
	Index  *int   `json:"index,omitempty"`
}

type SlotRequest struct {
	Slot string `json:"slot,omitempty"`
}

// Response wraps every API reply; Error is set when the input was refused.
type Response struct {
	State *State       `json:"state,omitempty"`
	Error *DomainError `json:"error,omitempty"`
}

type SlotsResponse struct {
	Slots []string     `json:"slots"`
	Error *DomainError `json:"error,omitempty"`
}
