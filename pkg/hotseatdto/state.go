package hotseatdto

// Position is a (row, col) pair; row 0 is Black's back rank.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type Move struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

type Event struct {
	Kind     string    `json:"kind"`
	From     *Position `json:"from,omitempty"`
	To       *Position `json:"to,omitempty"`
	Piece    string    `json:"piece,omitempty"`
	Captured string    `json:"captured,omitempty"`
}

type Menu struct {
	Title   string   `json:"title"`
	Buttons []string `json:"buttons"`
	Labels  []string `json:"labels"`
}

// State is one application frame. Rows holds eight strings of piece letters,
// uppercase for White, lowercase for Black and '.' for empty.
type State struct {
	Screen     string    `json:"screen"`
	Rows       []string  `json:"rows"`
	SideToMove string    `json:"sideToMove"`
	Selected   *Position `json:"selected,omitempty"`
	Pending    *Position `json:"pendingPromotion,omitempty"`
	LastMove   *Move     `json:"lastMove,omitempty"`
	MoveCount  int       `json:"moveCount"`
	Banner     string    `json:"banner"`
	Menu       *Menu     `json:"menu,omitempty"`
	Status     string    `json:"status,omitempty"`
	Events     []Event   `json:"events,omitempty"`
	Cues       []string  `json:"cues,omitempty"`
	Slot       string    `json:"slot,omitempty"`
	Quit       bool      `json:"quit,omitempty"`
}
