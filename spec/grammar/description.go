package grammar

// Report describes a compiled grammar: its symbols, its productions, and every state
// of the canonical LR(1) collection with the actions the parsing table holds for it.
// Non-terminals are referenced by negative numbers in a right-hand side.
type Report struct {
	Terminals    []*Terminal    `json:"terminals"`
	NonTerminals []*NonTerminal `json:"non_terminals"`
	Productions  []*Production  `json:"productions"`
	States       []*State       `json:"states"`
}

type Terminal struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Sync   bool   `json:"sync"`
}

type NonTerminal struct {
	Number int    `json:"number"`
	Name   string `json:"name"`

	// First lists the terminals the non-terminal can start with.
	First     []int `json:"first"`
	Vanishing bool  `json:"vanishing"`
}

type Production struct {
	Number int   `json:"number"`
	LHS    int   `json:"lhs"`
	RHS    []int `json:"rhs"`
	Row    int   `json:"row"`
}

type Item struct {
	Production int   `json:"production"`
	Dot        int   `json:"dot"`
	LookAhead  []int `json:"look_ahead"`
}

type Transition struct {
	Symbol int `json:"symbol"`
	State  int `json:"state"`
}

type Reduce struct {
	LookAhead  []int `json:"look_ahead"`
	Production int   `json:"production"`
}

// Conflict resolution methods.
const (
	ResolvedByShift     = 1
	ResolvedByProdOrder = 2
)

type SRConflict struct {
	Symbol            int  `json:"symbol"`
	State             int  `json:"state"`
	Production        int  `json:"production"`
	AdoptedState      *int `json:"adopted_state"`
	AdoptedProduction *int `json:"adopted_production"`
	ResolvedBy        int  `json:"resolved_by"`
}

type RRConflict struct {
	Symbol            int `json:"symbol"`
	Production1       int `json:"production_1"`
	Production2       int `json:"production_2"`
	AdoptedProduction int `json:"adopted_production"`
	ResolvedBy        int `json:"resolved_by"`
}

type State struct {
	Number     int           `json:"number"`
	Kernel     []*Item       `json:"kernel"`
	Accept     bool          `json:"accept"`
	Shift      []*Transition `json:"shift"`
	Reduce     []*Reduce     `json:"reduce"`
	GoTo       []*Transition `json:"goto"`
	SRConflict []*SRConflict `json:"sr_conflict"`
	RRConflict []*RRConflict `json:"rr_conflict"`
}

// ConflictCount returns the numbers of shift/reduce and reduce/reduce conflicts.
func (r *Report) ConflictCount() (int, int) {
	sr, rr := 0, 0
	for _, s := range r.States {
		sr += len(s.SRConflict)
		rr += len(s.RRConflict)
	}
	return sr, rr
}
