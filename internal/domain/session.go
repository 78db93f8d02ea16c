package domain

import (
	"errors"
	"time"
)

var ErrIllegalTransition = errors.New("illegal transition of order status")

type SessionState string

const (
	StateMain     SessionState = "main"
	StateOrdering SessionState = "ordering"
)

// MenuMap numbers the catalog items shown to the user while ordering.
// It is meaningful only while Valid is set, which tracks State == StateOrdering.
type MenuMap struct {
	ItemIDs []int64 `bson:"item_ids" json:"item_ids"`
	Valid   bool    `bson:"valid" json:"valid"`
}

// Resolve maps a 1-based display position to a catalog item id.
func (m MenuMap) Resolve(position int) (int64, bool) {
	if !m.Valid || position < 1 || position > len(m.ItemIDs) {
		return 0, false
	}
	return m.ItemIDs[position-1], true
}

func (m MenuMap) Len() int {
	if !m.Valid {
		return 0
	}
	return len(m.ItemIDs)
}

type Session struct {
	Key          string        `bson:"_id" json:"session_key"`
	State        SessionState  `bson:"state" json:"state"`
	CurrentOrder Cart          `bson:"current_order" json:"current_order"`
	Orders       []PlacedOrder `bson:"orders" json:"orders"`
	Menu         MenuMap       `bson:"menu_map" json:"menu_map"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updated_at"`
}

// NewSession returns the default state for a first contact.
func NewSession(key string, now time.Time) *Session {
	return &Session{
		Key:       key,
		State:     StateMain,
		Orders:    []PlacedOrder{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EnterOrdering switches to item selection with a fresh menu numbering.
func (s *Session) EnterOrdering(itemIDs []int64) {
	ids := make([]int64, len(itemIDs))
	copy(ids, itemIDs)
	s.State = StateOrdering
	s.Menu = MenuMap{ItemIDs: ids, Valid: true}
}

// LeaveOrdering returns to the main menu and drops the menu numbering.
func (s *Session) LeaveOrdering() {
	s.State = StateMain
	s.Menu = MenuMap{}
}

// PlaceOrder appends a pending snapshot of the cart, empties the cart and
// returns the 1-based order number.
func (s *Session) PlaceOrder(now time.Time) int {
	s.Orders = append(s.Orders, NewPlacedOrder(s.CurrentOrder, now))
	s.CurrentOrder.Clear()
	return len(s.Orders)
}

// Order returns the order with the given 1-based number.
func (s *Session) Order(number int) (*PlacedOrder, bool) {
	if number < 1 || number > len(s.Orders) {
		return nil, false
	}
	return &s.Orders[number-1], true
}

// OrderByReference returns the order carrying reference and its 1-based number.
func (s *Session) OrderByReference(reference string) (*PlacedOrder, int, bool) {
	if reference == "" {
		return nil, 0, false
	}
	for i := range s.Orders {
		if s.Orders[i].PaymentReference == reference {
			return &s.Orders[i], i + 1, true
		}
	}
	return nil, 0, false
}

// Normalize repairs records written before a field existed.
func (s *Session) Normalize() {
	if s.State != StateMain && s.State != StateOrdering {
		s.State = StateMain
	}
	if s.State != StateOrdering {
		s.Menu = MenuMap{}
	}
	if s.Orders == nil {
		s.Orders = []PlacedOrder{}
	}
}

// Clone returns a deep copy so a command can mutate without touching shared reads.
func (s *Session) Clone() *Session {
	out := *s
	out.CurrentOrder = s.CurrentOrder.clone()
	out.Orders = make([]PlacedOrder, len(s.Orders))
	for i, o := range s.Orders {
		out.Orders[i] = o.clone()
	}
	if s.Menu.ItemIDs != nil {
		out.Menu.ItemIDs = make([]int64, len(s.Menu.ItemIDs))
		copy(out.Menu.ItemIDs, s.Menu.ItemIDs)
	}
	return &out
}
