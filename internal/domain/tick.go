package domain

import "time"

// Tick is one last-price update for a symbol. The mark-price prefix some
// exchanges attach to the wire symbol is stripped before a Tick is built.
type Tick struct {
	Symbol string
	Price  float64
	Time   time.Time
}
