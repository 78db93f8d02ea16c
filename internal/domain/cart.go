package domain

import "github.com/shopspring/decimal"

// Cart is the in-progress order of a session.
// Total always equals the sum of the line totals.
type Cart struct {
	Lines []CartLine      `bson:"lines" json:"items"`
	Total decimal.Decimal `bson:"total" json:"total"`
}

type CartLine struct {
	ItemID    int64           `bson:"item_id" json:"item_id"`
	Name      string          `bson:"name" json:"name"`
	Quantity  int             `bson:"quantity" json:"qty"`
	UnitPrice decimal.Decimal `bson:"unit_price" json:"unit_price"`
	LineTotal decimal.Decimal `bson:"line_total" json:"price"`
}

// Add merges item into the cart. An existing line for the same item gets its
// quantity incremented and its line total re-derived from the current price.
func (c *Cart) Add(item Item) CartLine {
	for i := range c.Lines {
		if c.Lines[i].ItemID == item.ID {
			c.Lines[i].Quantity++
			c.Lines[i].UnitPrice = item.BasePrice
			c.Lines[i].LineTotal = item.BasePrice.Mul(decimal.NewFromInt(int64(c.Lines[i].Quantity)))
			c.recalculate()
			return c.Lines[i]
		}
	}

	line := CartLine{
		ItemID:    item.ID,
		Name:      item.Name,
		Quantity:  1,
		UnitPrice: item.BasePrice,
		LineTotal: item.BasePrice,
	}
	c.Lines = append(c.Lines, line)
	c.recalculate()
	return line
}

func (c *Cart) Clear() {
	c.Lines = nil
	c.Total = decimal.Zero
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ItemCount is the number of distinct lines.
func (c *Cart) ItemCount() int {
	return len(c.Lines)
}

func (c *Cart) recalculate() {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.LineTotal)
	}
	c.Total = total
}

func (c Cart) clone() Cart {
	out := Cart{Total: c.Total}
	if c.Lines != nil {
		out.Lines = make([]CartLine, len(c.Lines))
		copy(out.Lines, c.Lines)
	}
	return out
}
