package cleaning

import (
	"encoding/json"
	"sync"
)

// Correction is the number of rows one rule touched.
type Correction struct {
	Rule  string `json:"rule"`
	Count int    `json:"count"`
}

// Corrections is the audit trail of a run: rule name to rows touched, in the
// order the rules first fired. Rule names follow table.column.action, e.g.
// usage_records.data_usage_gb.imputed.
type Corrections struct {
	mu     sync.RWMutex
	counts map[string]int
	order  []string
}

// NewCorrections returns an empty audit trail.
func NewCorrections() *Corrections {
	return &Corrections{counts: make(map[string]int)}
}

// Add records n more rows for rule. Zero counts are kept so that every rule
// that ran shows up in the report.
func (c *Corrections) Add(rule string, n int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.counts[rule]; !ok {
		c.order = append(c.order, rule)
	}
	c.counts[rule] += n
}

// Count returns the rows recorded for rule.
func (c *Corrections) Count(rule string) int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counts[rule]
}

// Total returns the sum over all rules.
func (c *Corrections) Total() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// List returns the corrections in recording order.
func (c *Corrections) List() []Correction {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Correction, 0, len(c.order))
	for _, rule := range c.order {
		out = append(out, Correction{Rule: rule, Count: c.counts[rule]})
	}
	return out
}

// MarshalJSON encodes the corrections as an ordered list.
func (c *Corrections) MarshalJSON() ([]byte, error) {
	list := c.List()
	if list == nil {
		list = []Correction{}
	}
	return json.Marshal(list)
}

func ruleName(ref FieldRef, action string) string {
	return ref.String() + "." + action
}
