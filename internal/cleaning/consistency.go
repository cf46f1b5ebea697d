package cleaning

import (
	"time"

	apperrors "telcoclean/internal/errors"
	"telcoclean/pkg/contracts/domain"
)

// RepairRule fixes one cross-field or cross-table impossibility. Apply
// returns the number of rows it changed or removed.
type RepairRule struct {
	Name  string
	Table domain.TableName
	Apply func(ds *domain.Dataset) int
}

// DefaultRepairRules returns the repairs in the order they must run. The
// status downgrade depends on the resolution-date repair before it.
func DefaultRepairRules() []RepairRule {
	return []RepairRule{
		{
			Name:  "billing.bill_amount.negative_removed",
			Table: domain.TableBilling,
			Apply: removeNegativeBills,
		},
		{
			Name:  "tickets.resolution_date.before_ticket_cleared",
			Table: domain.TableTickets,
			Apply: clearEarlyResolutions,
		},
		{
			Name:  "tickets.ticket_status.downgraded",
			Table: domain.TableTickets,
			Apply: downgradeUnresolved,
		},
		{
			Name:  "usage_records.subscriber_id.unknown_removed",
			Table: domain.TableUsage,
			Apply: removeOrphanUsage,
		},
		{
			Name:  "usage_records.usage_date.before_activation_removed",
			Table: domain.TableUsage,
			Apply: removeUsageBeforeActivation,
		},
	}
}

func removeNegativeBills(ds *domain.Dataset) int {
	return retainRows(ds, domain.TableBilling, func(i int) bool {
		return ds.Billing[i].BillAmount >= 0
	})
}

func clearEarlyResolutions(ds *domain.Dataset) int {
	n := 0
	for i := range ds.Tickets {
		t := &ds.Tickets[i]
		if t.ResolutionDate != nil && t.ResolutionDate.Before(t.TicketDate) {
			t.ResolutionDate = nil
			n++
		}
	}
	return n
}

func downgradeUnresolved(ds *domain.Dataset) int {
	n := 0
	for i := range ds.Tickets {
		t := &ds.Tickets[i]
		if t.Status == domain.TicketStatusResolved && t.ResolutionDate == nil {
			t.Status = domain.TicketStatusInProgress
			n++
		}
	}
	return n
}

// activations indexes the first activation date seen per subscriber.
func activations(ds *domain.Dataset) map[string]time.Time {
	out := make(map[string]time.Time, len(ds.Subscribers))
	for _, s := range ds.Subscribers {
		if _, ok := out[s.SubscriberID]; !ok {
			out[s.SubscriberID] = s.ActivationDate
		}
	}
	return out
}

func removeOrphanUsage(ds *domain.Dataset) int {
	known := activations(ds)
	return retainRows(ds, domain.TableUsage, func(i int) bool {
		_, ok := known[ds.Usage[i].SubscriberID]
		return ok
	})
}

func removeUsageBeforeActivation(ds *domain.Dataset) int {
	known := activations(ds)
	return retainRows(ds, domain.TableUsage, func(i int) bool {
		activated, ok := known[ds.Usage[i].SubscriberID]
		return !ok || !ds.Usage[i].UsageDate.Before(activated)
	})
}

// ConsistencyRepairer runs the repair rules in order.
type ConsistencyRepairer struct {
	rules []RepairRule
}

// NewConsistencyRepairer rejects unnamed or empty rules.
func NewConsistencyRepairer(rules []RepairRule) (*ConsistencyRepairer, error) {
	for _, r := range rules {
		if r.Name == "" || r.Apply == nil {
			return nil, apperrors.NewAppValidationError("repair rule is incomplete").
				WithContext("rule", r.Name)
		}
	}
	return &ConsistencyRepairer{rules: rules}, nil
}

// Apply runs every rule and returns the rows each one changed or removed.
func (c *ConsistencyRepairer) Apply(ds *domain.Dataset, corrections *Corrections) map[string]int {
	out := make(map[string]int, len(c.rules))
	for _, r := range c.rules {
		n := r.Apply(ds)
		out[r.Name] += n
		corrections.Add(r.Name, n)
	}
	return out
}
