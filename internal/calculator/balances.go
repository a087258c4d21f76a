package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CycleForBalance represents an outstanding share with the minimal information
// needed for balance calculations.
type CycleForBalance struct {
	DebtorID   string // Participant billed the share
	CreditorID string // Bill manager who fronted the payment
	Amount     decimal.Decimal
	IsPaid     bool
}

// MemberBalance represents the balance information for one household member.
type MemberBalance struct {
	MemberID   string
	NetBalance decimal.Decimal // Positive = owed money, Negative = owes money
	TotalOwed  decimal.Decimal // Unpaid shares this member still has to pay
	TotalDue   decimal.Decimal // Unpaid shares other members owe this member
}

// DebtEdge represents a debt from one member to another.
type DebtEdge struct {
	From   string // Member who owes
	To     string // Member who is owed
	Amount decimal.Decimal
}

// OutstandingBalances aggregates unpaid shares into per-member balances and a
// netted debt list. Debts in opposite directions between the same pair of
// members cancel out, so at most one edge exists per pair.
//
// Both results are sorted by member ID for stable output.
func OutstandingBalances(cycles []CycleForBalance) ([]MemberBalance, []DebtEdge) {
	balances := make(map[string]*MemberBalance)
	member := func(id string) *MemberBalance {
		b, ok := balances[id]
		if !ok {
			b = &MemberBalance{MemberID: id}
			balances[id] = b
		}
		return b
	}

	// pair key is ordered so that a->b and b->a land on the same entry;
	// a positive amount means lo owes hi.
	type pair struct{ lo, hi string }
	net := make(map[pair]decimal.Decimal)

	for _, c := range cycles {
		if c.IsPaid || c.DebtorID == c.CreditorID || c.Amount.IsZero() {
			continue
		}

		debtor := member(c.DebtorID)
		creditor := member(c.CreditorID)
		debtor.TotalOwed = debtor.TotalOwed.Add(c.Amount)
		creditor.TotalDue = creditor.TotalDue.Add(c.Amount)

		if c.DebtorID < c.CreditorID {
			k := pair{c.DebtorID, c.CreditorID}
			net[k] = net[k].Add(c.Amount)
		} else {
			k := pair{c.CreditorID, c.DebtorID}
			net[k] = net[k].Sub(c.Amount)
		}
	}

	memberBalances := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		b.NetBalance = b.TotalDue.Sub(b.TotalOwed)
		memberBalances = append(memberBalances, *b)
	}
	sort.Slice(memberBalances, func(i, j int) bool {
		return memberBalances[i].MemberID < memberBalances[j].MemberID
	})

	var edges []DebtEdge
	for k, amount := range net {
		switch {
		case amount.IsPositive():
			edges = append(edges, DebtEdge{From: k.lo, To: k.hi, Amount: amount})
		case amount.IsNegative():
			edges = append(edges, DebtEdge{From: k.hi, To: k.lo, Amount: amount.Neg()})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	return memberBalances, edges
}
