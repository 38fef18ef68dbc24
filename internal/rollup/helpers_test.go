package rollup

import "github.com/shopspring/decimal"

func leaf(name string, total int64) *Node {
	return &Node{Name: name, HeadCount: 1, Total: decimal.NewFromInt(total)}
}

func branch(name string, total int64, children ...*Node) *Node {
	return &Node{Name: name, HeadCount: len(children), Total: decimal.NewFromInt(total), Children: children}
}

// sampleTree builds two managers with clients and departments:
//
//	Asha ── Acme ── Ops, Support
//	     └─ Globex ── Ops
//	Ravi ── Initech ── Billing
func sampleTree() *Tree {
	return NewTree([]*Node{
		branch("Asha", 9000,
			branch("Acme", 5000, leaf("Ops", 3000), leaf("Support", 2000)),
			branch("Globex", 4000, leaf("Ops", 4000)),
		),
		branch("Ravi", 7000,
			branch("Initech", 7000, leaf("Billing", 7000)),
		),
	})
}

func names(rows []DisplayRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func keys(rows []DisplayRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Key
	}
	return out
}
