package contract

import (
	"bytes"
	"sort"
	"strings"

	"github.com/go-faster/errors"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/alexanderramin/shiftdash/internal/period"
	"github.com/alexanderramin/shiftdash/internal/rollup"
)

// SummaryKind names one of the aggregate summary endpoints.
type SummaryKind string

const (
	SummaryManagers SummaryKind = "managers"
	SummaryClients  SummaryKind = "clients"
	SummaryMonthly  SummaryKind = "monthly"
)

// SummaryKinds lists the kinds in menu order.
var SummaryKinds = []SummaryKind{SummaryManagers, SummaryClients, SummaryMonthly}

// ErrUnknownSummary is returned for an unrecognized summary kind name.
var ErrUnknownSummary = errors.New("unknown summary kind")

// ParseSummaryKind accepts the kind names plus a few aliases.
func ParseSummaryKind(s string) (SummaryKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "managers", "manager", "account-manager", "account-managers":
		return SummaryManagers, nil
	case "clients", "client", "client-departments", "dashboard":
		return SummaryClients, nil
	case "monthly", "months", "month":
		return SummaryMonthly, nil
	}
	return "", errors.Wrap(ErrUnknownSummary, s)
}

// Title is the heading used for the view.
func (k SummaryKind) Title() string {
	switch k {
	case SummaryManagers:
		return "Allowances by Account Manager"
	case SummaryClients:
		return "Allowances by Client"
	case SummaryMonthly:
		return "Month-by-Month Allowances"
	}
	return string(k)
}

// Levels returns the column label for each tree level.
func (k SummaryKind) Levels() [rollup.MaxDepth]string {
	switch k {
	case SummaryManagers:
		return [rollup.MaxDepth]string{"Account Manager", "Client", "Department"}
	case SummaryClients:
		return [rollup.MaxDepth]string{"Client", "Department", "Employee"}
	case SummaryMonthly:
		return [rollup.MaxDepth]string{"Month", "Client", "Department"}
	}
	return [rollup.MaxDepth]string{"Name", "Name", "Name"}
}

// AdaptSummary maps a summary payload onto the canonical tree. Payloads
// that do not have the endpoint's shape produce an empty tree and false.
func AdaptSummary(kind SummaryKind, b []byte) (*rollup.Tree, bool) {
	switch kind {
	case SummaryManagers:
		return ManagerTree(b)
	case SummaryClients:
		return ClientTree(b)
	case SummaryMonthly:
		return MonthlyTree(b)
	}
	return rollup.NewTree(nil), false
}

// Totals is the figure block every summary level may carry.
type Totals struct {
	HeadCount      int              `json:"head_count"`
	TotalAllowance *decimal.Decimal `json:"total_allowance"`
	Shifts         ShiftAmounts     `json:"shifts"`
	Error          string           `json:"error"`
}

// EmployeeTotals is a leaf of the client summary.
type EmployeeTotals struct {
	EmpID   string `json:"emp_id"`
	EmpName string `json:"emp_name"`
	Totals
}

// DepartmentTotals is a department entry, optionally listing employees.
type DepartmentTotals struct {
	Department string `json:"department"`
	Name       string `json:"name"`
	Totals
	Employees []EmployeeTotals `json:"employees"`
}

// ClientTotals is a client entry with its departments. Managers nest these
// under client_name, the client summary under client.
type ClientTotals struct {
	ClientName string `json:"client_name"`
	Client     string `json:"client"`
	Totals
	Departments json.RawMessage `json:"departments"`
}

// ManagerTotals is one account manager with their clients.
type ManagerTotals struct {
	Name           string `json:"name"`
	AccountManager string `json:"account_manager"`
	Totals
	Clients []ClientTotals `json:"clients"`
}

// ManagerTree adapts the account-manager summary: Manager -> Client ->
// Department. Manager rows get totals summed from their clients when the
// endpoint sends none.
func ManagerTree(b []byte) (*rollup.Tree, bool) {
	var managers []ManagerTotals
	if !decodeList(b, &managers, "data", "managers") {
		return rollup.NewTree(nil), false
	}
	roots := make([]*rollup.Node, 0, len(managers))
	for _, m := range managers {
		var clients []*rollup.Node
		for _, c := range m.Clients {
			depts, ok := decodeNamed(c.Departments, departmentName)
			if !ok {
				return rollup.NewTree(nil), false
			}
			var leaves []*rollup.Node
			for _, d := range depts {
				leaves = append(leaves, totalsNode(d.name, d.value.Totals, nil))
			}
			clients = append(clients, totalsNode(clientName(c), c.Totals, leaves))
		}
		roots = append(roots, totalsNode(firstNonEmpty(m.Name, m.AccountManager), m.Totals, clients))
	}
	return rollup.NewTree(roots), true
}

// ClientTree adapts the client summary: Client -> Department -> Employee.
func ClientTree(b []byte) (*rollup.Tree, bool) {
	var clients []ClientTotals
	if !decodeList(b, &clients, "clients", "data") {
		return rollup.NewTree(nil), false
	}
	roots := make([]*rollup.Node, 0, len(clients))
	for _, c := range clients {
		depts, ok := decodeNamed(c.Departments, departmentName)
		if !ok {
			return rollup.NewTree(nil), false
		}
		var mids []*rollup.Node
		for _, d := range depts {
			var leaves []*rollup.Node
			for _, e := range d.value.Employees {
				t := e.Totals
				if t.HeadCount == 0 {
					t.HeadCount = 1
				}
				leaves = append(leaves, totalsNode(firstNonEmpty(e.EmpName, e.EmpID), t, nil))
			}
			mids = append(mids, totalsNode(d.name, d.value.Totals, leaves))
		}
		roots = append(roots, totalsNode(clientName(c), c.Totals, mids))
	}
	return rollup.NewTree(roots), true
}

type monthEntry struct {
	Totals
	Clients json.RawMessage `json:"clients"`
}

// MonthlyTree adapts the month-by-month summary, a YYYY-MM keyed object:
// Month -> Client -> Department. Months are ordered chronologically and
// labelled in display form; keys that are not months are skipped.
func MonthlyTree(b []byte) (*rollup.Tree, bool) {
	var months map[string]monthEntry
	if err := json.Unmarshal(b, &months); err != nil || months == nil {
		return rollup.NewTree(nil), false
	}
	type keyed struct {
		wire  string
		entry monthEntry
	}
	ordered := make([]keyed, 0, len(months))
	for k, v := range months {
		wire, err := period.Normalize(k)
		if err != nil || wire == "" {
			continue
		}
		ordered = append(ordered, keyed{wire: wire, entry: v})
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].wire < ordered[j].wire })

	roots := make([]*rollup.Node, 0, len(ordered))
	for _, m := range ordered {
		clients, ok := decodeNamed(m.entry.Clients, clientName)
		if !ok {
			return rollup.NewTree(nil), false
		}
		var mids []*rollup.Node
		for _, c := range clients {
			depts, ok := decodeNamed(c.value.Departments, departmentName)
			if !ok {
				return rollup.NewTree(nil), false
			}
			var leaves []*rollup.Node
			for _, d := range depts {
				leaves = append(leaves, totalsNode(d.name, d.value.Totals, nil))
			}
			mids = append(mids, totalsNode(c.name, c.value.Totals, leaves))
		}
		roots = append(roots, totalsNode(period.Display(m.wire), m.entry.Totals, mids))
	}
	return rollup.NewTree(roots), true
}

func totalsNode(name string, t Totals, children []*rollup.Node) *rollup.Node {
	n := &rollup.Node{
		Name:     name,
		Children: children,
		Error:    t.Error,
	}
	if t.TotalAllowance == nil && len(children) > 0 {
		rollup.RollUp(n)
		return n
	}
	n.HeadCount = t.HeadCount
	n.Shifts = t.Shifts.Totals()
	if t.TotalAllowance != nil {
		n.Total = *t.TotalAllowance
	}
	return n
}

// decodeList decodes either a bare JSON array or an object holding the array
// under one of keys.
func decodeList[T any](b []byte, dst *[]T, keys ...string) bool {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return false
	}
	if b[0] == '[' {
		return json.Unmarshal(b, dst) == nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return false
	}
	for _, k := range keys {
		if raw, ok := obj[k]; ok {
			raw = bytes.TrimSpace(raw)
			if len(raw) == 0 || raw[0] != '[' {
				return false
			}
			return json.Unmarshal(raw, dst) == nil
		}
	}
	return false
}

type named[T any] struct {
	name  string
	value T
}

// decodeNamed reads children sent either as an array of objects or as an
// object keyed by name. Object keys are visited in name order.
func decodeNamed[T any](raw json.RawMessage, nameOf func(T) string) ([]named[T], bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return nil, true
	}
	switch raw[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, false
		}
		out := make([]named[T], 0, len(items))
		for _, it := range items {
			out = append(out, named[T]{name: nameOf(it), value: it})
		}
		return out, true
	case '{':
		var m map[string]T
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, false
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]named[T], 0, len(keys))
		for _, k := range keys {
			out = append(out, named[T]{name: k, value: m[k]})
		}
		return out, true
	}
	return nil, false
}

func departmentName(d DepartmentTotals) string { return firstNonEmpty(d.Department, d.Name) }

func clientName(c ClientTotals) string { return firstNonEmpty(c.ClientName, c.Client) }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
