package columns

import (
	"strings"
)

// Role is the semantic meaning a raw column plays in a transaction table.
type Role string

const (
	RoleDate        Role = "date"
	RoleInvoice     Role = "invoice"
	RoleCustomer    Role = "customer"
	RoleQuantity    Role = "quantity"
	RolePrice       Role = "price"
	RoleDescription Role = "description"
	RoleCountry     Role = "country"
)

// Rule lists the keywords tried, in order, when resolving a role.
type Rule struct {
	Role     Role
	Keywords []string
}

// Rules is the ordered detection rule list. The date rule is resolved first so
// that its column can be excluded from every other role.
var Rules = []Rule{
	{Role: RoleDate, Keywords: []string{"date"}},
	{Role: RoleInvoice, Keywords: []string{"InvoiceNo", "Invoice"}},
	{Role: RoleCustomer, Keywords: []string{"CustomerID", "Customer"}},
	{Role: RoleQuantity, Keywords: []string{"Quantity", "qty"}},
	{Role: RolePrice, Keywords: []string{"UnitPrice", "Price", "SellingPrice", "actprice1"}},
	{Role: RoleDescription, Keywords: []string{"Description", "title", "Product", "Item"}},
	{Role: RoleCountry, Keywords: []string{"Country", "Location", "Region"}},
}

// RuleFor returns the rule registered for role.
func RuleFor(role Role) (Rule, bool) {
	for _, r := range Rules {
		if r.Role == role {
			return r, true
		}
	}

	return Rule{}, false
}

// Match is a resolved column.
type Match struct {
	Index int
	Name  string
}

// Schema maps each resolved role to its source column. Roles that did not
// resolve are absent.
type Schema map[Role]Match

// Has reports whether every given role resolved.
func (s Schema) Has(roles ...Role) bool {
	for _, r := range roles {
		if _, ok := s[r]; !ok {
			return false
		}
	}

	return true
}

// Find returns the first column whose name contains one of the keywords,
// case-insensitively. Keywords are tried in order and, for each keyword,
// columns are scanned left to right.
func Find(cols []string, keywords ...string) (Match, bool) {
	return find(cols, nil, keywords)
}

func find(cols []string, skip map[int]bool, keywords []string) (Match, bool) {
	for _, kw := range keywords {
		needle := strings.ToLower(kw)

		for i, c := range cols {
			if skip[i] {
				continue
			}

			if strings.Contains(strings.ToLower(c), needle) {
				return Match{Index: i, Name: c}, true
			}
		}
	}

	return Match{}, false
}

// FindDate resolves the date column. When no column name matches, it falls
// back to the first column where at least one value parses as a timestamp.
func FindDate(cols []string, rows [][]string) (Match, bool) {
	rule, _ := RuleFor(RoleDate)
	if m, ok := Find(cols, rule.Keywords...); ok {
		return m, true
	}

	for i, c := range cols {
		for _, row := range rows {
			if i >= len(row) {
				continue
			}

			if _, ok := ParseTime(row[i]); ok {
				return Match{Index: i, Name: c}, true
			}
		}
	}

	return Match{}, false
}

// Resolve applies every rule to the table. The date column, once claimed, is
// not offered to the other roles.
func Resolve(cols []string, rows [][]string) Schema {
	schema := make(Schema, len(Rules))
	skip := make(map[int]bool)

	if m, ok := FindDate(cols, rows); ok {
		schema[RoleDate] = m
		skip[m.Index] = true
	}

	for _, rule := range Rules {
		if rule.Role == RoleDate {
			continue
		}

		if m, ok := find(cols, skip, rule.Keywords); ok {
			schema[rule.Role] = m
		}
	}

	return schema
}
