package accounting

import (
	"fmt"
	"sort"

	"github.com/stockbooks/backend/internal/domain/shared"
)

// AccountType classifies an account for balance sign purposes
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// String returns the string representation
func (t AccountType) String() string {
	return string(t)
}

// IsDebitNormal returns true if the account's normal balance is on the debit side.
// Asset and expense accounts increase with debits; liability, equity and income
// accounts increase with credits.
func (t AccountType) IsDebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// AllAccountTypes returns all valid account types
func AllAccountTypes() []AccountType {
	return []AccountType{
		AccountTypeAsset,
		AccountTypeLiability,
		AccountTypeEquity,
		AccountTypeIncome,
		AccountTypeExpense,
	}
}

// Account codes wired into the trading flows
const (
	AccountCodeShareCapital = "1012"
	AccountCodeInventory    = "2041"
	AccountCodeReceivables  = "2410"
	AccountCodePayables     = "4430"
	AccountCodeBank         = "5121"
	AccountCodeCOGS         = "6001"
	AccountCodeRevenue      = "7001"
)

// Account is an immutable reference entry in the chart of accounts
type Account struct {
	Code string      `json:"code"`
	Name string      `json:"name"`
	Type AccountType `json:"type"`
}

// Catalog is the read-only chart of accounts, built once at startup.
// Lookups after construction are safe for concurrent use.
type Catalog struct {
	accounts map[string]Account
}

// NewCatalog builds a catalog from the given accounts.
// Duplicate codes and invalid types are rejected.
func NewCatalog(accounts []Account) (*Catalog, error) {
	byCode := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		if a.Code == "" {
			return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account code cannot be empty")
		}
		if !a.Type.IsValid() {
			return nil, shared.NewDomainError("INVALID_ACCOUNT", fmt.Sprintf("Account %s has invalid type %q", a.Code, a.Type))
		}
		if _, exists := byCode[a.Code]; exists {
			return nil, shared.NewDomainError("DUPLICATE_ACCOUNT", fmt.Sprintf("Account code %s appears more than once", a.Code))
		}
		byCode[a.Code] = a
	}
	return &Catalog{accounts: byCode}, nil
}

// Lookup returns the account for the given code
func (c *Catalog) Lookup(code string) (Account, error) {
	account, ok := c.accounts[code]
	if !ok {
		return Account{}, NewUnknownAccountError(code)
	}
	return account, nil
}

// Contains returns true if the catalog holds the given code
func (c *Catalog) Contains(code string) bool {
	_, ok := c.accounts[code]
	return ok
}

// Accounts returns all accounts ordered by code
func (c *Catalog) Accounts() []Account {
	accounts := make([]Account, 0, len(c.accounts))
	for _, a := range c.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Code < accounts[j].Code
	})
	return accounts
}

// Len returns the number of accounts in the catalog
func (c *Catalog) Len() int {
	return len(c.accounts)
}

// DefaultChart returns the chart of accounts used by the trading flows:
// inventory, payables, receivables, cost of goods sold and revenue, plus
// bank and capital accounts so the chart covers all five account types.
func DefaultChart() []Account {
	return []Account{
		{Code: AccountCodeShareCapital, Name: "Share capital", Type: AccountTypeEquity},
		{Code: AccountCodeInventory, Name: "Inventory of goods", Type: AccountTypeAsset},
		{Code: AccountCodeReceivables, Name: "Trade receivables", Type: AccountTypeAsset},
		{Code: AccountCodePayables, Name: "Trade payables", Type: AccountTypeLiability},
		{Code: AccountCodeBank, Name: "Bank current account", Type: AccountTypeAsset},
		{Code: AccountCodeCOGS, Name: "Cost of goods sold", Type: AccountTypeExpense},
		{Code: AccountCodeRevenue, Name: "Sales revenue", Type: AccountTypeIncome},
	}
}

// MustDefaultCatalog builds a catalog from DefaultChart, panicking on error.
// The default chart is static, so a failure here is a programming mistake.
func MustDefaultCatalog() *Catalog {
	catalog, err := NewCatalog(DefaultChart())
	if err != nil {
		panic(err)
	}
	return catalog
}

// NewUnknownAccountError reports a reference to a code missing from the catalog
func NewUnknownAccountError(code string) *shared.DomainError {
	return shared.NewDomainError("UNKNOWN_ACCOUNT", fmt.Sprintf("Account %s is not in the chart of accounts", code))
}
