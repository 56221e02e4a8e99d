package accounting

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// AccountBalance holds the replayed totals for one account
type AccountBalance struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Type    AccountType     `json:"type"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Balance decimal.Decimal `json:"balance"`
}

// Journal translates inventory events into balanced double-entry postings and
// keeps the append-only posting log. Balances are always derived by replaying
// the log, never stored. The catalog is injected at construction so isolated
// journals can exist side by side in tests.
type Journal struct {
	mu       sync.Mutex
	catalog  *Catalog
	postings []Posting
}

// NewJournal creates an empty journal over the given catalog
func NewJournal(catalog *Catalog) *Journal {
	return &Journal{
		catalog:  catalog,
		postings: make([]Posting, 0),
	}
}

// Load seeds the journal with previously persisted postings, oldest first.
// It is meant for rehydration at startup and replaces the current log.
func (j *Journal) Load(postings []Posting) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.postings = make([]Posting, len(postings))
	copy(j.postings, postings)
}

// PostPurchase records a goods receipt: debit inventory, credit payables.
// Account codes are validated against the catalog before anything is appended.
func (j *Journal) PostPurchase(
	productCode, inventoryAccountCode, payableAccountCode string,
	amount decimal.Decimal,
	documentNumber, description string,
	date time.Time,
) (*Posting, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Posting amount must be positive")
	}
	if err := j.checkAccounts(inventoryAccountCode, payableAccountCode); err != nil {
		return nil, err
	}

	posting := newPosting(
		inventoryAccountCode,
		payableAccountCode,
		amount,
		SourceDocumentTypePurchase,
		documentNumber,
		productCode,
		description,
		date,
	)

	j.mu.Lock()
	j.postings = append(j.postings, posting)
	j.mu.Unlock()

	return &posting, nil
}

// PostSale records a goods issue as two postings sharing the document number:
// cost of goods sold (debit COGS, credit inventory) and the revenue side
// (debit receivables, credit revenue). All five accounts are validated before
// the first posting is appended, so a failure leaves the journal untouched.
func (j *Journal) PostSale(
	productCode, inventoryAccountCode, cogsAccountCode, revenueAccountCode, receivableAccountCode string,
	costOfGoodsSold, saleAmount decimal.Decimal,
	documentNumber, description string,
	date time.Time,
) ([]Posting, error) {
	if costOfGoodsSold.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Cost of goods sold must be positive")
	}
	if saleAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Sale amount must be positive")
	}
	if err := j.checkAccounts(inventoryAccountCode, cogsAccountCode, revenueAccountCode, receivableAccountCode); err != nil {
		return nil, err
	}

	cogsPosting := newPosting(
		cogsAccountCode,
		inventoryAccountCode,
		costOfGoodsSold,
		SourceDocumentTypeSale,
		documentNumber,
		productCode,
		fmt.Sprintf("%s (cost of goods sold)", description),
		date,
	)
	revenuePosting := newPosting(
		receivableAccountCode,
		revenueAccountCode,
		saleAmount,
		SourceDocumentTypeSale,
		documentNumber,
		productCode,
		fmt.Sprintf("%s (revenue)", description),
		date,
	)

	j.mu.Lock()
	j.postings = append(j.postings, cogsPosting, revenuePosting)
	j.mu.Unlock()

	return []Posting{cogsPosting, revenuePosting}, nil
}

// Postings returns a copy of the journal in posting order
func (j *Journal) Postings() []Posting {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Posting, len(j.postings))
	copy(out, j.postings)
	return out
}

// Len returns the number of postings in the journal
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.postings)
}

// AccountBalances replays the full journal and returns per-account totals,
// ordered by account code. Debit-normal accounts (asset, expense) carry
// balance = debit - credit; credit-normal accounts carry the opposite sign.
// The replay is side-effect-free and yields the same result on every call.
func (j *Journal) AccountBalances() []AccountBalance {
	j.mu.Lock()
	postings := make([]Posting, len(j.postings))
	copy(postings, j.postings)
	j.mu.Unlock()

	totals := make(map[string]*AccountBalance)
	touch := func(code string) *AccountBalance {
		if b, ok := totals[code]; ok {
			return b
		}
		b := &AccountBalance{
			Code:   code,
			Debit:  decimal.Zero,
			Credit: decimal.Zero,
		}
		if account, err := j.catalog.Lookup(code); err == nil {
			b.Name = account.Name
			b.Type = account.Type
		}
		totals[code] = b
		return b
	}

	for _, p := range postings {
		debit := touch(p.DebitAccountCode)
		debit.Debit = debit.Debit.Add(p.Amount)
		credit := touch(p.CreditAccountCode)
		credit.Credit = credit.Credit.Add(p.Amount)
	}

	balances := make([]AccountBalance, 0, len(totals))
	for _, b := range totals {
		if b.Type.IsDebitNormal() {
			b.Balance = b.Debit.Sub(b.Credit)
		} else {
			b.Balance = b.Credit.Sub(b.Debit)
		}
		balances = append(balances, *b)
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Code < balances[j].Code
	})
	return balances
}

// TrialTotals sums debits and credits across the whole journal. For any
// journal produced through PostPurchase/PostSale the two are equal.
func (j *Journal) TrialTotals() (debits, credits decimal.Decimal) {
	j.mu.Lock()
	defer j.mu.Unlock()
	debits, credits = decimal.Zero, decimal.Zero
	for _, p := range j.postings {
		debits = debits.Add(p.Amount)
		credits = credits.Add(p.Amount)
	}
	return debits, credits
}

func (j *Journal) checkAccounts(codes ...string) error {
	for _, code := range codes {
		if !j.catalog.Contains(code) {
			return NewUnknownAccountError(code)
		}
	}
	return nil
}
