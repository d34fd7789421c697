package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/SscSPs/terminal_banking/internal/core/domain"
)

const dateLayout = "2006-01-02 15:04:05"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// renderAccounts prints ID, Type, Balance and Interest Rate columns.
func renderAccounts(w io.Writer, accounts []domain.Account) error {
	tw := newTable(w)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "ID\tType\tBalance\tInterest Rate")
	fmt.Fprintln(tw, "--\t----\t-------\t-------------")
	for _, acc := range accounts {
		fmt.Fprintf(tw, "%d\t%s\t$%s\t%s%%\n",
			acc.AccountID,
			acc.AccountType,
			acc.Balance.StringFixed(domain.MoneyScale),
			acc.InterestRate.StringFixed(domain.MoneyScale))
	}
	return tw.Flush()
}

// renderTransactions prints Date, Type, Amount and Description columns in the
// order given.
func renderTransactions(w io.Writer, txns []domain.Transaction) error {
	tw := newTable(w)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Date\tType\tAmount\tDescription")
	fmt.Fprintln(tw, "----\t----\t------\t-----------")
	for _, txn := range txns {
		fmt.Fprintf(tw, "%s\t%s\t$%s\t%s\n",
			txn.CreatedAt.Local().Format(dateLayout),
			txn.TransactionType,
			txn.Amount.StringFixed(domain.MoneyScale),
			txn.Description)
	}
	return tw.Flush()
}
