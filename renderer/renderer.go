// Package renderer formats transactions, groups and account summaries for
// the terminal.
package renderer

import (
	"fmt"
	"io"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/olekukonko/tablewriter"
)

// USD formats a dollar figure for display.
func USD(v float64) string {
	return money.New(int64(math.Round(v*100)), money.USD).Display()
}

// Percent formats a ratio as a percentage, or a dash when absent.
func Percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *v*100)
}

// Quantity formats a share or contract count without trailing zeros.
func Quantity(v float64) string {
	return fmt.Sprintf("%v", v)
}

// table builds a bare table in the house style.
func table(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetBorder(false)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	t.SetHeaderAlignment(tablewriter.ALIGN_RIGHT)
	return t
}
