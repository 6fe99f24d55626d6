package google

import (
	"fmt"
	"strconv"
	"strings"

	"gagyebu/internal/core"
)

// Sheet columns: A date, B id, C type, D category, E description, F amount.
const (
	colDate = iota
	colID
	colType
	colCategory
	colDescription
	colAmount
	numCols
)

var header = []any{"date", "id", "type", "category", "description", "amount"}

// encodeRows turns a bucket into sheet rows, one per transaction.
func encodeRows(date core.Date, items []core.Transaction) [][]any {
	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, []any{
			date.String(),
			strconv.FormatInt(it.ID, 10),
			string(it.Type),
			it.Category,
			it.Description,
			it.Amount,
		})
	}
	return rows
}

// matchingRows returns the 0-based indices of rows whose date column equals
// date, highest first so deletions do not shift the remaining indices.
func matchingRows(values [][]any, date core.Date) []int64 {
	want := date.String()
	var out []int64
	for i := len(values) - 1; i >= 0; i-- {
		row := toStrings(values[i])
		if safeGet(row, colDate) == want {
			out = append(out, int64(i))
		}
	}
	return out
}

// decodeRows reads the transactions stored for date. Rows that do not parse
// are skipped.
func decodeRows(values [][]any, date core.Date) []core.Transaction {
	want := date.String()
	out := []core.Transaction{}
	for _, raw := range values {
		row := toStrings(raw)
		if safeGet(row, colDate) != want {
			continue
		}
		tx, err := decodeRow(row)
		if err != nil {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func decodeRow(row []string) (core.Transaction, error) {
	if len(row) < numCols {
		return core.Transaction{}, fmt.Errorf("short row: %d columns", len(row))
	}
	id, err := strconv.ParseInt(row[colID], 10, 64)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("id %q: %w", row[colID], err)
	}
	typ, err := core.ParseTransactionType(row[colType])
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(row[colAmount])
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:          id,
		Type:        typ,
		Category:    row[colCategory],
		Description: row[colDescription],
		Amount:      amount,
	}, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
