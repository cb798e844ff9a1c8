// Package ingest turns external transaction sources into ordered
// transaction lists for analysis. Individual malformed rows are skipped
// with a logged warning; only an unreadable source fails the batch.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/logger"
	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/transaction"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// Load reads transactions from a local CSV path or a gs:// URI.
func Load(ctx context.Context, pathOrURI string) ([]transaction.Transaction, error) {
	if strings.HasPrefix(pathOrURI, "gs://") {
		data, err := fetchFromGCS(ctx, pathOrURI)
		if err != nil {
			return nil, err
		}
		return Parse(ctx, bytes.NewReader(data))
	}

	f, err := os.Open(pathOrURI)
	if err != nil {
		return nil, fmt.Errorf("open transactions file %q: %w", pathOrURI, err)
	}
	defer f.Close()

	return Parse(ctx, f)
}

// Parse reads header-mapped CSV rows into transactions, sorted by date.
// Required columns: date, amount. Optional: category (default "other"),
// type (default "debit"), description, account_type.
func Parse(ctx context.Context, r io.Reader) ([]transaction.Transaction, error) {
	log := logger.FromContext(ctx)

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["date"]; !ok {
		return nil, fmt.Errorf("CSV is missing a date column")
	}
	if _, ok := cols["amount"]; !ok {
		return nil, fmt.Errorf("CSV is missing an amount column")
	}

	var txns []transaction.Transaction
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("Skipping unreadable CSV row")
			continue
		}

		txn, err := parseRow(cols, record)
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("Skipping malformed transaction row")
			continue
		}
		txns = append(txns, txn)
	}

	transaction.SortByDate(txns)
	return txns, nil
}

func parseRow(cols map[string]int, record []string) (transaction.Transaction, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := parseDate(field("date"))
	if err != nil {
		return transaction.Transaction{}, err
	}

	amount, err := strconv.ParseFloat(field("amount"), 64)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("invalid amount %q: %w", field("amount"), err)
	}

	categoryField := field("category")
	if categoryField == "" {
		categoryField = string(transaction.CategoryOther)
	}
	category, err := transaction.ParseCategory(categoryField)
	if err != nil {
		return transaction.Transaction{}, err
	}

	typeField := field("type")
	if typeField == "" {
		typeField = string(transaction.TypeDebit)
	}
	txnType, err := transaction.ParseType(typeField)
	if err != nil {
		return transaction.Transaction{}, err
	}

	return transaction.Transaction{
		Date:        date,
		Amount:      amount,
		Category:    category,
		Description: field("description"),
		Type:        txnType,
		AccountType: field("account_type"),
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
