// Package dataset turns the product review CSV into vector-store documents.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"ecomm-product-bot/pkg/failure"
	"ecomm-product-bot/pkg/store"
)

const (
	ColumnProductTitle = "product_title"
	ColumnReview       = "review"
)

var ErrMissingColumn = errors.New("required column missing from CSV header")

// Result holds the converted documents plus the rows that were dropped
// because the title or review was blank.
type Result struct {
	Documents []store.Document
	Skipped   int
}

// ConvertFile reads the CSV at path.
func ConvertFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, failure.Configuration("dataset.open", err)
	}
	defer f.Close()
	return Convert(f)
}

// Convert emits one document per row in file order: the review becomes the
// content and the product title the product_name metadata.
func Convert(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, failure.Configuration("dataset.header", fmt.Errorf("%w: empty file", ErrMissingColumn))
		}
		return nil, failure.Configuration("dataset.header", err)
	}

	titleIdx, reviewIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")) {
		case ColumnProductTitle:
			titleIdx = i
		case ColumnReview:
			reviewIdx = i
		}
	}
	if titleIdx < 0 {
		return nil, failure.Configuration("dataset.header", fmt.Errorf("%w: %s", ErrMissingColumn, ColumnProductTitle))
	}
	if reviewIdx < 0 {
		return nil, failure.Configuration("dataset.header", fmt.Errorf("%w: %s", ErrMissingColumn, ColumnReview))
	}

	result := &Result{}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, failure.Configuration("dataset.row", fmt.Errorf("line %d: %w", line, err))
		}

		title := field(record, titleIdx)
		review := field(record, reviewIdx)
		if strings.TrimSpace(title) == "" || strings.TrimSpace(review) == "" {
			result.Skipped++
			continue
		}
		result.Documents = append(result.Documents, store.NewReviewDocument(title, review))
	}

	return result, nil
}

func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return record[idx]
}
