// Package export renders debt records as a CSV document and reads that document back.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/sbilibin2017/settle-sense/internal/models"
	"github.com/shopspring/decimal"
)

// FileName is the attachment name offered to browsers.
const FileName = "SettleSense_Export.csv"

var (
	baseHeader      = []string{"ID", "Person", "Amount", "Direction", "Note"}
	timestampHeader = []string{"Created At", "Updated At"}
)

// ErrBadHeader is returned when a document does not start with the export header.
var ErrBadHeader = errors.New("export: unexpected csv header")

// Header returns the column titles for the given layout.
func Header(timestamped bool) []string {
	h := append([]string{}, baseHeader...)
	if timestamped {
		h = append(h, timestampHeader...)
	}
	return h
}

// WriteDebtsCSV writes records in the given order. Null timestamps become empty cells.
func WriteDebtsCSV(w io.Writer, records []models.DebtRecord, timestamped bool) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(Header(timestamped)); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.Person,
			r.Amount.String(),
			string(r.Direction),
			r.Note,
		}
		if timestamped {
			row = append(row, deref(r.CreatedAt), deref(r.UpdatedAt))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadDebtsCSV parses a document produced by WriteDebtsCSV.
// It reports whether the document carried the timestamp columns.
func ReadDebtsCSV(r io.Reader) ([]models.DebtRecord, bool, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, false, fmt.Errorf("export: read header: %w", err)
	}
	timestamped, err := detectLayout(header)
	if err != nil {
		return nil, false, err
	}
	width := len(header)

	records := []models.DebtRecord{}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(row) != width {
			return nil, false, fmt.Errorf("export: line %d: want %d fields, got %d", line, width, len(row))
		}

		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, false, fmt.Errorf("export: line %d: id: %w", line, err)
		}
		amount, err := decimal.NewFromString(row[2])
		if err != nil {
			return nil, false, fmt.Errorf("export: line %d: amount: %w", line, err)
		}
		rec := models.DebtRecord{
			ID:        id,
			Person:    row[1],
			Amount:    amount,
			Direction: models.Direction(row[3]),
			Note:      row[4],
		}
		if timestamped {
			rec.CreatedAt = ptr(row[5])
			rec.UpdatedAt = ptr(row[6])
		}
		records = append(records, rec)
	}
	return records, timestamped, nil
}

func detectLayout(header []string) (bool, error) {
	for _, timestamped := range []bool{false, true} {
		want := Header(timestamped)
		if len(header) != len(want) {
			continue
		}
		match := true
		for i := range want {
			if header[i] != want[i] {
				match = false
				break
			}
		}
		if match {
			return timestamped, nil
		}
	}
	return false, ErrBadHeader
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
