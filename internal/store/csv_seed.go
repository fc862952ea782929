package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/evyataryagoni/iplocator/internal/models"
)

// SeedResult counts what happened to every CSV row during a seed
type SeedResult struct {
	Inserted int // New records written
	Skipped  int // IP already stored, left untouched
	Invalid  int // Rows without exactly 2 columns
}

// ReadCSV parses seed records from r
//
// CSV Format: ip,location (header row required)
// Example:    8.8.8.8,"Mountain View, California, US"
// Rows with the wrong column count are counted in invalid and dropped
func ReadCSV(r io.Reader) (records []models.LocationRecord, invalid int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read CSV file: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("CSV file is empty")
	}

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) != 2 {
			invalid++
			continue
		}
		records = append(records, models.LocationRecord{
			IP:       row[0],
			Location: row[1],
		})
	}

	return records, invalid, nil
}

// LoadCSV seeds s with the records of the CSV file at path
// Existing IPs are skipped, never overwritten
func LoadCSV(ctx context.Context, path string, s Store) (SeedResult, error) {
	var result SeedResult

	file, err := os.Open(path)
	if err != nil {
		return result, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	records, invalid, err := ReadCSV(file)
	if err != nil {
		return result, err
	}
	result.Invalid = invalid

	for i := range records {
		err := s.Insert(ctx, &records[i])
		switch {
		case err == nil:
			result.Inserted++
		case errors.Is(err, ErrDuplicate):
			result.Skipped++
		default:
			return result, fmt.Errorf("failed to store IP %s: %w", records[i].IP, err)
		}
	}

	return result, nil
}
