// Package importer bulk-loads clients, animals and feed types from CSV
// files. Rows are processed independently: a failing row is reported with
// its line number and the rest of the file continues.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lagranja/livestock/internal/domain/faults"
	"github.com/lagranja/livestock/internal/repository"
	"github.com/lagranja/livestock/internal/service/registry"
)

// Result summarizes one import run.
type Result struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
}

// Service parses CSV uploads and feeds them through the registries, so every
// imported row passes the same validation as the API.
type Service struct {
	store     repository.Store
	clients   *registry.ClientService
	feedTypes *registry.FeedTypeService
	animals   *registry.AnimalService
	logger    *zap.Logger
}

// NewService wires an importer instance.
func NewService(store repository.Store, clients *registry.ClientService, feedTypes *registry.FeedTypeService, animals *registry.AnimalService, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, clients: clients, feedTypes: feedTypes, animals: animals, logger: logger}
}

// Import reads a CSV stream of the given kind (clients, animals or
// feedtypes) and loads it row by row.
func (s *Service) Import(ctx context.Context, kind string, r io.Reader) (*Result, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, faults.InvalidInput("file", "the CSV file is empty")
	}

	var importRow func(context.Context, map[string]string) error
	switch kind {
	case "clients":
		importRow = s.importClient
	case "animals":
		importRow = s.importAnimal
	case "feedtypes":
		importRow = s.importFeedType
	default:
		return nil, faults.InvalidInput("kind", fmt.Sprintf("unknown import kind %q", kind))
	}

	result := &Result{Errors: []string{}}
	for i, row := range rows {
		// Line numbers are 1-based and include the header row.
		line := i + 2
		if err := importRow(ctx, row); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", line, faultMessage(err)))
			continue
		}
		result.Imported++
	}

	s.logger.Info("csv import finished",
		zap.String("kind", kind),
		zap.Int("imported", result.Imported),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (s *Service) importClient(ctx context.Context, row map[string]string) error {
	_, err := s.clients.Create(ctx, registry.ClientInput{
		NationalID: row["nationalId"],
		GivenNames: row["givenNames"],
		Surname:    row["surname"],
		Address:    row["address"],
		Phone:      row["phone"],
	})
	return err
}

func (s *Service) importFeedType(ctx context.Context, row map[string]string) error {
	stock, err := parseFloat(row["stockPounds"], "stockPounds")
	if err != nil {
		return err
	}
	_, err = s.feedTypes.Create(ctx, registry.FeedTypeInput{
		ExternalCode: row["externalCode"],
		Name:         row["name"],
		Description:  row["description"],
		StockPounds:  stock,
	})
	return err
}

func (s *Service) importAnimal(ctx context.Context, row map[string]string) error {
	breed, err := parseInt(row["breed"], "breed")
	if err != nil {
		return err
	}
	age, err := parseInt(row["ageMonths"], "ageMonths")
	if err != nil {
		return err
	}
	weight, err := parseFloat(row["weightKg"], "weightKg")
	if err != nil {
		return err
	}

	in := registry.AnimalInput{
		Tag:       row["tag"],
		Breed:     breed,
		AgeMonths: age,
		WeightKg:  weight,
	}

	// The optional owner column carries the client's national id, not a
	// database id, so operators can build files from their own records.
	if nationalID := row["clientNationalId"]; nationalID != "" {
		client, err := s.store.Clients().GetByNationalID(ctx, nationalID)
		if err != nil {
			if faults.IsKind(err, faults.KindNotFound) {
				return faults.InvalidInput("clientNationalId", fmt.Sprintf("no client with national id %q", nationalID))
			}
			return err
		}
		in.ClientID = client.ID.Hex()
	}

	_, err = s.animals.Create(ctx, in)
	return err
}

// readCSV parses the stream into header-keyed rows with trimmed cells.
func readCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, faults.InvalidInput("file", fmt.Sprintf("malformed CSV: %v", err))
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, cell := range record {
			if i < len(header) {
				row[header[i]] = strings.TrimSpace(cell)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseInt(value, field string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, faults.InvalidInput(field, fmt.Sprintf("%s must be a whole number", field))
	}
	return n, nil
}

func parseFloat(value, field string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, faults.InvalidInput(field, fmt.Sprintf("%s must be a number", field))
	}
	return f, nil
}

func faultMessage(err error) string {
	if f := faults.As(err); f != nil {
		return f.Message
	}
	return err.Error()
}
