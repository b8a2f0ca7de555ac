package seeder

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexivanou/cityinfo-api/internal/model"
	"github.com/alexivanou/cityinfo-api/internal/validation"
)

const (
	citiesFile           = "cities.tsv"
	pointsOfInterestFile = "points_of_interest.tsv"
	archiveFile          = "cityinfo.zip"
)

// ErrNoData is returned when the data directory holds no seed files
var ErrNoData = errors.New("no seed data found")

// Parser reads seed data from TSV files.
//
// cities.tsv columns: key, name, description
// points_of_interest.tsv columns: city key, name, description
//
// Lines starting with # are comments. An empty description is stored as null.
// Both files may also be shipped together in cityinfo.zip.
type Parser struct {
	dataDir string
}

// NewParser creates a new parser reading from dataDir
func NewParser(dataDir string) *Parser {
	return &Parser{dataDir: dataDir}
}

// ParseCities returns the cities with their points of interest attached, in file order
func (p *Parser) ParseCities() ([]model.City, error) {
	zipPath := filepath.Join(p.dataDir, archiveFile)
	if _, err := os.Stat(zipPath); err == nil {
		return p.parseFromZip(zipPath)
	}

	cityFile, err := os.Open(filepath.Join(p.dataDir, citiesFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("failed to open %s: %w", citiesFile, err)
	}
	defer cityFile.Close()

	var poiReader io.Reader
	poiFile, err := os.Open(filepath.Join(p.dataDir, pointsOfInterestFile))
	switch {
	case err == nil:
		defer poiFile.Close()
		poiReader = poiFile
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to open %s: %w", pointsOfInterestFile, err)
	}

	return parse(cityFile, poiReader)
}

func (p *Parser) parseFromZip(zipPath string) ([]model.City, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	var cityEntry, poiEntry *zip.File
	for _, f := range r.File {
		switch filepath.Base(f.Name) {
		case citiesFile:
			cityEntry = f
		case pointsOfInterestFile:
			poiEntry = f
		}
	}
	if cityEntry == nil {
		return nil, fmt.Errorf("no %s found in zip", citiesFile)
	}

	cityReader, err := cityEntry.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file in zip: %w", err)
	}
	defer cityReader.Close()

	var poiReader io.Reader
	if poiEntry != nil {
		rc, err := poiEntry.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open file in zip: %w", err)
		}
		defer rc.Close()
		poiReader = rc
	}

	return parse(cityReader, poiReader)
}

func parse(cityReader, poiReader io.Reader) ([]model.City, error) {
	var cities []model.City
	index := make(map[string]int)

	err := scanRecords(cityReader, func(line int, parts []string) error {
		key, name := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if key == "" || name == "" {
			return fmt.Errorf("%s line %d: key and name are required", citiesFile, line)
		}
		if _, exists := index[key]; exists {
			return fmt.Errorf("%s line %d: duplicate city key %q", citiesFile, line, key)
		}
		record := cityRecord{Name: name, Description: optional(parts, 2)}
		if err := checkRecord(citiesFile, line, record); err != nil {
			return err
		}
		index[key] = len(cities)
		cities = append(cities, model.City{Name: record.Name, Description: record.Description})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if poiReader == nil {
		return cities, nil
	}

	err = scanRecords(poiReader, func(line int, parts []string) error {
		key, name := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		i, ok := index[key]
		if !ok {
			return fmt.Errorf("%s line %d: unknown city key %q", pointsOfInterestFile, line, key)
		}
		if name == "" {
			return fmt.Errorf("%s line %d: name is required", pointsOfInterestFile, line)
		}
		payload := model.PointOfInterestForCreationDto{Name: name, Description: optional(parts, 2)}
		if err := checkRecord(pointsOfInterestFile, line, payload); err != nil {
			return err
		}
		cities[i].PointsOfInterest = append(cities[i].PointsOfInterest, model.NewPointOfInterest(0, payload))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cities, nil
}

// cityRecord holds the column limits of the cities table
type cityRecord struct {
	Name        string  `json:"name" validate:"notblank,max=50"`
	Description *string `json:"description" validate:"omitempty,max=200"`
}

// checkRecord rejects rows the API itself would refuse to store
func checkRecord(file string, line int, record interface{}) error {
	fields := validation.Validate(record)
	if len(fields) == 0 {
		return nil
	}
	messages := make([]string, 0, len(fields))
	for _, f := range fields {
		messages = append(messages, f.Message)
	}
	return fmt.Errorf("%s line %d: %s", file, line, strings.Join(messages, " "))
}

// scanRecords calls fn for every non-comment line with at least two columns
func scanRecords(reader io.Reader, fn func(line int, parts []string) error) error {
	scanner := bufio.NewScanner(reader)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}

		parts := strings.Split(text, "\t")
		if len(parts) < 2 {
			continue
		}
		if err := fn(line, parts); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to scan seed data: %w", err)
	}
	return nil
}

func optional(parts []string, i int) *string {
	if len(parts) <= i {
		return nil
	}
	value := strings.TrimSpace(parts[i])
	if value == "" {
		return nil
	}
	return &value
}
