package generator

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// WriteDataset serializes the dataset into people.csv and contact.csv under
// the provided directory.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	peopleRows := make([][]string, 0, len(dataset.People)+1)
	peopleRows = append(peopleRows, PeopleHeader())
	for _, p := range dataset.People {
		peopleRows = append(peopleRows, []string{p.ID, p.Name, p.Age, p.Gender, p.City, p.Infected})
	}
	if err := writeCSV(filepath.Join(dir, "people.csv"), peopleRows); err != nil {
		return err
	}

	contactRows := make([][]string, 0, len(dataset.Contacts))
	for _, c := range dataset.Contacts {
		contactRows = append(contactRows, []string{c.From, c.To})
	}
	return writeCSV(filepath.Join(dir, "contact.csv"), contactRows)
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv for %s: %w", path, err)
	}
	writer.Flush()
	return writer.Error()
}
