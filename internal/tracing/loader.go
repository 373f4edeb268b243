package tracing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/eljog/tracegraph/internal/graphdb"
)

// LoadError accumulates row-level failures produced during a bulk load. Rows
// that load cleanly are kept even when others fail.
type LoadError struct {
	Errors []error
}

func (e *LoadError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

func (e *LoadError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *LoadError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Loader bulk-loads people and their contacts from CSV datasets, driving the
// store only through AddNode, SetProperty and Connect. Rows are applied by a
// bounded worker pool; the store's locking keeps concurrent rows safe. People
// must be fully loaded before their contacts.
type Loader struct {
	store   *graphdb.Store
	workers int
}

// NewLoader creates a Loader with the provided concurrency.
func NewLoader(store *graphdb.Store, workers int) *Loader {
	if workers <= 0 {
		workers = 4
	}
	return &Loader{
		store:   store,
		workers: workers,
	}
}

// LoadPeople reads the people dataset: a header row whose first column must
// be "id", then one row per person. Columns beyond the first become node
// properties named by their header cell. Returns the number of rows read.
func (l *Loader) LoadPeople(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return 0, errors.New("people dataset is empty")
	}
	if err != nil {
		return 0, fmt.Errorf("read people header: %w", err)
	}
	if len(header) == 0 || header[0] != graphdb.PropertyID {
		return 0, fmt.Errorf("people header must start with %q", graphdb.PropertyID)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("read people rows: %w", err)
	}

	err = l.run(ctx, len(rows), func(idx int) error {
		row := rows[idx]
		if row[0] == "" {
			return fmt.Errorf("people row %d: missing id", idx+2)
		}

		id := row[0]
		if err := l.store.AddNode(LabelPerson, id); err != nil {
			return fmt.Errorf("people row %d: %w", idx+2, err)
		}

		qualifier := personQualifier(id)
		for i := 1; i < len(header) && i < len(row); i++ {
			if err := l.store.SetProperty(qualifier, header[i], row[i]); err != nil {
				return fmt.Errorf("people row %d: %w", idx+2, err)
			}
		}
		return nil
	})
	return len(rows), err
}

// LoadContacts reads pairwise connection rows (two person ids per row) and
// connects each pair. Returns the number of rows read.
func (l *Loader) LoadContacts(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2

	rows, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("read contact rows: %w", err)
	}

	err = l.run(ctx, len(rows), func(idx int) error {
		row := rows[idx]
		if err := l.store.Connect(personQualifier(row[0]), personQualifier(row[1])); err != nil {
			return fmt.Errorf("contact row %d: %w", idx+1, err)
		}
		return nil
	})
	return len(rows), err
}

// run fans row indexes out to the worker pool and aggregates failures.
func (l *Loader) run(ctx context.Context, total int, rowFn func(idx int) error) error {
	if total == 0 {
		return nil
	}

	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := rowFn(idx); err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for i := 0; i < l.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	var loadErr LoadError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		loadErr.append(err)
	}
	return loadErr.asError()
}
