package history

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/jszwec/csvutil"
)

// LoadCSV reads observations from a CSV export (the same column layout the
// model was trained on) and inserts them into the repository. Returns the
// number of rows loaded. Rows are validated only structurally; values are
// trusted as recorded.
func LoadCSV(ctx context.Context, repo Repository, r io.Reader) (int, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return 0, fmt.Errorf("reading csv header: %w", err)
	}

	loaded := 0
	for {
		var obs Observation
		if err := dec.Decode(&obs); err == io.EOF {
			break
		} else if err != nil {
			return loaded, fmt.Errorf("decoding csv row %d: %w", loaded+1, err)
		}

		if err := repo.Insert(ctx, obs); err != nil {
			return loaded, fmt.Errorf("inserting csv row %d: %w", loaded+1, err)
		}
		loaded++
	}

	return loaded, nil
}

// LoadCSVFile opens path and loads its observations into the repository.
func LoadCSVFile(ctx context.Context, repo Repository, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening observations file: %w", err)
	}
	defer f.Close()

	return LoadCSV(ctx, repo, f)
}
