package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"etldocs/internal/faults"
)

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, faults.IOFailure(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, faults.InvalidInput(fmt.Errorf("source %s has no header row", path))
	}
	if err != nil {
		return nil, nil, faults.InvalidInput(fmt.Errorf("parse %s: %w", path, err))
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, faults.InvalidInput(fmt.Errorf("parse %s: %w", path, err))
		}
		records = append(records, rec)
	}
	return header, records, nil
}
