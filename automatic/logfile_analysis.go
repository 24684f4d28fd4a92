package automatic

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// parseResult decodes one data row of an autoplay log. Columns follow
// csvHeader.
func parseResult(record []string) (GameResult, error) {
	if len(record) != 6 {
		return GameResult{}, fmt.Errorf("malformed record: %v", record)
	}
	var (
		res GameResult
		err error
	)
	for _, col := range []struct {
		dst *int
		raw string
	}{
		{&res.Index, record[0]},
		{&res.Score, record[1]},
		{&res.MaxTile, record[2]},
		{&res.Turns, record[3]},
		{&res.Nodes, record[5]},
	} {
		if *col.dst, err = strconv.Atoi(col.raw); err != nil {
			return GameResult{}, err
		}
	}
	seconds, err := strconv.ParseFloat(record[4], 64)
	if err != nil {
		return GameResult{}, err
	}
	res.Duration = time.Duration(seconds * float64(time.Second))
	return res, nil
}

// AnalyzeLogFile rebuilds a Summary from the CSV a previous autoplay
// run wrote and returns its statistics.
func AnalyzeLogFile(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	summary := &Summary{}
	r := csv.NewReader(f)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if record[0] == "game" {
			// header row
			continue
		}
		res, err := parseResult(record)
		if err != nil {
			return "", err
		}
		summary.add(res)
	}
	return summary.String(), nil
}
