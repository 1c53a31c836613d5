package pricing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Benchmark is one provincial row of market multiples.
type Benchmark struct {
	Province        string  `json:"province"`
	EbitdaMultiple  float64 `json:"ebitda_multiple"`
	RevenueMultiple float64 `json:"revenue_multiple"`
}

// LoadBenchmarks reads the provincial benchmark table. Header order is
// fixed: province, ebitda_multiple, revenue_multiple.
func LoadBenchmarks(path string) ([]Benchmark, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open benchmarks: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	var out []Benchmark
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read benchmarks: %w", err)
		}
		bm := Benchmark{Province: strings.ToUpper(strings.TrimSpace(row[0]))}
		if bm.EbitdaMultiple, err = strconv.ParseFloat(row[1], 64); err != nil {
			return nil, fmt.Errorf("benchmark row %s: %w", bm.Province, err)
		}
		if bm.RevenueMultiple, err = strconv.ParseFloat(row[2], 64); err != nil {
			return nil, fmt.Errorf("benchmark row %s: %w", bm.Province, err)
		}
		out = append(out, bm)
	}
	return out, nil
}

func benchmarkFor(benchmarks []Benchmark, province string) (Benchmark, bool) {
	p := strings.ToUpper(strings.TrimSpace(province))
	for _, bm := range benchmarks {
		if bm.Province == p {
			return bm, true
		}
	}
	return Benchmark{}, false
}
