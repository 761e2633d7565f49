// Package loader parses flat whitespace-delimited data files into a store.
//
// A data file holds one record per line. The first line starting with the
// header marker (LATA) lists the period axis; every following line is a
// variable name followed by up to LL values. Missing trailing values repeat
// the last value supplied on the line.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/itsmostafa/modelrun/internal/store"
)

// HeaderMarker starts the line holding the period axis.
const HeaderMarker = "LATA"

// Load reads the data file at path.
func Load(path string) (*store.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, store.NewError(store.StageLoad, store.ErrUnreadable, path,
			fmt.Errorf("failed to open data file: %w", err))
	}
	defer f.Close()

	return Parse(f)
}

// Parse builds a store from r. Nothing is returned on error.
func Parse(r io.Reader) (*store.Store, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, store.NewError(store.StageLoad, store.ErrUnreadable, "",
			fmt.Errorf("failed to read data: %w", err))
	}

	header := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), HeaderMarker) {
			header = i
			break
		}
	}
	if header == -1 {
		return nil, store.NewError(store.StageLoad, store.ErrMissingHeader, "", nil)
	}

	headerFields := strings.Fields(lines[header])
	if len(headerFields) <= 1 {
		return nil, lineError(store.ErrMissingValues, headerFields[0], header, nil)
	}
	years := make([]int, len(headerFields)-1)
	for j, tok := range headerFields[1:] {
		year, err := strconv.Atoi(tok)
		if err != nil {
			return nil, lineError(store.ErrInvalidNumber, headerFields[0], header, err)
		}
		years[j] = year
	}
	ll := len(years)

	s := store.New()
	s.Set(store.LengthKey, store.Scalar(ll))
	s.Set(headerFields[0], store.IntegerSeries(years))

	for i := header + 1; i < len(lines); i++ {
		fields := strings.Fields(lines[i])
		if len(fields) <= 1 {
			var name string
			if len(fields) == 1 {
				name = fields[0]
			}
			return nil, lineError(store.ErrMissingValues, name, i, nil)
		}
		name := fields[0]
		series, err := parseSeries(fields[1:], ll)
		if err != nil {
			return nil, lineError(store.ErrInvalidNumber, name, i, err)
		}
		s.Set(name, store.NumericSeries(series))
	}

	return s, nil
}

// parseSeries fills ll positions from raw, repeating the last supplied value
// once raw runs out. Values past ll are ignored.
func parseSeries(raw []string, ll int) ([]float64, error) {
	series := make([]float64, ll)
	for j := range ll {
		tok := raw[len(raw)-1]
		if j < len(raw) {
			tok = raw[j]
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, err
		}
		series[j] = v
	}
	return series, nil
}

func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	// Wide tables produce long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func lineError(kind error, name string, index int, cause error) error {
	return &store.StageError{
		Stage: store.StageLoad,
		Kind:  kind,
		Name:  name,
		Line:  index + 1,
		Err:   cause,
	}
}
