package batch

import (
	"encoding/csv"
	"fmt"
	"io"
)

// csv headers of a batch file
const (
	identityHeader = "identity"
	dateHeader     = "date"
	timeHeader     = "time"
)

// Row is one evaluation request read from a batch file
type Row struct {
	// Line is the line number of the row in the batch file, the header is line 1
	Line     int
	Identity string
	Date     string
	Time     string
}

// requestFileParser holds information about a csv batch file. Methods to read columns for rows. Errors while
// extracting values are stored in errors array which record the line number the error happened.
type requestFileParser struct {
	Filename       string
	line           int
	csvReader      *csv.Reader
	headers        []string
	currentRecords []string
	errors         []error
}

// makeRequestFileParser creates new requestFileParser from io.Reader
func makeRequestFileParser(r io.Reader, filename string) (*requestFileParser, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	headers, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to load header in %s file: %w", filename, err)
	}
	removeBOMIfPresent(headers)
	for _, required := range []string{identityHeader, dateHeader, timeHeader} {
		if indexOf(required, headers) < 0 {
			return nil, fmt.Errorf("unable to find header %s in %s file", required, filename)
		}
	}
	return &requestFileParser{
		Filename:       filename,
		line:           1,
		csvReader:      csvReader,
		headers:        headers,
		currentRecords: headers,
	}, nil
}

func removeBOMIfPresent(headers []string) {
	if len(headers) < 1 {
		return
	}
	firstHeader := headers[0]
	if len(firstHeader) < 1 {
		return
	}
	runes := []rune(firstHeader) // convert string to runes
	if runes[0] == '\uFEFF' {    //check for BOM
		headers[0] = string(runes[1:])
	}
}

// getString retrieves string
// returns empty string if the column is missing from the current record
func (p *requestFileParser) getString(name string) string {
	result, err := findValue(name, p.currentRecords, p.headers)
	if err != nil {
		p.errors = append(p.errors, err)
		return ""
	}
	return result
}

// getError retrieve errors encountered while reading the current line
func (p *requestFileParser) getError() error {
	if len(p.errors) > 0 {
		return fmt.Errorf("in file %v, line %v: %v", p.Filename, p.line, p.errors)
	}
	return nil
}

// nextLine moves csvReader one record forward, clearing errors of the previous record
func (p *requestFileParser) nextLine() error {
	var err error
	p.currentRecords, err = p.csvReader.Read()
	p.errors = nil
	if err != nil {
		p.line += 1
		return err
	}
	p.line, _ = p.csvReader.FieldPos(0)
	return nil
}

// buildRow reads the current line as a Row
func (p *requestFileParser) buildRow() (Row, error) {
	row := Row{
		Line:     p.line,
		Identity: p.getString(identityHeader),
		Date:     p.getString(dateHeader),
		Time:     p.getString(timeHeader),
	}
	return row, p.getError()
}

// ReadRows reads every request in a batch file. Blank lines are skipped by the csv reader.
func ReadRows(r io.Reader, filename string) ([]Row, error) {
	parser, err := makeRequestFileParser(r, filename)
	if err != nil {
		return nil, err
	}
	var rows []Row
	for {
		err = parser.nextLine()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("in file %v, line %v: %w", parser.Filename, parser.line, err)
		}
		row, err := parser.buildRow()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// find index of elements that matches name string. returns -1 if not found
func indexOf(name string, elements []string) int {
	for i, value := range elements {
		if name == value {
			return i
		}
	}
	return -1
}

// findValue retrieves string value from csv records, empty values are left for the evaluator to reject
func findValue(name string, records []string, headers []string) (string, error) {
	index := indexOf(name, headers)
	if index < 0 {
		return "", fmt.Errorf("unable to find header: %s", name)
	}
	if len(records) <= index {
		return "", fmt.Errorf("records are too short to find header at %v named %s", index, name)
	}
	return records[index], nil
}
