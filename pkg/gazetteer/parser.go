// Package gazetteer builds a city name to coordinate table from a quoted
// CSV export such as worldcities.csv.
//
// Fields are not split on commas. Instead every quote character in a record
// is counted and the closing quotes at fixed ordinals identify the fields of
// interest: the 2nd quote closes the city label, the 6th the latitude, the
// 8th the longitude and the 10th the country. Anything outside quotes is
// ignored.
package gazetteer

import (
	"bufio"
	"errors"
	"io"
	"log"
	"math"
	"os"
	"strconv"

	"climate/models"
)

// Quote ordinals, counted from the start of a record, that close each field.
const (
	nameQuote    = 2
	latQuote     = 6
	lonQuote     = 8
	countryQuote = 10
)

type scanState int

const (
	stateHeader scanState = iota
	stateOutsideRecord
	stateInQuote
	stateBetweenQuotes
)

// scanner holds the state of one pass over the input.
type scanner struct {
	state   scanState
	line    int
	ordinal int
	field   []byte

	name, lat, lon, country string

	g *Gazetteer
}

// Load parses the file at path. A file that cannot be opened yields an empty
// gazetteer, not an error; a malformed record aborts the whole load.
func Load(path string) (*Gazetteer, error) {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("Gazetteer file %s unavailable, continuing with an empty table: %v", path, err)
		return New(nil), nil
	}
	defer f.Close()

	g, err := Parse(f)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d gazetteer entries from %s", g.Len(), path)
	return g, nil
}

// Parse streams r once and returns the gazetteer it describes. The first
// line is treated as a header and skipped.
func Parse(r io.Reader) (*Gazetteer, error) {
	s := &scanner{
		state: stateHeader,
		line:  1,
		g:     newGazetteer(0),
	}
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := s.step(b); err != nil {
			return nil, err
		}
	}
	if err := s.finish(); err != nil {
		return nil, err
	}
	return s.g, nil
}

func (s *scanner) step(b byte) error {
	switch s.state {
	case stateHeader:
		if b == '\n' {
			s.line++
			s.state = stateOutsideRecord
		}
	case stateInQuote:
		if b == '"' {
			s.ordinal++
			s.capture()
			s.state = stateBetweenQuotes
			return nil
		}
		if b == '\n' {
			s.line++
		}
		s.field = append(s.field, b)
	case stateOutsideRecord, stateBetweenQuotes:
		switch b {
		case '"':
			s.ordinal++
			s.field = s.field[:0]
			s.state = stateInQuote
		case '\n':
			if s.state == stateBetweenQuotes {
				if err := s.emit(); err != nil {
					return err
				}
			}
			s.line++
			s.state = stateOutsideRecord
		}
	}
	return nil
}

func (s *scanner) capture() {
	switch s.ordinal {
	case nameQuote:
		s.name = string(s.field)
	case latQuote:
		s.lat = string(s.field)
	case lonQuote:
		s.lon = string(s.field)
	case countryQuote:
		s.country = string(s.field)
	}
}

// emit converts the captured fields of the current record and resets the
// per-record state.
func (s *scanner) emit() error {
	lat, err := parseDegrees(s.lat, 90)
	if err != nil {
		return &ParseError{Line: s.line, Field: "latitude", Value: s.lat, Err: err}
	}
	lon, err := parseDegrees(s.lon, 180)
	if err != nil {
		return &ParseError{Line: s.line, Field: "longitude", Value: s.lon, Err: err}
	}
	s.g.add(Entry{Name: s.name, Country: s.country, Coordinates: models.Coordinates{Lat: lat, Lon: lon}})

	s.ordinal = 0
	s.name, s.lat, s.lon, s.country = "", "", "", ""
	return nil
}

func (s *scanner) finish() error {
	switch s.state {
	case stateBetweenQuotes:
		return s.emit()
	case stateInQuote:
		return &ParseError{Line: s.line, Field: "record", Value: string(s.field), Err: errUnterminated}
	}
	return nil
}

func parseDegrees(v string, limit float64) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || f < -limit || f > limit {
		return 0, errOutOfRange
	}
	return f, nil
}
