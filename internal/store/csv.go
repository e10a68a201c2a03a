package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"twscache/internal/model"
)

// CSVCodec stores a series as CSV with header t,o,h,l,c,v,vw,n.
type CSVCodec struct{}

func (CSVCodec) Extension() string { return "csv" }

func (CSVCodec) Read(path string) ([]model.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	bars := make([]model.Bar, 0, len(records)-1)
	for i, rec := range records[1:] { // skip header
		if len(rec) != 8 {
			return nil, fmt.Errorf("csv row %d: want 8 fields, got %d", i+2, len(rec))
		}
		b, err := parseCSVBar(rec)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i+2, err)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func parseCSVBar(rec []string) (model.Bar, error) {
	var b model.Bar
	var err error
	if b.Timestamp, err = strconv.ParseInt(rec[0], 10, 64); err != nil {
		return b, err
	}
	if b.Open, err = strconv.ParseFloat(rec[1], 64); err != nil {
		return b, err
	}
	if b.High, err = strconv.ParseFloat(rec[2], 64); err != nil {
		return b, err
	}
	if b.Low, err = strconv.ParseFloat(rec[3], 64); err != nil {
		return b, err
	}
	if b.Close, err = strconv.ParseFloat(rec[4], 64); err != nil {
		return b, err
	}
	if b.Volume, err = strconv.ParseInt(rec[5], 10, 64); err != nil {
		return b, err
	}
	if b.WAP, err = strconv.ParseFloat(rec[6], 64); err != nil {
		return b, err
	}
	if b.BarCount, err = strconv.ParseInt(rec[7], 10, 64); err != nil {
		return b, err
	}
	return b, nil
}

func (CSVCodec) Write(path string, bars []model.Bar) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"t", "o", "h", "l", "c", "v", "vw", "n"}); err != nil {
		return err
	}
	for _, b := range bars {
		if err := w.Write([]string{
			strconv.FormatInt(b.Timestamp, 10),
			floatStr(b.Open),
			floatStr(b.High),
			floatStr(b.Low),
			floatStr(b.Close),
			strconv.FormatInt(b.Volume, 10),
			floatStr(b.WAP),
			strconv.FormatInt(b.BarCount, 10),
		}); err != nil {
			return err
		}
	}
	return w.Error()
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
