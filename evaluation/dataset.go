// Package evaluation scores a model artifact against labelled shipments.
package evaluation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"kurirai/ml"
)

// Sample is one labelled shipment.
type Sample struct {
	Input ml.ShipmentInput
	Label string
}

// Column aliases, matched case-insensitively. The Indonesian names are the ones
// used in the training spreadsheets.
var columnAliases = map[string][]string{
	"weight_kg":         {"weight_kg", "berat_kg", "berat"},
	"product_price":     {"product_price", "harga_produk", "harga"},
	"quantity":          {"quantity", "qty", "jumlah"},
	"shipping_discount": {"shipping_discount", "diskon_ongkir", "diskon"},
	"order_hour":        {"order_hour", "jam_pesan", "jam"},
	"destination_city":  {"destination_city", "kota_tujuan", "kota"},
	"label":             {"label", "layanan", "service"},
}

// ReadSamples loads a .csv or .xlsx file. For workbooks the first sheet is used
// unless sheet is given.
func ReadSamples(path, sheet string) ([]Sample, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(path, sheet)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	return parseRows(rows)
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func readWorkbook(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	return f.GetRows(sheet)
}

func parseRows(rows [][]string) ([]Sample, error) {
	if len(rows) == 0 {
		return nil, errors.New("dataset is empty")
	}
	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	samples := make([]Sample, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		sample, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		samples = append(samples, sample)
	}
	if len(samples) == 0 {
		return nil, errors.New("dataset has no rows")
	}
	return samples, nil
}

func headerIndex(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.ToLower(strings.TrimSpace(name))] = i
	}
	index := make(map[string]int, len(columnAliases))
	for column, aliases := range columnAliases {
		for _, alias := range aliases {
			if pos, ok := positions[alias]; ok {
				index[column] = pos
				break
			}
		}
		if _, ok := index[column]; !ok {
			return nil, fmt.Errorf("missing column %q", column)
		}
	}
	return index, nil
}

func parseRow(row []string, index map[string]int) (Sample, error) {
	cell := func(column string) string {
		pos := index[column]
		if pos >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[pos])
	}

	var s Sample
	var err error
	if s.Input.WeightKG, err = strconv.ParseFloat(cell("weight_kg"), 64); err != nil {
		return s, fmt.Errorf("weight_kg: %w", err)
	}
	if s.Input.ProductPrice, err = parseInt(cell("product_price")); err != nil {
		return s, fmt.Errorf("product_price: %w", err)
	}
	if s.Input.Quantity, err = parseInt(cell("quantity")); err != nil {
		return s, fmt.Errorf("quantity: %w", err)
	}
	if s.Input.ShippingDiscount, err = parseInt(cell("shipping_discount")); err != nil {
		return s, fmt.Errorf("shipping_discount: %w", err)
	}
	hour := cell("order_hour")
	if strings.Contains(hour, ":") {
		s.Input.OrderHour, err = ml.ParseOrderHour(hour)
	} else {
		var h int64
		h, err = parseInt(hour)
		s.Input.OrderHour = int(h)
	}
	if err != nil {
		return s, fmt.Errorf("order_hour: %w", err)
	}
	s.Input.DestinationCity = cell("destination_city")
	s.Label = cell("label")
	if s.Label == "" {
		return s, errors.New("label is empty")
	}
	return s, s.Input.Validate()
}

// parseInt accepts whole numbers written as floats, as spreadsheets often do.
func parseInt(value string) (int64, error) {
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("%q is not a whole number", value)
	}
	return int64(f), nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
