package clients

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyDataset is returned when a CSV download has a header but no rows.
var ErrEmptyDataset = errors.New("dataset has no rows")

// ScreeningDay is one row of the CDC specimen-screening dataset.
type ScreeningDay struct {
	Date         string
	Reported     int // 法定傳染病通報
	Quarantine   int // 居家檢疫送驗
	Surveillance int // 擴大監測送驗
	Total        int
}

var screeningColumns = []string{"通報日", "法定傳染病通報", "居家檢疫送驗", "擴大監測送驗", "Total"}

// CovidClient downloads the CDC screening CSV.
type CovidClient struct {
	url        string
	httpClient *http.Client
}

func NewCovidClient(url string, timeout time.Duration) *CovidClient {
	return &CovidClient{
		url:        url,
		httpClient: newHTTPClient(timeout),
	}
}

// Latest returns the last row of the dataset, which the CDC keeps in date
// order.
func (c *CovidClient) Latest(ctx context.Context) (*ScreeningDay, error) {
	if c.url == "" {
		return nil, fmt.Errorf("covid: %w", ErrNotConfigured)
	}
	body, err := get(ctx, c.httpClient, c.url)
	if err != nil {
		return nil, fmt.Errorf("covid: %w", err)
	}
	day, err := parseScreening(body)
	if err != nil {
		return nil, fmt.Errorf("covid: %w", err)
	}
	return day, nil
}

func parseScreening(body []byte) (*ScreeningDay, error) {
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range screeningColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var last []string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(rec) < len(header) {
			continue
		}
		last = rec
	}
	if last == nil {
		return nil, ErrEmptyDataset
	}

	field := func(col string) (int, error) {
		raw := strings.TrimSpace(last[index[col]])
		n, err := strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", col, err)
		}
		return n, nil
	}

	day := &ScreeningDay{Date: strings.TrimSpace(last[index["通報日"]])}
	for _, dst := range []struct {
		col string
		ptr *int
	}{
		{"法定傳染病通報", &day.Reported},
		{"居家檢疫送驗", &day.Quarantine},
		{"擴大監測送驗", &day.Surveillance},
		{"Total", &day.Total},
	} {
		n, err := field(dst.col)
		if err != nil {
			return nil, err
		}
		*dst.ptr = n
	}
	return day, nil
}
