package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"sateihub/server/internal/models"
)

// priceClassification 01 selects transaction price records.
const priceClassification = "01"

// LiveSource fetches comparable transactions from the public real
// estate transaction price API. One Fetch covers one region and one
// calendar year.
type LiveSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *logrus.Logger
}

func NewLiveSource(baseURL, apiKey string, timeout time.Duration, logger *logrus.Logger) *LiveSource {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &LiveSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type transactionRecord struct {
	Type         string `json:"Type"`
	Prefecture   string `json:"Prefecture"`
	Municipality string `json:"Municipality"`
	DistrictName string `json:"DistrictName"`
	TradePrice   string `json:"TradePrice"`
	Area         string `json:"Area"`
	BuildingYear string `json:"BuildingYear"`
	Period       string `json:"Period"`
}

type transactionResponse struct {
	Status string              `json:"status"`
	Data   []transactionRecord `json:"data"`
}

// Fetch retrieves transaction records for one region and year. Any
// malformed record in the response is skipped, not an error.
func (s *LiveSource) Fetch(ctx context.Context, regionCode string, year int) ([]models.RawComparable, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("comparable source API key not configured")
	}

	params := url.Values{
		"year":                []string{strconv.Itoa(year)},
		"area":                []string{regionCode},
		"priceClassification": []string{priceClassification},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/XIT001", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Ocp-Apim-Subscription-Key", s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("comparable source request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("comparable source returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed transactionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	records := make([]models.RawComparable, 0, len(parsed.Data))
	for _, raw := range parsed.Data {
		record, ok := s.convertRecord(raw)
		if !ok {
			continue
		}
		records = append(records, record)
	}

	s.logger.WithFields(logrus.Fields{
		"region_code": regionCode,
		"year":        year,
		"records":     len(records),
		"skipped":     len(parsed.Data) - len(records),
	}).Debug("Fetched comparable transactions")

	return records, nil
}

func (s *LiveSource) convertRecord(raw transactionRecord) (models.RawComparable, bool) {
	price, err := strconv.ParseInt(strings.ReplaceAll(raw.TradePrice, ",", ""), 10, 64)
	if err != nil || price <= 0 {
		return models.RawComparable{}, false
	}

	area, err := strconv.ParseFloat(strings.ReplaceAll(raw.Area, ",", ""), 64)
	if err != nil || area <= 0 {
		return models.RawComparable{}, false
	}

	address := raw.Prefecture + raw.Municipality + raw.DistrictName
	if address == "" {
		return models.RawComparable{}, false
	}

	record := models.RawComparable{
		Address: address,
		Price:   price,
		AreaSqm: area,
		Purpose: models.PurposeSale,
	}

	if builtYear, ok := parseBuildingYear(raw.BuildingYear); ok {
		age := time.Now().Year() - builtYear
		if age >= 0 {
			record.AgeYears = age
		}
	}

	if date, ok := parsePeriod(raw.Period); ok {
		record.TransactionDate = &date
	}

	return record, true
}

// Japanese era offsets: era year 1 maps to offset+1 in the Gregorian
// calendar.
var eraOffsets = []struct {
	Name   string
	Offset int
}{
	{"令和", 2018},
	{"平成", 1988},
	{"昭和", 1925},
}

var (
	eraYearPattern  = regexp.MustCompile(`^(令和|平成|昭和)(\d+|元)年`)
	westernYearPat  = regexp.MustCompile(`^(\d{4})年?`)
	periodQuarterRe = regexp.MustCompile(`^(\d{4})年第([1-4])四半期`)
)

// parseBuildingYear handles both era-style ("平成17年") and western
// ("2005年") building year strings.
func parseBuildingYear(value string) (int, bool) {
	if m := eraYearPattern.FindStringSubmatch(value); m != nil {
		n := 1
		if m[2] != "元" {
			parsed, err := strconv.Atoi(m[2])
			if err != nil {
				return 0, false
			}
			n = parsed
		}
		for _, era := range eraOffsets {
			if era.Name == m[1] {
				return era.Offset + n, true
			}
		}
		return 0, false
	}

	if m := westernYearPat.FindStringSubmatch(value); m != nil {
		year, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return year, true
	}

	return 0, false
}

// parsePeriod maps a quarter string like "2023年第3四半期" to the first
// day of that quarter.
func parsePeriod(value string) (time.Time, bool) {
	m := periodQuarterRe.FindStringSubmatch(value)
	if m == nil {
		return time.Time{}, false
	}

	year, _ := strconv.Atoi(m[1])
	quarter, _ := strconv.Atoi(m[2])
	month := time.Month((quarter-1)*3 + 1)
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), true
}
