package market

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/wonny/rebalancer/internal/contracts"
)

// RejectReason 스냅샷 행 제외 사유
type RejectReason string

const (
	RejectMissingCode      RejectReason = "missing_code"
	RejectMissingPrice     RejectReason = "missing_price"
	RejectBadPrice         RejectReason = "bad_price"
	RejectNonPositivePrice RejectReason = "non_positive_price"
	RejectBadField         RejectReason = "bad_field"
	RejectDuplicateCode    RejectReason = "duplicate_code" // 앞선 행이 교체됨
)

// Canonical field names
const (
	FieldCode        = "code"
	FieldPrice       = "price"
	FieldPctChange   = "pct_chg"
	FieldName        = "name"
	FieldTurnover    = "turnover"
	FieldAmplitude   = "amplitude"
	FieldVolumeRatio = "volume_ratio"
)

// FieldAliases maps each canonical field to provider column names in priority order
// ⭐ SSOT: 공급자 스키마 → 내부 필드 매핑은 여기서만
var FieldAliases = map[string][]string{
	FieldCode:        {"代码", "symbol", "code"},
	FieldPrice:       {"最新价", "trade", "price"},
	FieldPctChange:   {"涨跌幅", "changepct", "pct_chg"},
	FieldName:        {"名称", "name"},
	FieldTurnover:    {"换手率", "turnoverratio", "turnover"},
	FieldAmplitude:   {"振幅", "amplitude"},
	FieldVolumeRatio: {"量比", "volumeratio", "volume_ratio"},
}

// Row is one provider record as decoded from JSON
type Row map[string]interface{}

// Normalize converts provider rows into a snapshot, counting rejects per reason
// 같은 코드가 여러 번 오면 마지막 행이 남고 앞선 행은 duplicate_code로 집계
func Normalize(rows []Row) *contracts.Snapshot {
	snap := contracts.NewSnapshot()
	for _, row := range rows {
		rec, reason, ok := normalizeRow(row)
		if !ok {
			snap.Rejected[string(reason)]++
			continue
		}
		if _, dup := snap.Records[rec.Code]; dup {
			snap.Rejected[string(RejectDuplicateCode)]++
		}
		snap.Records[rec.Code] = rec
	}
	return snap
}

// normalizeRow converts a single row; ok=false carries the reject reason
func normalizeRow(row Row) (contracts.MarketRecord, RejectReason, bool) {
	if row == nil {
		return contracts.MarketRecord{}, RejectBadField, false
	}

	rawCode, found := lookup(row, FieldCode)
	if !found || rawCode == nil {
		return contracts.MarketRecord{}, RejectMissingCode, false
	}
	code, ok := asString(rawCode)
	if !ok {
		return contracts.MarketRecord{}, RejectBadField, false
	}
	code = contracts.NormalizeCode(code)
	if code == "" {
		return contracts.MarketRecord{}, RejectMissingCode, false
	}

	rawPrice, found := lookup(row, FieldPrice)
	if !found || rawPrice == nil || isBlank(rawPrice) {
		return contracts.MarketRecord{}, RejectMissingPrice, false
	}
	price, ok := asFloat(rawPrice)
	if !ok {
		return contracts.MarketRecord{}, RejectBadPrice, false
	}
	if price <= 0 {
		return contracts.MarketRecord{}, RejectNonPositivePrice, false
	}

	rec := contracts.MarketRecord{
		Code:        code,
		Price:       price,
		PctChange:   optionalFloat(row, FieldPctChange),
		Turnover:    optionalFloat(row, FieldTurnover),
		Amplitude:   optionalFloat(row, FieldAmplitude),
		VolumeRatio: optionalFloat(row, FieldVolumeRatio),
	}
	if rawName, found := lookup(row, FieldName); found {
		if name, ok := asString(rawName); ok {
			rec.Name = strings.TrimSpace(name)
		}
	}

	return rec, "", true
}

// lookup returns the first present alias of a canonical field
func lookup(row Row, field string) (interface{}, bool) {
	for _, alias := range FieldAliases[field] {
		if v, ok := row[alias]; ok {
			return v, true
		}
	}
	return nil, false
}

// optionalFloat parses a factor field; absent or non-numeric → 0
func optionalFloat(row Row, field string) float64 {
	v, found := lookup(row, field)
	if !found {
		return 0
	}
	f, ok := asFloat(v)
	if !ok {
		return 0
	}
	return f
}

func asString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		if t != math.Trunc(t) {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', 0, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return "", false
	}
}

func asFloat(v interface{}) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(t), "%"), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func isBlank(v interface{}) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
