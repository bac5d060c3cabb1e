package contracts

import "sort"

// MarketRecord is one normalised row of the market snapshot
// ⭐ SSOT: 시세 스냅샷 레코드는 여기서만
type MarketRecord struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`        // 현재가 (> 0)
	PctChange   float64 `json:"pct_chg"`      // 등락률 (%)
	Turnover    float64 `json:"turnover"`     // 换手率 (%)
	Amplitude   float64 `json:"amplitude"`    // 振幅 (%)
	VolumeRatio float64 `json:"volume_ratio"` // 量比
}

// Snapshot is the per-run market snapshot keyed by instrument code
type Snapshot struct {
	Records  map[string]MarketRecord `json:"records"`
	Rejected map[string]int          `json:"rejected"` // reason → count
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Records:  make(map[string]MarketRecord),
		Rejected: make(map[string]int),
	}
}

// Get looks up a record by code
func (s *Snapshot) Get(code string) (MarketRecord, bool) {
	if s == nil {
		return MarketRecord{}, false
	}
	rec, ok := s.Records[code]
	return rec, ok
}

// Len returns the number of valid records
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// RejectedTotal returns the number of rows excluded during normalisation
func (s *Snapshot) RejectedTotal() int {
	total := 0
	for _, n := range s.Rejected {
		total += n
	}
	return total
}

// RejectReasons returns the reject reasons in sorted order
func (s *Snapshot) RejectReasons() []string {
	reasons := make([]string, 0, len(s.Rejected))
	for r := range s.Rejected {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	return reasons
}
