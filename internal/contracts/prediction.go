package contracts

// PredictionRecord is one row of the model score table
type PredictionRecord struct {
	Code  string  `json:"code"`
	Score float64 `json:"score"`
}

// PredictionTable keeps the feed in input order with O(1) lookup
// ⭐ 입력 순서가 랭킹 동점 처리 기준 (stable sort)
type PredictionTable struct {
	records  []PredictionRecord
	index    map[string]int
	Rejected int // 점수 파싱 실패 행 수
}

// NewPredictionTable creates an empty table
func NewPredictionTable() *PredictionTable {
	return &PredictionTable{index: make(map[string]int)}
}

// Add appends a record. A duplicate code overwrites the score in place.
func (t *PredictionTable) Add(code string, score float64) {
	if i, ok := t.index[code]; ok {
		t.records[i].Score = score
		return
	}
	t.index[code] = len(t.records)
	t.records = append(t.records, PredictionRecord{Code: code, Score: score})
}

// Get returns the score for code
func (t *PredictionTable) Get(code string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	i, ok := t.index[code]
	if !ok {
		return 0, false
	}
	return t.records[i].Score, true
}

// Records returns the rows in input order
func (t *PredictionTable) Records() []PredictionRecord {
	if t == nil {
		return nil
	}
	return t.records
}

// Len returns the number of distinct instruments
func (t *PredictionTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}
