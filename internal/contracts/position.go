package contracts

import (
	"fmt"
	"math"
	"time"
)

// LotSize is the minimum tradable unit (1手 = 100주)
const LotSize = 100

// DateLayout is the wire format of trading dates
const DateLayout = "2006-01-02"

// Position represents one currently held instrument
// ⭐ SSOT: 보유 포지션 데이터는 여기서만
// JSON 필드명은 positions.json 포맷과 호환 (cost/shares/max_price/buy_date)
type Position struct {
	Code      string    `json:"-"`         // map key가 SSOT
	CostBasis float64   `json:"cost"`      // 매수 단가 (진입 시 고정)
	Shares    int       `json:"shares"`    // 보유 수량 (LotSize 배수)
	MaxPrice  float64   `json:"max_price"` // 진입 이후 최고가 (HWM)
	EntryDate TradeDate `json:"buy_date"`
}

// NewPosition opens a position at price
func NewPosition(code string, price float64, shares int, date time.Time) Position {
	return Position{
		Code:      code,
		CostBasis: price,
		Shares:    shares,
		MaxPrice:  price,
		EntryDate: NewTradeDate(date),
	}
}

// Validate checks the position invariants
func (p *Position) Validate() error {
	if p.Code == "" {
		return fmt.Errorf("position: empty code")
	}
	if p.CostBasis <= 0 || math.IsNaN(p.CostBasis) {
		return fmt.Errorf("position %s: cost basis must be > 0, got %v", p.Code, p.CostBasis)
	}
	if p.Shares <= 0 || p.Shares%LotSize != 0 {
		return fmt.Errorf("position %s: shares must be a positive multiple of %d, got %d", p.Code, LotSize, p.Shares)
	}
	if p.MaxPrice < p.CostBasis {
		return fmt.Errorf("position %s: max price %v below cost basis %v", p.Code, p.MaxPrice, p.CostBasis)
	}
	return nil
}

// Observe raises the high-water mark to price. It never lowers it.
func (p *Position) Observe(price float64) {
	if price > p.MaxPrice {
		p.MaxPrice = price
	}
}

// CostValue returns cost basis times shares
func (p *Position) CostValue() float64 {
	return p.CostBasis * float64(p.Shares)
}

// TradeDate is a calendar date serialized as YYYY-MM-DD
type TradeDate struct {
	time.Time
}

// NewTradeDate truncates t to its calendar date
func NewTradeDate(t time.Time) TradeDate {
	y, m, d := t.Date()
	return TradeDate{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseTradeDate parses a YYYY-MM-DD string
func ParseTradeDate(s string) (TradeDate, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TradeDate{}, fmt.Errorf("invalid trade date %q: %w", s, err)
	}
	return TradeDate{t}, nil
}

// String returns the YYYY-MM-DD form
func (d TradeDate) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler
func (d TradeDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (d *TradeDate) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = TradeDate{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("trade date must be a string, got %s", s)
	}
	parsed, err := ParseTradeDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ResolveTradingDate maps weekends to the preceding Friday
// 토요일 → 금요일, 일요일 → 금요일
func ResolveTradingDate(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, -2)
	default:
		return t
	}
}
