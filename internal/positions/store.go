package positions

import (
	"errors"
	"fmt"
	"sort"

	"github.com/wonny/rebalancer/internal/contracts"
)

// ErrStoreUnreadable is returned when persisted state exists but cannot be decoded
var ErrStoreUnreadable = errors.New("position store unreadable")

// normalize repairs the high-water mark of a loaded position
// max_price 누락(0) 또는 cost 미만이면 cost로 올림
func normalize(code string, p contracts.Position) (contracts.Position, error) {
	p.Code = code
	if p.MaxPrice < p.CostBasis {
		p.MaxPrice = p.CostBasis
	}
	if err := p.Validate(); err != nil {
		return contracts.Position{}, fmt.Errorf("%w: %v", ErrStoreUnreadable, err)
	}
	return p, nil
}

// validateAll checks every position before a write
func validateAll(positions map[string]contracts.Position) error {
	for _, code := range SortedCodes(positions) {
		p := positions[code]
		if p.Code != "" && p.Code != code {
			return fmt.Errorf("position key %s does not match code %s", code, p.Code)
		}
		p.Code = code
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SortedCodes returns the position codes in ascending order
func SortedCodes(positions map[string]contracts.Position) []string {
	codes := make([]string, 0, len(positions))
	for code := range positions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
