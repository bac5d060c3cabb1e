package contracts

import (
	"context"
	"time"
)

// PositionStore persists held positions between runs
// ⭐ SSOT: 포지션 저장소 인터페이스
// Load는 이전 상태가 없으면 빈 map을 반환, Save는 전부 쓰거나 아무것도 안 씀
type PositionStore interface {
	Load(ctx context.Context) (map[string]Position, error)
	Save(ctx context.Context, positions map[string]Position) error
}

// PredictionSource provides the model score table for a cycle
type PredictionSource interface {
	Load(ctx context.Context) (*PredictionTable, error)
}

// SnapshotSource provides the market snapshot for a trading date
type SnapshotSource interface {
	Fetch(ctx context.Context, date time.Time) (*Snapshot, error)
}
