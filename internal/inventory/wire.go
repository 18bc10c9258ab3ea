package inventory

import (
	"chaintrack/internal/inventory/bridge"
	"chaintrack/internal/inventory/ledger"

	"go.uber.org/zap"
)

func NewModule(store ledger.RecordStore, logger *zap.Logger) *Controller {
	led := ledger.New(store, logger)
	brd := bridge.New(led, logger)
	return NewController(led, brd, logger)
}
