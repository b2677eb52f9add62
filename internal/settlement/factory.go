package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Natsgol/Seilor.fun/internal/domain"
	"github.com/Natsgol/Seilor.fun/internal/infra"
)

// Mode selects the settlement backend.
type Mode string

const (
	ModeSim   Mode = "SIM"
	ModeMock  Mode = "MOCK"
	ModeChain Mode = "CHAIN"
)

// Factory creates settlement backends based on the configured mode.
type Factory struct {
	config *infra.Config
}

// NewFactory creates a new factory.
func NewFactory(cfg *infra.Config) *Factory {
	return &Factory{config: cfg}
}

// Create returns the appropriate Settlement implementation.
func (f *Factory) Create(ctx context.Context) (domain.Settlement, error) {
	mode := Mode(f.config.Trading.Mode)

	slog.Info("Initializing Settlement System", "mode", mode)

	switch mode {
	case ModeSim:
		return NewSim(f.config.Settlement.AdminAccount), nil

	case ModeMock:
		return NewMock(), nil

	case ModeChain:
		// Real funds: SAFETY LATCH CHECK
		if os.Getenv("SEILOR_CONFIRM_MAINNET") != "true" {
			err := fmt.Errorf("SAFETY_GUARD: chain settlement requires 'SEILOR_CONFIRM_MAINNET=true' environment variable")
			slog.Error(err.Error())
			panic(err) // Fail Fast
		}

		slog.Info("🚨🚨🚨 Connecting to settlement chain (Mainnet) 🚨🚨🚨")
		return NewChainRPC(ctx, ChainConfig{
			RPCURL:           f.config.Settlement.RPCURL,
			WSURL:            f.config.Settlement.WSURL,
			ChainID:          f.config.Settlement.ChainID,
			AdminAccount:     f.config.Settlement.AdminAccount,
			SigningKey:       f.config.Settlement.SigningKey,
			SubmitTimeoutSec: f.config.Settlement.SubmitTimeoutSec,
		})

	default:
		return nil, fmt.Errorf("unknown settlement mode: %s", mode)
	}
}
