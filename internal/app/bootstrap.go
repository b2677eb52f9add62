// Package app wires configuration, storage, the pricing engine and the
// settlement backend into a runnable market.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Natsgol/Seilor.fun/internal/curve"
	"github.com/Natsgol/Seilor.fun/internal/domain"
	"github.com/Natsgol/Seilor.fun/internal/engine"
	"github.com/Natsgol/Seilor.fun/internal/infra"
	"github.com/Natsgol/Seilor.fun/internal/ledger"
	"github.com/Natsgol/Seilor.fun/internal/server"
	"github.com/Natsgol/Seilor.fun/internal/settlement"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config *infra.Config
	Store  *ledger.Store
	Ledger *ledger.SupplyLedger
	Model  *curve.Model
	Settle domain.Settlement
	Server *server.Server

	unlock func()
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization: config, logger, store,
// ledger recovery and the settlement backend.
func (b *Bootstrap) Initialize(ctx context.Context) error {
	slog.Info("🚀 Bootstrapping Seilor market...")

	// 1. Load Config (Dynamic Path Resolution)
	cfg, err := loadConfigOrDefault()
	if err != nil {
		return err
	}
	b.Config = cfg

	// 2. Data Isolation - one database per mode, so a SIM run can never
	// touch mainnet state.
	mode := strings.ToLower(cfg.Trading.Mode)
	workDir := infra.GetWorkspaceDir()
	dataDir := filepath.Join(workDir, "data", mode)
	logDir := filepath.Join(workDir, "logs", mode)

	if err := infra.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := infra.EnsureDir(logDir); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}

	// 3. Setup Logger
	if _, err := infra.NewLogger(cfg.Logging.Level, logDir); err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	// 4. Singleton Instance Lock: two processes sharing one WAL database
	// would corrupt the supply counter.
	unlock, err := infra.CreateLockFile(workDir)
	if err != nil {
		return err
	}
	b.unlock = unlock

	// 5. Store + Ledger recovery
	dbPath := filepath.Join(dataDir, "market.db")
	store, err := ledger.OpenStore(dbPath)
	if err != nil {
		return err
	}
	b.Store = store
	slog.Info("✅ Store initialized (WAL-mode)", "path", dbPath, "mode", mode)

	b.Ledger = ledger.NewSupplyLedger(store, cfg.Curve.MaxSupply)
	if err := b.Ledger.Recover(ctx); err != nil {
		return err
	}

	// 6. Curve model
	model, err := curve.NewModel(cfg.Curve)
	if err != nil {
		return err
	}
	b.Model = model

	// 7. Settlement backend
	settle, err := settlement.NewFactory(cfg).Create(ctx)
	if err != nil {
		return err
	}
	b.Settle = settle

	// 8. Engine + HTTP server
	quoter := engine.NewQuoter(b.Ledger, model, cfg.Trading.MaxTradeQty)
	exec := engine.NewExecutor(b.Ledger, model, settle, cfg.Trading.PlatformFeeBps)
	b.Server = server.New(cfg.Server.ListenAddr, b.Ledger, model, quoter, exec)

	slog.Info("✅ Market initialized",
		"tokens", len(b.Ledger.Tokens()),
		"fee_bps", cfg.Trading.PlatformFeeBps)
	return nil
}

// Close releases every resource Initialize acquired, in reverse order.
func (b *Bootstrap) Close() {
	if b.Settle != nil {
		if err := b.Settle.Close(); err != nil {
			slog.Warn("Settlement close failed", slog.Any("error", err))
		}
	}
	if b.Store != nil {
		if err := b.Store.Close(); err != nil {
			slog.Warn("Store close failed", slog.Any("error", err))
		}
	}
	if b.unlock != nil {
		b.unlock()
	}
}

func loadConfigOrDefault() (*infra.Config, error) {
	path := infra.ResolveConfigPath()
	cfg, err := infra.LoadConfig(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("No config file found, using SIM defaults", "path", path)
			return infra.DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}
