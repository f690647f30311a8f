package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/audit"
	auditrepo "github.com/ovaphlow/pitchfork/service-ledger-go/internal/audit/repo"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/category"
	categoryrepo "github.com/ovaphlow/pitchfork/service-ledger-go/internal/category/repo"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/report"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/session"
	sessionrepo "github.com/ovaphlow/pitchfork/service-ledger-go/internal/session/repo"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/transaction"
	transactionrepo "github.com/ovaphlow/pitchfork/service-ledger-go/internal/transaction/repo"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-ledger-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/vendors"
	vendorrepo "github.com/ovaphlow/pitchfork/service-ledger-go/internal/vendors/repo"
	"github.com/ovaphlow/pitchfork/service-ledger-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-ledger-go/pkg/utilities"
)

// tableEnsurer is implemented by every repo.
type tableEnsurer interface {
	EnsureTable(ctx context.Context) error
}

func main() {
	// load .env file if present so os.Getenv picks values from it
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-ledger-go")

	cfg, err := config.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("config: %v", err)
	}

	db, err := database.Open(database.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	users := userrepo.NewUserRepo(db)
	transactions := transactionrepo.NewTransactionRepo(db)
	categories := categoryrepo.NewCategoryRepo(db)
	vendorStore := vendorrepo.NewVendorRepo(db)
	audits := auditrepo.NewAuditRepo(db)
	revocations := sessionrepo.NewRevocationRepo(db)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	for _, repo := range []tableEnsurer{users, categories, transactions, vendorStore, audits, revocations} {
		if err := repo.EnsureTable(initCtx); err != nil {
			cancelInit()
			sugar.Fatalf("ensure table: %v", err)
		}
	}
	cancelInit()

	tokens, err := session.NewTokens(cfg.SessionSecret, cfg.SessionIssuer, cfg.SessionTTL)
	if err != nil {
		sugar.Fatalf("session tokens: %v", err)
	}
	tokens.WithRevocations(revocations)

	userSvc := user.NewUserService(users, cfg.IsAllowedEmail, sugar)
	principals := session.NewCachedSource(userSvc, cfg.PrincipalCacheSize, cfg.PrincipalCacheTTL)
	sink := audit.NewSink(audits, sugar)
	txSvc := transaction.NewService(transactions, sink)

	handler := router.RegisterRoutes(router.Deps{
		Logger:       sugar,
		Tokens:       tokens,
		Principals:   principals,
		CORSOrigins:  cfg.CORSOrigins,
		Users:        user.NewHandler(userSvc, sugar),
		Transactions: transaction.NewHandler(txSvc, sugar).WithHistory(audits),
		Categories:   category.NewHandler(category.NewService(categories), sugar),
		Vendors:      vendors.NewHandler(vendorStore, sugar),
		Reports:      report.NewHandler(txSvc, sugar),
	})
	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go purgeRevocations(ctx, revocations, sugar)

	go func() {
		sugar.Infow("http server listening", "addr", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}
	if err := sink.Close(doneCtx); err != nil {
		sugar.Warnw("audit writes still pending at shutdown", "err", err)
	}

	sugar.Info("goodbye")
}

// purgeRevocations drops revoked-session rows once their tokens have expired.
func purgeRevocations(ctx context.Context, repo *sessionrepo.RevocationRepo, logger *zap.SugaredLogger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := repo.Purge(ctx, now)
			if err != nil {
				logger.Warnw("failed to purge revoked sessions", "err", err)
				continue
			}
			if n > 0 {
				logger.Debugw("purged revoked sessions", "count", n)
			}
		}
	}
}
