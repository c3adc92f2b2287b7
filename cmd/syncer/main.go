// Command syncer runs a manifest reconciliation as a standalone job, for
// use from CI or the command line. The process exits non-zero when the
// reconciliation fails.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/localan/shortener/internal/config"
	reconciler "github.com/localan/shortener/internal/service/reconciler/v1"
	trigger "github.com/localan/shortener/internal/service/trigger/v1"
	"github.com/localan/shortener/internal/storage/inpsql"
	"github.com/localan/shortener/internal/storage/insqlite"
)

var (
	dryRun      bool
	skipTrigger bool
)

var rootCmd = &cobra.Command{
	Use:   "syncer",
	Short: "Regenerate the static redirect manifest from the link store",
	Long: `Reads all published and synced links from the configured store,
rewrites the static redirect manifest consumed by the edge router, marks
exported links as synced and asks the configured CI system to deploy.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := config.NewDefaultConfiguration()
	if err != nil {
		return err
	}
	if cfg.StorageConfig.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN must be set for a standalone sync")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	wg := &sync.WaitGroup{}
	wg.Add(1)

	var linkStorage reconciler.LinkStorage
	if strings.HasPrefix(cfg.StorageConfig.DatabaseDSN, "postgres://") || strings.HasPrefix(cfg.StorageConfig.DatabaseDSN, "postgresql://") {
		linkStorage, err = inpsql.InitStorage(ctx, wg, cfg.StorageConfig, log)
	} else {
		linkStorage, err = insqlite.InitStorage(ctx, wg, cfg.StorageConfig, log)
	}
	if err != nil {
		return err
	}

	syncErr := func() error {
		reconcilerService, err := reconciler.InitReconciler(linkStorage, cfg.SyncConfig, log)
		if err != nil {
			return err
		}

		if dryRun {
			manifest, err := reconcilerService.Preview(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("would write %d redirects to %s\n", len(manifest.Redirects), cfg.SyncConfig.ManifestPath)
			return nil
		}

		count, err := reconcilerService.Reconcile(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %d redirects to %s\n", count, cfg.SyncConfig.ManifestPath)

		if !skipTrigger {
			notifier := trigger.InitTrigger(cfg.TriggerConfig, log)
			if notifier.Trigger(ctx) {
				fmt.Println("deploy trigger fired")
			}
		}
		return nil
	}()

	// release the storage closer goroutine and wait for the connection to
	// shut down before reporting the outcome
	cancel()
	wg.Wait()
	return syncErr
}

func init() {
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build the manifest without writing it")
	rootCmd.Flags().BoolVar(&skipTrigger, "skip-trigger", false, "Do not fire the deploy trigger after a successful sync")
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
