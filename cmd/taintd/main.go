package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rexliu/taintd/pkg/config"
	"github.com/rexliu/taintd/pkg/ipc"
	"github.com/rexliu/taintd/pkg/logging"
	"github.com/rexliu/taintd/pkg/storage/sqlite"
	gitvcs "github.com/rexliu/taintd/pkg/vcs/git"
	"github.com/rexliu/taintd/pkg/verify"
)

const version = "0.2.0"

func main() {
	profile := flag.String("profile", "./_dev_profile", "Path to profile directory")
	socket := flag.String("socket", "", "Override IPC socket path (optional)")
	flag.Parse()

	logger := logging.New("taintd")
	defer logger.Sync()
	logger.Printf("starting daemon with profile %s", *profile)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *profile, *socket, logger); err != nil {
		logger.Errorf("fatal error: %v", err)
		logger.Sync()
		os.Exit(1)
	}
}

// daemon holds the state the dispatcher serves from.
type daemon struct {
	cfg        *config.ProfileConfig
	profileDir string
	socketPath string
	store      *sqlite.Store
	env        verify.Environment
	repo       gitvcs.Repo
	logger     *logging.Logger

	stopOnce sync.Once
	stop     context.CancelFunc
}

func run(ctx context.Context, profileDir, socketOverride string, logger *logging.Logger) error {
	cfg, err := config.LoadProfile(profileDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Configure(cfg.Logging); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	store, err := sqlite.Open(config.ResolvePath(profileDir, cfg.Storage.DBPath))
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer store.Close()
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}

	env, err := verify.LoadSnapshot(config.ResolvePath(profileDir, cfg.Analysis.EnvironmentSnapshot))
	if err != nil {
		return fmt.Errorf("load environment snapshot: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d := &daemon{
		cfg:        cfg,
		profileDir: profileDir,
		store:      store,
		env:        env,
		logger:     logger,
		stop:       cancel,
	}

	if cfg.VCS.Enabled {
		root := config.ResolvePath(profileDir, cfg.VCS.Root)
		if root == "" {
			root = profileDir
		}
		repo, err := gitvcs.Open(root)
		if err != nil {
			logger.Printf("warning: git integration disabled: %v", err)
		} else {
			d.repo = repo
		}
	}

	if err := d.verifyAll(ctx); err != nil {
		return fmt.Errorf("initial verification: %w", err)
	}

	socketPath := socketOverride
	if socketPath == "" {
		socketPath = config.ResolvePath(profileDir, cfg.IPC.SocketPath)
	}
	if err := cleanupSocket(socketPath); err != nil {
		return err
	}
	d.socketPath = socketPath

	srv := ipc.NewServer(d, logger)
	if err := srv.Start(ctx, socketPath); err != nil {
		return fmt.Errorf("start ipc: %w", err)
	}
	defer func() {
		srv.Stop()
		cleanupSocket(socketPath)
	}()

	logger.Printf("daemon ready; socket at %s", socketPath)

	<-ctx.Done()
	logger.Println("shutting down")
	return nil
}

// verifyAll runs the full verification pass over every configured model file.
func (d *daemon) verifyAll(ctx context.Context) error {
	for _, path := range d.modelPaths() {
		if err := d.verifyFile(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// verifyFile re-verifies one model file and replaces its stored diagnostics.
func (d *daemon) verifyFile(ctx context.Context, path string) error {
	models, err := verify.LoadModelFile(path)
	if err != nil {
		return fmt.Errorf("load model file %s: %w", path, err)
	}
	errs := verify.VerifyAll(d.env, models)
	if err := d.store.ReplaceErrors(ctx, path, errs); err != nil {
		return fmt.Errorf("store diagnostics for %s: %w", path, err)
	}
	d.logger.Printf("verified %s: %d models, %d errors", path, len(models), len(errs))
	return nil
}

func (d *daemon) modelPaths() []string {
	paths := make([]string, 0, len(d.cfg.Analysis.ModelFiles))
	for _, path := range d.cfg.Analysis.ModelFiles {
		paths = append(paths, config.ResolvePath(d.profileDir, path))
	}
	return paths
}

func cleanupSocket(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return err
		}
	}
	return nil
}
