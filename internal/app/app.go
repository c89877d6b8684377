// Package app initializes and runs the Atomic Notes server.
// It configures logging, storage, authentication, the user service and
// routing, serves HTTP and gRPC side by side and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/patric-chuzhbe/atomicnotes/internal/auth"
	"github.com/patric-chuzhbe/atomicnotes/internal/config"
	"github.com/patric-chuzhbe/atomicnotes/internal/grpcserver"
	"github.com/patric-chuzhbe/atomicnotes/internal/ipchecker"
	"github.com/patric-chuzhbe/atomicnotes/internal/kv"
	"github.com/patric-chuzhbe/atomicnotes/internal/logger"
	"github.com/patric-chuzhbe/atomicnotes/internal/notes"
	"github.com/patric-chuzhbe/atomicnotes/internal/router"
	"github.com/patric-chuzhbe/atomicnotes/internal/starred"
	"github.com/patric-chuzhbe/atomicnotes/internal/storage"
	"github.com/patric-chuzhbe/atomicnotes/internal/userservice"
)

const (
	shutdownTimeout    = 10 * time.Second
	userServiceTimeout = 5 * time.Second
	logFileMaxSizeMB   = 100
	logFileMaxBackups  = 5
)

// App encapsulates the configuration, handlers and storage backend needed
// to run the site.
type App struct {
	cfg         *config.Config
	storage     kv.Namespace
	users       userservice.Service
	closeUsers  func() error
	httpHandler http.Handler
	grpcHandler *grpcserver.StarredNotesHandler
}

type initOptions struct {
	configOptions []config.InitOption
}

type InitOption func(*initOptions)

// WithConfigOptions passes options to config.New.
func WithConfigOptions(opts ...config.InitOption) InitOption {
	return func(options *initOptions) {
		options.configOptions = append(options.configOptions, opts...)
	}
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - selecting and setting up storage
// - selecting the user service
// - setting up authentication, the router and the gRPC handler
func New(ctx context.Context, optionsProto ...InitOption) (*App, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	var err error
	app := &App{closeUsers: func() error { return nil }}

	app.cfg, err = config.New(options.configOptions...)
	if err != nil {
		return nil, err
	}

	var loggerOptions []logger.InitOption
	if app.cfg.LogFile != "" {
		loggerOptions = append(loggerOptions, logger.WithLogFile(app.cfg.LogFile, logFileMaxSizeMB, logFileMaxBackups))
	}
	err = logger.Init(app.cfg.LogLevel, loggerOptions...)
	if err != nil {
		return nil, err
	}

	app.storage, err = storage.Open(ctx, app.cfg)
	if err != nil {
		return nil, err
	}

	actors := starred.NewNamespace(app.storage)
	app.grpcHandler = grpcserver.NewStarredNotesHandler(actors)

	if err := app.initUserService(actors); err != nil {
		_ = app.storage.Close()
		return nil, err
	}

	theAuth, err := auth.New(
		app.cfg.GithubClientID,
		app.cfg.GithubClientSecret,
		app.cfg.GithubCallbackURL,
		app.cfg.GithubAdminID,
		app.cfg.SessionSecrets,
		app.cfg.IsProduction(),
	)
	if err != nil {
		_ = app.release()
		return nil, err
	}

	checker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		_ = app.release()
		return nil, err
	}

	app.httpHandler = router.New(
		notes.New(app.storage),
		app.users,
		theAuth,
		app.storage,
		actors,
		checker,
	)

	return app, nil
}

func (a *App) initUserService(actors *starred.Namespace) error {
	switch {
	case a.cfg.UserServiceGRPCAddr != "":
		remote, err := userservice.DialGRPC(a.cfg.UserServiceGRPCAddr, a.cfg.GRPCSharedSecret)
		if err != nil {
			return err
		}
		a.users = remote
		a.closeUsers = remote.Close
		logger.Log.Infow("using the gRPC user service", "addr", a.cfg.UserServiceGRPCAddr)

	case a.cfg.UserServiceURL != "":
		a.users = userservice.NewHTTP(a.cfg.UserServiceURL, userServiceTimeout)
		logger.Log.Infow("using the HTTP user service", "url", a.cfg.UserServiceURL)

	default:
		a.users = userservice.NewLocal(actors)
	}

	return nil
}

// Handler returns the HTTP handler of the site.
func (a *App) Handler() http.Handler {
	return a.httpHandler
}

// Run starts the HTTP and gRPC servers with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              a.cfg.RunAddr,
		Handler:           a.httpHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var (
		grpcServer   *grpc.Server
		grpcListener net.Listener
		err          error
	)
	if a.cfg.GRPCAddr != "" {
		grpcServer, grpcListener, err = grpcserver.NewGRPCServer(a.cfg.GRPCAddr, a.grpcHandler, a.cfg.GRPCSharedSecret)
		if err != nil {
			_ = a.release()
			return fmt.Errorf("in internal/app/app.go/Run(): error while `grpcserver.NewGRPCServer()` calling: %w", err)
		}
	}

	serverErrCh := make(chan error, 2)
	var wg conc.WaitGroup

	wg.Go(func() {
		logger.Log.Infow("HTTP server running", "RunAddr", a.cfg.RunAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	})

	if grpcServer != nil {
		wg.Go(func() {
			logger.Log.Infow("gRPC server running", "GRPCAddr", grpcListener.Addr().String())
			if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				serverErrCh <- fmt.Errorf("gRPC server error: %w", err)
			}
		})
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Flushing storage and exiting...")
	case runErr = <-serverErrCh:
		logger.Log.Errorw("server failed, shutting down", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("server shutdown error: %w", err))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	wg.Wait()

	return errors.Join(runErr, a.release())
}

func (a *App) release() error {
	return errors.Join(a.closeUsers(), a.storage.Close())
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}
