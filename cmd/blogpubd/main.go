// Command blogpubd runs the publish orchestration daemon: the HTTP API,
// the session refresher, and the scheduled-publish worker.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ProCodeJH/blog-automation-sub000/observability"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/browser"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/config"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/history"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/logger"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/notify"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/platform"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/platforms/medium"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/platforms/naver"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/platforms/tistory"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/publisher"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/queue"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/session"
	transporthttp "github.com/ProCodeJH/blog-automation-sub000/transport/http"
)

func main() {
	var (
		dataDir    = flag.String("data-dir", "data", "directory for the ledger, sessions, and browser profiles")
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		headful    = flag.Bool("headful", false, "run browser automation with a visible window")
		redisAddr  = flag.String("redis", "", "Redis address for the persistent job queue (empty: in-memory)")
		webhook    = flag.String("webhook", "", "webhook URL for publish outcome notifications")
		captureFor = flag.String("capture", "", "interactively capture a session for the named platform, then exit")
	)
	flag.Parse()

	if err := run(*dataDir, *addr, *headful, *redisAddr, *webhook, *captureFor); err != nil {
		fmt.Fprintln(os.Stderr, "blogpubd:", err)
		os.Exit(1)
	}
}

func run(dataDir, addr string, headful bool, redisAddr, webhook, capturePlatform string) error {
	opts := []config.Option{
		config.WithDataDir(dataDir),
		config.WithHTTPAddr(addr),
		config.WithHeadless(!headful),
	}
	if webhook != "" {
		opts = append(opts, config.WithNotifyWebhook(webhook))
	}
	if redisAddr != "" {
		redisCfg := config.DefaultRedis()
		redisCfg.Addr = redisAddr
		opts = append(opts, config.WithRedisQueue(redisCfg))
	}

	cfg, err := config.New(opts...)
	if err != nil {
		return err
	}
	log := cfg.Logger
	if log == nil {
		log = logger.New()
	}

	sessions, err := session.NewFileStore(cfg.SessionDir())
	if err != nil {
		return err
	}
	driver := browser.NewChromeDriver()

	profiles := []session.PlatformProfile{
		tistory.Profile(cfg),
		naver.Profile(cfg),
		medium.Profile(cfg),
	}

	// One-shot interactive capture mode.
	if capturePlatform != "" {
		return capture(cfg, driver, sessions, profiles, capturePlatform, log)
	}

	registry := platform.NewRegistry()
	for _, adapter := range []platform.Platform{
		tistory.New(cfg, driver, sessions, log),
		naver.New(cfg, driver, sessions, log),
		medium.New(cfg, driver, sessions, log),
	} {
		if err := registry.Register(adapter); err != nil {
			return err
		}
	}
	defer registry.Close()

	ledger, err := history.NewFileStore(cfg.LedgerPath(), cfg.HistoryLimit)
	if err != nil {
		return err
	}

	dispatcher := notify.NewDispatcher(cfg.NotifyTimeout, log)
	dispatcher.AddSink(notify.NewLogSink(log))
	for _, url := range cfg.NotifyWebhooks {
		dispatcher.AddSink(notify.NewWebhookSink(url, nil))
	}

	telemetry, err := observability.NewTelemetryProvider(cfg.Telemetry)
	if err != nil {
		return err
	}

	orch, err := publisher.New(publisher.Options{
		Registry:    registry,
		Ledger:      ledger,
		Guard:       history.NewDuplicateGuard(ledger, cfg.DuplicateWindow),
		Credentials: publisher.NewChainProvider(sessions),
		Notifier:    dispatcher,
		Telemetry:   telemetry,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var jobs queue.Queue
	if cfg.Redis != nil {
		jobs, err = queue.NewRedisQueue(cfg.Redis, log)
		if err != nil {
			return err
		}
	} else {
		jobs = queue.NewMemoryQueue(0)
	}
	defer jobs.Close()

	worker := queue.NewWorker(jobs, func(ctx context.Context, req *post.PublishRequest) (*post.PublishResult, error) {
		return orch.Publish(ctx, req)
	}, 0, log)
	worker.Start(ctx)
	defer worker.Stop()

	refresher := session.NewRefresher(driver, sessions, profiles, cfg.RefreshInterval, log)
	refresher.Start(ctx)
	defer refresher.Stop()

	server := transporthttp.NewServer(transporthttp.Options{
		Addr:         cfg.HTTPAddr,
		Orchestrator: orch,
		Registry:     registry,
		Ledger:       ledger,
		Queue:        jobs,
		Logger:       log,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	dispatcher.Wait()
	return telemetry.Shutdown(shutdownCtx)
}

func capture(cfg *config.Config, driver browser.Driver, sessions session.Store, profiles []session.PlatformProfile, name string, log logger.Logger) error {
	var profile *session.PlatformProfile
	for i := range profiles {
		if profiles[i].Platform == name {
			profile = &profiles[i]
			break
		}
	}
	if profile == nil {
		return fmt.Errorf("unknown platform %q", name)
	}

	log.Info("opening browser for interactive login", "platform", name)
	capturer := session.NewCapturer(driver, sessions, cfg.CaptureTimeout, log)
	rec, err := capturer.Capture(context.Background(), *profile)
	if err != nil {
		return err
	}
	log.Info("session captured", "platform", rec.Platform, "blog_id", rec.BlogID, "cookies", len(rec.Cookies))
	return nil
}
