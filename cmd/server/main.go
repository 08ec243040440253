// Command server wires the comphub process: config, logger, postgres, redis,
// stores, services, handlers, the HTTP server, and the background workers.
// Business logic lives in the internal service packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	comphandler "comphub/internal/comp/handler"
	compsvc "comphub/internal/comp/service"
	comppg "comphub/internal/comp/store/postgres"
	blobfs "comphub/internal/file/blob/fs"
	filehandler "comphub/internal/file/handler"
	filesvc "comphub/internal/file/service"
	filepg "comphub/internal/file/store/postgres"
	"comphub/internal/history"
	historyhandler "comphub/internal/history/handler"
	"comphub/internal/history/outbox"
	historypg "comphub/internal/history/store/postgres"
	jwttoken "comphub/internal/jwt_token"
	optionhandler "comphub/internal/option/handler"
	optionsvc "comphub/internal/option/service"
	optionpg "comphub/internal/option/store/postgres"
	"comphub/internal/platform/config"
	"comphub/internal/platform/httpserver"
	"comphub/internal/platform/logger"
	"comphub/internal/platform/metrics"
	pgplatform "comphub/internal/platform/postgres"
	redisplatform "comphub/internal/platform/redis"
	reminderhandler "comphub/internal/reminder/handler"
	"comphub/internal/reminder/notifier"
	remindersvc "comphub/internal/reminder/service"
	reminderpg "comphub/internal/reminder/store/postgres"
	taskhandler "comphub/internal/task/handler"
	tasksvc "comphub/internal/task/service"
	taskpg "comphub/internal/task/store/postgres"
	httpapi "comphub/internal/transport/http"
)

const (
	jwtIssuer   = "comphub"
	jwtAudience = "comphub-api"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	db, err := pgplatform.Open(pgplatform.Config{
		URL:             cfg.Postgres.URL,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := pgplatform.Migrate(db, "file://migrations"); err != nil {
		return err
	}

	redisClient, err := redisplatform.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	blobs, err := blobfs.New(cfg.Files.Dir)
	if err != nil {
		return err
	}

	historyStore := historypg.New(db)
	historyLogger := history.NewLogger(historyStore,
		history.WithLogger(log), history.WithMetrics(m))

	compStore := comppg.New(db)
	optionStore := optionpg.New(db)
	taskStore := taskpg.New(db)
	reminderStore := reminderpg.New(db)
	fileStore := filepg.New(db)

	comps := compsvc.New(compStore, historyLogger,
		compsvc.WithLogger(log), compsvc.WithMetrics(m))
	options := optionsvc.New(optionStore, historyLogger,
		optionsvc.WithLogger(log), optionsvc.WithMetrics(m))
	tasks := tasksvc.New(taskStore, historyLogger,
		tasksvc.WithLogger(log), tasksvc.WithMetrics(m))
	reminders := remindersvc.New(reminderStore, historyLogger,
		remindersvc.WithLogger(log), remindersvc.WithMetrics(m))
	files := filesvc.New(fileStore, blobs, historyLogger,
		filesvc.WithLogger(log), filesvc.WithMetrics(m))

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, jwtIssuer, jwtAudience)
	validator := jwttoken.NewJWTServiceAdapter(jwtService)

	router := httpapi.NewRouter(
		comphandler.New(comps, log, m, validator),
		optionhandler.New(options, log, m, validator),
		taskhandler.New(tasks, log, m, validator),
		reminderhandler.New(reminders, log, m, validator),
		filehandler.New(files, log, m, validator),
		historyhandler.New(historyLogger, log, m, validator),
	)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting comphub", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := outbox.NewKafkaPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.HistoryTopic)
		if err != nil {
			return err
		}
		defer publisher.Close()

		worker := outbox.NewWorker(historyStore, publisher, cfg.Kafka.PollInterval,
			outbox.WithLogger(log), outbox.WithMetrics(m))
		g.Go(func() error {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	var locker notifier.Locker
	if redisClient != nil {
		locker = redisClient.Client
	}
	reminderNotifier := notifier.New(reminderStore, locker, cfg.Reminders.ScanInterval,
		notifier.WithLogger(log), notifier.WithLockTTL(cfg.Reminders.LockTTL), notifier.WithMetrics(m))
	g.Go(func() error {
		if err := reminderNotifier.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	return g.Wait()
}
