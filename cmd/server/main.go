package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"                    // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Recover and RequestID
	"github.com/redis/go-redis/v9"                  // shared Redis client
	"golang.org/x/sync/errgroup"                    // server, reaper and consumer lifetimes

	"github.com/iliyamo/cinema-seat-hold/internal/audit"
	"github.com/iliyamo/cinema-seat-hold/internal/booking"
	"github.com/iliyamo/cinema-seat-hold/internal/catalog"
	"github.com/iliyamo/cinema-seat-hold/internal/clock"
	"github.com/iliyamo/cinema-seat-hold/internal/config"
	"github.com/iliyamo/cinema-seat-hold/internal/database"
	"github.com/iliyamo/cinema-seat-hold/internal/handler"
	"github.com/iliyamo/cinema-seat-hold/internal/inventory"
	"github.com/iliyamo/cinema-seat-hold/internal/middleware"
	"github.com/iliyamo/cinema-seat-hold/internal/publisher"
	"github.com/iliyamo/cinema-seat-hold/internal/queue"
	"github.com/iliyamo/cinema-seat-hold/internal/repository"
	"github.com/iliyamo/cinema-seat-hold/internal/reservation"
	"github.com/iliyamo/cinema-seat-hold/internal/router"
	"github.com/iliyamo/cinema-seat-hold/pkg/logger"
)

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped gracefully")
}

// deps are the optional backends the service was configured with.  Each
// field is nil when the backend is not in use.
type deps struct {
	db    *sql.DB
	rdb   *redis.Client
	amqp  *publisher.AMQP
	kafka *publisher.Kafka
}

func (d *deps) close(log *logger.Logger) {
	if d.amqp != nil {
		if err := d.amqp.Close(); err != nil {
			log.Warn("close rabbitmq", "error", err)
		}
	}
	if d.kafka != nil {
		if err := d.kafka.Close(); err != nil {
			log.Warn("close kafka", "error", err)
		}
	}
	if d.rdb != nil {
		_ = d.rdb.Close()
	}
	if d.db != nil {
		_ = d.db.Close()
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	d := &deps{}
	defer d.close(log)

	if cfg.DatabaseEnabled() {
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("mysql: %w", err)
		}
		d.db = db
	}
	d.rdb = config.NewRedisClient(ctx, cfg.Redis)
	if d.rdb == nil {
		log.Warn("redis unavailable; rate limiting and response cache disabled", "addr", cfg.Redis.Address())
	}
	if cfg.HasAuditSink("amqp") || cfg.BookingPublisher == "amqp" || cfg.RabbitMQ.ConsumerEnabled {
		d.amqp = publisher.NewAMQP(cfg.RabbitMQ.URL, log)
	}
	if cfg.HasAuditSink("kafka") || cfg.BookingPublisher == "kafka" {
		d.kafka = publisher.NewKafka(cfg.Kafka.Brokers, log)
	}

	// Catalog and inventory.
	var src catalog.Source = catalog.Fixture{}
	if cfg.CatalogSource == "mysql" {
		src = repository.NewCatalogRepo(d.db)
	}
	cat, err := catalog.Load(ctx, src)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	var booked map[string][]string
	if cfg.CatalogSource == "mysql" {
		if booked, err = repository.NewShowSeatRepo(d.db).BookedSeats(ctx); err != nil {
			return fmt.Errorf("load booked seats: %w", err)
		}
	}

	var inv inventory.Store
	switch cfg.Inventory.Backend {
	case "redis":
		if d.rdb == nil {
			return errors.New("INVENTORY_BACKEND=redis but redis is unreachable")
		}
		inv = inventory.NewRedis(d.rdb, cfg.Inventory.Prefix)
	default:
		inv = inventory.NewMemory(cfg.Inventory.Shards)
	}
	if err := inventory.Seed(ctx, inv, cat, booked); err != nil {
		return err
	}
	log.Info("catalog loaded", "source", cfg.CatalogSource, "showtimes", len(cat.Showtimes()), "inventory", cfg.Inventory.Backend)

	// Holds, audit trail and bookings.
	holds := reservation.NewManager(reservation.Options{
		DefaultTTL:   cfg.HoldTTL(),
		MaxTTL:       cfg.MaxHoldTTL(),
		ExpiringSoon: cfg.ExpiringSoon(),
	}, inv, cat, clock.Real{}, auditSink(cfg, d, log), log)
	reaper := reservation.NewReaper(holds, cfg.ReaperInterval(), log)

	var opts []booking.Option
	if cfg.CatalogSource == "mysql" {
		opts = append(opts, booking.WithRecorder(repository.NewReservationRepo(d.db)))
	}
	switch cfg.BookingPublisher {
	case "amqp":
		opts = append(opts, booking.WithPublisher(d.amqp, queue.BookingQueueName))
	case "kafka":
		opts = append(opts, booking.WithPublisher(d.kafka, cfg.Kafka.BookingTopic))
	}
	bookings := booking.NewFinalizer(holds, cat, log, opts...)

	// HTTP.
	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(log))
	router.RegisterRoutes(e, handler.NewPublicHandler(cat, holds), middleware.NewRedisCache(cfg.Cache, d.rdb, log))
	router.RegisterCustomer(e, handler.NewHoldHandler(holds, bookings, log), cfg.JWTSecret,
		middleware.NewTokenBucket(cfg.RateLimit, d.rdb, log))
	router.RegisterAdmin(e, handler.NewAdminHandler(holds, log), cfg.JWTSecret)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return reaper.Run(gctx) })
	if cfg.RabbitMQ.ConsumerEnabled {
		c := &queue.Consumer{URL: cfg.RabbitMQ.URL, LogDir: cfg.RabbitMQ.LogDir, Log: log}
		g.Go(func() error { return c.Run(gctx) })
	}
	g.Go(func() error {
		addr := ":" + cfg.Port // Address string with port
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		reaper.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// auditSink fans audit events out to every sink listed in AUDIT_SINKS.
func auditSink(cfg *config.Config, d *deps, log *logger.Logger) audit.Sink {
	var sinks audit.Multi
	for _, name := range cfg.AuditSinks {
		switch name {
		case "log":
			sinks = append(sinks, audit.LogSink{Log: log.WithComponent("audit")})
		case "sql":
			sinks = append(sinks, audit.SQLSink{W: repository.NewAuditRepo(d.db)})
		case "amqp":
			sinks = append(sinks, audit.PublishSink{Pub: d.amqp, Route: queue.AuditQueueName})
		case "kafka":
			sinks = append(sinks, audit.PublishSink{Pub: d.kafka, Route: cfg.Kafka.AuditTopic})
		}
	}
	return sinks
}
