package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	invitationCommands "github.com/felixgeelhaar/gatherly/internal/invitations/application/commands"
	invitationQueries "github.com/felixgeelhaar/gatherly/internal/invitations/application/queries"
	invitationSubs "github.com/felixgeelhaar/gatherly/internal/invitations/application/subscribers"
	meetingCommands "github.com/felixgeelhaar/gatherly/internal/meetings/application/commands"
	meetingQueries "github.com/felixgeelhaar/gatherly/internal/meetings/application/queries"
	memberCommands "github.com/felixgeelhaar/gatherly/internal/members/application/commands"
	memberQueries "github.com/felixgeelhaar/gatherly/internal/members/application/queries"
	"github.com/felixgeelhaar/gatherly/internal/notifications"
	"github.com/felixgeelhaar/gatherly/internal/payments"
	"github.com/felixgeelhaar/gatherly/internal/payments/razorpay"
	"github.com/felixgeelhaar/gatherly/internal/payments/simulated"
	"github.com/felixgeelhaar/gatherly/internal/reporting"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/gatherly/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/gatherly/pkg/config"
	"github.com/felixgeelhaar/gatherly/pkg/observability"
	"github.com/redis/go-redis/v9"
)

// Mail providers.
const (
	MailProviderLog = "log"
	MailProviderSES = "ses"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.PrometheusMetrics
	Health  *observability.HealthRegistry

	// Database
	DBConn database.Connection
	Repos  *Repositories

	// Redis is nil when REDIS_URL is unset or unreachable in development.
	RedisClient *redis.Client

	// Payments
	Gateway payments.Gateway
	// Simulated is set when the simulated gateway is configured.
	Simulated *simulated.Gateway

	Notifier notifications.Notifier

	// Events
	EventPublisher         eventbus.Publisher
	InProcessBus           *eventbus.InProcessBus
	NotificationSubscriber *invitationSubs.NotificationSubscriber
	OutboxProcessor        *outbox.Processor

	// Member handlers
	RegisterMemberHandler *memberCommands.RegisterMemberHandler
	GetMemberHandler      *memberQueries.GetMemberHandler
	ListCommunityHandler  *memberQueries.ListCommunityHandler

	// Meeting handlers
	CreateMeetingHandler    *meetingCommands.CreateMeetingHandler
	UpdateMeetingHandler    *meetingCommands.UpdateMeetingHandler
	DeleteMeetingHandler    *meetingCommands.DeleteMeetingHandler
	RegisterAttendeeHandler *meetingCommands.RegisterAttendeeHandler
	GetMeetingHandler       *meetingQueries.GetMeetingHandler
	ListMeetingsHandler     *meetingQueries.ListMeetingsHandler

	// Invitation handlers
	CreateInvitationHandler     *invitationCommands.CreateInvitationHandler
	IssuePaymentLinkHandler     *invitationCommands.IssuePaymentLinkHandler
	ConfirmFromWebhookHandler   *invitationCommands.ConfirmFromWebhookHandler
	SimulateConfirmationHandler *invitationCommands.SimulateConfirmationHandler
	CancelInvitationHandler     *invitationCommands.CancelInvitationHandler
	InviteCommunityHandler      *invitationCommands.InviteCommunityHandler
	ReconcileRosterHandler      *invitationCommands.ReconcileRosterHandler
	GetInvitationHandler        *invitationQueries.GetInvitationHandler
	ListInvitationsHandler      *invitationQueries.ListInvitationsHandler

	Reporter *reporting.Reporter

	closers []func() error
}

// NewContainer creates and wires all dependencies. Schema migrations run on
// every start.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewPrometheusMetrics("gatherly"),
		Health:  observability.NewHealthRegistry(),
	}

	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := c.initRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initGateway(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initNotifier(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initEvents(); err != nil {
		c.Close()
		return nil, err
	}
	c.initHandlers()

	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	dbCfg := database.Config{
		URL:        c.Config.Database.URL,
		SQLitePath: c.Config.Database.SQLitePath,
		MaxConns:   c.Config.Database.MaxConns,
	}
	if database.DetectDriver(dbCfg.URL) == database.DriverSQLite {
		if dbCfg.SQLitePath == "" {
			dbCfg.SQLitePath = database.DefaultSQLitePath()
		}
		if dbCfg.SQLitePath != ":memory:" {
			if err := database.EnsureDirectory(dbCfg.SQLitePath); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	conn, err := database.NewConnection(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrations.Run(ctx, conn); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	repos, err := NewRepositories(conn)
	if err != nil {
		_ = conn.Close()
		return err
	}

	c.DBConn = conn
	c.Repos = repos
	c.closers = append(c.closers, conn.Close)
	c.Health.Register("database", observability.PingChecker("database", observability.HealthStatusUnhealthy, conn.Ping))
	c.Logger.Info("connected to database", "driver", conn.Driver())
	return nil
}

// initRedis connects the optional Redis client. Outside development a
// configured but unreachable Redis is fatal.
func (c *Container) initRedis(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, payment links will be cached in memory", "error", err)
		return nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, payment links will be cached in memory", "error", err)
		return nil
	}

	c.RedisClient = client
	c.closers = append(c.closers, client.Close)
	c.Health.Register("redis", observability.PingChecker("redis", observability.HealthStatusDegraded, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	c.Logger.Info("connected to Redis")
	return nil
}

func (c *Container) initGateway() error {
	pc := c.Config.Payment

	var gateway payments.Gateway
	switch pc.Gateway {
	case config.GatewayRazorpay:
		gateway = razorpay.New(razorpay.Config{
			BaseURL:         pc.BaseURL,
			KeyID:           pc.KeyID,
			KeySecret:       pc.KeySecret,
			TokenURL:        pc.TokenURL,
			ClientID:        pc.ClientID,
			ClientSecret:    pc.ClientSecret,
			Timeout:         pc.Timeout,
			BreakerFailures: pc.BreakerFailures,
			BreakerTimeout:  pc.BreakerTimeout,
		}, c.Logger, c.Metrics)
	case config.GatewaySimulated:
		c.Simulated = simulated.New(pc.PublicLinkBase)
		gateway = c.Simulated
		c.Logger.Warn("using the simulated payment gateway")
	default:
		return fmt.Errorf("unknown payment gateway %q", pc.Gateway)
	}

	var cache payments.LinkCache = payments.NewMemoryLinkCache()
	if c.RedisClient != nil {
		cache = payments.NewRedisLinkCache(c.RedisClient)
	}
	c.Gateway = payments.NewIdempotentGateway(gateway, cache, pc.LinkCacheTTL, c.Logger)
	return nil
}

func (c *Container) initNotifier(ctx context.Context) error {
	mc := c.Config.Mail
	switch mc.Provider {
	case MailProviderLog, "":
		c.Notifier = notifications.NewLogNotifier(c.Logger)
	case MailProviderSES:
		notifier, err := notifications.NewSESNotifier(ctx, notifications.SESConfig{
			Region:      mc.AWSRegion,
			AccessKeyID: mc.AWSAccessKeyID,
			SecretKey:   mc.AWSSecretKey,
			From:        mc.From,
			DisplayZone: c.Config.ReportLocation(),
		}, c.Logger, c.Metrics)
		if err != nil {
			return fmt.Errorf("failed to create SES notifier: %w", err)
		}
		c.Notifier = notifier
	default:
		return fmt.Errorf("unknown mail provider %q", mc.Provider)
	}
	return nil
}

// initEvents wires the outbox relay. With the in-process bus the relay
// delivers straight to the notification subscriber; with RabbitMQ the worker
// consumes what the relay publishes.
func (c *Container) initEvents() error {
	c.NotificationSubscriber = invitationSubs.NewNotificationSubscriber(
		c.Repos.Meetings, c.Repos.Members, c.Notifier, c.Logger,
	)

	switch c.Config.EventBus {
	case "rabbitmq":
		publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
		if err != nil {
			if !c.Config.IsDevelopment() {
				return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			c.Logger.Warn("RabbitMQ not available, using the in-process bus", "error", err)
			c.useInProcessBus()
			break
		}
		c.EventPublisher = publisher
	default:
		c.useInProcessBus()
	}
	c.closers = append(c.closers, c.EventPublisher.Close)

	oc := c.Config.Outbox
	procCfg := outbox.DefaultProcessorConfig()
	procCfg.PollInterval = oc.PollInterval
	procCfg.BatchSize = oc.BatchSize
	procCfg.MaxRetries = oc.MaxRetries
	c.OutboxProcessor = outbox.NewProcessor(c.Repos.Outbox, c.EventPublisher, procCfg, c.Logger)
	c.OutboxProcessor.SetMetrics(c.Metrics)
	return nil
}

func (c *Container) useInProcessBus() {
	c.InProcessBus = eventbus.NewInProcessBus(c.Logger)
	c.InProcessBus.RegisterConsumer(c.NotificationSubscriber)
	c.EventPublisher = c.InProcessBus
}

func (c *Container) initHandlers() {
	r := c.Repos
	uow := r.UnitOfWork

	c.RegisterMemberHandler = memberCommands.NewRegisterMemberHandler(r.Members, r.Outbox, uow)
	c.GetMemberHandler = memberQueries.NewGetMemberHandler(r.Members)
	c.ListCommunityHandler = memberQueries.NewListCommunityHandler(r.Members)

	c.CreateMeetingHandler = meetingCommands.NewCreateMeetingHandler(r.Meetings, r.Members, r.Outbox, uow)
	c.UpdateMeetingHandler = meetingCommands.NewUpdateMeetingHandler(r.Meetings, r.Outbox, uow)
	c.DeleteMeetingHandler = meetingCommands.NewDeleteMeetingHandler(r.Meetings, r.Outbox, uow)
	c.RegisterAttendeeHandler = meetingCommands.NewRegisterAttendeeHandler(r.Meetings, r.Members, r.Outbox, uow)
	c.GetMeetingHandler = meetingQueries.NewGetMeetingHandler(r.Meetings)
	c.ListMeetingsHandler = meetingQueries.NewListMeetingsHandler(r.Meetings)

	c.CreateInvitationHandler = invitationCommands.NewCreateInvitationHandler(
		r.Invitations, r.Meetings, r.Members, c.Gateway, r.Outbox, uow, c.Logger, c.Metrics,
	)
	c.IssuePaymentLinkHandler = invitationCommands.NewIssuePaymentLinkHandler(
		r.Invitations, r.Meetings, c.Gateway, r.Outbox, uow, c.Logger,
	)
	c.ConfirmFromWebhookHandler = invitationCommands.NewConfirmFromWebhookHandler(
		r.Invitations, r.Meetings, r.Outbox, uow, c.Config.Payment.WebhookSecret, c.Logger, c.Metrics,
	)
	c.SimulateConfirmationHandler = invitationCommands.NewSimulateConfirmationHandler(
		r.Invitations, r.Meetings, r.Outbox, uow, !c.Config.IsProduction(), c.Logger, c.Metrics,
	)
	c.CancelInvitationHandler = invitationCommands.NewCancelInvitationHandler(r.Invitations, r.Outbox, uow)
	c.InviteCommunityHandler = invitationCommands.NewInviteCommunityHandler(
		r.Invitations, r.Meetings, r.Members, r.Outbox, uow, c.Logger,
	)
	c.ReconcileRosterHandler = invitationCommands.NewReconcileRosterHandler(r.Invitations, r.Meetings, uow, c.Logger)
	c.GetInvitationHandler = invitationQueries.NewGetInvitationHandler(r.Invitations)
	c.ListInvitationsHandler = invitationQueries.NewListInvitationsHandler(r.Invitations, r.Meetings)

	c.Reporter = reporting.NewReporter(r.Invitations, r.Meetings, r.Members, r.Counts, c.Config.ReportLocation())
}

// Close cleans up all resources in reverse order of creation.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	if err := errors.Join(errs...); err != nil {
		c.Logger.Warn("error while closing container", "error", err)
	}
}
