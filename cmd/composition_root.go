package cmd

import (
	"log/slog"
	"os"
	"strings"

	"exchange/internal/adapters/in/http"
	"exchange/internal/adapters/out/memlock"
	"exchange/internal/adapters/out/orderevents"
	"exchange/internal/adapters/out/postgres"
	"exchange/internal/core/application/usecases/commands"
	"exchange/internal/core/application/usecases/queries"
	"exchange/internal/core/domain/model/order"
	"exchange/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	locker     *memlock.OrderLocker
	publisher  *orderevents.KafkaPublisher
	logger     *slog.Logger
}

func NewCompositionRoot(configs Config, gormDB *gorm.DB) CompositionRoot {
	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		locker:     memlock.NewOrderLocker(),
		publisher: orderevents.NewKafkaPublisher(
			strings.Split(configs.KafkaHost, ","),
			configs.KafkaOrderChangedTopic,
			configs.KafkaOrderReminderTopic,
		),
		logger: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f)
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewTransitionOrderCommandHandler(c.locker, f)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrdersByStateQueryHandler() queries.GetOrdersByStateQueryHandler {
	return queries.NewGetOrdersByStateQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *http.Server {
	return http.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreateTransitionOrderCommandHandler(),
		c.CreateGetOrderQueryHandler(),
		c.CreateGetOrdersByStateQueryHandler(),
		c.publisher,
	)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	// The unit of work runs on the main connection until Begin is called,
	// so a fresh uow doubles as a plain read-side repository.
	reader := c.uowFactory.Create().OrderRepository()

	stateExpirationJob := jobs.NewStateExpirationJob(
		reader,
		c.CreateTransitionOrderCommandHandler(),
		commands.StateChangedFollowUp(c.publisher),
		c.logger,
	)
	expirationReminderJob := jobs.NewExpirationReminderJob(
		reader,
		c.publisher,
		order.DefaultReminderLead,
		c.logger,
	)
	return jobs.NewJobManager(stateExpirationJob, expirationReminderJob)
}

func (c *CompositionRoot) Logger() *slog.Logger {
	return c.logger
}

func (c *CompositionRoot) Close() error {
	return c.publisher.Close()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
