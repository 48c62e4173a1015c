package main

import (
	"flag"
	"strconv"
	"time"

	"tradeauto/internal/controllers"
	"tradeauto/internal/repository"
	mongorepo "tradeauto/internal/repository/mongo"
	"tradeauto/internal/repository/postgres"
	"tradeauto/internal/repository/sqlite"
	"tradeauto/internal/usecasees"

	apihttp "tradeauto/internal/api/http"

	"github.com/gofiber/fiber/v2"
)

func main() {
	var app App
	var confFileName, dbFileName string

	flag.StringVar(&confFileName, "config", ".env", "")
	flag.StringVar(&dbFileName, "db", "./store.db", "")
	flag.Parse()

	if err := app.loadConfig(confFileName); err != nil {
		panic(err)
	}

	app.initLogger()

	if app.Config.LokiAddr != "" {
		if err := app.initLoki(); err != nil {
			app.Logger.Error(err)
		}
	}

	if app.Config.TelegramApiToken != "" {
		if err := app.initTgBot(); err != nil {
			panic(err)
		}
	}

	if err := app.initSqlite(dbFileName); err != nil {
		panic(err)
	}

	app.initHTTPClient()
	app.InitMetrics()

	stateRepo, err := app.initStateRepo()
	if err != nil {
		panic(err)
	}

	execLogRepo, err := app.initExecLogRepo()
	if err != nil {
		panic(err)
	}

	if err := app.initCron(stateRepo); err != nil {
		panic(err)
	}

	brokerClient := controllers.NewClientController(
		app.HTTPClient,
		2,
		500*time.Millisecond,
		app.Logger,
	)
	// Publisher attempts are counted by the use case itself, so its
	// client does not retry.
	publisherClient := controllers.NewClientController(
		app.HTTPClient,
		0,
		0,
		app.Logger,
	)
	cryptoController := controllers.NewCryptoController(
		app.Config.WebhookHmacSecret,
		app.Config.WebhookSharedSecret,
	)

	var tgmController controllers.TgmCtrl
	if app.TGM != nil {
		chatId, err := strconv.ParseInt(app.Config.TelegramChatID, 10, 64)
		if err != nil {
			panic(err)
		}

		tgmController = controllers.NewTgmController(app.TGM, chatId)
	}

	guardrailUseCase := usecasees.NewGuardrailUseCase(
		stateRepo,
		usecasees.GuardrailConfig{
			DebounceSeconds:    app.Config.DebounceSeconds,
			MinIntervalSeconds: app.Config.MinIntervalSeconds,
			MaxTradesPerDay:    app.Config.MaxTradesPerDay,
			DailyCapPerSymbol:  app.Config.DailyCapScope == dailyCapScopeSymbol,
			FailOpen:           app.Config.GuardrailFailOpen,
		},
		app.Logger,
	)

	brokerUseCase := usecasees.NewBrokerUseCase(
		brokerClient,
		app.Config.BrokerUrl,
		app.Config.BrokerDataUrl,
		app.Config.BrokerApiKey,
		app.Config.BrokerSecretKey,
		app.Logger,
	)

	publisherUseCase := usecasees.NewPublisherUseCase(
		publisherClient,
		app.Config.EventBusUrl,
		app.Config.DownstreamInvokeUrl,
		time.Second,
		app.Metrics.Pipeline,
		app.Logger,
	)

	executorUseCase := usecasees.NewExecutorUseCase(
		guardrailUseCase,
		brokerUseCase,
		publisherUseCase,
		cryptoController,
		tgmController,
		execLogRepo,
		usecasees.ExecutorConfig{
			AutoExecute:   app.Config.AutoExecute,
			MinConfidence: app.Config.MinConfidence,
		},
		app.Metrics.Pipeline,
		app.Logger,
	)

	app.Fiber = fiber.New()

	middleware := apihttp.NewMiddleware(app.Fiber, app.Config.AppName)
	middleware.UseMetrics()

	apihttp.RegisterHTTPEndpoints(app.Fiber, executorUseCase, execLogRepo, app.Logger)

	app.Logger.Infof("listening on %s", app.Config.ListenAddr)

	if err := app.Fiber.Listen(app.Config.ListenAddr); err != nil {
		panic(err)
	}
}

func (a *App) initStateRepo() (repository.StateRepo, error) {
	if a.Config.StateBackend == stateBackendPostgres {
		if err := a.initPostgres(a.Config.DB); err != nil {
			return nil, err
		}

		repo := postgres.NewStateRepository(a.PG)
		if err := repo.Migrate(); err != nil {
			return nil, err
		}

		return repo, nil
	}

	repo := sqlite.NewStateRepository(a.DB)
	if err := repo.Migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

func (a *App) initExecLogRepo() (repository.ExecLogRepo, error) {
	if a.Config.AuditBackend == auditBackendMongo {
		if err := a.initMongo(); err != nil {
			return nil, err
		}

		return mongorepo.NewExecLogRepository(a.Mongo), nil
	}

	repo := sqlite.NewExecLogRepository(a.DB)
	if err := repo.Migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}
