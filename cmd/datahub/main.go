package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	applicationengine "github.com/oronts/datahub/internal/application/engine"
	applicationgate "github.com/oronts/datahub/internal/application/gate"
	applicationhooks "github.com/oronts/datahub/internal/application/hooks"
	applicationrun "github.com/oronts/datahub/internal/application/run"
	"github.com/oronts/datahub/internal/domain/record"
	"github.com/oronts/datahub/internal/domain/recorderror"
	checkpointinfra "github.com/oronts/datahub/internal/infrastructure/checkpoint"
	configinfra "github.com/oronts/datahub/internal/infrastructure/config"
	eventsinfra "github.com/oronts/datahub/internal/infrastructure/events"
	idempotencyinfra "github.com/oronts/datahub/internal/infrastructure/idempotency"
	logginginfra "github.com/oronts/datahub/internal/infrastructure/logging"
	"github.com/oronts/datahub/internal/infrastructure/memstore"
	metricsinfra "github.com/oronts/datahub/internal/infrastructure/metrics"
	secretinfra "github.com/oronts/datahub/internal/infrastructure/secret"
)

func main() {
	// Boot events land here until the real charmbracelet/log logger exists,
	// then get replayed into it so nothing emitted before New() is lost.
	bootBuffer := logginginfra.NewEventBuffer(0)
	bootLogger := logginginfra.NewBufferedLogger(bootBuffer)

	correlationID := logginginfra.GenerateCorrelationID()
	ctx := logginginfra.WithCorrelationID(context.Background(), correlationID)

	checkpointPath := os.Getenv("DATAHUB_CHECKPOINT_PATH")
	if checkpointPath == "" {
		checkpointPath = "datahub-checkpoints.json"
	}
	bootLogger.Info(ctx, "resolved checkpoint path", "path", checkpointPath)

	checkpoints, err := checkpointinfra.NewFileStore(checkpointPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open checkpoint store: %v\n", err)
		os.Exit(1)
	}
	bootLogger.Info(ctx, "checkpoint store opened", "path", checkpointPath)

	appLogger, err := logginginfra.New(logginginfra.Options{
		Level:     "info",
		Component: "cli",
		Layer:     "infrastructure",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create application logger: %v\n", err)
		os.Exit(1)
	}
	bootBuffer.Flush(appLogger)

	configLoader := configinfra.NewYAMLLoader(appLogger.With("component", "yaml_loader"))
	eventPublisher := eventsinfra.NewLoggingPublisher(appLogger.With("component", "event_publisher"))
	metricsCollector := metricsinfra.NewPrometheusCollector(prometheus.NewRegistry())
	secretProvider := secretinfra.NewProvider()

	runStore := memstore.NewRunStore()
	consumerStore := memstore.NewConsumerStore()
	errorStore := memstore.NewRecordErrorStore()
	executorRegistry := memstore.NewExecutorRegistry()
	loaderRegistry := memstore.NewLoaderRegistry()

	hookService := applicationhooks.NewService()
	gateController := applicationgate.NewController()
	idempotencyFilter := idempotencyinfra.NewFilter()
	dispatcher := applicationengine.NewDispatcher(appLogger.With("component", "dispatcher"))
	topology := applicationengine.NewTopology()

	onRecordError := func(ctx context.Context, runID, stepKey string, rec record.Record, message, code string) {
		e := recorderror.New(logginginfra.GenerateCorrelationID(), runID, stepKey, message, code, rec, time.Now())
		if err := errorStore.Create(ctx, &e); err != nil {
			appLogger.Warn(ctx, "main: failed to quarantine record error", "run_id", runID, "step_key", stepKey, "error", err)
		}
		metricsCollector.IncCounter(ctx, "datahub_record_total", map[string]string{"step_type": stepKey, "outcome": "error"})
	}

	deps := applicationengine.OrchestratorDeps{
		Topology:          topology,
		Dispatcher:        dispatcher,
		Hooks:             hookService,
		Events:            eventPublisher,
		Executors:         executorRegistry,
		Loaders:           loaderRegistry,
		IdempotencyFilter: idempotencyFilter,
		Gate:              gateController,
		OnRecordError:     onRecordError,
		Logger:            appLogger.With("component", "orchestrator"),
	}

	runService := applicationrun.NewService(applicationrun.Dependencies{
		Runs:        runStore,
		Consumers:   consumerStore,
		Errors:      errorStore,
		Checkpoints: checkpoints,
		Configs:     configLoader,
		Events:      eventPublisher,
		Logger:      appLogger.With("component", "run_service"),
		Gate:        gateController,
		Graph:       applicationengine.NewGraphOrchestrator(deps),
		Linear:      applicationengine.NewLinearOrchestrator(deps),
	})

	app := &AppContext{
		Logger:  appLogger,
		Events:  eventPublisher,
		Metrics: metricsCollector,
		Secrets: secretProvider,
		Run:     runService,
	}

	rootCmd := newRootCmd(app)
	appLogger.Info(ctx, "starting datahub command", "pid", os.Getpid())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
