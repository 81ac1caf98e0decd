package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/koralabs/kora/internal/config"
	"github.com/koralabs/kora/internal/core"
	"github.com/koralabs/kora/internal/dispatcher"
	"github.com/koralabs/kora/internal/eventbus"
	"github.com/koralabs/kora/internal/logging"
	"github.com/koralabs/kora/internal/models"
)

// Application manages the complete application lifecycle
type Application struct {
	config     *config.Config
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	service    *core.ChatService
	logger     *zap.Logger
	model      *AppModel
}

func NewApplication() (*Application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger := logging.New()

	eb := eventbus.NewEventBus()
	disp := dispatcher.NewEventDispatcher(eb)

	// Initialize chat service (always create, handles invalid config internally)
	chatService, err := core.NewChatService(cfg, eb, logger)
	if err != nil {
		logger.Error("failed to initialize chat service", zap.Error(err))
		return nil, err
	}

	model := &AppModel{
		appModel:   createInitialAppModel(chatService),
		dispatcher: disp,
	}

	return &Application{
		config:     cfg,
		eventBus:   eb,
		dispatcher: disp,
		service:    chatService,
		logger:     logger,
		model:      model,
	}, nil
}

func (app *Application) Start() error {
	app.service.Start()

	app.logger.Info("starting chat UI",
		zap.String("profile", app.config.ActiveProfile),
		zap.String("model", app.config.GetModel()))

	p := tea.NewProgram(app.model)
	_, err := p.Run()

	return err
}

// Stop shuts the service down first (it waits for in-flight turns), then
// the dispatcher. The buffered bus channels are never closed; all readers
// exit via context cancellation.
func (app *Application) Stop() {
	app.service.Stop()
	app.dispatcher.Stop()
	_ = app.logger.Sync()
}

func createInitialAppModel(chatService *core.ChatService) models.AppModel {
	// No initial messages in UI - they come from core as single source of truth
	return models.AppModel{
		Messages:         make([]models.Message, 0),
		Status:           "Ready",
		Loading:          false,
		ChatServiceReady: chatService.IsReady(),
	}
}
