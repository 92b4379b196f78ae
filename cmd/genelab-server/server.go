package main

import (
	"github.com/daniacca/genelab/internal/content"
	"github.com/daniacca/genelab/internal/lab"
	"github.com/daniacca/genelab/internal/lab/notifiers"
)

// labLoggerAdapter adapts the server's Logger to the lab.Logger interface
type labLoggerAdapter struct {
	logger *Logger
}

func (a *labLoggerAdapter) Debugf(format string, v ...any) {
	a.logger.Debugf(format, v...)
}

func (a *labLoggerAdapter) Infof(format string, v ...any) {
	a.logger.Infof(format, v...)
}

func (a *labLoggerAdapter) Warnf(format string, v ...any) {
	a.logger.Warnf(format, v...)
}

func (a *labLoggerAdapter) Errorf(format string, v ...any) {
	a.logger.Errorf(format, v...)
}

const websocketNotifierID = "websocket"

// Server represents the HTTP server for the lab game
type Server struct {
	sessions    *lab.SessionManager
	catalog     *content.Catalog
	notifierMgr *lab.NotificationManager
	websocket   *notifiers.WebSocketNotifier
	rules       lab.Rules
	logger      *Logger
}

// NewServer wires sessions, content and event delivery. Every session
// publishes into the shared notification manager, which fans out to the
// websocket hub and any registered webhooks.
func NewServer(logger *Logger, catalog *content.Catalog, cfg lab.ControllerConfig) *Server {
	labLogger := &labLoggerAdapter{logger: logger}
	notifierMgr := lab.NewNotificationManagerWithLogger(labLogger)

	ws := notifiers.NewWebSocketNotifier(websocketNotifierID)
	if err := notifierMgr.RegisterNotifier(ws); err != nil {
		logger.Errorf("Failed to register websocket notifier: %v", err)
	}

	cfg.Logger = labLogger
	cfg.Events = notifierMgr
	cfg.Rules.LevelCap = clampLevelCap(logger, cfg.Rules.LevelCap, catalog)

	return &Server{
		sessions:    lab.NewSessionManager(catalog, cfg),
		catalog:     catalog,
		notifierMgr: notifierMgr,
		websocket:   ws,
		rules:       cfg.Rules,
		logger:      logger,
	}
}

// clampLevelCap keeps the configured cap within the largest level table.
// Sessions lower it again per mode.
func clampLevelCap(logger *Logger, levelCap int, catalog *content.Catalog) int {
	most := max(catalog.LevelCount(lab.PhaseGeneticModification), catalog.LevelCount(lab.PhaseDrugDiscovery))
	if most < 1 {
		return levelCap
	}
	if levelCap < 1 {
		return most
	}
	if levelCap > most {
		logger.Warnf("Level cap %d exceeds the %d levels in content, using %d", levelCap, most, most)
		return most
	}
	return levelCap
}

// RegisterProgressWebhook reports level completions and achievements to an
// external progress service.
func (s *Server) RegisterProgressWebhook(url string) error {
	wh := notifiers.NewWebhookNotifier("progress", url)
	wh.SetEvents(lab.EventLevelCompleted, lab.EventAchievementUnlocked)
	return s.notifierMgr.RegisterNotifier(wh)
}

// Close stops every session and then event delivery.
func (s *Server) Close() error {
	s.sessions.Close()
	return s.notifierMgr.Close()
}
