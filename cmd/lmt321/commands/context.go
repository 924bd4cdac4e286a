package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/lmt321/lmt321/internal/config"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env    string
	Cfg    *config.Config
	Logger *zap.Logger
	Ctx    context.Context
}
