package activities

import (
	"go.uber.org/zap"

	"github.com/sagikazarmark/workstate"
)

type Config struct {
	ScratchDir string
	// ClientOptions are passed through to every store resolution.
	ClientOptions workstate.Options
}

type Activities struct {
	cfg       Config
	loader    *workstate.Loader
	persister *workstate.Persister
	logger    *zap.Logger
}

func New(cfg Config, factory *workstate.Factory, logger *zap.Logger) *Activities {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Activities{
		cfg:       cfg,
		loader:    workstate.NewLoader(factory, workstate.WithClientOptions(cfg.ClientOptions)),
		persister: workstate.NewPersister(factory, workstate.WithClientOptions(cfg.ClientOptions)),
		logger:    logger,
	}
}
