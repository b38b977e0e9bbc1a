package bootstrap

import (
	infraerrors "github.com/visiona/review-classifier/infrastructure/errors"
	infralogger "github.com/visiona/review-classifier/infrastructure/logger"
	"github.com/visiona/review-classifier/internal/classifier"
	"github.com/visiona/review-classifier/internal/config"
	"github.com/visiona/review-classifier/internal/llm"
	"github.com/visiona/review-classifier/internal/telemetry"
)

// SetupClassifier builds the remote backend selected by cfg.LLM and the
// classifier around it. Provider "none" leaves only the local rules.
func SetupClassifier(cfg *config.Config, log infralogger.Logger, tp *telemetry.Provider) (*classifier.Classifier, error) {
	gen, err := llm.New(cfg.LLM.Generator())
	if err != nil {
		return nil, infraerrors.WrapWithContext(err, "create llm backend")
	}

	if gen == nil {
		log.Info("Remote classifier disabled, using local rules only")
	} else {
		log.Info("Remote classifier initialized",
			infralogger.String("provider", gen.Name()),
			infralogger.Duration("timeout", cfg.LLM.Timeout),
		)
	}

	return classifier.New(gen, classifier.Config{Timeout: cfg.LLM.Timeout}, log, tp), nil
}
