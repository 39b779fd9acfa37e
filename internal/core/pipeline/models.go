package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/medreport-summarizer/constants"
	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
	"github.com/joseph-ayodele/medreport-summarizer/internal/core/ner"
	"github.com/joseph-ayodele/medreport-summarizer/internal/core/summarize"
	"github.com/joseph-ayodele/medreport-summarizer/internal/llm"
	"github.com/joseph-ayodele/medreport-summarizer/internal/llm/openai"
)

// BuildModels loads the configured backends once. A backend that fails to
// load is replaced by llm.Unavailable so requests degrade instead of failing;
// only an unknown backend name is an error.
func BuildModels(cfg *common.Config, logger *slog.Logger) (*llm.Models, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &llm.Models{
		NERBackend:        cfg.Models.NERBackend,
		SummarizerBackend: cfg.Models.SummarizerBackend,
	}

	var client *openai.Client
	openAI := func() *openai.Client {
		if client == nil {
			client = openai.NewClient(openai.Config{
				APIKey:            cfg.LLM.APIKey,
				BaseURL:           cfg.LLM.BaseURL,
				Model:             cfg.LLM.Model,
				Temperature:       cfg.LLM.Temperature,
				Timeout:           cfg.LLM.Timeout,
				RequestsPerSecond: cfg.LLM.RequestsPerSecond,
				MaxSentences:      cfg.Pipeline.SummaryMaxSentences,
				LenientOptional:   true,
			}, logger)
			if !client.Configured() {
				logger.Warn("models.openai.no_api_key")
			}
		}
		return client
	}

	switch cfg.Models.NERBackend {
	case constants.BackendLexicon:
		lx, err := ner.LoadLexicon(cfg.Models.LexiconPath, logger)
		if err != nil {
			logger.Error("models.ner.load_failed", "backend", constants.BackendLexicon, "error", err)
			m.Recognizer = llm.Unavailable{Reason: err.Error()}
		} else {
			m.Recognizer = lx
		}
	case constants.BackendOpenAI:
		m.Recognizer = openAI()
	case constants.BackendNone:
		m.Recognizer = llm.Unavailable{Reason: "disabled"}
	default:
		return nil, fmt.Errorf("unknown NER backend %q", cfg.Models.NERBackend)
	}

	switch cfg.Models.SummarizerBackend {
	case constants.BackendLead:
		m.Summarizer = summarize.NewLead(cfg.Pipeline.SummaryMaxSentences)
	case constants.BackendOpenAI:
		m.Summarizer = openAI()
	case constants.BackendNone:
		m.Summarizer = llm.Unavailable{Reason: "disabled"}
	default:
		return nil, fmt.Errorf("unknown summarizer backend %q", cfg.Models.SummarizerBackend)
	}

	logger.Info("models.ready", "ner", m.NERBackend, "summarizer", m.SummarizerBackend)
	return m, nil
}
