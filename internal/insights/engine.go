// Package insights runs full analysis passes over the generated corpus.
package insights

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/analysis"
	"github.com/hyperjump/kaiwa/internal/concepts"
	"github.com/hyperjump/kaiwa/internal/config"
	"github.com/hyperjump/kaiwa/internal/corpus"
)

// Engine parses the titles index and runs the concept analysis over it.
// Construction fixes the concept set; each Analyze call re-reads the index
// so new imports are picked up without restarting.
type Engine struct {
	indexPath string
	analyzer  *analysis.Analyzer
	logger    *zap.Logger
}

// NewEngine creates an engine reading the titles index at indexPath. The
// concept set comes from cfg.ConceptsFile when set, otherwise from
// cfg.Concepts; invalid patterns are dropped with a warning and an empty set
// falls back to the built-in defaults.
func NewEngine(indexPath string, cfg *config.Config, logger *zap.Logger) *Engine {
	cs := loadConcepts(cfg, logger)
	return &Engine{
		indexPath: indexPath,
		analyzer:  analysis.NewAnalyzer(cs, cfg.Analysis, logger),
		logger:    logger,
	}
}

// loadConcepts builds the concept set. A concepts file that cannot be read
// is logged and ignored rather than failing construction; the configured
// inline list (or the defaults) still apply.
func loadConcepts(cfg *config.Config, logger *zap.Logger) []concepts.Concept {
	if cfg.ConceptsFile != "" {
		content, err := os.ReadFile(cfg.ConceptsFile)
		if err == nil {
			return concepts.ParseDefinitions(string(content), logger)
		}
		if logger != nil {
			logger.Warn("concepts file unreadable, using configured concepts",
				zap.String("path", cfg.ConceptsFile), zap.Error(err))
		}
	}
	var cs []concepts.Concept
	for _, cc := range cfg.Concepts {
		c, err := concepts.New(cc.Name, cc.Pattern)
		if err != nil {
			if logger != nil {
				logger.Warn("dropping invalid concept pattern",
					zap.String("concept", cc.Name), zap.Error(err))
			}
			continue
		}
		cs = append(cs, c)
	}
	return cs
}

// Analyze parses the titles index and runs the full analysis pipeline.
// A missing or unreadable index is the one fatal condition.
func (e *Engine) Analyze(ctx context.Context) (*analysis.Result, error) {
	records, err := corpus.ParseIndexFile(e.indexPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.analyzer.Run(records), nil
}
