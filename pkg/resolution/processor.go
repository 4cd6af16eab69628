// Package resolution orchestrates a full consolidation run: clustering,
// survivorship, golden record assembly, and dataset scoring
package resolution

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"

	"github.com/Ramsey-B/dahlia/pkg/clustering"
	"github.com/Ramsey-B/dahlia/pkg/golden"
	"github.com/Ramsey-B/dahlia/pkg/models"
	"github.com/Ramsey-B/dahlia/pkg/quality"
	"github.com/Ramsey-B/dahlia/pkg/survivorship"
	"github.com/Ramsey-B/dahlia/pkg/tracing"
)

var validate = validator.New()

// Config is the full configuration for one run
type Config struct {
	Clustering clustering.Config `json:"clustering"`
	// FieldTypes may be left empty; it is then derived from the first
	// record's columns via name heuristics
	FieldTypes   models.FieldTypeConfig    `json:"field_types"`
	Survivorship models.SurvivorshipConfig `json:"survivorship"`
	// Thresholds falls back to DefaultScoreThresholds when zero
	Thresholds models.ScoreThresholds `json:"thresholds"`
	// Workers bounds concurrent cluster resolution; below 1 uses the default
	Workers int `json:"workers,omitempty"`
}

// Result is everything one run produces
type Result struct {
	Clusters       []models.Cluster            `json:"clusters"`
	GoldenRecords  []models.GoldenRecord       `json:"golden_records"`
	ResolvedFields []models.ResolvedField      `json:"resolved_fields"`
	Report         models.DatasetQualityReport `json:"report"`
}

// Processor runs the consolidation pipeline over an in-memory record set.
// It never mutates the input records.
type Processor struct {
	logger ectologger.Logger
	cfg    Config
}

// NewProcessor creates a resolution processor
func NewProcessor(logger ectologger.Logger, cfg Config) *Processor {
	return &Processor{
		logger: logger,
		cfg:    cfg,
	}
}

// Resolve executes one run. All configuration is validated before any
// clustering begins; a run either fails as a structured rejection or
// produces complete output. Per-cluster anomalies never abort the batch.
func (p *Processor) Resolve(ctx context.Context, records []models.Record) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "resolution.Processor.Resolve")
	defer span.End()

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"record_count": len(records),
		"mode":         string(p.cfg.Clustering.Mode),
	})

	fieldCfg := p.fieldConfig(records)
	thresholds := p.thresholds()

	if err := p.validateConfig(fieldCfg, thresholds); err != nil {
		log.WithError(err).Error("Rejecting run on invalid configuration")
		return nil, err
	}

	// Construction compiles format overrides, so a bad regex is caught here
	survivorEngine, err := survivorship.NewEngine(p.logger, p.cfg.Survivorship, fieldCfg)
	if err != nil {
		log.WithError(err).Error("Rejecting run on invalid survivorship configuration")
		return nil, err
	}

	clusters, err := clustering.NewEngine(p.logger, p.cfg.Clustering).Cluster(ctx, records, fieldCfg)
	if err != nil {
		return nil, err
	}

	assembler := golden.NewAssembler(p.logger, survivorEngine, p.cfg.Workers)
	goldens, resolved := assembler.Assemble(ctx, clusters, records)

	report := quality.NewScorer(p.logger, thresholds).Report(len(records), goldens, resolved)

	log.WithFields(map[string]any{
		"cluster_count":  len(clusters),
		"golden_records": len(goldens),
		"conflict_count": len(resolved),
		"overall_score":  report.OverallScore,
	}).Info("Resolution run complete")

	return &Result{
		Clusters:       clusters,
		GoldenRecords:  goldens,
		ResolvedFields: resolved,
		Report:         report,
	}, nil
}

// fieldConfig returns the configured field types, deriving them from the
// record columns when the caller supplied none
func (p *Processor) fieldConfig(records []models.Record) models.FieldTypeConfig {
	if len(p.cfg.FieldTypes.Fields) > 0 {
		return p.cfg.FieldTypes
	}
	if len(records) == 0 {
		return models.FieldTypeConfig{Fields: map[string]models.FieldConfig{}}
	}
	derived := models.DeriveFieldTypeConfig(records[0].Columns)
	p.logger.WithFields(map[string]any{
		"column_count": len(derived.Fields),
	}).Debug("Derived field type config from column names")
	return derived
}

func (p *Processor) thresholds() models.ScoreThresholds {
	if p.cfg.Thresholds == (models.ScoreThresholds{}) {
		return models.DefaultScoreThresholds()
	}
	return p.cfg.Thresholds
}

// validateConfig applies structural tag validation plus the domain checks
// the tags cannot express
func (p *Processor) validateConfig(fieldCfg models.FieldTypeConfig, thresholds models.ScoreThresholds) error {
	if err := validate.Struct(p.cfg.Clustering); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid clustering config: %v", err))
	}
	if err := validate.Struct(thresholds); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid score thresholds: %v", err))
	}
	if thresholds.Good > thresholds.Excellent {
		return httperror.NewHTTPError(http.StatusBadRequest, "good threshold cannot exceed excellent threshold")
	}
	for col, fc := range fieldCfg.Fields {
		if fc.Weight < 0 {
			return httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("negative weight for column %q", col))
		}
		if !knownFieldType(fc.Type) {
			return httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown field type %q for column %q", fc.Type, col))
		}
	}
	return p.cfg.Clustering.Validate(fieldCfg)
}

func knownFieldType(ft models.FieldType) bool {
	switch ft {
	case "", models.FieldTypeName, models.FieldTypeEmail, models.FieldTypePhone,
		models.FieldTypeAddress, models.FieldTypeDate, models.FieldTypeZip, models.FieldTypeText:
		return true
	default:
		return false
	}
}
