// Package validatepartnerintake checks a stored contact against the questionnaire
// rules of its market so a process can decide whether follow-up is needed.
package validatepartnerintake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "partner-intake/internal/common/errors"
	"partner-intake/internal/common/logger"
	"partner-intake/internal/common/metrics"
	"partner-intake/internal/common/validation"
	"partner-intake/internal/intake"
	"partner-intake/internal/models"
)

const TaskType = "validate-partner-intake"

type ContactReader interface {
	Get(ctx context.Context, id string) (*models.Contact, error)
}

type Handler struct {
	config       *Config
	contacts     ContactReader
	markets      intake.MarketLookup
	translations intake.Translations
	errHandler   *apperrors.JobErrorHandler
	logger       logger.Logger
}

type HandlerOptions struct {
	Config       *Config
	Contacts     ContactReader
	Markets      intake.MarketLookup
	Translations intake.Translations
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Contacts == nil || opts.Markets == nil || opts.Translations == nil {
		return nil, fmt.Errorf("%s requires contacts, markets and translations", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		contacts:     opts.Contacts,
		markets:      opts.Markets,
		translations: opts.Translations,
		errHandler:   apperrors.NewJobErrorHandler(log),
		logger:       log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, apperrors.NewInputParsingFailedError(err)
	}

	result, err := validation.ValidateValue(inputSchema, variables)
	if err != nil {
		return nil, apperrors.NewInputParsingFailedError(err)
	}
	if !result.Valid {
		return nil, apperrors.NewInputParsingFailedError(errors.New(strings.Join(result.Messages(), "; ")))
	}

	return &Input{ContactID: variables["contactId"].(string)}, nil
}

// Execute evaluates every step of the contact's questionnaire. A contact that
// is not marked complete, or that misses any requirement, is reported incomplete.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	contact, err := h.contacts.Get(ctx, input.ContactID)
	if err != nil {
		return nil, err
	}
	market, err := h.markets.Get(ctx, contact.MarketType, contact.TargetMarket)
	if err != nil {
		return nil, err
	}

	tr := h.translations.For(market.Language)
	answers := intake.AnswersFromContact(*contact)

	out := &Output{
		ContactID:     input.ContactID,
		MarketType:    contact.MarketType,
		TargetMarket:  contact.TargetMarket,
		FormCompleted: contact.FormCompleted,
		Steps:         make([]StepResult, 0, intake.TotalSteps),
	}
	for step := 1; step <= intake.TotalSteps; step++ {
		reqs := intake.Resolve(step, contact.MarketType, contact.TargetMarket, answers, market, tr)
		missing := intake.Validate(reqs, answers, tr)
		if missing == nil {
			missing = []string{}
		}
		if len(missing) > 0 && out.FirstIncompleteStep == 0 {
			out.FirstIncompleteStep = step
		}
		out.Steps = append(out.Steps, StepResult{Step: step, Missing: missing})
	}
	out.IsComplete = contact.FormCompleted && out.FirstIncompleteStep == 0

	h.logger.Info("intake validated", map[string]interface{}{
		"contactId":           input.ContactID,
		"isComplete":          out.IsComplete,
		"firstIncompleteStep": out.FirstIncompleteStep,
	})
	return out, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err,
		})
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.CodeOf(err))).Inc()
	h.errHandler.HandleJobError(ctx, client, job, err)
}
