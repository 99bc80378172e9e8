package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Logger is the subset of logger.Logger the job error handler needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// JobErrorHandler resolves a failed job either by failing it with retries
// (retryable infrastructure errors) or by throwing a BPMN error the process can catch.
type JobErrorHandler struct {
	logger Logger
}

func NewJobErrorHandler(logger Logger) *JobErrorHandler {
	return &JobErrorHandler{logger: logger}
}

// retryBudget is how many retries a retryable code may consume.
var retryBudget = map[ErrorCode]int{
	ErrCodeContactReadFailed:  3,
	ErrCodeContactWriteFailed: 3,
	ErrCodeSessionStoreFailed: 2,
}

// RetryCount returns the retry budget for a code; zero means throw immediately.
func RetryCount(code ErrorCode) int {
	return retryBudget[code]
}

// Variables returns the error variables attached to failed or thrown jobs.
func (e *StandardError) Variables() map[string]interface{} {
	return map[string]interface{}{
		"errorCode":    string(e.Code),
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
}

func (h *JobErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := Normalize(err)
	retries := RetryCount(stdErr.Code)

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"jobType":            job.GetType(),
		"errorCode":          string(stdErr.Code),
		"details":            stdErr.Details,
		"retryable":          stdErr.Retryable,
		"retries":            retries,
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	if stdErr.Retryable && retries > 0 && job.GetRetries() > 0 {
		if int(job.GetRetries()) < retries {
			retries = int(job.GetRetries())
		}
		cmd := client.NewFailJobCommand().
			JobKey(job.GetKey()).
			Retries(int32(retries - 1)).
			ErrorMessage(stdErr.Error())
		if withVars, varErr := cmd.VariablesFromMap(stdErr.Variables()); varErr == nil {
			_, _ = withVars.Send(ctx)
			return
		}
		_, _ = cmd.Send(ctx)
		return
	}

	cmd := client.NewThrowErrorCommand().
		JobKey(job.GetKey()).
		ErrorCode(string(stdErr.Code)).
		ErrorMessage(stdErr.Message)
	if varsJSON, marshalErr := json.Marshal(stdErr.Variables()); marshalErr == nil {
		if withVars, varErr := cmd.VariablesFromString(string(varsJSON)); varErr == nil {
			_, _ = withVars.Send(ctx)
			return
		}
	}
	_, _ = cmd.Send(ctx)
}
