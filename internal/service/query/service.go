package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"goa.design/clue/log"

	"github.com/w-h-a/factfinder/internal/service/agent"
)

const agentFailurePrefix = "Agent execution failed: "

// ErrMalformedAnswer is returned when the agent finished but its final text
// is not a JSON object carrying answer_number and reasoning. It is not
// folded into the error envelope.
var ErrMalformedAnswer = errors.New("malformed agent answer")

// Runner runs the agent loop once for a question.
type Runner interface {
	Run(ctx context.Context, input string) (agent.Result, error)
}

type Service struct {
	runner Runner
	tracer trace.Tracer
}

// ProcessQuery answers question and returns the JSON envelope for id. Agent
// failures come back as the error envelope with a nil error; only a
// malformed final answer yields a non-nil error.
func (s *Service) ProcessQuery(ctx context.Context, question string, id any) (string, error) {
	ctx, span := s.tracer.Start(ctx, "ProcessQuery", trace.WithAttributes(
		attribute.String("query.id", idString(id)),
	))
	defer span.End()

	result, err := s.runner.Run(ctx, question)
	if err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "agent execution failed"}, log.KV{K: "id", V: id})
		span.SetStatus(codes.Error, err.Error())
		return Marshal(Failure{
			Id:    id,
			Error: agentFailurePrefix + err.Error(),
		})
	}

	sources := ExtractSources(result.Steps)

	answer, reasoning, err := parseAnswer(result.Output)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	log.Info(ctx,
		log.KV{K: "msg", V: "query answered"},
		log.KV{K: "id", V: id},
		log.KV{K: "steps", V: len(result.Steps)},
		log.KV{K: "sources", V: len(sources)},
	)

	return Marshal(Answer{
		Id:        id,
		Answer:    answer,
		Reasoning: reasoning,
		Sources:   sources,
	})
}

func idString(id any) string {
	if raw, ok := id.(json.RawMessage); ok {
		return string(raw)
	}
	return fmt.Sprint(id)
}

func parseAnswer(output string) (any, any, error) {
	dec := json.NewDecoder(strings.NewReader(output))
	dec.UseNumber()

	var parsed map[string]any
	if err := dec.Decode(&parsed); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedAnswer, err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: trailing data after object", ErrMalformedAnswer)
	}

	answer, ok := parsed["answer_number"]
	if !ok {
		return nil, nil, fmt.Errorf("%w: missing key %q", ErrMalformedAnswer, "answer_number")
	}

	reasoning, ok := parsed["reasoning"]
	if !ok {
		return nil, nil, fmt.Errorf("%w: missing key %q", ErrMalformedAnswer, "reasoning")
	}

	return answer, reasoning, nil
}

func New(runner Runner) *Service {
	if runner == nil {
		panic("runner is required")
	}

	return &Service{
		runner: runner,
		tracer: otel.Tracer("github.com/w-h-a/factfinder/internal/service/query"),
	}
}
