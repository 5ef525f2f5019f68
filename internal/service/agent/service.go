package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"goa.design/clue/log"

	"github.com/w-h-a/factfinder/generator"
	toolhandler "github.com/w-h-a/factfinder/tool_handler"
)

const (
	// ExceptionTool names steps recorded for tool calls the loop could not
	// dispatch (unknown tool or unparsable arguments).
	ExceptionTool = "_Exception"

	defaultMaxIterations = 15
)

var ErrMaxIterations = errors.New("agent stopped due to iteration limit")

// Action is one tool invocation requested by the model.
type Action struct {
	Tool      string
	Kind      toolhandler.Kind
	Arguments map[string]any
	CallId    string
	Log       string
}

// Step pairs an action with what the tool returned.
type Step struct {
	Action      Action
	Observation toolhandler.ToolResponse
}

type Result struct {
	Output string
	Steps  []Step
}

type Service struct {
	generator     generator.Generator
	catalog       *ToolCatalog
	maxIterations int
	systemPrompt  string
	tracer        trace.Tracer
}

// Run drives the model until it answers without requesting tools. The
// returned Result carries every step taken, also when err is non-nil.
func (s *Service) Run(ctx context.Context, input string) (Result, error) {
	if len(strings.TrimSpace(input)) == 0 {
		return Result{}, errors.New("user input is required")
	}

	defs := s.catalog.Definitions()

	messages := []generator.Message{
		generator.SystemMessage(s.systemPrompt),
		generator.UserMessage(input),
	}

	var result Result

	for i := 1; i <= s.maxIterations; i++ {
		reply, err := s.generator.Chat(ctx, messages, generator.WithTools(defs...))
		if err != nil {
			return result, err
		}

		if len(reply.ToolCalls) == 0 {
			log.Debug(ctx, log.KV{K: "msg", V: "agent finished"}, log.KV{K: "iteration", V: i}, log.KV{K: "output", V: reply.Content})
			result.Output = reply.Content
			return result, nil
		}

		messages = append(messages, generator.AssistantMessage(reply))

		for _, call := range reply.ToolCalls {
			step, err := s.dispatch(ctx, call, reply.Content)
			if err != nil {
				return result, err
			}
			result.Steps = append(result.Steps, step)
			messages = append(messages, generator.ToolMessage(call, step.Observation.Content))
		}
	}

	return result, ErrMaxIterations
}

func (s *Service) dispatch(ctx context.Context, call generator.ToolCall, thought string) (Step, error) {
	th, spec, ok := s.catalog.Get(call.Name)
	if !ok {
		msg := fmt.Sprintf("%s is not a valid tool, try one of [%s].", call.Name, strings.Join(s.catalog.Names(), ", "))
		log.Debug(ctx, log.KV{K: "msg", V: "invalid tool"}, log.KV{K: "tool", V: call.Name})
		return exceptionStep(call, thought, msg), nil
	}

	args, err := parseToolArguments(call.Arguments)
	if err != nil {
		msg := fmt.Sprintf("Invalid Format: %v", err)
		log.Debug(ctx, log.KV{K: "msg", V: "invalid tool arguments"}, log.KV{K: "tool", V: spec.Name}, log.KV{K: "err", V: err.Error()})
		return exceptionStep(call, thought, msg), nil
	}

	ctx, span := s.tracer.Start(ctx, "tool."+spec.Name, trace.WithAttributes(
		attribute.String("tool.name", spec.Name),
		attribute.String("tool.kind", spec.Kind.String()),
	))
	defer span.End()

	log.Debug(ctx, log.KV{K: "msg", V: "invoking tool"}, log.KV{K: "tool", V: spec.Name}, log.KV{K: "args", V: call.Arguments})

	rsp, err := th.Invoke(ctx, toolhandler.ToolRequest{Arguments: args})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Step{}, err
	}

	log.Debug(ctx, log.KV{K: "msg", V: "tool returned"}, log.KV{K: "tool", V: spec.Name}, log.KV{K: "observation", V: rsp.Content})

	return Step{
		Action: Action{
			Tool:      spec.Name,
			Kind:      spec.Kind,
			Arguments: args,
			CallId:    call.Id,
			Log:       thought,
		},
		Observation: rsp,
	}, nil
}

func exceptionStep(call generator.ToolCall, thought string, msg string) Step {
	return Step{
		Action: Action{
			Tool:   ExceptionTool,
			CallId: call.Id,
			Log:    thought,
		},
		Observation: toolhandler.ToolResponse{Content: msg},
	}
}

// New panics when a tool cannot be registered, such as a duplicate name or a
// spec without a Kind. Nil handlers are skipped.
func New(
	generator generator.Generator,
	toolHandlers []toolhandler.ToolHandler,
	maxIterations int,
	systemPrompt string,
) *Service {
	if generator == nil {
		panic("generator is required")
	}

	catalog := NewToolCatalog()

	for _, th := range toolHandlers {
		if th == nil {
			continue
		}
		if err := catalog.Register(th); err != nil {
			panic(fmt.Sprintf("register tool: %v", err))
		}
	}

	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}

	if len(strings.TrimSpace(systemPrompt)) == 0 {
		systemPrompt = defaultSystemPrompt
	}

	return &Service{
		generator:     generator,
		catalog:       catalog,
		maxIterations: maxIterations,
		systemPrompt:  systemPrompt,
		tracer:        otel.Tracer("github.com/w-h-a/factfinder/internal/service/agent"),
	}
}
