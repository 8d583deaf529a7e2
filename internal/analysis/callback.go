package analysis

import (
	"context"

	"github.com/cloudwego/eino/callbacks"
	ecmodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

// modelCallback mirrors chain execution into the run log, including
// the token usage the completion reports.
type modelCallback struct {
	callbacks.HandlerBuilder

	log *zap.Logger
}

func newModelCallback(log *zap.Logger) *modelCallback {
	return &modelCallback{log: log}
}

func (cb *modelCallback) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if info == nil {
		return ctx
	}
	cb.log.Debug("chain node started",
		zap.String("name", info.Name),
		zap.Any("component", info.Component))
	return ctx
}

func (cb *modelCallback) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	msg := messageFromOutput(output)
	if msg == nil {
		return ctx
	}

	fields := []zap.Field{zap.Int("content_chars", len(msg.Content))}
	if msg.ResponseMeta != nil {
		fields = append(fields, zap.String("finish_reason", msg.ResponseMeta.FinishReason))
		if msg.ResponseMeta.Usage != nil {
			fields = append(fields,
				zap.Int("prompt_tokens", msg.ResponseMeta.Usage.PromptTokens),
				zap.Int("completion_tokens", msg.ResponseMeta.Usage.CompletionTokens),
				zap.Int("total_tokens", msg.ResponseMeta.Usage.TotalTokens))
		}
	}
	cb.log.Info("chat completion finished", fields...)
	return ctx
}

func (cb *modelCallback) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	cb.log.Warn("chain node failed", zap.Error(err))
	return ctx
}

// The chain is invoked, never streamed, so the stream hooks only
// release their readers.
func (cb *modelCallback) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo,
	input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	defer input.Close()
	return ctx
}

func (cb *modelCallback) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo,
	output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	defer output.Close()
	return ctx
}

func messageFromOutput(output callbacks.CallbackOutput) *schema.Message {
	switch v := output.(type) {
	case *schema.Message:
		return v
	case *ecmodel.CallbackOutput:
		return v.Message
	default:
		return nil
	}
}
