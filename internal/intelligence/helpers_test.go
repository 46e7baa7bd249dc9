package intelligence

import (
	"context"

	"github.com/capitalize-ai/assistant-intelligence/internal/llm"
	"github.com/capitalize-ai/assistant-intelligence/internal/model"
)

// fakeClient is a scripted completion client. A non-nil err fails every call.
type fakeClient struct {
	response    string
	err         error
	calls       int
	lastPrompt  string
	lastVariant llm.Variant
}

func (f *fakeClient) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.calls++
	f.lastPrompt = req.Prompt
	f.lastVariant = req.Variant
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.response, Model: "fake-model"}, nil
}

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) ModelFor(v llm.Variant) string { return "fake-model" }

func userMsg(content string) model.Message {
	return model.Message{Role: model.RoleUser, Content: content}
}

func assistantMsg(content string) model.Message {
	return model.Message{Role: model.RoleAssistant, Content: content}
}
