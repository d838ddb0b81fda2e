package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitools/internal/domain"
)

type fakeConverser struct {
	got *bedrockruntime.ConverseInput
	out *bedrockruntime.ConverseOutput
	err error
}

func (f *fakeConverser) Converse(_ context.Context, in *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.got = in
	return f.out, f.err
}

func bedrockWith(c converser) *BedrockProvider {
	return &BedrockProvider{name: "aws", model: "anthropic.claude-3-5-sonnet", client: c, logger: newTestLogger()}
}

func TestBedrockSummarizes(t *testing.T) {
	fake := &fakeConverser{out: &bedrockruntime.ConverseOutput{
		Output: &types.ConverseOutputMemberMessage{Value: types.Message{
			Role: types.ConversationRoleAssistant,
			Content: []types.ContentBlock{
				&types.ContentBlockMemberText{Value: "Short "},
				&types.ContentBlockMemberText{Value: "summary."},
			},
		}},
		Usage: &types.TokenUsage{InputTokens: aws.Int32(40), OutputTokens: aws.Int32(6)},
	}}
	p := bedrockWith(fake)

	resp, err := p.Chat(context.Background(), domain.ChatRequest{Messages: []domain.Message{
		{Role: domain.RoleSystem, Content: "Summarize in one sentence."},
		{Role: domain.RoleUser, Content: "A long article."},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Short summary.", resp.Message.Content)
	assert.Equal(t, 46, resp.Usage.TotalTokens)
	assert.Equal(t, "anthropic.claude-3-5-sonnet", resp.Model)
	assert.Equal(t, "aws", p.Name())

	require.NotNil(t, fake.got)
	assert.Equal(t, "anthropic.claude-3-5-sonnet", aws.ToString(fake.got.ModelId))
	assert.Len(t, fake.got.System, 1)
	assert.Len(t, fake.got.Messages, 1)
	assert.Equal(t, int32(defaultBedrockMaxTokens), aws.ToInt32(fake.got.InferenceConfig.MaxTokens))
}

func TestConverseInputMergesTurns(t *testing.T) {
	in := converseInput(domain.ChatRequest{
		Model:       "m",
		Temperature: 0.5,
		MaxTokens:   300,
		Messages: []domain.Message{
			{Role: domain.RoleAssistant, Content: "How can I help?"},
			{Role: domain.RoleUser, Content: "one"},
			{Role: domain.RoleUser, Content: "two"},
			{Role: domain.RoleAssistant, Content: "reply"},
		},
	})

	require.Len(t, in.Messages, 2)
	assert.Equal(t, types.ConversationRoleUser, in.Messages[0].Role)
	assert.Len(t, in.Messages[0].Content, 2)
	assert.Equal(t, types.ConversationRoleAssistant, in.Messages[1].Role)
	assert.Equal(t, float32(0.5), aws.ToFloat32(in.InferenceConfig.Temperature))
	assert.Equal(t, int32(300), aws.ToInt32(in.InferenceConfig.MaxTokens))
}

func TestBedrockErrorClassification(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{&smithy.GenericAPIError{Code: "ThrottlingException"}, domain.ErrRateLimit},
		{&smithy.GenericAPIError{Code: "AccessDeniedException"}, domain.ErrAuthInvalid},
		{&smithy.GenericAPIError{Code: "ValidationException"}, domain.ErrInvalidInput},
		{&smithy.GenericAPIError{Code: "ModelTimeoutException"}, domain.ErrProviderError},
		{&smithy.GenericAPIError{Code: "SomethingNew", Fault: smithy.FaultServer}, domain.ErrProviderError},
	}
	for _, tt := range tests {
		_, err := bedrockWith(&fakeConverser{err: tt.err}).Chat(context.Background(), domain.ChatRequest{})
		assert.ErrorIs(t, err, tt.want, tt.err.Error())
	}
}

func TestBedrockTransportErrorKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	_, err := bedrockWith(&fakeConverser{err: cause}).Chat(context.Background(), domain.ChatRequest{})
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "bedrock: dial tcp: connection refused", err.Error())
}
