package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"aitools/internal/domain"
	"aitools/internal/infra/config"
)

var _ domain.LLMProvider = (*BedrockProvider)(nil)

const (
	defaultBedrockRegion    = "us-east-1"
	defaultBedrockMaxTokens = 4096
)

// converser is the slice of the Bedrock runtime client the provider calls.
type converser interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockProvider serves chat through the Bedrock Converse API.
type BedrockProvider struct {
	name      string
	model     string
	maxTokens int
	client    converser
	logger    *slog.Logger
}

// NewBedrockProvider resolves credentials through the default AWS chain.
func NewBedrockProvider(cfg config.ProviderConfig, logger *slog.Logger) (*BedrockProvider, error) {
	region := cfg.Region
	if region == "" {
		region = defaultBedrockRegion
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithHTTPClient(NewHTTPClient(cfg)),
		awsconfig.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &BedrockProvider{
		name:      cfg.Name,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client:    bedrockruntime.NewFromConfig(awsCfg),
		logger:    logger,
	}, nil
}

// Chat implements domain.LLMProvider.
func (p *BedrockProvider) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	req = withDefaults(req, p.model, p.maxTokens)
	ctx, call := beginChat(ctx, p.logger, p.name, req)

	out, err := p.client.Converse(ctx, converseInput(req))
	if err != nil {
		return call.fail(mapBedrockError(err))
	}
	return call.done(converseResponse(out, req.Model))
}

// Name implements domain.LLMProvider.
func (p *BedrockProvider) Name() string { return p.name }

func converseInput(req domain.ChatRequest) *bedrockruntime.ConverseInput {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultBedrockMaxTokens
	}
	in := &bedrockruntime.ConverseInput{
		ModelId:         aws.String(req.Model),
		InferenceConfig: &types.InferenceConfiguration{MaxTokens: aws.Int32(int32(maxTokens))},
	}
	if req.Temperature > 0 {
		in.InferenceConfig.Temperature = aws.Float32(float32(req.Temperature))
	}

	system, turns := conversation(req)
	for _, text := range system {
		in.System = append(in.System, &types.SystemContentBlockMemberText{Value: text})
	}
	for _, t := range turns {
		role := types.ConversationRoleUser
		if t.role == domain.RoleAssistant {
			role = types.ConversationRoleAssistant
		}
		blocks := make([]types.ContentBlock, 0, len(t.texts))
		for _, text := range t.texts {
			blocks = append(blocks, &types.ContentBlockMemberText{Value: text})
		}
		in.Messages = append(in.Messages, types.Message{Role: role, Content: blocks})
	}
	return in
}

func converseResponse(out *bedrockruntime.ConverseOutput, model string) *domain.ChatResponse {
	now := time.Now()
	resp := &domain.ChatResponse{
		Model:     model,
		Message:   domain.Message{Role: domain.RoleAssistant, Timestamp: now},
		CreatedAt: now,
	}
	if u := out.Usage; u != nil {
		in, outTokens := int(aws.ToInt32(u.InputTokens)), int(aws.ToInt32(u.OutputTokens))
		resp.Usage = domain.Usage{PromptTokens: in, CompletionTokens: outTokens, TotalTokens: in + outTokens}
	}
	if msg, ok := out.Output.(*types.ConverseOutputMemberMessage); ok {
		var text strings.Builder
		for _, block := range msg.Value.Content {
			if b, ok := block.(*types.ContentBlockMemberText); ok {
				text.WriteString(b.Value)
			}
		}
		resp.Message.Content = text.String()
	}
	return resp
}

// bedrockSentinels classifies Bedrock exception codes.
var bedrockSentinels = map[string]error{
	"ThrottlingException":         domain.ErrRateLimit,
	"TooManyRequestsException":    domain.ErrRateLimit,
	"AccessDeniedException":       domain.ErrAuthInvalid,
	"UnrecognizedClientException": domain.ErrAuthInvalid,
	"ValidationException":         domain.ErrInvalidInput,
	"ModelNotReadyException":      domain.ErrProviderError,
	"ModelTimeoutException":       domain.ErrProviderError,
	"ServiceUnavailableException": domain.ErrProviderError,
	"InternalServerException":     domain.ErrProviderError,
}

func mapBedrockError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if sentinel, ok := bedrockSentinels[apiErr.ErrorCode()]; ok {
			return fmt.Errorf("%w: %s", sentinel, apiErr.Error())
		}
		if apiErr.ErrorFault() == smithy.FaultServer {
			return fmt.Errorf("%w: %s", domain.ErrProviderError, apiErr.Error())
		}
	}
	return domain.WrapOp("bedrock", err)
}
