package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/billminder/pkg/billapi"
	"github.com/mmynk/billminder/pkg/billapi/billapiconnect"
)

// Chatter answers a natural-language message, calling tools as needed.
type Chatter interface {
	Run(ctx context.Context, message string) (string, error)
}

var _ billapiconnect.AgentServiceHandler = (*AgentService)(nil)

// AgentService implements the Connect AgentService.
type AgentService struct {
	agent Chatter
}

// NewAgentService creates an AgentService backed by agent.
func NewAgentService(agent Chatter) *AgentService {
	return &AgentService{agent: agent}
}

// Chat forwards the message to the agent.
func (s *AgentService) Chat(ctx context.Context, req *connect.Request[billapi.ChatRequest]) (*connect.Response[billapi.ChatResponse], error) {
	message := strings.TrimSpace(req.Msg.Message)
	if message == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("message is required"))
	}
	slog.Info("Chat request received", "chars", len(message))

	reply, err := s.agent.Run(ctx, message)
	if err != nil {
		slog.Error("Chat failed", "error", err)
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}
	return connect.NewResponse(&billapi.ChatResponse{Response: reply}), nil
}
