package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/clouddemo/internal/client/client"
	"github.com/dmitrijs2005/clouddemo/internal/client/models"
)

// FunctionService invokes the demo serverless function.
type FunctionService interface {
	Invoke(ctx context.Context) (models.FunctionResult, error)
}

type functionService struct {
	functions client.Functions
	sessions  SessionSource
	name      string
}

func NewFunctionService(functions client.Functions, sessions SessionSource, name string) FunctionService {
	return &functionService{functions: functions, sessions: sessions, name: name}
}

// Invoke calls the function as the signed-in user, or anonymously when no
// session is available.
func (s *functionService) Invoke(ctx context.Context) (models.FunctionResult, error) {
	var token string
	if s.sessions != nil {
		sess, err := s.sessions.Current(ctx)
		switch {
		case err == nil:
			token = sess.AccessToken
		case !errors.Is(err, ErrNotAuthenticated):
			return models.FunctionResult{}, err
		}
	}
	return s.functions.Invoke(ctx, token, s.name, nil)
}
