package panels

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/clouddemo/internal/client/models"
	"github.com/dmitrijs2005/clouddemo/internal/client/services"
)

const defaultFunctionError = "Failed to call edge function"

// FunctionPanel invokes the demo function and shows either its result or
// the error, never both.
type FunctionPanel struct {
	lifecycle
	functions services.FunctionService
	notify    Notifier

	mu     sync.Mutex
	result *models.FunctionResult
	errMsg string
}

func NewFunctionPanel(functions services.FunctionService, notify Notifier) *FunctionPanel {
	return &FunctionPanel{functions: functions, notify: notify}
}

func (p *FunctionPanel) Mount(ctx context.Context) {
	p.start(ctx)
	p.mu.Lock()
	p.result, p.errMsg = nil, ""
	p.mu.Unlock()
}

func (p *FunctionPanel) Unmount() {
	p.stop()
}

// Outcome returns the last result or error message; at most one is set.
func (p *FunctionPanel) Outcome() (*models.FunctionResult, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result, p.errMsg
}

// Invoke calls the function. The previous outcome is cleared first.
func (p *FunctionPanel) Invoke(ctx context.Context) error {
	o, err := p.begin(ctx)
	if err != nil {
		return err
	}
	defer o.done()

	p.mu.Lock()
	p.result, p.errMsg = nil, ""
	p.mu.Unlock()

	res, err := p.functions.Invoke(o.ctx)
	if !o.live() {
		return context.Canceled
	}

	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = defaultFunctionError
		}
		p.mu.Lock()
		p.errMsg = msg
		p.mu.Unlock()
		failure(p.notify, "Edge function call failed")
		return err
	}
	p.mu.Lock()
	p.result = &res
	p.mu.Unlock()
	success(p.notify, "Edge function responded!")
	return nil
}
