package quote

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dustsweep/dustnode/internal/pkg/model"
)

// ErrSimulationFailed distinguishes a failed transaction simulation from
// transport/API errors; the UI phrases the two differently.
var ErrSimulationFailed = errors.New("quote: simulation failed")

// Config carries the per-deployment aggregator parameters.
type Config struct {
	ChainID         uint64
	SlippagePercent float64
	ReferralCode    uint64
}

// Pipeline drives quote -> simulate -> assemble against the aggregator and
// tracks the sellable/unsellable partition across failed rounds so callers
// can resubmit the salvageable subset. A Pipeline models one selling
// session: a new CheckQuote supersedes whatever round came before it, so
// deployments serving multiple concurrent sessions need a Pipeline per
// session.
type Pipeline struct {
	client *Client
	cfg    Config

	mu           sync.Mutex
	status       model.PipelineStatus
	quote        *model.QuoteResponse
	execute      *model.ExecuteResponse
	errMsg       string
	userAddr     string
	receiveToken string
	submitted    []model.Token
	sellable     []model.Token
	unsellable   []string
}

func NewPipeline(client *Client, cfg Config) *Pipeline {
	return &Pipeline{client: client, cfg: cfg, status: model.StatusIdle}
}

// BuildQuoteRequest shapes one quote attempt: every input token's full raw
// balance in, the output tokens split evenly. A zero-length output list
// yields an empty slice rather than a division by zero.
func BuildQuoteRequest(cfg Config, userAddr string, tokens []model.Token, outputTokens []string) model.QuoteRequest {
	inputs := make([]model.QuoteInputToken, 0, len(tokens))
	for _, t := range tokens {
		amount := "0"
		if t.RawBalance != nil {
			amount = t.RawBalance.String()
		}
		inputs = append(inputs, model.QuoteInputToken{
			TokenAddress: model.NormalizeAddr(t.Address),
			Amount:       amount,
		})
	}

	outputs := make([]model.QuoteOutputToken, 0, len(outputTokens))
	if n := len(outputTokens); n > 0 {
		proportion := 1 / float64(n)
		for _, addr := range outputTokens {
			outputs = append(outputs, model.QuoteOutputToken{
				TokenAddress: model.NormalizeAddr(addr),
				Proportion:   proportion,
			})
		}
	}

	return model.QuoteRequest{
		ChainID:              cfg.ChainID,
		InputTokens:          inputs,
		OutputTokens:         outputs,
		UserAddr:             userAddr,
		SlippageLimitPercent: cfg.SlippagePercent,
		ReferralCode:         cfg.ReferralCode,
		DisableRFQs:          true,
		Compact:              true,
	}
}

// CheckQuote starts a fresh round: any prior round is superseded by the
// state reset before dispatch. On quote success the response is handed
// straight to a simulate-enabled assemble.
func (p *Pipeline) CheckQuote(ctx context.Context, userAddr, receiveToken string, tokens []model.Token) error {
	p.mu.Lock()
	p.quote = nil
	p.execute = nil
	p.errMsg = ""
	p.unsellable = nil
	p.sellable = nil
	p.userAddr = userAddr
	p.receiveToken = receiveToken
	p.submitted = tokens
	p.status = model.StatusLoadingQuote
	p.mu.Unlock()

	req := BuildQuoteRequest(p.cfg, userAddr, tokens, []string{receiveToken})
	resp, err := p.client.Quote(ctx, req)
	if err != nil {
		p.failQuote(err, tokens)
		return err
	}

	p.mu.Lock()
	p.status = model.StatusSuccessQuote
	p.quote = resp
	// this round starts with every submitted token considered sellable
	p.sellable = tokens
	p.unsellable = nil
	p.mu.Unlock()

	return p.assemble(ctx, userAddr, resp.PathID)
}

// SellRest resubmits only the sellable subset recovered from the last
// failed quote.
func (p *Pipeline) SellRest(ctx context.Context) error {
	p.mu.Lock()
	rest := append([]model.Token{}, p.sellable...)
	userAddr, receiveToken := p.userAddr, p.receiveToken
	p.mu.Unlock()

	if len(rest) == 0 {
		return errors.New("quote: no sellable tokens to retry")
	}
	return p.CheckQuote(ctx, userAddr, receiveToken, rest)
}

// failQuote parses the aggregator error for a structured unsellable list.
// Without one the entire submitted set is treated as unsellable (fail
// closed).
func (p *Pipeline) failQuote(err error, tokens []model.Token) {
	detail := err.Error()
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		detail = apiErr.Detail
	}
	parsed := ParseUnsellable(detail)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = model.StatusError
	p.errMsg = detail

	if !parsed.Matched {
		p.unsellable = make([]string, 0, len(tokens))
		for _, t := range tokens {
			p.unsellable = append(p.unsellable, model.NormalizeAddr(t.Address))
		}
		p.sellable = nil
		return
	}

	bad := make(map[string]bool, len(parsed.Addresses))
	for _, addr := range parsed.Addresses {
		bad[addr] = true
	}
	p.unsellable = parsed.Addresses
	p.sellable = nil
	for _, t := range tokens {
		if !bad[model.NormalizeAddr(t.Address)] {
			p.sellable = append(p.sellable, t)
		}
	}
}

func (p *Pipeline) assemble(ctx context.Context, userAddr, pathID string) error {
	p.mu.Lock()
	p.status = model.StatusLoadingExecute
	p.mu.Unlock()

	resp, err := p.client.Assemble(ctx, model.ExecuteRequest{
		UserAddr: userAddr,
		PathID:   pathID,
		Simulate: true,
	})
	if err != nil {
		p.mu.Lock()
		p.status = model.StatusError
		p.errMsg = err.Error()
		p.mu.Unlock()
		return err
	}

	if resp.Simulation != nil && !resp.Simulation.IsSuccess {
		msg := "transaction simulation failed"
		if resp.Simulation.SimulationError != nil {
			msg = fmt.Sprintf("simulation error: %s", resp.Simulation.SimulationError.ErrorMessage)
		}
		p.mu.Lock()
		p.status = model.StatusError
		p.errMsg = msg
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSimulationFailed, msg)
	}

	p.mu.Lock()
	p.status = model.StatusSuccessExecute
	p.execute = resp
	p.mu.Unlock()
	return nil
}

// Snapshot is a point-in-time view of the pipeline for polling callers.
type Snapshot struct {
	Status           string                 `json:"status"`
	Error            string                 `json:"error,omitempty"`
	Quote            *model.QuoteResponse   `json:"quote,omitempty"`
	Execute          *model.ExecuteResponse `json:"execute,omitempty"`
	SellableTokens   []model.Token          `json:"sellableTokens"`
	UnsellableTokens []string               `json:"unsellableTokens"`
}

func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Status:           p.status.String(),
		Error:            p.errMsg,
		Quote:            p.quote,
		Execute:          p.execute,
		SellableTokens:   append([]model.Token{}, p.sellable...),
		UnsellableTokens: append([]string{}, p.unsellable...),
	}
}

func (p *Pipeline) Status() model.PipelineStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}
