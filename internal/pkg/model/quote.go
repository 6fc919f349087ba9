package model

// Wire shapes mirroring the swap aggregator API. A QuoteRequest is built
// fresh per attempt; the QuoteResponse's PathID is consumed exactly once by
// the following ExecuteRequest.

type QuoteInputToken struct {
	TokenAddress string `json:"tokenAddress"`
	Amount       string `json:"amount"`
}

type QuoteOutputToken struct {
	TokenAddress string  `json:"tokenAddress"`
	Proportion   float64 `json:"proportion"`
}

type QuoteRequest struct {
	ChainID              uint64             `json:"chainId"`
	InputTokens          []QuoteInputToken  `json:"inputTokens"`
	OutputTokens         []QuoteOutputToken `json:"outputTokens"`
	UserAddr             string             `json:"userAddr"`
	SlippageLimitPercent float64            `json:"slippageLimitPercent"`
	ReferralCode         uint64             `json:"referralCode"`
	DisableRFQs          bool               `json:"disableRFQs"`
	Compact              bool               `json:"compact"`
}

type QuoteResponse struct {
	PathID      string   `json:"pathId"`
	InTokens    []string `json:"inTokens"`
	OutTokens   []string `json:"outTokens"`
	InAmounts   []string `json:"inAmounts"`
	OutAmounts  []string `json:"outAmounts"`
	GasEstimate float64  `json:"gasEstimate"`
	NetOutValue float64  `json:"netOutValue"`
}

type ExecuteRequest struct {
	UserAddr string `json:"userAddr"`
	PathID   string `json:"pathId"`
	Simulate bool   `json:"simulate"`
}

type ExecuteTransaction struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Data    string `json:"data"`
	Value   string `json:"value"`
	Gas     int64  `json:"gas"`
	ChainID uint64 `json:"chainId"`
}

type ExecuteSimulation struct {
	IsSuccess       bool   `json:"isSuccess"`
	GasEstimate     int64  `json:"gasEstimate"`
	SimulationError *struct {
		Type         string `json:"type"`
		ErrorMessage string `json:"errorMessage"`
	} `json:"simulationError,omitempty"`
}

type ExecuteResponse struct {
	Transaction ExecuteTransaction `json:"transaction"`
	Simulation  *ExecuteSimulation `json:"simulation,omitempty"`
}

// PipelineStatus is owned exclusively by the quote/execute pipeline.
type PipelineStatus int

const (
	StatusIdle PipelineStatus = iota
	StatusLoadingQuote
	StatusLoadingExecute
	StatusSuccessQuote
	StatusSuccessExecute
	StatusError
)

func (s PipelineStatus) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusLoadingQuote:
		return "LOADING_QUOTE"
	case StatusLoadingExecute:
		return "LOADING_EXECUTE"
	case StatusSuccessQuote:
		return "SUCCESS_QUOTE"
	case StatusSuccessExecute:
		return "SUCCESS_EXECUTE"
	case StatusError:
		return "ERROR"
	}
	return "UNKNOWN"
}
