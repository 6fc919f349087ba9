package quote

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dustsweep/dustnode/internal/pkg/model"
)

const (
	addrA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	addrB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	addrC = "0xcccccccccccccccccccccccccccccccccccccccc"
)

func mkToken(addr string, balance int64) model.Token {
	return model.Token{Address: addr, RawBalance: big.NewInt(balance)}
}

func TestParseUnsellableBracketedList(t *testing.T) {
	detail := fmt.Sprintf("Tokens [0x%s, %s] are unsellable", strings.ToUpper(addrA[2:]), addrB)

	parsed := ParseUnsellable(detail)
	if !parsed.Matched {
		t.Fatal("expected a match")
	}
	if len(parsed.Addresses) != 2 || parsed.Addresses[0] != addrA || parsed.Addresses[1] != addrB {
		t.Errorf("unexpected addresses: %v", parsed.Addresses)
	}
}

func TestParseUnsellableSingleAddress(t *testing.T) {
	parsed := ParseUnsellable(fmt.Sprintf("token [%s] has no route", addrA))
	if !parsed.Matched || len(parsed.Addresses) != 1 || parsed.Addresses[0] != addrA {
		t.Errorf("unexpected parse: %+v", parsed)
	}
}

func TestParseUnsellableNoMatch(t *testing.T) {
	for _, detail := range []string{
		"Network Error",
		"",
		"[not an address]",
		"[0x1234]", // too short
	} {
		if parsed := ParseUnsellable(detail); parsed.Matched {
			t.Errorf("expected no match for %q, got %v", detail, parsed.Addresses)
		}
	}
}

func TestBuildQuoteRequestProportions(t *testing.T) {
	cfg := Config{ChainID: 1, SlippagePercent: 0.5, ReferralCode: 1}
	req := BuildQuoteRequest(cfg, "0xuser", []model.Token{mkToken(addrA, 100)}, []string{addrC, addrB})

	if len(req.OutputTokens) != 2 {
		t.Fatalf("expected 2 output tokens, got %d", len(req.OutputTokens))
	}
	for _, out := range req.OutputTokens {
		if out.Proportion != 0.5 {
			t.Errorf("expected even 1/N split, got %v", out.Proportion)
		}
	}
	if req.InputTokens[0].Amount != "100" {
		t.Errorf("expected raw balance as amount, got %s", req.InputTokens[0].Amount)
	}
}

func TestBuildQuoteRequestEmptyOutputs(t *testing.T) {
	req := BuildQuoteRequest(Config{ChainID: 1}, "0xuser", nil, nil)
	if len(req.OutputTokens) != 0 {
		t.Errorf("expected empty outputs, got %v", req.OutputTokens)
	}
}

func aggregatorServer(quoteHandler, assembleHandler http.HandlerFunc) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc(quotePath, quoteHandler)
	mux.HandleFunc(assemblePath, assembleHandler)
	return httptest.NewServer(mux)
}

func okQuote(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, `{"pathId":"path-123","gasEstimate":120000}`)
}

func okAssemble(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, `{
		"transaction":{"to":"0xrouter","data":"0xdead","value":"0","gas":200000,"chainId":1},
		"simulation":{"isSuccess":true,"gasEstimate":150000}
	}`)
}

func TestPipelineQuoteAndExecuteSuccess(t *testing.T) {
	srv := aggregatorServer(okQuote, okAssemble)
	defer srv.Close()

	p := NewPipeline(NewClient(srv.URL), Config{ChainID: 1})
	err := p.CheckQuote(context.Background(), "0xuser", addrC, []model.Token{mkToken(addrA, 100)})
	if err != nil {
		t.Fatalf("CheckQuote failed: %v", err)
	}

	snap := p.Snapshot()
	if snap.Status != "SUCCESS_EXECUTE" {
		t.Errorf("expected SUCCESS_EXECUTE, got %s", snap.Status)
	}
	if snap.Execute == nil || snap.Execute.Transaction.To != "0xrouter" {
		t.Error("execute payload not retained")
	}
	if snap.Quote == nil || snap.Quote.PathID != "path-123" {
		t.Error("quote response not retained")
	}
	if len(snap.SellableTokens) != 1 {
		t.Errorf("expected all submitted tokens sellable, got %d", len(snap.SellableTokens))
	}
}

func TestPipelineQuoteErrorWithUnsellableList(t *testing.T) {
	srv := aggregatorServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, `{"detail":"Tokens [%s, %s] are unsellable"}`, addrA, addrB)
	}, okAssemble)
	defer srv.Close()

	p := NewPipeline(NewClient(srv.URL), Config{ChainID: 1})
	err := p.CheckQuote(context.Background(), "0xuser", addrC, []model.Token{
		mkToken(addrA, 1), mkToken(addrB, 2), mkToken(addrC, 3),
	})
	if err == nil {
		t.Fatal("expected quote error")
	}

	snap := p.Snapshot()
	if snap.Status != "ERROR" {
		t.Errorf("expected ERROR, got %s", snap.Status)
	}
	if len(snap.UnsellableTokens) != 2 {
		t.Fatalf("expected 2 unsellable tokens, got %v", snap.UnsellableTokens)
	}
	if len(snap.SellableTokens) != 1 || model.NormalizeAddr(snap.SellableTokens[0].Address) != addrC {
		t.Errorf("expected sellable complement [%s], got %v", addrC, snap.SellableTokens)
	}
}

func TestPipelineQuoteErrorFailsClosed(t *testing.T) {
	srv := aggregatorServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"detail":"Network Error"}`)
	}, okAssemble)
	defer srv.Close()

	p := NewPipeline(NewClient(srv.URL), Config{ChainID: 1})
	submitted := []model.Token{mkToken(addrA, 1), mkToken(addrB, 2)}
	if err := p.CheckQuote(context.Background(), "0xuser", addrC, submitted); err == nil {
		t.Fatal("expected quote error")
	}

	snap := p.Snapshot()
	if len(snap.SellableTokens) != 0 {
		t.Errorf("unstructured error must fail closed, got sellable %v", snap.SellableTokens)
	}
	if len(snap.UnsellableTokens) != len(submitted) {
		t.Errorf("expected entire submitted set unsellable, got %v", snap.UnsellableTokens)
	}
}

func TestPipelineSimulationFailure(t *testing.T) {
	srv := aggregatorServer(okQuote, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"transaction":{"to":"0xrouter","gas":200000,"chainId":1},
			"simulation":{"isSuccess":false,"simulationError":{"type":"revert","errorMessage":"TRANSFER_FROM_FAILED"}}
		}`)
	})
	defer srv.Close()

	p := NewPipeline(NewClient(srv.URL), Config{ChainID: 1})
	err := p.CheckQuote(context.Background(), "0xuser", addrC, []model.Token{mkToken(addrA, 1)})
	if !errors.Is(err, ErrSimulationFailed) {
		t.Fatalf("expected ErrSimulationFailed, got %v", err)
	}

	snap := p.Snapshot()
	if snap.Status != "ERROR" {
		t.Errorf("expected ERROR, got %s", snap.Status)
	}
	if !strings.Contains(snap.Error, "simulation error") || !strings.Contains(snap.Error, "TRANSFER_FROM_FAILED") {
		t.Errorf("expected the simulation-specific message, got %q", snap.Error)
	}
}

func TestPipelineSellRest(t *testing.T) {
	var quoteCalls int
	srv := aggregatorServer(func(w http.ResponseWriter, r *http.Request) {
		quoteCalls++
		if quoteCalls == 1 {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, `{"detail":"Tokens [%s] are unsellable"}`, addrA)
			return
		}
		okQuote(w, r)
	}, okAssemble)
	defer srv.Close()

	p := NewPipeline(NewClient(srv.URL), Config{ChainID: 1})
	if err := p.CheckQuote(context.Background(), "0xuser", addrC, []model.Token{
		mkToken(addrA, 1), mkToken(addrB, 2),
	}); err == nil {
		t.Fatal("expected first quote to fail")
	}

	if err := p.SellRest(context.Background()); err != nil {
		t.Fatalf("SellRest failed: %v", err)
	}
	if quoteCalls != 2 {
		t.Errorf("expected 2 quote calls, got %d", quoteCalls)
	}
	if snap := p.Snapshot(); snap.Status != "SUCCESS_EXECUTE" {
		t.Errorf("expected SUCCESS_EXECUTE after retry, got %s", snap.Status)
	}
}

func TestPipelineSellRestWithNothingLeft(t *testing.T) {
	p := NewPipeline(NewClient("http://localhost:0"), Config{ChainID: 1})
	if err := p.SellRest(context.Background()); err == nil {
		t.Fatal("expected error when no sellable subset exists")
	}
}
