package sellability

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// allSelectors is the concatenated hex of the allowance, approve and
// transferFrom selectors, enough for the bytecode fast path to hit.
var allSelectors = common.FromHex("0xdd62ed3e095ea7b323b872dd")

type stubReader struct {
	mu            sync.Mutex
	storage       map[common.Address]map[common.Hash][]byte
	storageErr    map[common.Hash]error
	code          map[common.Address][]byte
	callOK        bool
	estimateOK    bool
	callCount     int
	estimateCount int
}

func (s *stubReader) StorageAt(ctx context.Context, account common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error) {
	if err, ok := s.storageErr[key]; ok {
		return nil, err
	}
	if slots, ok := s.storage[account]; ok {
		if v, ok := slots[key]; ok {
			return v, nil
		}
	}
	return make([]byte, 32), nil
}

func (s *stubReader) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	return s.code[account], nil
}

func (s *stubReader) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	s.mu.Lock()
	s.callCount++
	s.mu.Unlock()
	if s.callOK {
		return []byte{0}, nil
	}
	return nil, errors.New("execution reverted")
}

func (s *stubReader) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	s.mu.Lock()
	s.estimateCount++
	s.mu.Unlock()
	if s.estimateOK {
		return 21000, nil
	}
	return 0, errors.New("gas required exceeds allowance")
}

var (
	tokenAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	implAddr  = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func storageWord(addr common.Address) []byte {
	return common.LeftPadBytes(addr.Bytes(), 32)
}

func TestResolveImplementationSlotPriority(t *testing.T) {
	other := common.HexToAddress("0x3333333333333333333333333333333333333333")
	s := &stubReader{
		storage: map[common.Address]map[common.Hash][]byte{
			tokenAddr: {
				implementationSlots[0]: storageWord(implAddr),
				implementationSlots[2]: storageWord(other),
			},
		},
		code: map[common.Address][]byte{
			implAddr: {0x60, 0x80},
			other:    {0x60, 0x80},
		},
	}

	impl, ok := ResolveImplementation(context.Background(), s, tokenAddr)
	if !ok {
		t.Fatal("expected implementation to resolve")
	}
	if impl != implAddr {
		t.Errorf("expected first slot to win, got %s", impl.Hex())
	}
}

func TestResolveImplementationSkipsSlotsWithoutCode(t *testing.T) {
	s := &stubReader{
		storage: map[common.Address]map[common.Hash][]byte{
			tokenAddr: {
				implementationSlots[0]: storageWord(implAddr), // no code deployed
				implementationSlots[3]: storageWord(common.HexToAddress("0x4444444444444444444444444444444444444444")),
			},
		},
		code: map[common.Address][]byte{
			common.HexToAddress("0x4444444444444444444444444444444444444444"): {0x60},
		},
	}

	impl, ok := ResolveImplementation(context.Background(), s, tokenAddr)
	if !ok {
		t.Fatal("expected implementation to resolve")
	}
	if impl != common.HexToAddress("0x4444444444444444444444444444444444444444") {
		t.Errorf("unexpected implementation %s", impl.Hex())
	}
}

func TestResolveImplementationSwallowsSlotErrors(t *testing.T) {
	s := &stubReader{
		storage: map[common.Address]map[common.Hash][]byte{
			tokenAddr: {
				implementationSlots[1]: storageWord(implAddr),
			},
		},
		storageErr: map[common.Hash]error{
			implementationSlots[0]: errors.New("rpc failure"),
		},
		code: map[common.Address][]byte{
			implAddr: {0x60},
		},
	}

	impl, ok := ResolveImplementation(context.Background(), s, tokenAddr)
	if !ok || impl != implAddr {
		t.Fatalf("expected scan to continue past failing slot, got ok=%v impl=%s", ok, impl.Hex())
	}
}

func TestResolveImplementationNone(t *testing.T) {
	s := &stubReader{}
	if _, ok := ResolveImplementation(context.Background(), s, tokenAddr); ok {
		t.Error("expected no implementation")
	}
}

func TestProbeMethodsBytecodeFastPath(t *testing.T) {
	s := &stubReader{
		code: map[common.Address][]byte{tokenAddr: allSelectors},
	}

	caps := ProbeMethods(context.Background(), s, tokenAddr)
	if !caps.All() {
		t.Fatalf("expected all methods true, got %v", caps)
	}
	if s.callCount != 0 || s.estimateCount != 0 {
		t.Errorf("fast path must not hit the network, calls=%d estimates=%d", s.callCount, s.estimateCount)
	}
}

func TestProbeMethodsCallFallback(t *testing.T) {
	s := &stubReader{callOK: true}

	caps := ProbeMethods(context.Background(), s, tokenAddr)
	if !caps.All() {
		t.Fatalf("expected call fallback to mark methods true, got %v", caps)
	}
	if s.callCount != 3 {
		t.Errorf("expected one call per method, got %d", s.callCount)
	}
}

func TestProbeMethodsEstimateFallback(t *testing.T) {
	s := &stubReader{estimateOK: true}

	caps := ProbeMethods(context.Background(), s, tokenAddr)
	if !caps.All() {
		t.Fatalf("expected estimate fallback to mark methods true, got %v", caps)
	}
	if s.estimateCount != 3 {
		t.Errorf("expected one estimate per method, got %d", s.estimateCount)
	}
}

func TestProbeMethodsAllFail(t *testing.T) {
	s := &stubReader{}

	caps := ProbeMethods(context.Background(), s, tokenAddr)
	for sig, ok := range caps {
		if ok {
			t.Errorf("expected %s to be false", sig)
		}
	}
	if caps.All() {
		t.Error("expected All() false")
	}
}

func TestClassifySellableViaProxy(t *testing.T) {
	s := &stubReader{
		code: map[common.Address][]byte{tokenAddr: allSelectors},
	}

	c := Classify(context.Background(), s, tokenAddr)
	if !c.Sellable || !c.ProxyHasMethods {
		t.Fatalf("expected sellable via proxy, got %+v", c)
	}
	if c.Implementation != nil {
		t.Errorf("expected no implementation, got %s", c.Implementation.Hex())
	}
}

func TestClassifySellableViaImplementationOnly(t *testing.T) {
	s := &stubReader{
		storage: map[common.Address]map[common.Hash][]byte{
			tokenAddr: {implementationSlots[0]: storageWord(implAddr)},
		},
		code: map[common.Address][]byte{
			tokenAddr: {0x60, 0x80}, // proxy stub without the selectors
			implAddr:  allSelectors,
		},
	}

	c := Classify(context.Background(), s, tokenAddr)
	if !c.Sellable {
		t.Fatalf("expected sellable via implementation, got %+v", c)
	}
	if c.ProxyHasMethods {
		t.Error("proxy should not report methods")
	}
	if !c.ImplHasMethods {
		t.Error("implementation should report methods")
	}
	if c.Implementation == nil || *c.Implementation != implAddr {
		t.Error("implementation address not recorded")
	}
}

func TestClassifyNotSellable(t *testing.T) {
	s := &stubReader{
		code: map[common.Address][]byte{tokenAddr: {0x60, 0x80}},
	}

	c := Classify(context.Background(), s, tokenAddr)
	if c.Sellable {
		t.Fatalf("expected not sellable, got %+v", c)
	}
}
