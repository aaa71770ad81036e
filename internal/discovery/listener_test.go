package discovery

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raydium-sniper/internal/observability"
	"raydium-sniper/internal/solana"
	"raydium-sniper/internal/storage/memory"
)

const (
	testTokenMint  = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	otherTokenMint = "4Nd1mYvLPjW8qyoXhK1EyEGe2cBJ9aYgq2rde2yFWQyV"
)

// fakeWS delivers a fixed set of notifications on subscribe.
type fakeWS struct {
	notifications []solana.LogNotification
	gotFilter     solana.LogsFilter
}

func (f *fakeWS) SubscribeLogs(ctx context.Context, filter solana.LogsFilter) (<-chan solana.LogNotification, error) {
	f.gotFilter = filter
	ch := make(chan solana.LogNotification, len(f.notifications))
	for _, n := range f.notifications {
		ch <- n
	}
	close(ch)
	return ch, nil
}

func (f *fakeWS) Close() error { return nil }

// fakeRPC serves transactions by signature.
type fakeRPC struct {
	txs   map[string]*solana.Transaction
	errs  map[string]error
	calls sync.Map
}

func (f *fakeRPC) GetTransaction(ctx context.Context, signature string) (*solana.Transaction, error) {
	f.calls.Store(signature, true)
	if err, ok := f.errs[signature]; ok {
		return nil, err
	}
	return f.txs[signature], nil
}

func (f *fakeRPC) GetSlot(ctx context.Context) (int64, error) { return 0, nil }

func poolTx(signature string, mintA, mintB string) *solana.Transaction {
	accounts := make([]string, 10)
	for i := range accounts {
		accounts[i] = fmt.Sprintf("acct-%d", i)
	}
	accounts[coinMintIndex] = mintA
	accounts[pcMintIndex] = mintB

	return &solana.Transaction{
		Slot:      285001234,
		Signature: signature,
		BlockTime: 1717000000,
		Message: &solana.TransactionMessage{
			Instructions: []solana.Instruction{
				{ProgramID: "SomeOtherProgram1111111111111111111111111111", Accounts: []string{"x"}},
				{ProgramID: RaydiumAMMV4, Accounts: accounts},
			},
		},
	}
}

func initNotif(signature string) solana.LogNotification {
	return solana.LogNotification{
		Signature: signature,
		Slot:      285001234,
		Logs:      []string{"Program log: initialize2: InitializeInstruction2"},
	}
}

func runListener(t *testing.T, ws *fakeWS, rpc *fakeRPC, store *memory.StagingStore) {
	t.Helper()
	l := NewListener(ws, rpc, store, ListenerConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Run returns nil once the notification channel drains.
	require.NoError(t, l.Run(ctx))
}

func TestListener_StagesQuoteSideToken(t *testing.T) {
	ws := &fakeWS{notifications: []solana.LogNotification{initNotif("sig-1")}}
	rpc := &fakeRPC{txs: map[string]*solana.Transaction{
		"sig-1": poolTx("sig-1", WSOLMint, testTokenMint),
	}}
	store := memory.NewStagingStore()

	runListener(t, ws, rpc, store)

	assert.Equal(t, []string{RaydiumAMMV4}, ws.gotFilter.Mentions)

	entries, err := store.DequeueOlderThan(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, testTokenMint, entries[0].Address)
	assert.Equal(t, int64(1717000000)*1000, entries[0].DiscoveredAt)
}

func TestListener_StagedTokenUpdatesMetrics(t *testing.T) {
	queueBefore := testutil.ToFloat64(observability.DefaultMetrics.StagingQueueSize)
	onCurveBefore := testutil.ToFloat64(observability.DefaultMetrics.MintKeyTypes.WithLabelValues("on_curve"))

	ws := &fakeWS{notifications: []solana.LogNotification{initNotif("sig-metrics")}}
	rpc := &fakeRPC{txs: map[string]*solana.Transaction{
		"sig-metrics": poolTx("sig-metrics", WSOLMint, testTokenMint),
	}}
	store := memory.NewStagingStore()

	runListener(t, ws, rpc, store)

	assert.Equal(t, queueBefore+1, testutil.ToFloat64(observability.DefaultMetrics.StagingQueueSize))
	// The staged mint is a regular keypair address, so it counts as
	// on-curve rather than program-derived.
	assert.Equal(t, onCurveBefore+1, testutil.ToFloat64(observability.DefaultMetrics.MintKeyTypes.WithLabelValues("on_curve")))
}

func TestListener_BaseSideOrderDoesNotMatter(t *testing.T) {
	ws := &fakeWS{notifications: []solana.LogNotification{initNotif("sig-1")}}
	rpc := &fakeRPC{txs: map[string]*solana.Transaction{
		"sig-1": poolTx("sig-1", testTokenMint, USDCMint),
	}}
	store := memory.NewStagingStore()

	runListener(t, ws, rpc, store)

	entries, err := store.DequeueOlderThan(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, testTokenMint, entries[0].Address)
}

func TestListener_IgnoresBaseBasePool(t *testing.T) {
	ws := &fakeWS{notifications: []solana.LogNotification{initNotif("sig-1")}}
	rpc := &fakeRPC{txs: map[string]*solana.Transaction{
		"sig-1": poolTx("sig-1", WSOLMint, USDCMint),
	}}
	store := memory.NewStagingStore()

	runListener(t, ws, rpc, store)

	assert.Equal(t, 0, store.Len())
}

func TestListener_IgnoresPoolWithoutBaseSide(t *testing.T) {
	ws := &fakeWS{notifications: []solana.LogNotification{initNotif("sig-1")}}
	rpc := &fakeRPC{txs: map[string]*solana.Transaction{
		"sig-1": poolTx("sig-1", testTokenMint, otherTokenMint),
	}}
	store := memory.NewStagingStore()

	runListener(t, ws, rpc, store)

	assert.Equal(t, 0, store.Len())
}

func TestListener_SkipsFailedTransactions(t *testing.T) {
	failed := initNotif("sig-failed")
	failed.Err = map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}

	ws := &fakeWS{notifications: []solana.LogNotification{failed}}
	rpc := &fakeRPC{}
	store := memory.NewStagingStore()

	runListener(t, ws, rpc, store)

	_, fetched := rpc.calls.Load("sig-failed")
	assert.False(t, fetched, "failed transaction must not be fetched")
	assert.Equal(t, 0, store.Len())
}

func TestListener_SkipsNonInitLogs(t *testing.T) {
	ws := &fakeWS{notifications: []solana.LogNotification{{
		Signature: "sig-swap",
		Logs:      []string{"Program log: ray_log: swap"},
	}}}
	rpc := &fakeRPC{}
	store := memory.NewStagingStore()

	runListener(t, ws, rpc, store)

	_, fetched := rpc.calls.Load("sig-swap")
	assert.False(t, fetched)
	assert.Equal(t, 0, store.Len())
}

func TestListener_DuplicateSignatureProcessedOnce(t *testing.T) {
	ws := &fakeWS{notifications: []solana.LogNotification{
		initNotif("sig-1"),
		initNotif("sig-1"),
	}}
	rpc := &fakeRPC{txs: map[string]*solana.Transaction{
		"sig-1": poolTx("sig-1", WSOLMint, testTokenMint),
	}}
	store := memory.NewStagingStore()

	runListener(t, ws, rpc, store)

	assert.Equal(t, 1, store.Len())
}

func TestListener_RPCErrorDoesNotStopLoop(t *testing.T) {
	ws := &fakeWS{notifications: []solana.LogNotification{
		initNotif("sig-broken"),
		initNotif("sig-good"),
	}}
	rpc := &fakeRPC{
		txs: map[string]*solana.Transaction{
			"sig-good": poolTx("sig-good", WSOLMint, testTokenMint),
		},
		errs: map[string]error{
			"sig-broken": fmt.Errorf("rpc unavailable"),
		},
	}
	store := memory.NewStagingStore()

	runListener(t, ws, rpc, store)

	entries, err := store.DequeueOlderThan(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, testTokenMint, entries[0].Address)
}

func TestClassifyPair(t *testing.T) {
	tests := []struct {
		name      string
		mintA     string
		mintB     string
		wantToken string
		wantOK    bool
	}{
		{"wsol quote", WSOLMint, testTokenMint, testTokenMint, true},
		{"usdt base second", testTokenMint, USDTMint, testTokenMint, true},
		{"both base", USDCMint, WSOLMint, "", false},
		{"neither base", testTokenMint, otherTokenMint, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, ok := ClassifyPair(tt.mintA, tt.mintB)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestValidateAddress(t *testing.T) {
	require.NoError(t, ValidateAddress(WSOLMint))
	require.NoError(t, ValidateAddress(testTokenMint))

	assert.Error(t, ValidateAddress(""))
	assert.Error(t, ValidateAddress("not-base58-0OIl"))
	assert.Error(t, ValidateAddress("abc")) // too short
}
