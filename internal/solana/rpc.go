package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface used by the pipeline.
type RPCClient interface {
	// GetTransaction retrieves a parsed transaction by signature.
	// Returns (nil, nil) if the transaction is not found.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetSlot retrieves the current slot.
	GetSlot(ctx context.Context) (int64, error)
}

// Transaction represents a parsed Solana transaction.
type Transaction struct {
	Slot      int64
	Signature string
	BlockTime int64 // Unix timestamp (seconds)
	Meta      *TransactionMeta
	Message   *TransactionMessage
}

// TransactionMeta contains transaction metadata.
type TransactionMeta struct {
	Err         interface{}
	LogMessages []string
}

// TransactionMessage contains the parsed instruction list.
type TransactionMessage struct {
	AccountKeys  []string
	Instructions []Instruction
}

// Instruction is a single parsed instruction with its positional accounts.
type Instruction struct {
	ProgramID string
	Accounts  []string
}
