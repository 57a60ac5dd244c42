package model

// Transaction lifecycle statuses as stored.
const (
	TxStatusSubmitted = "submitted"
	TxStatusConfirmed = "confirmed"
	TxStatusFailed    = "failed"
)

// TransactionRecord is the normalized representation of a submitted market
// transaction for storage.
type TransactionRecord struct {
	ChainID         uint64 `json:"chain_id"`
	Market          string `json:"market"`
	Intent          string `json:"intent"`
	PositionID      string `json:"position_id,omitempty"`
	TxHash          string `json:"tx_hash"`
	Status          string `json:"status"`
	CollateralDelta string `json:"collateral_delta"`
	BlockNumber     uint64 `json:"block_number,omitempty"`
	SubmittedAt     string `json:"submitted_at"`
	ConfirmedAt     string `json:"confirmed_at,omitempty"`
}

// PositionRecord is a storage row for an observed position state.
type PositionRecord struct {
	ChainID             uint64 `json:"chain_id"`
	Market              string `json:"market"`
	PositionID          string `json:"position_id"`
	Kind                uint8  `json:"kind"`
	DepositedCollateral string `json:"deposited_collateral"`
	Liquidity           string `json:"liquidity"`
	TickLower           int32  `json:"tick_lower"`
	TickUpper           int32  `json:"tick_upper"`
	ObservedAt          string `json:"observed_at"`
}
