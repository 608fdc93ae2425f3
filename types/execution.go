package types

import (
	"encoding/json"
	"math/big"

	"github.com/MariusVanDerWijden/ibc-lc/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	ssz "github.com/ferranbt/fastssz"
	"github.com/holiman/uint256"
)

// ExecutionPayloadHeader is the execution block summary carried by beacon
// blocks from Capella on. BlobGasUsed and ExcessBlobGas are hashed from Deneb.
type ExecutionPayloadHeader struct {
	ParentHash       common.Hash
	FeeRecipient     common.Address
	StateRoot        common.Hash
	ReceiptsRoot     common.Hash
	LogsBloom        gethtypes.Bloom
	PrevRandao       common.Hash
	BlockNumber      uint64
	GasLimit         uint64
	GasUsed          uint64
	Timestamp        uint64
	ExtraData        []byte
	BaseFeePerGas    *uint256.Int
	BlockHash        common.Hash
	TransactionsRoot common.Hash
	WithdrawalsRoot  common.Hash
	BlobGasUsed      uint64
	ExcessBlobGas    uint64
}

type executionPayloadHeaderJSON struct {
	ParentHash       common.Hash     `json:"parent_hash"`
	FeeRecipient     common.Address  `json:"fee_recipient"`
	StateRoot        common.Hash     `json:"state_root"`
	ReceiptsRoot     common.Hash     `json:"receipts_root"`
	LogsBloom        gethtypes.Bloom `json:"logs_bloom"`
	PrevRandao       common.Hash     `json:"prev_randao"`
	BlockNumber      uint64          `json:"block_number,string"`
	GasLimit         uint64          `json:"gas_limit,string"`
	GasUsed          uint64          `json:"gas_used,string"`
	Timestamp        uint64          `json:"timestamp,string"`
	ExtraData        hexutil.Bytes   `json:"extra_data"`
	BaseFeePerGas    string          `json:"base_fee_per_gas"`
	BlockHash        common.Hash     `json:"block_hash"`
	TransactionsRoot common.Hash     `json:"transactions_root"`
	WithdrawalsRoot  common.Hash     `json:"withdrawals_root"`
	BlobGasUsed      uint64          `json:"blob_gas_used,string,omitempty"`
	ExcessBlobGas    uint64          `json:"excess_blob_gas,string,omitempty"`
}

func (e *ExecutionPayloadHeader) MarshalJSON() ([]byte, error) {
	baseFee := "0"
	if e.BaseFeePerGas != nil {
		baseFee = e.BaseFeePerGas.ToBig().String()
	}
	return json.Marshal(&executionPayloadHeaderJSON{
		ParentHash:       e.ParentHash,
		FeeRecipient:     e.FeeRecipient,
		StateRoot:        e.StateRoot,
		ReceiptsRoot:     e.ReceiptsRoot,
		LogsBloom:        e.LogsBloom,
		PrevRandao:       e.PrevRandao,
		BlockNumber:      e.BlockNumber,
		GasLimit:         e.GasLimit,
		GasUsed:          e.GasUsed,
		Timestamp:        e.Timestamp,
		ExtraData:        e.ExtraData,
		BaseFeePerGas:    baseFee,
		BlockHash:        e.BlockHash,
		TransactionsRoot: e.TransactionsRoot,
		WithdrawalsRoot:  e.WithdrawalsRoot,
		BlobGasUsed:      e.BlobGasUsed,
		ExcessBlobGas:    e.ExcessBlobGas,
	})
}

func (e *ExecutionPayloadHeader) UnmarshalJSON(data []byte) error {
	var dec executionPayloadHeaderJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	if len(dec.ExtraData) > config.MAX_EXTRA_DATA_BYTES {
		return decodeErrorf("extra data length %d exceeds %d", len(dec.ExtraData), config.MAX_EXTRA_DATA_BYTES)
	}
	fee, ok := new(big.Int).SetString(dec.BaseFeePerGas, 10)
	if !ok {
		return decodeErrorf("invalid base fee per gas %q", dec.BaseFeePerGas)
	}
	baseFee, overflow := uint256.FromBig(fee)
	if overflow || fee.Sign() < 0 {
		return decodeErrorf("base fee per gas %s out of range", dec.BaseFeePerGas)
	}
	*e = ExecutionPayloadHeader{
		ParentHash:       dec.ParentHash,
		FeeRecipient:     dec.FeeRecipient,
		StateRoot:        dec.StateRoot,
		ReceiptsRoot:     dec.ReceiptsRoot,
		LogsBloom:        dec.LogsBloom,
		PrevRandao:       dec.PrevRandao,
		BlockNumber:      dec.BlockNumber,
		GasLimit:         dec.GasLimit,
		GasUsed:          dec.GasUsed,
		Timestamp:        dec.Timestamp,
		ExtraData:        dec.ExtraData,
		BaseFeePerGas:    baseFee,
		BlockHash:        dec.BlockHash,
		TransactionsRoot: dec.TransactionsRoot,
		WithdrawalsRoot:  dec.WithdrawalsRoot,
		BlobGasUsed:      dec.BlobGasUsed,
		ExcessBlobGas:    dec.ExcessBlobGas,
	}
	return nil
}

// HashTreeRoot hashes the header in the shape it has at the given fork.
func (e *ExecutionPayloadHeader) HashTreeRoot(fork config.Fork) (common.Hash, error) {
	root, err := ssz.HashWithDefaultHasher(&forkedExecutionHeader{e, fork})
	return root, err
}

type forkedExecutionHeader struct {
	*ExecutionPayloadHeader
	fork config.Fork
}

func (f *forkedExecutionHeader) HashTreeRootWith(hh *ssz.Hasher) error {
	e := f.ExecutionPayloadHeader
	if len(e.ExtraData) > config.MAX_EXTRA_DATA_BYTES {
		return ssz.ErrBytesLength
	}
	indx := hh.Index()

	hh.PutBytes(e.ParentHash[:])
	hh.PutBytes(e.FeeRecipient[:])
	hh.PutBytes(e.StateRoot[:])
	hh.PutBytes(e.ReceiptsRoot[:])
	hh.PutBytes(e.LogsBloom[:])
	hh.PutBytes(e.PrevRandao[:])
	hh.PutUint64(e.BlockNumber)
	hh.PutUint64(e.GasLimit)
	hh.PutUint64(e.GasUsed)
	hh.PutUint64(e.Timestamp)
	{
		elemIndx := hh.Index()
		byteLen := uint64(len(e.ExtraData))
		hh.PutBytes(e.ExtraData)
		hh.MerkleizeWithMixin(elemIndx, byteLen, (config.MAX_EXTRA_DATA_BYTES+31)/32)
	}
	hh.PutBytes(littleEndian256(e.BaseFeePerGas))
	hh.PutBytes(e.BlockHash[:])
	hh.PutBytes(e.TransactionsRoot[:])
	hh.PutBytes(e.WithdrawalsRoot[:])
	if f.fork >= config.Deneb {
		hh.PutUint64(e.BlobGasUsed)
		hh.PutUint64(e.ExcessBlobGas)
	}
	hh.Merkleize(indx)
	return nil
}

func littleEndian256(v *uint256.Int) []byte {
	out := make([]byte, 32)
	if v == nil {
		return out
	}
	be := v.Bytes32()
	for i := range be {
		out[i] = be[31-i]
	}
	return out
}
