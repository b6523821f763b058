package eth

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/erigontech/receipt-prover/internal/rlp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Log is one event record: the emitting address, its indexed topics, and the
// opaque data payload. Only these three fields enter the receipt RLP.
type Log struct {
	Address Address
	Topics  []Hash
	Data    []byte
}

// Receipt is the in-memory transaction receipt. Of its fields only Status
// (or PostState), CumulativeGasUsed, LogsBloom and Logs are part of the trie
// value; the rest is block-level metadata carried for the pipeline.
type Receipt struct {
	Type              uint8
	Status            bool
	PostState         []byte // pre-Byzantium intermediate state root; nil when Status applies
	CumulativeGasUsed uint64
	LogsBloom         Bloom
	Logs              []Log

	To               Address
	From             Address
	BlockHash        Hash
	BlockNumber      uint64
	TransactionHash  Hash
	TransactionIndex uint64
	GasUsed          uint64
	ContractAddress  Address
}

// EncodeRLP returns the receipt's canonical trie value: the 4-field list
// {status-or-root, cumulativeGasUsed, logsBloom, logs}, prefixed with the
// type byte for non-legacy receipts.
func (r *Receipt) EncodeRLP() []byte {
	var head []byte
	if r.PostState != nil {
		head = rlp.EncodeBytes(r.PostState)
	} else if r.Status {
		head = rlp.EncodeUint(1)
	} else {
		head = rlp.EncodeUint(0)
	}

	logs := make([][]byte, len(r.Logs))
	for i := range r.Logs {
		logs[i] = r.Logs[i].EncodeRLP()
	}

	encoded := rlp.EncodeList(
		head,
		rlp.EncodeUint(r.CumulativeGasUsed),
		rlp.EncodeBytes(r.LogsBloom[:]),
		rlp.EncodeList(logs...),
	)
	if r.Type != 0 {
		return append([]byte{r.Type}, encoded...)
	}
	return encoded
}

// EncodeRLP returns the log's 3-field list {address, topics, data}.
func (l *Log) EncodeRLP() []byte {
	topics := make([][]byte, len(l.Topics))
	for i := range l.Topics {
		topics[i] = rlp.EncodeBytes(l.Topics[i][:])
	}
	return rlp.EncodeList(
		rlp.EncodeBytes(l.Address[:]),
		rlp.EncodeList(topics...),
		rlp.EncodeBytes(l.Data),
	)
}

// Wire shapes of the JSON-RPC result objects.

type logJSON struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"`
}

type receiptJSON struct {
	Type              string    `json:"type"`
	Status            *string   `json:"status"`
	Root              *string   `json:"root"`
	CumulativeGasUsed string    `json:"cumulativeGasUsed"`
	LogsBloom         string    `json:"logsBloom"`
	Logs              []logJSON `json:"logs"`
	To                *string   `json:"to"`
	From              string    `json:"from"`
	BlockHash         string    `json:"blockHash"`
	BlockNumber       string    `json:"blockNumber"`
	TransactionHash   string    `json:"transactionHash"`
	TransactionIndex  string    `json:"transactionIndex"`
	GasUsed           string    `json:"gasUsed"`
	ContractAddress   *string   `json:"contractAddress"`
}

type blockJSON struct {
	Hash             string   `json:"hash"`
	ParentHash       string   `json:"parentHash"`
	Number           string   `json:"number"`
	Miner            string   `json:"miner"`
	StateRoot        string   `json:"stateRoot"`
	TransactionsRoot string   `json:"transactionsRoot"`
	ReceiptsRoot     string   `json:"receiptsRoot"`
	LogsBloom        string   `json:"logsBloom"`
	GasLimit         string   `json:"gasLimit"`
	GasUsed          string   `json:"gasUsed"`
	Timestamp        string   `json:"timestamp"`
	ExtraData        string   `json:"extraData"`
	Transactions     []string `json:"transactions"`
}

// DecodeReceipt parses the result object of eth_getTransactionReceipt.
func DecodeReceipt(raw []byte) (*Receipt, error) {
	var rj receiptJSON
	if err := json.Unmarshal(raw, &rj); err != nil {
		return nil, fmt.Errorf("✘ cannot decode receipt JSON: %w", err)
	}

	receipt := &Receipt{}
	var err error

	if rj.Status != nil {
		receipt.Status = *rj.Status == "0x1"
	} else if rj.Root != nil {
		if receipt.PostState, err = ParseHexBytes(*rj.Root); err != nil {
			return nil, err
		}
	} else {
		return nil, fmt.Errorf("✘ receipt has neither status nor root field")
	}

	if rj.Type != "" {
		typeVal, err := ParseHexUint64(rj.Type)
		if err != nil {
			return nil, err
		}
		receipt.Type = uint8(typeVal)
	}
	if receipt.CumulativeGasUsed, err = ParseHexUint64(rj.CumulativeGasUsed); err != nil {
		return nil, err
	}
	if receipt.LogsBloom, err = ParseBloom(rj.LogsBloom); err != nil {
		return nil, err
	}
	if receipt.GasUsed, err = ParseHexUint64(rj.GasUsed); err != nil {
		return nil, err
	}
	if receipt.BlockNumber, err = ParseHexUint64(rj.BlockNumber); err != nil {
		return nil, err
	}
	if receipt.TransactionIndex, err = ParseHexUint64(rj.TransactionIndex); err != nil {
		return nil, err
	}
	if receipt.BlockHash, err = ParseHash(rj.BlockHash); err != nil {
		return nil, err
	}
	if receipt.TransactionHash, err = ParseHash(rj.TransactionHash); err != nil {
		return nil, err
	}
	if receipt.From, err = ParseAddress(rj.From); err != nil {
		return nil, err
	}
	if rj.To != nil {
		if receipt.To, err = ParseAddress(*rj.To); err != nil {
			return nil, err
		}
	}
	if rj.ContractAddress != nil {
		if receipt.ContractAddress, err = ParseAddress(*rj.ContractAddress); err != nil {
			return nil, err
		}
	}

	receipt.Logs = make([]Log, 0, len(rj.Logs))
	for _, lj := range rj.Logs {
		logEntry, err := decodeLog(lj)
		if err != nil {
			return nil, err
		}
		receipt.Logs = append(receipt.Logs, logEntry)
	}

	return receipt, nil
}

func decodeLog(lj logJSON) (Log, error) {
	var l Log
	var err error
	if l.Address, err = ParseAddress(lj.Address); err != nil {
		return l, err
	}
	l.Topics = make([]Hash, 0, len(lj.Topics))
	for _, topic := range lj.Topics {
		h, err := ParseHash(topic)
		if err != nil {
			return l, err
		}
		l.Topics = append(l.Topics, h)
	}
	if l.Data, err = ParseHexBytes(lj.Data); err != nil {
		return l, err
	}
	return l, nil
}

// DecodeBlock parses the result object of eth_getBlockByHash or
// eth_getBlockByNumber (with transaction hashes, not full objects).
func DecodeBlock(raw []byte) (*Block, error) {
	var bj blockJSON
	if err := json.Unmarshal(raw, &bj); err != nil {
		return nil, fmt.Errorf("✘ cannot decode block JSON: %w", err)
	}

	block := &Block{}
	var err error
	if block.Hash, err = ParseHash(bj.Hash); err != nil {
		return nil, err
	}
	if block.ParentHash, err = ParseHash(bj.ParentHash); err != nil {
		return nil, err
	}
	if block.Number, err = ParseHexUint64(bj.Number); err != nil {
		return nil, err
	}
	if block.Miner, err = ParseAddress(bj.Miner); err != nil {
		return nil, err
	}
	if block.StateRoot, err = ParseHash(bj.StateRoot); err != nil {
		return nil, err
	}
	if block.TransactionsRoot, err = ParseHash(bj.TransactionsRoot); err != nil {
		return nil, err
	}
	if block.ReceiptsRoot, err = ParseHash(bj.ReceiptsRoot); err != nil {
		return nil, err
	}
	if block.LogsBloom, err = ParseBloom(bj.LogsBloom); err != nil {
		return nil, err
	}
	if block.GasLimit, err = ParseHexUint64(bj.GasLimit); err != nil {
		return nil, err
	}
	if block.GasUsed, err = ParseHexUint64(bj.GasUsed); err != nil {
		return nil, err
	}
	if block.Timestamp, err = ParseHexUint64(bj.Timestamp); err != nil {
		return nil, err
	}
	if block.ExtraData, err = ParseHexBytes(bj.ExtraData); err != nil {
		return nil, err
	}
	block.Transactions = make([]Hash, 0, len(bj.Transactions))
	for _, tx := range bj.Transactions {
		h, err := ParseHash(tx)
		if err != nil {
			return nil, err
		}
		block.Transactions = append(block.Transactions, h)
	}
	return block, nil
}
