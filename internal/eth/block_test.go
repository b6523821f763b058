package eth

import (
	"strings"
	"testing"
)

const sampleBlockJSON = `{
	"hash": "0x1ddd540f36ea0ed23e732c1709a46c31ba047b98f1d99e623f1644154311fe10",
	"parentHash": "0xd22a869550000000000000000000000000000000000000000000000000000000",
	"number": "0x7d9d5b",
	"miner": "0x5a0b54d5dc17e0aadc383d2db43b0a0d3e029c4c",
	"stateRoot": "0x0b2b7dfb5c8b2633e8b290af455f80a1348be115ef41082c3a1f9461cba1afbc",
	"transactionsRoot": "0x4ce7eb1112eeb2b1e1a49b6dcbd0e20a2d1a0f2a4adf04f6c382f1d8ccbbdd32",
	"receiptsRoot": "0x937e08f03388b32d7c776e7a02371b930d71e3ec096d495230b6735e7f9b20ae",
	"logsBloom": "%s",
	"gasLimit": "0x7a121d",
	"gasUsed": "0x78f028",
	"timestamp": "0x5d517854",
	"extraData": "0x505045",
	"transactions": [
		"0xd6f577a93332e015438fcca4e73f538b1829acbd7eb0cf9ee5a0a73ff2752cc6",
		"0x45757a0d7c08d0e6a56391c2dd64a5e0bff3c2f5dc28cb6a19e2e1e8b4be0cfb"
	]
}`

func sampleBlock(t *testing.T) *Block {
	t.Helper()
	body := strings.Replace(sampleBlockJSON, "%s", zeroBloomHex, 1)
	block, err := DecodeBlock([]byte(body))
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	return block
}

func TestDecodeBlock(t *testing.T) {
	block := sampleBlock(t)
	if block.Number != 0x7d9d5b {
		t.Errorf("number: got %#x", block.Number)
	}
	if block.Hash.Hex() != "0x1ddd540f36ea0ed23e732c1709a46c31ba047b98f1d99e623f1644154311fe10" {
		t.Errorf("hash: got %s", block.Hash.Hex())
	}
	if block.ReceiptsRoot.Hex() != "0x937e08f03388b32d7c776e7a02371b930d71e3ec096d495230b6735e7f9b20ae" {
		t.Errorf("receiptsRoot: got %s", block.ReceiptsRoot.Hex())
	}
	if block.GasUsed != 0x78f028 {
		t.Errorf("gasUsed: got %#x", block.GasUsed)
	}
	if len(block.Transactions) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(block.Transactions))
	}
	if string(block.ExtraData) != "PPE" {
		t.Errorf("extraData: got %q", block.ExtraData)
	}
}

func TestTransactionIndex(t *testing.T) {
	block := sampleBlock(t)

	target, _ := ParseHash("0x45757a0d7c08d0e6a56391c2dd64a5e0bff3c2f5dc28cb6a19e2e1e8b4be0cfb")
	index, err := block.TransactionIndex(target)
	if err != nil {
		t.Fatalf("TransactionIndex: %v", err)
	}
	if index != 1 {
		t.Errorf("index: got %d, want 1", index)
	}

	missing, _ := ParseHash("0x" + strings.Repeat("ee", 32))
	if _, err := block.TransactionIndex(missing); err == nil {
		t.Error("missing transaction should fail")
	}
}

func TestParseHexHelpers(t *testing.T) {
	if _, err := ParseHash("1ddd540f"); err == nil {
		t.Error("hash without 0x prefix should fail")
	}
	if _, err := ParseHash("0x1ddd"); err == nil {
		t.Error("short hash should fail")
	}
	if v, err := ParseHexUint64("0x0"); err != nil || v != 0 {
		t.Errorf("ParseHexUint64(0x0): got %d, %v", v, err)
	}
	if v, err := ParseHexUint64("0xe"); err != nil || v != 14 {
		t.Errorf("ParseHexUint64(0xe): got %d, %v", v, err)
	}
	if _, err := ParseHexUint64("0xzz"); err == nil {
		t.Error("invalid hex quantity should fail")
	}
	b, err := ParseHexBytes("0x1")
	if err != nil || len(b) != 1 || b[0] != 0x01 {
		t.Errorf("ParseHexBytes(0x1): got %x, %v", b, err)
	}
}
