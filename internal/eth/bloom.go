package eth

import (
	"github.com/erigontech/receipt-prover/internal/keccak"
)

// bloomAdd folds one datum into the filter: three byte pairs of its keccak
// hash, each masked to 11 bits, each selecting one bit counted down from the
// top of the 2048-bit field.
func bloomAdd(b *Bloom, data []byte) {
	h := keccak.Bytes256(data)
	for i := 0; i < 6; i += 2 {
		v := (uint(h[i])<<8 | uint(h[i+1])) & 0x07ff
		b[BloomByteLength-1-v/8] |= 1 << (v % 8)
	}
}

// CalcBloom derives the logs bloom of a receipt from its logs: the
// contribution of every log's address and every topic, OR-ed together.
func CalcBloom(logs []Log) Bloom {
	var bloom Bloom
	for _, l := range logs {
		bloomAdd(&bloom, l.Address[:])
		for _, topic := range l.Topics {
			bloomAdd(&bloom, topic[:])
		}
	}
	return bloom
}

// CheckBloom recomputes the bloom of r's logs and reports whether it matches
// the bloom the node returned.
func (r *Receipt) CheckBloom() bool {
	return CalcBloom(r.Logs) == r.LogsBloom
}
