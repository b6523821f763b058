package eth

import (
	"encoding/hex"
	"testing"
)

// Known vector: the bloom contribution of one CryptoKitties log (address plus
// its single topic).
const kittiesLogBloomHex = "00000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000100000000000000000000000000080000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000800000000000000000000000000000000000000000000000000000000000000080000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000800000200000000000000000000000000000"

func kittiesLog(t *testing.T) Log {
	t.Helper()
	address, err := ParseAddress("0x06012c8cf97bead5deae237070f9587f8e7a266d")
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	topic, err := ParseHash("0x241ea03ca20251805084d27d4440371c34a0b85ff108f6bb5611248f73818b80")
	if err != nil {
		t.Fatalf("ParseHash: %v", err)
	}
	return Log{Address: address, Topics: []Hash{topic}}
}

func TestCalcBloomKnownVector(t *testing.T) {
	bloom := CalcBloom([]Log{kittiesLog(t)})
	got := hex.EncodeToString(bloom[:])
	if got != kittiesLogBloomHex {
		t.Errorf("bloom:\ngot  %s\nwant %s", got, kittiesLogBloomHex)
	}
}

func TestCalcBloomEmptyLogs(t *testing.T) {
	if CalcBloom(nil) != (Bloom{}) {
		t.Error("no logs should derive the zero bloom")
	}
}

func TestCalcBloomBitCount(t *testing.T) {
	bloom := CalcBloom([]Log{kittiesLog(t)})
	bits := 0
	for _, b := range bloom {
		for ; b != 0; b &= b - 1 {
			bits++
		}
	}
	// One address and one topic contribute at most three bits each.
	if bits == 0 || bits > 6 {
		t.Errorf("set bits: got %d, want 1..6", bits)
	}
}

func TestCheckBloom(t *testing.T) {
	logEntry := kittiesLog(t)
	receipt := &Receipt{
		Status: true,
		Logs:   []Log{logEntry},
	}
	receipt.LogsBloom = CalcBloom(receipt.Logs)
	if !receipt.CheckBloom() {
		t.Error("consistent bloom should pass the cross-check")
	}

	receipt.LogsBloom[0] ^= 0x01
	if receipt.CheckBloom() {
		t.Error("tampered bloom should fail the cross-check")
	}
}
