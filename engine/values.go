package engine

import "github.com/tetratelabs/wazero/api"

// EncodeF32 packs v into a raw stack value for Function.Call.
func EncodeF32(v float32) uint64 {
	return api.EncodeF32(v)
}

// DecodeF32 unpacks an f32 result returned by Function.Call.
func DecodeF32(v uint64) float32 {
	return api.DecodeF32(v)
}
