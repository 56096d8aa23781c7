package utils

// ConvertToFloat32 narrows an embedding vector returned as float64 values
// into the float32 representation the vector index stores.
func ConvertToFloat32(f []float64) []float32 {
	out := make([]float32, len(f))
	for i, v := range f {
		out[i] = float32(v)
	}
	return out
}
