// Package grid maps between linear pixel indices and (x, y) coordinates in
// row-major order.
package grid

// GetGridCoords returns the column and row of index in a grid cols wide.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// GetGridIndex is the inverse of GetGridCoords.
func GetGridIndex(x, y, cols int) int {
	return y*cols + x
}
