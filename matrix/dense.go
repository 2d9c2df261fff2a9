// Package matrix provides the dense numeric matrices the scoring engine
// operates on and the compressed sparse encoding they are published as.
package matrix

import "fmt"

// Dense is a row-major dense float64 matrix.
//
// Once loaded it is treated as read-only; unsynchronized concurrent reads are
// safe.
type Dense struct {
	rows, cols int
	data       []float64
}

// NewDense creates a zeroed rows x cols matrix.
func NewDense(rows, cols int) *Dense {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("matrix: invalid dimensions %dx%d", rows, cols))
	}
	return &Dense{
		rows: rows,
		cols: cols,
		data: make([]float64, rows*cols),
	}
}

// Rows returns the number of rows.
func (d *Dense) Rows() int { return d.rows }

// Cols returns the number of columns.
func (d *Dense) Cols() int { return d.cols }

// At returns the element at row i, column j.
func (d *Dense) At(i, j int) float64 {
	return d.data[i*d.cols+j]
}

// Set assigns the element at row i, column j.
func (d *Dense) Set(i, j int, v float64) {
	d.data[i*d.cols+j] = v
}

// Row returns row i as a slice sharing the matrix's backing array.
// The caller must not modify it after load.
func (d *Dense) Row(i int) []float64 {
	return d.data[i*d.cols : (i+1)*d.cols]
}

// SizeBytes returns the memory footprint of the element data.
func (d *Dense) SizeBytes() int64 {
	return int64(len(d.data)) * 8
}
