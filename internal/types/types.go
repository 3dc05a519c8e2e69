package types

import "strconv"

// Coordinate is one "x y z" line of a measurement file.
type Coordinate struct {
	X float64
	Y float64
	Z float64
}

// SheetTarget identifies where a sequence of values is written.
type SheetTarget struct {
	Sheet    string
	Column   string
	StartRow int
}

// Cell returns the cell name that receives value i of the sequence.
func (t SheetTarget) Cell(i int) string {
	return t.Column + strconv.Itoa(t.StartRow+i)
}

type SideResult struct {
	Sheet     string
	FirstCell string
	LastCell  string
	Count     int
	Min       float64
	Max       float64
	Mean      float64
	Range     float64
}

type RunResult struct {
	RunID        string
	TemplateFile string
	OutputFile   string
	Sides        [2]SideResult
}
