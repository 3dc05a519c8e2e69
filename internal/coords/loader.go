package coords

import (
	"bufio"
	"errors"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/nconklindev/ttvfill/internal/types"
)

// Load reads a whitespace separated "x y z" file.
func Load(path string) ([]types.Coordinate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.IOError(err, "cannot read %s", path)
	}
	defer f.Close()

	points, err := Parse(f)
	if err != nil {
		if types.KindOf(err) == types.KindFormat {
			return nil, types.FormatError("%s: %s", path, err.Error())
		}
		return nil, types.IOError(err, "cannot read %s", path)
	}
	return points, nil
}

// MaxLineSize is the longest line Parse accepts, in bytes.
const MaxLineSize = 1 << 20

// Parse reads one coordinate per line. Blank lines are skipped and tokens
// after the third are ignored.
func Parse(r io.Reader) ([]types.Coordinate, error) {
	var points []types.Coordinate
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		text := scanner.Text()
		if lineNum == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return nil, types.FormatError("line %d: expected x y z, got %d value(s)", lineNum, len(fields))
		}

		var xyz [3]float64
		for i := range xyz {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, types.FormatError("line %d: %q is not a number", lineNum, fields[i])
			}
			xyz[i] = v
		}

		points = append(points, types.Coordinate{X: xyz[0], Y: xyz[1], Z: xyz[2]})
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, types.FormatError("line %d: longer than %d bytes", lineNum+1, MaxLineSize)
		}
		return nil, err
	}

	return points, nil
}

// ZValues returns the Z field of each point, in order.
func ZValues(points []types.Coordinate) []float64 {
	zs := make([]float64, len(points))
	for i, p := range points {
		zs[i] = p.Z
	}
	return zs
}
