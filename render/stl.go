package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	sizeOfSTLHeader   = 84
	sizeOfSTLTriangle = 50
	trianglesInBuffer = 1 << 10
)

// CreateSTL renders a model as a binary STL file using a Renderer.
// It returns the number of triangles written.
func CreateSTL(path string, r Renderer) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	nt, err := writeSTLStream(file, r)
	if err != nil {
		file.Close()
		return nt, err
	}
	return nt, file.Close()
}

// writeSTLStream streams triangles from r into ws. The header is written
// last since the triangle count is not known beforehand.
func writeSTLStream(ws io.WriteSeeker, r Renderer) (int, error) {
	// Do not write header.
	_, err := ws.Seek(sizeOfSTLHeader, io.SeekStart)
	if err != nil {
		return 0, err
	}
	rd := &stlReader{r: r}
	n, err := io.CopyBuffer(ws, rd, make([]byte, sizeOfSTLTriangle*trianglesInBuffer))
	if err != nil {
		return 0, err
	}
	_, err = ws.Seek(0, io.SeekStart)
	if err != nil {
		return 0, err
	}
	nt := int(n / sizeOfSTLTriangle)
	header := stlHeader{
		Count: uint32(nt),
	}
	if err = binary.Write(ws, binary.LittleEndian, &header); err != nil {
		return 0, err
	}
	return nt, nil
}

// WriteSTL writes model triangles to a writer in binary STL file format.
func WriteSTL(w io.Writer, model []Triangle3) error {
	if len(model) == 0 {
		return errors.New("empty triangle slice")
	}
	header := stlHeader{
		Count: uint32(len(model)),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	var b [sizeOfSTLTriangle]byte
	for _, triangle := range model {
		toSTLTriangle(triangle).put(b[:])
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}

// ReadSTL reads a binary STL model. Triangles whose stored normal does not
// match the normal calculated from their vertices are still returned
// along with an error wrapping ErrNormalMismatch.
func ReadSTL(r io.Reader) (output []Triangle3, readErr error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, errors.New("encountered EOF while reading STL header")
		}
		return nil, errors.New("STL header read failed: " + err.Error())
	}
	if header.Count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		buf            [sizeOfSTLTriangle]byte
		d              stlTriangle
		i              int
		normMismatches int
	)
	defer func() {
		if readErr != nil && !errors.Is(readErr, ErrNormalMismatch) {
			readErr = fmt.Errorf("%d/%d STL triangles read: %w", i+1, header.Count, readErr)
		}
	}()
	output = make([]Triangle3, 0, header.Count)
	for i = 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		d.get(buf[:])
		if err := d.validate(); err != nil {
			if !errors.Is(err, ErrNormalMismatch) {
				return nil, err
			}
			normMismatches++
			readErr = err
		}
		output = append(output, d.toTriangle3())
	}
	if normMismatches > 0 {
		readErr = fmt.Errorf("%d triangles: %w", normMismatches, ErrNormalMismatch)
	}
	return output, readErr
}

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

// stlReader adapts a Renderer into an io.Reader of STL triangle records.
type stlReader struct {
	r   Renderer
	buf [trianglesInBuffer]Triangle3
	err error
}

func (w *stlReader) Read(b []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	ntMax := min(len(b)/sizeOfSTLTriangle, len(w.buf))
	if ntMax == 0 {
		return 0, errors.New("stlReader requires at least 50 bytes to write a single triangle")
	}
	nt, err := w.r.ReadTriangles(w.buf[:ntMax])
	if nt > ntMax {
		panic("bug: ReadTriangles read more triangles than available in buffer")
	}
	for it, triangle := range w.buf[:nt] {
		toSTLTriangle(triangle).put(b[it*sizeOfSTLTriangle:])
	}
	if err != nil {
		w.err = err
		if nt > 0 && err == io.EOF {
			// Deliver the last triangles before reporting EOF.
			err = nil
		}
	}
	return nt * sizeOfSTLTriangle, err
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

func toSTLTriangle(t Triangle3) (d stlTriangle) {
	d.Normal = f32From3(t.Normal())
	d.Vertex1 = f32From3(t.V[0])
	d.Vertex2 = f32From3(t.V[1])
	d.Vertex3 = f32From3(t.V[2])
	return d
}

func (t stlTriangle) put(b []byte) {
	if len(b) < sizeOfSTLTriangle {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *stlTriangle) get(b []byte) {
	if len(b) < sizeOfSTLTriangle {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
	// no attributes supported yet.
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

// ErrNormalMismatch is returned by ReadSTL when a stored triangle normal is not
// approximately equal to the normal calculated from its vertices.
// High resolution models may trigger it while still being valid.
var ErrNormalMismatch = errors.New("triangle normal not approximately equal to calculated normal from vertices")

func (t stlTriangle) validate() error {
	const epsilon = 1e-12
	const normTol = 5e-2
	if bad3F32(t.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	if bad3F32(t.Vertex1) || bad3F32(t.Vertex2) || bad3F32(t.Vertex3) {
		return errors.New("inf/NaN STL triangle vertex")
	}
	if t.degenerate(epsilon) {
		return errors.New("triangle is degenerate")
	}
	calcNormal := t.normalFromVertices()
	if !equalWithin3F32(calcNormal, t.Normal, normTol) {
		return ErrNormalMismatch
	}
	return nil
}

func f32From3(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func r3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func (t stlTriangle) normalFromVertices() [3]float32 {
	return f32From3(t.toTriangle3().Normal())
}

// degenerate returns true if the triangle has coincident vertices.
func (t stlTriangle) degenerate(tol float32) bool {
	return equalWithin3F32(t.Vertex1, t.Vertex2, tol) ||
		equalWithin3F32(t.Vertex2, t.Vertex3, tol) ||
		equalWithin3F32(t.Vertex3, t.Vertex1, tol)
}

func equalWithin3F32(a, b [3]float32, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}

func (d stlTriangle) toTriangle3() Triangle3 {
	return Triangle3{V: [3]r3.Vec{
		r3From3F32(d.Vertex1),
		r3From3F32(d.Vertex2),
		r3From3F32(d.Vertex3),
	}}
}
