package form3

import (
	"fmt"
	"runtime/debug"

	"github.com/ppglab/sdf"
	"github.com/ppglab/sdf/form3/must3"
	"gonum.org/v1/gonum/spatial/r3"
)

type shapeErr struct {
	shape    string
	panicObj interface{}
	stack    string
}

func (s *shapeErr) Error() string {
	return fmt.Sprintf("form3.%s: %v", s.shape, s.panicObj)
}

// Stack returns the stack trace captured when the shape failed.
func (s *shapeErr) Stack() string { return s.stack }

func recoverShape(shape string, err *error) {
	if a := recover(); a != nil {
		*err = &shapeErr{
			shape:    shape,
			panicObj: a,
			stack:    string(debug.Stack()),
		}
	}
}

// Box return an SDF3 for a 3d box centered at the origin
// (rounded corners with round > 0).
func Box(size r3.Vec, round float64) (s sdf.SDF3, err error) {
	defer recoverShape("Box", &err)
	return must3.Box(size, round), err
}

// Sphere return an SDF3 for a sphere centered at the origin.
func Sphere(radius float64) (s sdf.SDF3, err error) {
	defer recoverShape("Sphere", &err)
	return must3.Sphere(radius), err
}

// Cylinder return an SDF3 for a cylinder centered at the origin
// with its axis along z (rounded edges with round > 0).
func Cylinder(height, radius, round float64) (s sdf.SDF3, err error) {
	defer recoverShape("Cylinder", &err)
	return must3.Cylinder(height, radius, round), err
}
