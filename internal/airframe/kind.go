// Package airframe encodes the geometric configuration of each supported
// multirotor/fixed-wing frame: which motors exist, their mixing
// coefficients, and the servo rules (if any) that drive control surfaces.
package airframe

// Kind selects the geometry and servo ruleset used by the mixer.
type Kind int

const (
	QuadX Kind = iota
	QuadP
	Tri
	Bicopter
	Y4
	Y6
	Hex6P
	Hex6X
	Hex6H
	OctoX8
	OctoFlatP
	OctoFlatX
	VTail4
	ATail4
	Dualcopter
	Singlecopter
	FlyingWing
	Airplane
	Gimbal
	CustomMotor
	CustomTri
	CustomAirplane
)

func (k Kind) String() string {
	switch k {
	case QuadX:
		return "quad_x"
	case QuadP:
		return "quad_p"
	case Tri:
		return "tri"
	case Bicopter:
		return "bicopter"
	case Y4:
		return "y4"
	case Y6:
		return "y6"
	case Hex6P:
		return "hex6_p"
	case Hex6X:
		return "hex6_x"
	case Hex6H:
		return "hex6_h"
	case OctoX8:
		return "octo_x8"
	case OctoFlatP:
		return "octo_flat_p"
	case OctoFlatX:
		return "octo_flat_x"
	case VTail4:
		return "vtail4"
	case ATail4:
		return "atail4"
	case Dualcopter:
		return "dualcopter"
	case Singlecopter:
		return "singlecopter"
	case FlyingWing:
		return "flying_wing"
	case Airplane:
		return "airplane"
	case Gimbal:
		return "gimbal"
	case CustomMotor:
		return "custom_motor"
	case CustomTri:
		return "custom_tri"
	case CustomAirplane:
		return "custom_airplane"
	default:
		return "unknown"
	}
}

// UsesServos reports whether this airframe drives any physical servos in
// addition to motors.
func (k Kind) UsesServos() bool {
	switch k {
	case Tri, Bicopter, FlyingWing, Dualcopter, Singlecopter, Airplane, Gimbal, CustomTri, CustomAirplane:
		return true
	default:
		return false
	}
}

// IsFixedWing reports whether the airframe is a fixed-wing (control
// surface) aircraft rather than a rotary-wing one.
func (k Kind) IsFixedWing() bool {
	switch k {
	case FlyingWing, Airplane, CustomAirplane:
		return true
	default:
		return false
	}
}
