package actuator

import (
	"github.com/golang/glog"
)

// Servo positions the steering.
type Servo interface {
	SetAngle(degrees float64) error
}

// Motor drives the propulsion.
type Motor interface {
	// Drive sets a signed magnitude, positive is forward.
	Drive(magnitude int16) error
	// Brake shorts the motor terminals.
	Brake() error
}

// Apply sends out to the hardware. Errors are logged, the next cycle
// sends the output again anyway.
func Apply(out Output, servo Servo, motor Motor) {
	if servo != nil {
		if err := servo.SetAngle(out.SteeringDegrees); err != nil {
			glog.Warningf("servo error: %v", err)
		}
	}
	if motor != nil {
		var err error
		if out.Brake {
			err = motor.Brake()
		} else {
			err = motor.Drive(out.Drive)
		}
		if err != nil {
			glog.Warningf("motor error: %v", err)
		}
	}
}
