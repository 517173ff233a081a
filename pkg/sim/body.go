package sim

import (
	"flag"
	"math"
	"sync"
	"time"

	fx "github.com/robotalks/rcvehicle/pkg/framework"
)

// BodyConfig defines the simulated chassis.
type BodyConfig struct {
	// SpeedMax is the speed (mm/s) at full drive.
	SpeedMax float64
	// Wheelbase (mm) between the axles.
	Wheelbase float64
	// SteeringCenter is the servo angle driving straight.
	SteeringCenter float64
	// DrainRate is the battery drop (V/s) at full drive.
	DrainRate float64
	// FullDrive is the drive magnitude of SpeedMax.
	FullDrive int16
}

// Defaults
const (
	DefaultSpeedMax       float64 = 2000
	DefaultWheelbase      float64 = 160
	DefaultSteeringCenter float64 = 84.5
	DefaultDrainRate      float64 = 0.002
	DefaultFullDrive      int16   = 255
)

var defaultBodyConfig = BodyConfig{
	SpeedMax:       DefaultSpeedMax,
	Wheelbase:      DefaultWheelbase,
	SteeringCenter: DefaultSteeringCenter,
	DrainRate:      DefaultDrainRate,
	FullDrive:      DefaultFullDrive,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Float64Var(&defaultBodyConfig.SpeedMax, "sim-speed-max", defaultBodyConfig.SpeedMax, "Simulated speed (mm/s) at full drive.")
	flag.Float64Var(&defaultBodyConfig.Wheelbase, "sim-wheelbase", defaultBodyConfig.Wheelbase, "Simulated wheelbase (mm).")
	flag.Float64Var(&defaultBodyConfig.DrainRate, "sim-drain-rate", defaultBodyConfig.DrainRate, "Simulated battery drain (V/s) at full drive.")
}

// DefaultBody gets the default body config.
func DefaultBody() BodyConfig {
	return defaultBodyConfig
}

// Body integrates the motor and servo outputs into a pose.
// It uses the bicycle model.
type Body struct {
	Config  BodyConfig
	Servo   *Servo
	Motor   *Motor
	Battery *Battery

	lock     sync.Mutex
	pose     Pose2D
	speed    float64
	lastTime time.Time
}

// NewBody creates a Body at the origin facing X.
func NewBody(conf BodyConfig, servo *Servo, motor *Motor, battery *Battery) *Body {
	return &Body{Config: conf, Servo: servo, Motor: motor, Battery: battery}
}

// Pose returns the current pose.
func (b *Body) Pose() Pose2D {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.pose
}

// Speed returns the current speed (mm/s).
func (b *Body) Speed() float64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.speed
}

// Advance integrates from the previous call until now.
func (b *Body) Advance(now time.Time) Pose2D {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.lastTime.IsZero() || !now.After(b.lastTime) {
		if b.lastTime.IsZero() {
			b.lastTime = now
		}
		return b.pose
	}
	secs := now.Sub(b.lastTime).Seconds()
	b.lastTime = now

	drive, braked := b.Motor.State()
	ratio := 0.0
	if b.Config.FullDrive > 0 && !braked {
		ratio = float64(drive) / float64(b.Config.FullDrive)
	}
	b.speed = ratio * b.Config.SpeedMax
	dist := b.speed * secs
	// larger servo angles steer left.
	steer := AngleFromDegrees(b.Servo.Angle() - b.Config.SteeringCenter)
	if b.Config.Wheelbase > 0 {
		b.pose.Orientation = b.pose.Orientation.AddRadians(dist * math.Tan(float64(steer)) / b.Config.Wheelbase)
	}
	b.pose.Pos2D = b.pose.Pos2D.Add(b.pose.Orientation.Project(dist))
	if b.Battery != nil && ratio != 0 {
		b.Battery.Drain(math.Abs(ratio) * b.Config.DrainRate * secs)
	}
	return b.pose
}

// Control implements framework.Controller.
func (b *Body) Control(cc fx.ControlContext) error {
	b.Advance(cc.Time())
	return nil
}

// AddToLoop implements LoopAdder.
func (b *Body) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvAcuate+1, b)
}
