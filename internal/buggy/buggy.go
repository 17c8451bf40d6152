// Copyright 2025 The Matrix PoweredUP Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package buggy drives a LEGO Technic buggy: one drive motor, one steering
// motor and the hub's built-in sensors.
package buggy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/half-shot/matrix-poweredup/internal/pkg/metrics"
	"github.com/half-shot/matrix-poweredup/internal/poweredup"
	"github.com/half-shot/matrix-poweredup/pkg/log"
)

// MaxAngle bounds the tracked steering angle in either direction.
const MaxAngle = 30

const (
	steerSpeed = 100
	driveRamp  = 500 * time.Millisecond
)

// SteerDirection is left or right.
type SteerDirection string

const (
	Left  SteerDirection = "left"
	Right SteerDirection = "right"
)

func (d SteerDirection) sign() (int, error) {
	switch d {
	case Right:
		return 1, nil
	case Left:
		return -1, nil
	}
	return 0, fmt.Errorf("unknown steering direction %q", string(d))
}

// DriveDirection is forward or reverse.
type DriveDirection string

const (
	Forward DriveDirection = "forward"
	Reverse DriveDirection = "reverse"
)

// The drive motor is mounted so that negative speeds move the buggy forward.
func (d DriveDirection) sign() (int, error) {
	switch d {
	case Reverse:
		return 1, nil
	case Forward:
		return -1, nil
	}
	return 0, fmt.Errorf("unknown drive direction %q", string(d))
}

// Devices are the resolved parts of a buggy.
type Devices struct {
	DriveMotor    poweredup.TachoMotor
	SteeringMotor poweredup.TachoMotor
	TiltSensor    poweredup.Device
	GyroSensor    poweredup.Device
	AccelSensor   poweredup.Device
	CurrentSensor poweredup.Device
	VoltageSensor poweredup.Device
	LED           poweredup.Device
}

// Buggy is the vehicle controller. It is safe for concurrent use; steering
// commands are applied one at a time.
type Buggy struct {
	devices Devices
	hub     poweredup.Hub

	mu    sync.Mutex
	angle int
}

// New returns a Buggy over already-resolved devices. Most callers want FromHub.
func New(hub poweredup.Hub, devices Devices) *Buggy {
	return &Buggy{devices: devices, hub: hub}
}

// Hub returns the hub the buggy was resolved from.
func (b *Buggy) Hub() poweredup.Hub { return b.hub }

// Devices returns the resolved devices.
func (b *Buggy) Devices() Devices { return b.devices }

// Angle returns the tracked steering angle; negative is left.
func (b *Buggy) Angle() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.angle
}

func (b *Buggy) setAngle(a int) {
	b.angle = a
	metrics.SteeringAngle.Set(float64(a))
}

// Reset centres the steering at the motor's absolute zero.
func (b *Buggy) Reset(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.devices.SteeringMotor.GotoAbsolutePosition(ctx, 0, steerSpeed); err != nil {
		return err
	}
	b.setAngle(0)
	return nil
}

// Steer turns the steering by degrees towards dir. The resulting angle is
// clamped to [-MaxAngle, MaxAngle] and the motor only travels the clamped
// distance, so the tracked angle always matches the motor.
func (b *Buggy) Steer(ctx context.Context, dir SteerDirection, degrees int) error {
	sign, err := dir.sign()
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	target := clamp(b.angle+sign*degrees, -MaxAngle, MaxAngle)
	delta := target - b.angle
	if delta == 0 {
		return nil
	}

	speed := steerSpeed
	if delta < 0 {
		speed = -steerSpeed
	}
	if err := b.devices.SteeringMotor.RotateByDegrees(ctx, abs(delta), speed); err != nil {
		return err
	}

	log.Debug("Steered", "direction", dir, "degrees", degrees, "from", b.angle, "to", target)
	b.setAngle(target)
	return nil
}

// Drive runs the drive motor at speed towards dir. A positive duration stops
// the motor again after that long; the stop is attempted even if ctx ends
// during the wait.
func (b *Buggy) Drive(ctx context.Context, dir DriveDirection, speed int, duration time.Duration) error {
	sign, err := dir.sign()
	if err != nil {
		return err
	}

	if err := b.devices.DriveMotor.SetSpeed(ctx, speed*sign, driveRamp); err != nil {
		return err
	}
	if duration <= 0 {
		return nil
	}

	waitErr := b.hub.Sleep(ctx, duration)
	if err := b.devices.DriveMotor.SetSpeed(context.WithoutCancel(ctx), 0, driveRamp); err != nil {
		return err
	}
	return waitErr
}

// SetSpeed sets the raw drive motor speed; no direction is applied.
func (b *Buggy) SetSpeed(ctx context.Context, speed int) error {
	return b.devices.DriveMotor.SetSpeed(ctx, speed, driveRamp)
}

// Sleep waits on the hub's schedule.
func (b *Buggy) Sleep(ctx context.Context, d time.Duration) error {
	return b.hub.Sleep(ctx, d)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
