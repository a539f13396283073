package anim

import (
	"fmt"

	"github.com/scengine/scengine/core"
)

// InterpolationMode selects the keyframe blend.
type InterpolationMode int

const (
	LinearInterpolation InterpolationMode = iota
	SLERPInterpolation
	MatrixInterpolation
)

// Animation advances through keyframe skeletons at a fixed frequency and
// interpolates the current pose.
type Animation struct {
	base *Skeleton
	keys []*Skeleton
	freq float32

	elapsed float32
	weight  float32
	current int
	next    int

	mode   InterpolationMode
	interp Interpolator

	key *Skeleton
}

func NewAnimation() *Animation {
	return &Animation{
		freq:   24,
		next:   1,
		interp: InterpolateLinear,
		key:    NewSkeleton(),
	}
}

func (a *Animation) BaseSkeleton() *Skeleton     { return a.base }
func (a *Animation) SetBaseSkeleton(s *Skeleton) { a.base = s }
func (a *Animation) Keys() []*Skeleton           { return a.keys }
func (a *Animation) Frequency() float32          { return a.freq }
func (a *Animation) Weight() float32             { return a.weight }
func (a *Animation) Current() int                { return a.current }
func (a *Animation) Next() int                   { return a.next }

// SetKeys installs the keyframe skeletons and the playback frequency.
func (a *Animation) SetKeys(keys []*Skeleton, freq float32) error {
	if len(keys) == 0 || freq <= 0 {
		return fmt.Errorf("animation needs keys and a positive frequency: %w", core.ErrInvalidArg)
	}
	a.keys = keys
	a.freq = freq
	return nil
}

// SetInterpolationMode picks the blend used by ComputeCurrentKey.
func (a *Animation) SetInterpolationMode(m InterpolationMode) {
	a.mode = m
	switch m {
	case SLERPInterpolation:
		a.interp = InterpolateSLERP
	case MatrixInterpolation:
		a.interp = InterpolateMatrices
	default:
		a.interp = InterpolateLinear
	}
}

func (a *Animation) InterpolationMode() InterpolationMode { return a.mode }

// Start rewinds the playback state.
func (a *Animation) Start() {
	a.elapsed = 0
	a.weight = 0
	a.current = 0
	a.next = 1
	if len(a.keys) > 0 {
		a.interp(a.keys[0], a.keys[0], 0, a.key)
	}
}

// Animate advances the accumulator by dt seconds: the weight stays in
// [0,1), current and next wrap over the key count.
func (a *Animation) Animate(dt float32) {
	n := len(a.keys)
	if n == 0 {
		return
	}
	a.elapsed += dt
	addFrames := a.elapsed * a.freq
	whole := int(addFrames)
	a.weight = addFrames - float32(whole)
	a.current += whole
	a.next += whole
	a.elapsed -= float32(whole) / a.freq
	a.current %= n
	a.next %= n
}

// ComputeCurrentKey interpolates the current pose into Key.
func (a *Animation) ComputeCurrentKey() {
	if len(a.keys) == 0 {
		return
	}
	a.interp(a.keys[a.current], a.keys[a.next], a.weight, a.key)
}

// Key is the interpolated pose of the last ComputeCurrentKey.
func (a *Animation) Key() *Skeleton { return a.key }
