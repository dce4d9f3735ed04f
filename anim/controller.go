package anim

import (
	"log"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Clip describes playback of one state's animation: its length and the
// normalized time at which its animation event fires.
type Clip struct {
	Duration float64
	EventAt  float64
}

type Settings struct {
	// BlendTime is how long the main layer takes to settle into a new
	// base state after a state flag changes.
	BlendTime float64
	Clips     map[Hash]Clip
}

func DefaultSettings() Settings {
	return Settings{
		BlendTime: 0.1,
		Clips: map[Hash]Clip{
			HashFlip:                  {Duration: 0.4, EventAt: 0.5},
			HashRaisingFootBeforeStop: {Duration: 0.25, EventAt: 1},
			HashRaisingFootAfterStop:  {Duration: 0.25, EventAt: 1},
			HashJumpPreparing:         {Duration: 0.3, EventAt: 1},
			HashSit:                   {Duration: 0.2, EventAt: 1},
		},
	}
}

type playback struct {
	hash    Hash
	tween   *gween.Tween
	eventAt float32
	fired   bool
	done    bool
	handler *EventHandler
}

// Controller drives the main and feet animators together and simulates
// the main layer's base state and clip events.
type Controller struct {
	Main *Animator
	Feet *Animator

	Flip                *EventHandler
	RaiseFootBeforeStop *EventHandler
	RaiseFootAfterStop  *EventHandler
	Jump                *EventHandler
	Sit                 *EventHandler

	settings    Settings
	current     Hash
	base        Hash
	pendingBase Hash
	blend       *gween.Tween
	clip        *playback
}

func NewController(settings Settings) *Controller {
	return &Controller{
		Main:                NewAnimator("main"),
		Feet:                NewAnimator("feet"),
		Flip:                NewEventHandler("flip"),
		RaiseFootBeforeStop: NewEventHandler("raise_foot_before_stop"),
		RaiseFootAfterStop:  NewEventHandler("raise_foot_after_stop"),
		Jump:                NewEventHandler("jump"),
		Sit:                 NewEventHandler("sit"),
		settings:            settings,
		current:             HashNone,
		base:                HashNone,
		pendingBase:         HashNone,
	}
}

// CurrentHash is the last state selected with SetMainAnimatorState.
func (c *Controller) CurrentHash() Hash { return c.current }

// BaseState is the state the main layer is currently playing, HashNone
// while blending.
func (c *Controller) BaseState() Hash { return c.base }

// SetMainAnimatorState raises h on both layers and clears every other state
// flag.
func (c *Controller) SetMainAnimatorState(h Hash) {
	if c == nil {
		return
	}
	for _, other := range stateHashes {
		on := other == h
		c.Main.SetBool(other, on)
		c.Feet.SetBool(other, on)
	}

	prev := c.current
	c.current = h

	target := baseStateFor(h)
	if target != c.pendingBase {
		c.pendingBase = target
		if c.settings.BlendTime <= 0 {
			c.base = target
			c.blend = nil
		} else {
			c.base = HashNone
			c.blend = gween.New(0, 1, float32(c.settings.BlendTime), ease.Linear)
		}
	}

	if h != prev {
		c.startClip(h)
	}
}

func (c *Controller) startClip(h Hash) {
	c.clip = nil
	clip, ok := c.settings.Clips[h]
	if !ok {
		return
	}
	handler := c.handlerFor(h)
	if handler == nil {
		return
	}
	duration := clip.Duration
	if duration <= 0 {
		duration = 1e-3
	}
	c.clip = &playback{
		hash:    h,
		tween:   gween.New(0, 1, float32(duration), ease.Linear),
		eventAt: float32(clip.EventAt),
		handler: handler,
	}
}

func (c *Controller) handlerFor(h Hash) *EventHandler {
	switch h {
	case HashFlip:
		return c.Flip
	case HashRaisingFootBeforeStop:
		return c.RaiseFootBeforeStop
	case HashRaisingFootAfterStop:
		return c.RaiseFootAfterStop
	case HashJumpPreparing:
		return c.Jump
	case HashSit:
		return c.Sit
	}
	return nil
}

// Update advances blending and clip playback by dt seconds, firing clip
// events as their time is reached.
func (c *Controller) Update(dt float64) {
	if c == nil {
		return
	}
	if c.blend != nil {
		if _, finished := c.blend.Update(float32(dt)); finished {
			c.blend = nil
			c.base = c.pendingBase
		}
	}

	p := c.clip
	if p == nil || p.done {
		return
	}
	t, finished := p.tween.Update(float32(dt))
	if !p.fired && (t >= p.eventAt || finished) {
		p.fired = true
		log.Printf("AnimationController: %s event", p.handler.Name())
		p.handler.Fire()
	}
	if finished {
		p.done = true
	}
}

// IsMoveAnimatorState reports whether the main layer is playing the moving
// body loop.
func (c *Controller) IsMoveAnimatorState() bool {
	return c != nil && c.base == HashMovingBody
}

// IsStopDependsFromWheelSize reports whether the main layer is playing the
// stop pose that depends on wheel size.
func (c *Controller) IsStopDependsFromWheelSize() bool {
	return c != nil && c.base == HashStopDependsFromWheelSize
}

func baseStateFor(h Hash) Hash {
	switch h {
	case HashMove:
		return HashMovingBody
	case HashStop:
		return HashStopDependsFromWheelSize
	}
	return h
}
