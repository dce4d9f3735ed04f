package physics

import (
	"log"

	"github.com/jakecoffman/cp"
)

// Ragdoll releases the rider's limbs after a crash.
type Ragdoll struct {
	vehicle *Vehicle
	enabled bool
}

func NewRagdoll(v *Vehicle) *Ragdoll {
	return &Ragdoll{vehicle: v}
}

func (r *Ragdoll) IsEnabled() bool { return r != nil && r.enabled }

// Init hands velocity to the rider parts. Parts in collided already carry
// their post-crash velocity and are left alone.
func (r *Ragdoll) Init(velocity cp.Vector, collided []Body) {
	for _, p := range []*Part{r.vehicle.Torso, r.vehicle.Head} {
		if containsBody(collided, p.Body) {
			continue
		}
		p.Body.SetVelocity(velocity)
	}
}

// Enable removes the limb limits so the rider goes limp.
func (r *Ragdoll) Enable() {
	if r.enabled {
		return
	}
	r.vehicle.unlockLimbs()
	r.enabled = true
	log.Printf("Ragdoll: enabled")
}

func containsBody(bodies []Body, b Body) bool {
	for _, cur := range bodies {
		if cur == b {
			return true
		}
	}
	return false
}
