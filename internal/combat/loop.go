package combat

import (
	"math"
	"math/rand"

	"github.com/tatianab/cyber-defenders/internal/models"
)

// Enemy chases the ship until it collides with it or is shot down.
type Enemy struct {
	ID       uint64
	Position Vec3
	Health   int
}

// Projectile flies in a straight line until its time-to-live runs out or it
// hits an enemy.
type Projectile struct {
	ID        uint64
	Weapon    Weapon
	Position  Vec3
	Direction Vec3
	TTL       float64
}

// Ship is the player's craft.
type Ship struct {
	Position Vec3
	Velocity Vec3
	Heading  Vec3
}

// Gate is a per-frame view of a scenario placed in the world.
type Gate struct {
	ScenarioID int
	Title      string
	Kind       GateKind
	Position   Vec3
	Completed  bool
}

// Input is the player's control state for one frame.
type Input struct {
	// Move is the desired direction on the XZ plane; it is normalized by the
	// loop. The zero vector means no thrust.
	Move       Vec3
	Turbo      bool
	Fire       bool
	Weapon     Weapon
	BulletTime bool
}

// Listener receives gameplay outcomes from Loop.Tick.
type Listener interface {
	EnemyDestroyed(e Enemy)
	PlayerHit(e Enemy)
	GateEntered(g Gate)
}

type nopListener struct{}

func (nopListener) EnemyDestroyed(Enemy) {}
func (nopListener) PlayerHit(Enemy)      {}
func (nopListener) GateEntered(Gate)     {}

var forward = Vec3{Z: -1}

// Loop is the arcade simulation. All timers are fields updated by Tick; a
// Loop is owned by a single goroutine.
type Loop struct {
	tuning   Tuning
	rng      *rand.Rand
	listener Listener

	clock     float64
	lastSpawn float64
	lastFire  [weaponCount]float64
	hasFired  [weaponCount]bool

	ship        Ship
	enemies     []Enemy
	projectiles []Projectile
	nextID      uint64

	scenarios []models.Scenario
	completed map[int]bool
	triggered map[int]bool
}

// NewLoop creates a simulation with one gate per scenario. A nil listener
// discards events.
func NewLoop(t Tuning, scenarios []models.Scenario, rng *rand.Rand, l Listener) *Loop {
	if l == nil {
		l = nopListener{}
	}
	return &Loop{
		tuning:    t,
		rng:       rng,
		listener:  l,
		ship:      Ship{Heading: forward},
		scenarios: scenarios,
		completed: make(map[int]bool),
		triggered: make(map[int]bool),
	}
}

// SetListener replaces the event receiver.
func (l *Loop) SetListener(ln Listener) {
	if ln == nil {
		ln = nopListener{}
	}
	l.listener = ln
}

// TimeScale returns the simulation multiplier for in.
func (l *Loop) TimeScale(in Input) float64 {
	if in.BulletTime {
		return l.tuning.BulletTimeScale
	}
	return 1
}

// Tick advances the simulation by dt seconds of wall-clock time.
func (l *Loop) Tick(dt float64, in Input) {
	if dt <= 0 {
		return
	}
	s := l.TimeScale(in)
	l.clock += dt
	scaled := dt * s

	l.steer(dt, in)
	l.spawn(s)
	l.fire(in, s)
	l.moveProjectiles(scaled)
	l.moveEnemies(scaled)
	l.resolveHits()
	l.checkGates()
}

func (l *Loop) steer(dt float64, in Input) {
	dir := Vec3{X: in.Move.X, Z: in.Move.Z}.Normalize()
	speed := l.tuning.ShipSpeed
	if in.Turbo && dir != (Vec3{}) {
		speed = l.tuning.TurboSpeed
	}
	l.ship.Velocity = l.ship.Velocity.Lerp(dir.Scale(speed), dt*l.tuning.ShipResponse)
	l.ship.Position = l.ship.Position.Add(l.ship.Velocity.Scale(dt))
	if dir != (Vec3{}) {
		l.ship.Heading = dir
	}
}

// spawn adds at most one enemy per frame. The timer advances by whole
// intervals so frame overshoot does not accumulate; after a stall it restarts
// from the current clock instead of spawning a backlog.
func (l *Loop) spawn(s float64) {
	interval := l.tuning.SpawnInterval / s
	if l.clock-l.lastSpawn <= interval {
		return
	}
	angle := l.rng.Float64() * 2 * math.Pi
	dist := l.tuning.SpawnRadius + l.rng.Float64()*l.tuning.SpawnSpread
	p := l.ship.Position
	l.nextID++
	l.enemies = append(l.enemies, Enemy{
		ID:       l.nextID,
		Position: Vec3{X: p.X + math.Sin(angle)*dist, Y: p.Y, Z: p.Z + math.Cos(angle)*dist},
		Health:   l.tuning.EnemyHealth,
	})
	l.lastSpawn += interval
	if l.clock-l.lastSpawn > interval {
		l.lastSpawn = l.clock
	}
}

func (l *Loop) fire(in Input, s float64) {
	w := in.Weapon
	if !in.Fire || w >= weaponCount {
		return
	}
	if l.hasFired[w] && l.clock-l.lastFire[w] <= w.Cooldown()/s {
		return
	}
	for _, k := range w.Fan() {
		dir := l.ship.Heading.RotateY(k * l.tuning.SpreadAngle)
		l.nextID++
		l.projectiles = append(l.projectiles, Projectile{
			ID:        l.nextID,
			Weapon:    w,
			Position:  l.ship.Position.Add(dir.Scale(l.tuning.MuzzleOffset)),
			Direction: dir,
			TTL:       w.Lifetime(),
		})
	}
	l.lastFire[w] = l.clock
	l.hasFired[w] = true
}

func (l *Loop) moveProjectiles(scaled float64) {
	live := l.projectiles[:0]
	for _, p := range l.projectiles {
		p.Position = p.Position.Add(p.Direction.Scale(l.tuning.ProjectileSpeed * scaled))
		p.TTL -= scaled
		if p.TTL > 0 {
			live = append(live, p)
		}
	}
	l.projectiles = live
}

func (l *Loop) moveEnemies(scaled float64) {
	target := l.ship.Position
	live := l.enemies[:0]
	for _, e := range l.enemies {
		dir := target.Sub(e.Position).Normalize()
		e.Position = e.Position.Add(dir.Scale(l.tuning.EnemySpeed * scaled))
		if e.Position.Dist(target) < l.tuning.KillRadius {
			l.listener.PlayerHit(e)
			continue
		}
		live = append(live, e)
	}
	l.enemies = live
}

// resolveHits consumes a projectile on contact and takes one health point from
// the enemy it touched.
func (l *Loop) resolveHits() {
	live := l.enemies[:0]
	for _, e := range l.enemies {
		for i := 0; i < len(l.projectiles) && e.Health > 0; {
			if l.projectiles[i].Position.Dist(e.Position) < l.tuning.HitRadius {
				l.projectiles = append(l.projectiles[:i], l.projectiles[i+1:]...)
				e.Health--
				continue
			}
			i++
		}
		if e.Health <= 0 {
			l.listener.EnemyDestroyed(e)
			continue
		}
		live = append(live, e)
	}
	l.enemies = live
}

// checkGates fires GateEntered once per approach. A gate re-arms only after
// the ship leaves its trigger radius.
func (l *Loop) checkGates() {
	for i, s := range l.scenarios {
		g := l.gate(i, s)
		inside := g.Position.Dist(l.ship.Position) < l.tuning.GateTriggerRadius
		switch {
		case !inside:
			delete(l.triggered, s.ID)
		case g.Completed || l.triggered[s.ID]:
		default:
			l.triggered[s.ID] = true
			l.listener.GateEntered(g)
		}
	}
}

func (l *Loop) gate(i int, s models.Scenario) Gate {
	x := l.tuning.GateOffsetX
	if i%2 != 0 {
		x = -x
	}
	return Gate{
		ScenarioID: s.ID,
		Title:      s.Title,
		Kind:       gateKindFor(i),
		Position:   Vec3{X: x, Y: l.tuning.GateHeight, Z: -float64(i+1) * l.tuning.GateSpacing},
		Completed:  l.completed[s.ID],
	}
}

// MarkCompleted disables the gate of scenario id.
func (l *Loop) MarkCompleted(id int) {
	l.completed[id] = true
}

// Gates returns the current gate views in layout order.
func (l *Loop) Gates() []Gate {
	out := make([]Gate, len(l.scenarios))
	for i, s := range l.scenarios {
		out[i] = l.gate(i, s)
	}
	return out
}

// Enemies returns a copy of the live enemies.
func (l *Loop) Enemies() []Enemy {
	return append([]Enemy(nil), l.enemies...)
}

// Projectiles returns a copy of the live projectiles.
func (l *Loop) Projectiles() []Projectile {
	return append([]Projectile(nil), l.projectiles...)
}

func (l *Loop) Ship() Ship { return l.ship }

// Clock is the wall-clock time simulated so far, in seconds.
func (l *Loop) Clock() float64 { return l.clock }

func (l *Loop) Tuning() Tuning { return l.tuning }
