package physics

import (
	"github.com/ByteArena/box2d"

	"github.com/san-kum/reachsim/internal/arena"
)

const (
	staticBody  = 0
	dynamicBody = 2

	velocityIterations = 8
	positionIterations = 3
)

// Box2D mirrors the agent into a Box2D world where the target carries a
// sensor fixture. Contacts come from the world's contact listener.
type Box2D struct {
	AgentRadius  float64
	TargetRadius float64

	world   box2d.B2World
	agent   *box2d.B2Body
	target  *box2d.B2Body
	entered bool
	inside  bool
}

func NewBox2D(agentRadius, targetRadius float64) *Box2D {
	b := &Box2D{
		AgentRadius:  agentRadius,
		TargetRadius: targetRadius,
		world:        box2d.MakeB2World(box2d.MakeB2Vec2(0, 0)),
	}
	b.world.SetContactListener(newTriggerListener(b))
	return b
}

func (b *Box2D) destroy() {
	if b.agent != nil {
		b.world.DestroyBody(b.agent)
		b.agent = nil
	}
	if b.target != nil {
		b.world.DestroyBody(b.target)
		b.target = nil
	}
}

func (b *Box2D) Place(s arena.SpatialState) {
	b.destroy()

	targetDef := box2d.MakeB2BodyDef()
	targetDef.Type = staticBody
	targetDef.Position = box2d.MakeB2Vec2(s.Target.X, s.Target.Y)
	b.target = b.world.CreateBody(&targetDef)

	targetShape := box2d.NewB2CircleShape()
	targetShape.M_radius = b.TargetRadius
	targetFix := box2d.MakeB2FixtureDef()
	targetFix.Shape = targetShape
	targetFix.IsSensor = true
	b.target.CreateFixtureFromDef(&targetFix)

	agentDef := box2d.MakeB2BodyDef()
	agentDef.Type = dynamicBody
	agentDef.Position = box2d.MakeB2Vec2(s.Agent.X, s.Agent.Y)
	agentDef.Angle = s.Heading
	agentDef.AllowSleep = false
	b.agent = b.world.CreateBody(&agentDef)

	agentShape := box2d.NewB2CircleShape()
	agentShape.M_radius = b.AgentRadius
	agentFix := box2d.MakeB2FixtureDef()
	agentFix.Shape = agentShape
	agentFix.Density = 1.0
	b.agent.CreateFixtureFromDef(&agentFix)

	b.entered = false
	b.inside = false
}

// Sync teleports the agent and steps the world. The zero-length second step
// lets contacts found during the first one report BeginContact right away.
func (b *Box2D) Sync(s arena.SpatialState, dt float64) bool {
	if b.agent == nil {
		return false
	}
	b.agent.SetTransform(box2d.MakeB2Vec2(s.Agent.X, s.Agent.Y), s.Heading)
	b.agent.SetLinearVelocity(box2d.MakeB2Vec2(0, 0))
	b.agent.SetAwake(true)

	b.world.Step(dt, velocityIterations, positionIterations)
	b.world.Step(0, velocityIterations, positionIterations)

	entered := b.entered
	b.entered = false
	return entered
}

// Inside reports whether the agent currently touches the sensor.
func (b *Box2D) Inside() bool { return b.inside }

// AgentPosition is the agent body's position in the world.
func (b *Box2D) AgentPosition() (x, z float64) {
	if b.agent == nil {
		return 0, 0
	}
	p := b.agent.GetPosition()
	return p.X, p.Y
}

type triggerListener struct {
	owner *Box2D
}

func newTriggerListener(b *Box2D) *triggerListener {
	return &triggerListener{b}
}

func (l *triggerListener) involves(contact box2d.B2ContactInterface) bool {
	a := contact.GetFixtureA().GetBody()
	b := contact.GetFixtureB().GetBody()
	return (a == l.owner.agent && b == l.owner.target) ||
		(a == l.owner.target && b == l.owner.agent)
}

func (l *triggerListener) BeginContact(contact box2d.B2ContactInterface) {
	if l.involves(contact) {
		l.owner.entered = true
		l.owner.inside = true
	}
}

func (l *triggerListener) EndContact(contact box2d.B2ContactInterface) {
	if l.involves(contact) {
		l.owner.inside = false
	}
}

func (l *triggerListener) PreSolve(contact box2d.B2ContactInterface, oldManifold box2d.B2Manifold) {}

func (l *triggerListener) PostSolve(contact box2d.B2ContactInterface, impulse *box2d.B2ContactImpulse) {
}
