package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/reachsim/internal/action"
	"github.com/san-kum/reachsim/internal/arena"
	"github.com/san-kum/reachsim/internal/physics"
	"github.com/san-kum/reachsim/internal/sim"
)

// scripted moves straight toward (sign 1) or away from (sign -1) the target.
type scripted struct{ sign float64 }

func (p scripted) Act(obs []float64, s arena.SpatialState) action.Action {
	return action.Continuous(p.sign*obs[0], p.sign*obs[2])
}

type still struct{}

func (still) Act(obs []float64, s arena.SpatialState) action.Action {
	return action.Continuous(0, 0)
}

func scenarioConfig() arena.Config {
	cfg := arena.DefaultConfig()
	cfg.SpawnRange = 5
	cfg.MinSeparation = 2
	cfg.MaxSpeed = 2
	cfg.TimeLimit = 30
	cfg.StepCost = 0.0001
	cfg.Dt = 0.02
	return cfg
}

var fourApart = arena.SpatialState{
	Agent:  r2.Vec{X: -2, Y: 0},
	Target: r2.Vec{X: 2, Y: 0},
}

func play(env *sim.Env, policy sim.Policy, start arena.SpatialState) *sim.Episode {
	res, err := env.ResetTo(start)
	Expect(err).NotTo(HaveOccurred())
	ep, err := sim.NewRunner(env, policy).Continue(context.Background(), res, true)
	Expect(err).NotTo(HaveOccurred())
	return ep
}

var _ = Describe("Episode", func() {
	var cfg arena.Config

	BeforeEach(func() {
		cfg = scenarioConfig()
	})

	Context("when the agent stands still", func() {
		It("times out just after the limit with only step costs", func() {
			env, err := sim.NewEnv(cfg)
			Expect(err).NotTo(HaveOccurred())

			ep := play(env, still{}, fourApart)

			Expect(ep.Outcome.Reason).To(Equal(arena.Timeout))
			Expect(ep.Duration).To(BeNumerically(">", cfg.TimeLimit))
			Expect(ep.Steps).To(Equal(int(math.Round(cfg.TimeLimit/cfg.Dt)) + 1))
			Expect(ep.Shaping).To(BeNumerically("~", 0, 1e-12))
			Expect(ep.Return).To(BeNumerically("~", -cfg.StepCost*cfg.TimeLimit/cfg.Dt, 2*cfg.StepCost))
		})
	})

	Context("when the agent heads straight for the target", func() {
		It("succeeds with shaping close to one", func() {
			env, err := sim.NewEnv(cfg, sim.WithCollider(physics.NewProximity(0.05, 0.05)))
			Expect(err).NotTo(HaveOccurred())

			ep := play(env, scripted{sign: 1}, fourApart)

			Expect(ep.Outcome.Reason).To(Equal(arena.Success))
			Expect(ep.FinalDistance).To(BeNumerically("<", 0.1))
			Expect(ep.Shaping).To(BeNumerically("~", 1.0, 0.03))
			Expect(ep.Return).To(BeNumerically("~", ep.Shaping-cfg.StepCost*float64(ep.Steps), 1e-9))
		})

		It("succeeds through the Box2D sensor as well", func() {
			env, err := sim.NewEnv(cfg, sim.WithCollider(physics.NewBox2D(0.05, 0.05)))
			Expect(err).NotTo(HaveOccurred())

			ep := play(env, scripted{sign: 1}, fourApart)

			Expect(ep.Outcome.Reason).To(Equal(arena.Success))
			Expect(ep.Shaping).To(BeNumerically("~", 1.0, 0.05))
		})
	})

	Context("when the agent runs away", func() {
		It("fails once it is farther than twice the starting distance", func() {
			env, err := sim.NewEnv(cfg)
			Expect(err).NotTo(HaveOccurred())

			ep := play(env, scripted{sign: -1}, fourApart)

			Expect(ep.Outcome.Reason).To(Equal(arena.Failure))
			Expect(ep.FinalDistance).To(BeNumerically(">", 8))
			Expect(ep.FinalDistance).To(BeNumerically("<=", 8+cfg.MaxSpeed*cfg.Dt+1e-9))
			Expect(ep.Shaping).To(BeNumerically("~", -1.0, 0.02))
			Expect(ep.Duration).To(BeNumerically("<", cfg.TimeLimit))
		})

		It("rejects further steps until reset", func() {
			env, _ := sim.NewEnv(cfg)
			play(env, scripted{sign: -1}, fourApart)

			_, err := env.Step(action.Continuous(0, 0))
			Expect(errors.Is(err, arena.ErrEpisodeEnded)).To(BeTrue())

			_, err = env.Reset()
			Expect(err).NotTo(HaveOccurred())
			_, err = env.Step(action.Continuous(0, 0))
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("with discrete heading-based control", func() {
		It("maps (0, 2) to a full left turn at full throttle", func() {
			cfg.ActionSpace = arena.Discrete
			cfg.MotionModel = arena.HeadingBased
			env, err := sim.NewEnv(cfg)
			Expect(err).NotTo(HaveOccurred())
			_, err = env.ResetTo(fourApart)
			Expect(err).NotTo(HaveOccurred())

			res, err := env.Step(action.Discrete(0, 2))
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Command.TurnRate).To(BeNumerically("~", -cfg.MaxAngularSpeed*math.Pi/180, 1e-12))
			Expect(res.Command.ForwardSpeed).To(Equal(cfg.MaxSpeed))
			Expect(res.State.Heading).To(BeNumerically("<", 0))
			Expect(res.Observation).To(HaveLen(6))
		})
	})

	Context("when the whole world is scaled", func() {
		It("produces the same rewards and percepts", func() {
			const k = 7.5
			scaled := cfg
			scaled.SpawnRange *= k
			scaled.MinSeparation *= k
			scaled.MaxSpeed *= k

			a, _ := sim.NewEnv(cfg)
			b, _ := sim.NewEnv(scaled)
			start := arena.SpatialState{Agent: r2.Vec{X: 1, Y: -0.5}, Target: r2.Vec{X: -1.5, Y: 2}}
			big := arena.SpatialState{Agent: r2.Scale(k, start.Agent), Target: r2.Scale(k, start.Target)}
			a.ResetTo(start)
			b.ResetTo(big)

			actions := []action.Action{
				action.Continuous(-0.8, 1), action.Continuous(0.3, 0.2), action.Continuous(-1, 1), action.Continuous(0, -0.5),
			}
			for _, act := range actions {
				ra, err := a.Step(act)
				Expect(err).NotTo(HaveOccurred())
				rb, err := b.Step(act)
				Expect(err).NotTo(HaveOccurred())

				Expect(rb.Reward.Total).To(BeNumerically("~", ra.Reward.Total, 1e-9))
				for i := range ra.Observation {
					Expect(rb.Observation[i]).To(BeNumerically("~", ra.Observation[i], 1e-9))
				}
			}
		})
	})

	Context("with a fixed seed", func() {
		It("replays identical episodes", func() {
			cfg.MotionModel = arena.HeadingBased
			cfg.Seed = 1234
			runOnce := func() *sim.Result {
				env, err := sim.NewEnv(cfg, sim.WithCollider(physics.NewProximity(0.5, 0.5)))
				Expect(err).NotTo(HaveOccurred())
				res, err := sim.NewRunner(env, headingSeeker{}).Run(context.Background(), sim.RunConfig{Episodes: 3, Record: 3})
				Expect(err).NotTo(HaveOccurred())
				return res
			}

			first, second := runOnce(), runOnce()
			for i := range first.Episodes {
				Expect(second.Episodes[i].Transitions).To(Equal(first.Episodes[i].Transitions))
				Expect(second.Episodes[i].Outcome).To(Equal(first.Episodes[i].Outcome))
			}
		})
	})
})

// headingSeeker turns toward the target and drives forward.
type headingSeeker struct{}

func (headingSeeker) Act(obs []float64, s arena.SpatialState) action.Action {
	cross := obs[3]*obs[2] - obs[5]*obs[0]
	return action.Continuous(-math.Copysign(1, cross), 1)
}
