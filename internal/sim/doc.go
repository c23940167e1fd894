// Package sim runs reach-the-target episodes.
//
// [Env] is the episode controller. Each [Env.Step] interprets an action,
// moves the agent, consults the [Collider], then computes the observation,
// the shaped reward and the termination signal:
//
//	env, _ := sim.NewEnv(cfg, sim.WithCollider(physics.NewProximity(0.5, 0.5)))
//	res, _ := env.Reset()
//	for !res.Done() {
//		res, _ = env.Step(policy.Act(res.Observation, res.State))
//	}
//
// [Runner] drives an Env with a [Policy] over many episodes and feeds
// [Metric]s and [Observer]s. [Ensemble] runs independently seeded runners
// in parallel.
//
// # Thread Safety
//
// Env and Runner are NOT thread-safe. Each goroutine needs its own Env.
package sim
