package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/reachsim/internal/sim"
)

type ExportStep struct {
	Step    int        `json:"step"`
	Elapsed float64    `json:"elapsed"`
	Agent   [2]float64 `json:"agent"`
	Heading float64    `json:"heading"`
	Target  [2]float64 `json:"target"`
	Obs     []float64  `json:"observation"`
	Action  []float64  `json:"action"`
	Reward  float64    `json:"reward"`
	Signal  string     `json:"signal"`
}

type ExportEpisode struct {
	Index            int          `json:"index"`
	Outcome          string       `json:"outcome"`
	Return           float64      `json:"return"`
	Steps            int          `json:"steps"`
	Duration         float64      `json:"duration"`
	StartingDistance float64      `json:"starting_distance"`
	FinalDistance    float64      `json:"final_distance"`
	Transitions      []ExportStep `json:"transitions,omitempty"`
}

type ExportData struct {
	Meta     RunMetadata     `json:"meta"`
	Episodes []ExportEpisode `json:"episodes"`
}

func NewExportData(meta RunMetadata, result *sim.Result) ExportData {
	meta.Episodes = len(result.Episodes)
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics

	data := ExportData{Meta: meta, Episodes: make([]ExportEpisode, len(result.Episodes))}
	for i, ep := range result.Episodes {
		out := ExportEpisode{
			Index:            ep.Index,
			Outcome:          ep.Outcome.String(),
			Return:           ep.Return,
			Steps:            ep.Steps,
			Duration:         ep.Duration,
			StartingDistance: ep.StartingDistance,
			FinalDistance:    ep.FinalDistance,
		}
		for _, tr := range ep.Transitions {
			a, b := actionValues(tr)
			out.Transitions = append(out.Transitions, ExportStep{
				Step:    tr.Step,
				Elapsed: tr.Elapsed,
				Agent:   [2]float64{tr.State.Agent.X, tr.State.Agent.Y},
				Heading: tr.State.Heading,
				Target:  [2]float64{tr.State.Target.X, tr.State.Target.Y},
				Obs:     tr.Observation,
				Action:  []float64{a, b},
				Reward:  tr.Reward.Total,
				Signal:  tr.Signal.String(),
			})
		}
		data.Episodes[i] = out
	}
	return data
}

// ExportJSON writes the run as indented JSON to w.
func ExportJSON(w io.Writer, meta RunMetadata, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, result))
}

// ExportJSONFile writes to path, or stdout when path is "-".
func ExportJSONFile(path string, meta RunMetadata, result *sim.Result) error {
	if path == "-" {
		return ExportJSON(os.Stdout, meta, result)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, meta, result)
}

// StoredRun is a saved run read back from disk.
type StoredRun struct {
	Meta     RunMetadata  `json:"meta"`
	Episodes []EpisodeRow `json:"episodes"`
	Steps    []StepRow    `json:"steps"`
}

// ExportRun writes a stored run as indented JSON to w.
func (s *Store) ExportRun(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	episodes, err := s.LoadEpisodes(runID)
	if err != nil {
		return err
	}
	steps, err := s.LoadSteps(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(StoredRun{Meta: *meta, Episodes: episodes, Steps: steps})
}
