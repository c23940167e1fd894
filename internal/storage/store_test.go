package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/reachsim/internal/action"
	"github.com/san-kum/reachsim/internal/arena"
	"github.com/san-kum/reachsim/internal/reward"
	"github.com/san-kum/reachsim/internal/sim"
)

func sampleResult() *sim.Result {
	start := arena.SpatialState{Target: r2.Vec{X: 0, Y: 4}}
	next := arena.SpatialState{Agent: r2.Vec{X: 0, Y: 0.04}, Target: r2.Vec{X: 0, Y: 4}}

	return &sim.Result{
		Episodes: []*sim.Episode{
			{
				Index:            0,
				Outcome:          arena.Signal{Reason: arena.Success},
				Return:           0.99,
				Shaping:          1,
				Penalty:          -0.01,
				Steps:            1,
				Duration:         0.02,
				StartingDistance: 4,
				FinalDistance:    3.96,
				Transitions: []sim.Transition{
					{Step: 0, State: start, Observation: []float64{0, 0, 1}},
					{
						Step:        1,
						Elapsed:     0.02,
						State:       next,
						Observation: []float64{0, 0, 1},
						Action:      action.Continuous(0, 1),
						Reward:      reward.Reward{Shaping: 0.01, Penalty: -0.0001, Total: 0.0099},
						Signal:      arena.Signal{Reason: arena.Success},
					},
				},
			},
			{
				Index:            1,
				Outcome:          arena.Signal{Reason: arena.Failure, Cause: "diverged"},
				Return:           -1,
				Steps:            40,
				Duration:         0.8,
				StartingDistance: 3,
				FinalDistance:    6.01,
			},
		},
		Metrics:    map[string]float64{"mean_return": -0.005},
		StepsTaken: 41,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Preset: "plane", Seed: 42, Policy: "seek"}, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "plane_") {
		t.Errorf("expected preset prefix, got %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Seed != 42 || meta.Policy != "seek" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Episodes != 2 || meta.Steps != 41 {
		t.Errorf("expected 2 episodes / 41 steps, got %d / %d", meta.Episodes, meta.Steps)
	}
	if meta.Outcomes["success"] != 1 || meta.Outcomes["failure"] != 1 {
		t.Errorf("unexpected outcomes %v", meta.Outcomes)
	}
	if meta.Metrics["mean_return"] != -0.005 {
		t.Errorf("expected mean_return -0.005, got %f", meta.Metrics["mean_return"])
	}

	episodes, err := st.LoadEpisodes(runID)
	if err != nil {
		t.Fatalf("load episodes failed: %v", err)
	}
	if len(episodes) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(episodes))
	}
	if episodes[1].Outcome != arena.Failure || episodes[1].Cause != "diverged" || episodes[1].Steps != 40 {
		t.Errorf("unexpected episode row %+v", episodes[1])
	}

	steps, err := st.LoadSteps(runID)
	if err != nil {
		t.Fatalf("load steps failed: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("expected 2 step rows, got %d", len(steps))
	}
	if steps[1].ActionB != 1 || steps[1].Signal != arena.Success {
		t.Errorf("unexpected step row %+v", steps[1])
	}
	if steps[1].Distance < 3.959 || steps[1].Distance > 3.961 {
		t.Errorf("expected distance 3.96, got %f", steps[1].Distance)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	st.Init()

	st.Save(RunMetadata{Preset: "plane"}, sampleResult())
	st.Save(RunMetadata{Preset: "heading"}, sampleResult())
	os.WriteFile(filepath.Join(tmpDir, "stray.txt"), []byte("x"), 0644)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v / %v", runs, err)
	}
}

func TestLoadNonexistent(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nonexistent"); err == nil {
		t.Error("expected error loading nonexistent run")
	}
	if _, err := st.LoadSteps("nonexistent"); err == nil {
		t.Error("expected error loading nonexistent steps")
	}
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(""), NewRunID("")
	if !strings.HasPrefix(a, "custom_") || a == b {
		t.Errorf("expected distinct custom ids, got %q and %q", a, b)
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, RunMetadata{ID: "x", Policy: "seek"}, sampleResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Meta.Policy != "seek" || len(data.Episodes) != 2 {
		t.Errorf("unexpected export %+v", data.Meta)
	}
	if len(data.Episodes[0].Transitions) != 2 || data.Episodes[1].Transitions != nil {
		t.Error("only recorded episodes should carry transitions")
	}
	if data.Episodes[1].Outcome != "failure(diverged)" {
		t.Errorf("unexpected outcome %q", data.Episodes[1].Outcome)
	}
}

func TestExportJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSONFile(path, RunMetadata{}, sampleResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("expected non-empty file, got %v", err)
	}
}

func TestExportRun(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{Preset: "heading"}, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.ExportRun(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var run StoredRun
	if err := json.Unmarshal(buf.Bytes(), &run); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if run.Meta.ID != runID || len(run.Episodes) != 2 || len(run.Steps) != 2 {
		t.Errorf("unexpected stored run %+v", run.Meta)
	}
	if run.Episodes[1].Outcome != arena.Failure {
		t.Errorf("expected failure outcome, got %s", run.Episodes[1].Outcome)
	}
	if !strings.Contains(buf.String(), `"outcome": "failure"`) {
		t.Error("outcomes should be exported by name")
	}
}
