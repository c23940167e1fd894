package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/reachsim/internal/arena"
	"github.com/san-kum/reachsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	episodesFile = "episodes.csv"
	stepsFile    = "steps.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID          string             `json:"id"`
	Preset      string             `json:"preset"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        uint64             `json:"seed"`
	Policy      string             `json:"policy"`
	Collider    string             `json:"collider"`
	ActionSpace string             `json:"action_space"`
	MotionModel string             `json:"motion_model"`
	Dt          float64            `json:"dt"`
	TimeLimit   float64            `json:"time_limit"`
	StepCost    float64            `json:"step_cost"`
	Episodes    int                `json:"episodes"`
	Steps       int                `json:"steps"`
	Outcomes    map[string]int     `json:"outcomes"`
	Metrics     map[string]float64 `json:"metrics"`
}

// EpisodeRow is one line of episodes.csv.
type EpisodeRow struct {
	Episode          int          `json:"episode"`
	Outcome          arena.Reason `json:"outcome"`
	Cause            string       `json:"cause,omitempty"`
	Steps            int          `json:"steps"`
	Duration         float64      `json:"duration"`
	Return           float64      `json:"return"`
	Shaping          float64      `json:"shaping"`
	Penalty          float64      `json:"penalty"`
	StartingDistance float64      `json:"start_distance"`
	FinalDistance    float64      `json:"final_distance"`
	Degenerate       int          `json:"degenerate"`
}

// StepRow is one line of steps.csv.
type StepRow struct {
	Episode  int          `json:"episode"`
	Step     int          `json:"step"`
	Elapsed  float64      `json:"elapsed"`
	AgentX   float64      `json:"agent_x"`
	AgentZ   float64      `json:"agent_z"`
	Heading  float64      `json:"heading"`
	TargetX  float64      `json:"target_x"`
	TargetZ  float64      `json:"target_z"`
	Distance float64      `json:"distance"`
	ActionA  float64      `json:"action_a"`
	ActionB  float64      `json:"action_b"`
	Reward   float64      `json:"reward"`
	Shaping  float64      `json:"shaping"`
	Penalty  float64      `json:"penalty"`
	Signal   arena.Reason `json:"signal"`
}

var episodesHeader = []string{
	"episode", "outcome", "cause", "steps", "duration", "return",
	"shaping", "penalty", "start_distance", "final_distance", "degenerate",
}

var stepsHeader = []string{
	"episode", "step", "elapsed", "agent_x", "agent_z", "heading", "target_x", "target_z",
	"distance", "action_a", "action_b", "reward", "shaping", "penalty", "signal",
}

// NewRunID is the preset name plus a short random suffix.
func NewRunID(preset string) string {
	if preset == "" {
		preset = "custom"
	}
	return fmt.Sprintf("%s_%s", preset, uuid.NewString()[:8])
}

// Save writes a run directory and returns its id. meta.ID is filled in when empty.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	if meta.ID == "" {
		meta.ID = NewRunID(meta.Preset)
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Episodes = len(result.Episodes)
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics
	meta.Outcomes = make(map[string]int)
	for reason, n := range result.Outcomes() {
		meta.Outcomes[reason.String()] = n
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, episodesFile), episodesHeader, episodeRecords(result)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, stepsFile), stepsHeader, stepRecords(result)); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return w.Error()
}

func ff(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

func episodeRecords(result *sim.Result) [][]string {
	records := make([][]string, 0, len(result.Episodes))
	for _, ep := range result.Episodes {
		records = append(records, []string{
			strconv.Itoa(ep.Index),
			ep.Outcome.Reason.String(),
			ep.Outcome.Cause,
			strconv.Itoa(ep.Steps),
			ff(ep.Duration),
			ff(ep.Return),
			ff(ep.Shaping),
			ff(ep.Penalty),
			ff(ep.StartingDistance),
			ff(ep.FinalDistance),
			strconv.Itoa(ep.Degenerate),
		})
	}
	return records
}

func actionValues(a sim.Transition) (float64, float64) {
	if a.Action.Space == arena.Discrete {
		return float64(a.Action.Branches[0]), float64(a.Action.Branches[1])
	}
	return a.Action.Values[0], a.Action.Values[1]
}

func stepRecords(result *sim.Result) [][]string {
	var records [][]string
	for _, ep := range result.Episodes {
		for _, tr := range ep.Transitions {
			a, b := actionValues(tr)
			records = append(records, []string{
				strconv.Itoa(ep.Index),
				strconv.Itoa(tr.Step),
				ff(tr.Elapsed),
				ff(tr.State.Agent.X),
				ff(tr.State.Agent.Y),
				ff(tr.State.Heading),
				ff(tr.State.Target.X),
				ff(tr.State.Target.Y),
				ff(tr.State.Distance()),
				ff(a),
				ff(b),
				ff(tr.Reward.Total),
				ff(tr.Reward.Shaping),
				ff(tr.Reward.Penalty),
				tr.Signal.Reason.String(),
			})
		}
	}
	return records
}

// List returns stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func readRecords(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}
	return records[1:], nil
}

// floatsAt parses the given columns, failing on the first bad value.
func floatsAt(record []string, cols ...int) ([]float64, error) {
	out := make([]float64, len(cols))
	for i, c := range cols {
		if c >= len(record) {
			return nil, fmt.Errorf("storage: missing column %d", c)
		}
		v, err := strconv.ParseFloat(record[c], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: column %d: %w", c, err)
		}
		out[i] = v
	}
	return out, nil
}

func (s *Store) LoadEpisodes(runID string) ([]EpisodeRow, error) {
	records, err := readRecords(filepath.Join(s.baseDir, runID, episodesFile))
	if err != nil {
		return nil, err
	}

	rows := make([]EpisodeRow, 0, len(records))
	for _, rec := range records {
		if len(rec) < len(episodesHeader) {
			continue
		}
		v, err := floatsAt(rec, 0, 3, 4, 5, 6, 7, 8, 9, 10)
		if err != nil {
			return nil, err
		}
		reason, err := arena.ParseReason(rec[1])
		if err != nil {
			return nil, err
		}
		rows = append(rows, EpisodeRow{
			Episode:          int(v[0]),
			Outcome:          reason,
			Cause:            rec[2],
			Steps:            int(v[1]),
			Duration:         v[2],
			Return:           v[3],
			Shaping:          v[4],
			Penalty:          v[5],
			StartingDistance: v[6],
			FinalDistance:    v[7],
			Degenerate:       int(v[8]),
		})
	}
	return rows, nil
}

func (s *Store) LoadSteps(runID string) ([]StepRow, error) {
	records, err := readRecords(filepath.Join(s.baseDir, runID, stepsFile))
	if err != nil {
		return nil, err
	}

	rows := make([]StepRow, 0, len(records))
	for _, rec := range records {
		if len(rec) < len(stepsHeader) {
			continue
		}
		v, err := floatsAt(rec, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13)
		if err != nil {
			return nil, err
		}
		reason, err := arena.ParseReason(rec[14])
		if err != nil {
			return nil, err
		}
		rows = append(rows, StepRow{
			Episode: int(v[0]), Step: int(v[1]), Elapsed: v[2],
			AgentX: v[3], AgentZ: v[4], Heading: v[5],
			TargetX: v[6], TargetZ: v[7], Distance: v[8],
			ActionA: v[9], ActionB: v[10],
			Reward: v[11], Shaping: v[12], Penalty: v[13],
			Signal: reason,
		})
	}
	return rows, nil
}

// StepsPath is the on-disk location of a run's step log.
func (s *Store) StepsPath(runID string) string {
	return filepath.Join(s.baseDir, runID, stepsFile)
}

// EpisodesPath is the on-disk location of a run's episode log.
func (s *Store) EpisodesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, episodesFile)
}
