package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/san-kum/chaindyn/internal/dynamo"
	"github.com/san-kum/chaindyn/internal/spatial"
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

// RunMetadata describes a stored sweep or rollout.
type RunMetadata struct {
	ID          string             `json:"id"`
	Model       string             `json:"model"`
	Preset      string             `json:"preset"`
	Kind        string             `json:"kind"`
	Timestamp   time.Time          `json:"timestamp"`
	Solver      string             `json:"solver"`
	Joints      int                `json:"joints"`
	Constraints int                `json:"constraints"`
	Params      map[string]string  `json:"params,omitempty"`
	Samples     int                `json:"samples"`
	Failed      int                `json:"failed"`
	Metrics     map[string]float64 `json:"metrics"`
}

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

// columns lists the CSV column groups; each group is followed by its index.
var columns = []struct {
	prefix string
	get    func(*dynamo.Sample) *[]float64
}{
	{"q", func(s *dynamo.Sample) *[]float64 { return (*[]float64)(&s.Q) }},
	{"qd", func(s *dynamo.Sample) *[]float64 { return (*[]float64)(&s.QDot) }},
	{"qdd", func(s *dynamo.Sample) *[]float64 { return (*[]float64)(&s.QDDot) }},
	{"tau", func(s *dynamo.Sample) *[]float64 { return (*[]float64)(&s.Torques) }},
	{"nu", func(s *dynamo.Sample) *[]float64 { return &s.Nu }},
}

// Save writes meta and the samples of result under a new run directory and
// returns the run ID. ID, Timestamp, Samples, Failed and Metrics are filled
// in from result.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Model, now.UnixNano())
	meta.Timestamp = now
	meta.Samples = len(result.Samples)
	meta.Failed = result.Failed
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", errors.Wrap(err, "creating run directory")
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", errors.Wrap(err, "writing metadata")
	}

	if err := writeSamples(filepath.Join(runDir, samplesFile), result.Samples); err != nil {
		return "", errors.Wrap(err, "writing samples")
	}
	return meta.ID, nil
}

func writeSamples(path string, samples []dynamo.Sample) error {
	csvFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if len(samples) == 0 {
		w.Flush()
		return w.Error()
	}

	first := samples[0]
	header := []string{"param"}
	sizes := make([]int, len(columns))
	for k, col := range columns {
		sizes[k] = len(*col.get(&first))
		for i := 0; i < sizes[k]; i++ {
			header = append(header, fmt.Sprintf("%s%d", col.prefix, i))
		}
	}
	header = append(header, "tip_vx", "tip_vy", "tip_vz", "tip_wx", "tip_wy", "tip_wz")
	if err := w.Write(header); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for i := range samples {
		smp := &samples[i]
		row := []string{format(smp.Param)}
		for k, col := range columns {
			vals := *col.get(smp)
			for j := 0; j < sizes[k]; j++ {
				if j < len(vals) {
					row = append(row, format(vals[j]))
				} else {
					row = append(row, "0")
				}
			}
		}
		for _, v := range smp.Tip.Vec6() {
			row = append(row, format(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the metadata of every stored run, oldest first. Directories
// without readable metadata are skipped.
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
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, errors.Wrapf(err, "run %s", runID)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "run %s metadata", runID)
	}
	return &meta, nil
}

// LoadSamples reads back the samples of a run. Unknown columns are ignored.
func (s *Store) LoadSamples(runID string) ([]dynamo.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, errors.Wrapf(err, "run %s", runID)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "run %s samples", runID)
	}
	if len(records) < 2 {
		return []dynamo.Sample{}, nil
	}

	header := records[0]
	samples := make([]dynamo.Sample, 0, len(records)-1)
	for line, record := range records[1:] {
		var smp dynamo.Sample
		var tip [6]float64
		for c, name := range header {
			if c >= len(record) {
				break
			}
			val, err := strconv.ParseFloat(record[c], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "run %s line %d column %s", runID, line+2, name)
			}
			assign(&smp, &tip, name, val)
		}
		smp.Tip = spatial.TwistFromVec6(tip)
		samples = append(samples, smp)
	}
	return samples, nil
}

var tipColumns = map[string]int{"tip_vx": 0, "tip_vy": 1, "tip_vz": 2, "tip_wx": 3, "tip_wy": 4, "tip_wz": 5}

func assign(smp *dynamo.Sample, tip *[6]float64, name string, val float64) {
	if name == "param" {
		smp.Param = val
		return
	}
	if i, ok := tipColumns[name]; ok {
		tip[i] = val
		return
	}
	prefix := strings.TrimRight(name, "0123456789")
	for _, col := range columns {
		if col.prefix == prefix {
			dst := col.get(smp)
			*dst = append(*dst, val)
			return
		}
	}
}
