// Package pipeline wires extraction, cleaning, merging and leveling
// into the stage operations exposed by the CLI: Label, Clean and
// Transform, each persisting its outputs into a stage subdirectory.
package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"surveypipe/domain/table"
	"surveypipe/internal/cleaning"
	"surveypipe/internal/config"
	"surveypipe/internal/detect"
	"surveypipe/internal/errors"
	"surveypipe/internal/extract"
	"surveypipe/internal/level"
	"surveypipe/internal/merging"
	"surveypipe/ports"
)

// Stage output subdirectories under the configured output root
const (
	LabeledDir = "labeled"
	CleanedDir = "cleaned"
	LeveledDir = "leveled"
)

// keptPlausibleValues are the mathematics plausible-value columns that
// survive the unwanted-column drop; every other "Plausible Value" or
// "Final" (weight) column is removed before leveling.
var keptPlausibleValues = func() map[string]struct{} {
	kept := make(map[string]struct{}, 10)
	for i := 1; i <= 10; i++ {
		kept[fmt.Sprintf("Plausible Value %d in Mathematics", i)] = struct{}{}
	}
	return kept
}()

// Service runs the pipeline stages over files on disk
type Service struct {
	cfg       *config.Config
	extractor *extract.Extractor
	detector  *detect.Detector
	reader    ports.TableReader
	writer    ports.TableWriter
}

// NewService wires a pipeline service from its collaborators
func NewService(cfg *config.Config, source ports.Source, reader ports.TableReader, writer ports.TableWriter) *Service {
	return &Service{
		cfg: cfg,
		extractor: extract.New(source, extract.Options{
			KeyColumn:  cfg.KeyColumn,
			ScanWindow: cfg.ScanWindow,
			LoadWindow: cfg.LoadWindow,
		}),
		detector: detect.New(detect.DefaultKeywords()),
		reader:   reader,
		writer:   writer,
	}
}

func (s *Service) stagePath(stage, inputPath string) string {
	base := filepath.Base(inputPath)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(s.cfg.OutputDir, stage, base+".csv")
}

// LabelFile extracts the configured country's rows from a container,
// applies its labels and writes the result into the labeled stage
// directory. Files with no matching rows are skipped and yield "".
func (s *Service) LabelFile(path string) (string, error) {
	result, err := s.extractor.Extract(path, s.cfg.CountryCode, nil)
	if err != nil {
		return "", err
	}
	if result.Table.IsEmpty() {
		log.Printf("[Pipeline] %s: nothing to label, skipping", path)
		return "", nil
	}

	labeled := extract.ApplyLabels(result.Table, result.Meta)

	out := s.stagePath(LabeledDir, path)
	if err := s.writer.Write(labeled, out); err != nil {
		return "", err
	}
	log.Printf("[Pipeline] Labeled %s -> %s (%d rows)", path, out, labeled.NumRows())
	return out, nil
}

// CleanFile runs the column-elimination pipeline over a labeled file.
// Detected identifier columns and the key column are protected; the
// detected (or configured) score column steers correlated tie-breaks.
func (s *Service) CleanFile(path string) (string, *cleaning.Report, error) {
	t, err := s.reader.Read(path)
	if err != nil {
		return "", nil, err
	}

	det := s.detector.Detect(t)
	target := s.cfg.ScoreColumn
	if target == "" {
		target = det.Score
	}

	protected := []string{s.cfg.KeyColumn}
	if det.School != "" {
		protected = append(protected, det.School)
	}
	if det.Student != "" {
		protected = append(protected, det.Student)
	}

	cleaner := cleaning.New(cleaning.Thresholds{
		MissingRatio:    s.cfg.MissingnessCutoff,
		UniformityRatio: s.cfg.UniformityCutoff,
		Correlation:     s.cfg.CorrelationCutoff,
		SentinelCutoff:  s.cfg.SentinelCutoff,
		Protected:       protected,
		TargetColumn:    target,
	})
	cleaned, report := cleaner.Clean(t)

	out := s.stagePath(CleanedDir, path)
	if err := s.writer.Write(cleaned, out); err != nil {
		return "", nil, err
	}
	log.Printf("[Pipeline] Cleaned %s -> %s (dropped %d columns)", path, out, report.TotalDropped())
	return out, report, nil
}

// Transform merges the cleaned tables around the score-bearing one,
// removes unwanted weight and surplus plausible-value columns, appends
// the proficiency-level column and writes every resulting table into
// the leveled stage directory. Extra column drops requested by the
// caller are applied before merging.
func (s *Service) Transform(dir string, dropColumns []string) ([]string, error) {
	tables, err := s.loadDir(dir)
	if err != nil {
		return nil, err
	}
	if tables.IsEmpty() {
		return nil, errors.SourceAbsent(fmt.Sprintf("no tables found in %s", dir))
	}

	for _, name := range tables.Names() {
		t, _ := tables.Get(name)
		if len(dropColumns) > 0 {
			t.DropColumns(dropColumns...)
		}
	}

	det := s.detector.DetectAcross(tables)
	scoreColumn := s.cfg.ScoreColumn
	if scoreColumn == "" {
		scoreColumn = det.Score
	}
	if scoreColumn == "" {
		return nil, errors.SourceAbsent("no score column detected across tables")
	}

	var keyCandidates []string
	if det.Student != "" {
		keyCandidates = append(keyCandidates, det.Student)
	}
	if det.School != "" {
		keyCandidates = append(keyCandidates, det.School)
	}

	engine := merging.NewEngine(scoreColumn, keyCandidates)
	merged, err := engine.Process(tables)
	if err != nil {
		return nil, err
	}
	if merged.IsEmpty() {
		return nil, errors.SourceAbsent(fmt.Sprintf("no table contains score column %q", scoreColumn))
	}

	var written []string
	for _, name := range merged.Names() {
		t, _ := merged.Get(name)
		dropUnwanted(t)
		if err := level.AppendLevelColumn(t, scoreColumn); err != nil {
			return nil, err
		}
		out := filepath.Join(s.cfg.OutputDir, LeveledDir, csvName(name))
		if err := s.writer.Write(t, out); err != nil {
			return nil, err
		}
		written = append(written, out)
	}
	log.Printf("[Pipeline] Transformed %d tables from %s", len(written), dir)
	return written, nil
}

// Run executes Label and Clean over every supported file under root,
// then Transform over the cleaned outputs. Per-file failures skip the
// file and the run continues.
func (s *Service) Run(root string) ([]string, error) {
	files, err := ScanFiles(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.SourceAbsent(fmt.Sprintf("no supported files under %s", root))
	}

	cleanedAny := false
	for _, file := range files {
		if err := s.RunFile(file); err != nil {
			log.Printf("[Pipeline] Skipping %s: %v", file, err)
			continue
		}
		cleanedAny = true
	}
	if !cleanedAny {
		return nil, errors.SourceAbsent("no file survived labeling and cleaning")
	}
	return s.Transform(filepath.Join(s.cfg.OutputDir, CleanedDir), nil)
}

// RunFile labels then cleans a single file
func (s *Service) RunFile(path string) error {
	labeled, err := s.LabelFile(path)
	if err != nil {
		return err
	}
	if labeled == "" {
		return errors.SourceAbsent(fmt.Sprintf("no rows for country %s in %s", s.cfg.CountryCode, path))
	}
	_, _, err = s.CleanFile(labeled)
	return err
}

// loadDir reads every CSV in dir into a named collection, sorted by
// filename for deterministic iteration order
func (s *Service) loadDir(dir string) (*table.Collection, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", dir)
	}

	tables := table.NewCollection()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".csv") {
			continue
		}
		t, err := s.reader.Read(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Printf("[Pipeline] Skipping %s: %v", entry.Name(), err)
			continue
		}
		if err := tables.Add(entry.Name(), t); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

// dropUnwanted removes sampling-weight columns and the plausible-value
// columns of other subjects, keeping the ten mathematics ones
func dropUnwanted(t *table.Table) {
	var toDrop []string
	for _, name := range t.ColumnNames() {
		low := strings.ToLower(name)
		if strings.HasPrefix(low, "final") {
			toDrop = append(toDrop, name)
			continue
		}
		if strings.HasPrefix(low, "plausible value") {
			if _, kept := keptPlausibleValues[name]; !kept {
				toDrop = append(toDrop, name)
			}
		}
	}
	if len(toDrop) > 0 {
		t.DropColumns(toDrop...)
	}
}

func csvName(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".csv") {
		return name
	}
	return name + ".csv"
}
