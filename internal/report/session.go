// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"time"

	"code.hybscloud.com/slotq/internal/stress"
)

// Run is one stress run as stored in a session file.
type Run struct {
	ID        string  `json:"id"`
	Producers int     `json:"num_producers"`
	Consumers int     `json:"num_consumers"`
	Capacity  int     `json:"capacity"`
	Pushed    int64   `json:"pushed"`
	Popped    int64   `json:"popped"`
	Retired   int64   `json:"retired"`
	Duration  string  `json:"test_duration"`
	Elapsed   string  `json:"actual_elapsed"`
	NsPerOp   float64 `json:"ns_per_op"`
	Contended uint64  `json:"lock_contended"`
	Busy      uint64  `json:"slot_busy"`
	Passed    bool    `json:"passed"`
	Error     string  `json:"error,omitempty"`
}

// NewRun converts a stress result and its verification error.
func NewRun(res stress.Result, err error) Run {
	r := Run{
		ID:        res.ID,
		Producers: res.Config.Producers,
		Consumers: res.Config.Consumers,
		Capacity:  res.Config.Capacity,
		Pushed:    res.Pushed,
		Popped:    res.Popped,
		Retired:   res.Retired,
		Duration:  res.Config.Duration.String(),
		Elapsed:   res.Elapsed.String(),
		NsPerOp:   res.NsPerOp(),
		Contended: res.Stats.Contended,
		Busy:      res.Stats.Busy,
		Passed:    err == nil,
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// Session is one invocation of the stress command.
type Session struct {
	ID     string     `json:"id"`
	Time   time.Time  `json:"session_time"`
	System SystemInfo `json:"system_info"`
	Runs   []Run      `json:"runs"`
}

// Load reads the sessions stored at path. A missing file yields no
// sessions and no error.
func Load(path string) ([]Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sessions %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var sessions []Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("decode sessions %s: %w", path, err)
	}
	return sessions, nil
}

// Append adds s to the sessions stored at path, creating the file if
// needed.
func Append(path string, s Session) error {
	sessions, err := Load(path)
	if err != nil {
		return err
	}
	sessions = append(sessions, s)
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write sessions %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace sessions %s: %w", path, err)
	}
	return nil
}

// WriteTable prints the runs of s as a markdown table, fastest first.
func WriteTable(w io.Writer, s Session) error {
	runs := slices.Clone(s.Runs)
	slices.SortStableFunc(runs, func(a, b Run) int {
		switch {
		case a.NsPerOp < b.NsPerOp:
			return -1
		case a.NsPerOp > b.NsPerOp:
			return 1
		}
		return 0
	})

	if _, err := fmt.Fprintln(w, "| Producers | Consumers | Slots | Popped | ns/op | Contended | Busy | Result |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "|-----------|-----------|-------|--------|-------|-----------|------|--------|"); err != nil {
		return err
	}
	for _, r := range runs {
		result := "ok"
		if !r.Passed {
			result = "FAIL"
		}
		if _, err := fmt.Fprintf(w, "| %9d | %9d | %5d | %6d | %5.1f | %9d | %4d | %-6s |\n",
			r.Producers, r.Consumers, r.Capacity, r.Popped, r.NsPerOp, r.Contended, r.Busy, result); err != nil {
			return err
		}
	}
	return nil
}
